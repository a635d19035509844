// File: pipebuf/pipebuf.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// PipeBuf keeps committed-but-unread bytes in buf[rd:wr] and an
// outstanding reservation in buf[wr:wr+resv]. Consumed space at the
// front is reclaimed by compaction the next time a reservation needs
// room, so steady-state streaming does not grow the storage.

package pipebuf

import "github.com/momentics/pipews/api"

// PipeBuf is a single-direction byte pipe. The zero value is ready to
// use; New preallocates storage.
type PipeBuf struct {
	buf    []byte
	rd     int // start of unread data
	wr     int // end of committed data
	resv   int // outstanding reservation beyond wr
	closed bool
	push   bool
}

var (
	_ api.Reader = (*PipeBuf)(nil)
	_ api.Writer = (*PipeBuf)(nil)
)

// New returns a PipeBuf with at least size bytes of preallocated storage.
func New(size int) *PipeBuf {
	return &PipeBuf{buf: make([]byte, 0, size)}
}

// Data returns a view of the committed, not yet consumed bytes.
func (p *PipeBuf) Data() []byte {
	return p.buf[p.rd:p.wr]
}

// Len reports the number of unconsumed bytes.
func (p *PipeBuf) Len() int {
	return p.wr - p.rd
}

// IsEmpty reports whether no unconsumed bytes remain.
func (p *PipeBuf) IsEmpty() bool {
	return p.rd == p.wr
}

// Consume discards the first n unconsumed bytes.
func (p *PipeBuf) Consume(n int) {
	if n < 0 || n > p.Len() {
		panic("pipebuf: consume beyond available data")
	}
	p.rd += n
	if p.rd == p.wr && p.resv == 0 {
		p.rd, p.wr = 0, 0
	}
}

// Space reserves and returns a writable region of at least n bytes,
// replacing any previous uncommitted reservation.
func (p *PipeBuf) Space(n int) []byte {
	if p.closed {
		panic("pipebuf: write after close")
	}
	if n < 0 {
		panic("pipebuf: negative reservation")
	}
	if cap(p.buf)-p.wr < n {
		p.compact(n)
	}
	p.resv = n
	return p.buf[:cap(p.buf)][p.wr : p.wr+n]
}

// Commit appends the first n bytes of the current reservation to the
// readable data.
func (p *PipeBuf) Commit(n int) {
	if n < 0 || n > p.resv {
		panic("pipebuf: commit beyond reservation")
	}
	p.wr += n
	p.buf = p.buf[:cap(p.buf)][:p.wr]
	p.resv = 0
}

// Push marks a flush boundary. The marker is sticky until TakePush.
func (p *PipeBuf) Push() {
	p.push = true
}

// TakePush reports and clears the flush boundary marker. Transports
// poll it to decide when committed bytes form one transmission unit.
func (p *PipeBuf) TakePush() bool {
	v := p.push
	p.push = false
	return v
}

// Close half-closes the pipe. Idempotent.
func (p *PipeBuf) Close() {
	p.closed = true
	p.resv = 0
}

// IsEOF reports whether the pipe has been closed for writing.
func (p *PipeBuf) IsEOF() bool {
	return p.closed
}

// ExceedsLimit reports whether more than n committed bytes remain
// unconsumed.
func (p *PipeBuf) ExceedsLimit(n int) bool {
	return p.Len() > n
}

// Reset clears all data, the reservation, the push marker, and the EOF
// marker, keeping the underlying storage for reuse. Callers must reset
// a message buffer after its EOF before the next message is started.
func (p *PipeBuf) Reset() {
	p.buf = p.buf[:0]
	p.rd, p.wr, p.resv = 0, 0, 0
	p.closed = false
	p.push = false
}

// compact reclaims consumed space and grows the storage so that at
// least n writable bytes follow the committed data.
func (p *PipeBuf) compact(n int) {
	unread := p.wr - p.rd
	if cap(p.buf)-unread >= n {
		copy(p.buf[:cap(p.buf)], p.buf[p.rd:p.wr])
	} else {
		need := unread + n
		size := 2 * cap(p.buf)
		if size < need {
			size = need
		}
		grown := make([]byte, unread, size)
		copy(grown, p.buf[p.rd:p.wr])
		p.buf = grown
	}
	p.rd, p.wr = 0, unread
	p.buf = p.buf[:cap(p.buf)][:unread]
}
