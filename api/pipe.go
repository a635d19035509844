// File: api/pipe.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Pipe capability halves. A pipe is a single-direction byte stream with
// explicit flow control: the producer reserves space, writes, and commits;
// the consumer views unread data and consumes it. Either half may observe
// end-of-stream. The protocol core only ever sees these interfaces; it
// never allocates or owns a pipe.

package api

// Reader is the consumer end of a pipe.
type Reader interface {
	// Data returns a view of the committed, not yet consumed bytes.
	// The view is invalidated by the next Consume or producer-side call.
	Data() []byte

	// Len reports the number of unconsumed bytes.
	Len() int

	// IsEmpty reports whether no unconsumed bytes remain.
	IsEmpty() bool

	// Consume discards the first n unconsumed bytes.
	// Consuming more than Len panics.
	Consume(n int)

	// IsEOF reports whether the producer has closed the pipe.
	IsEOF() bool
}

// Writer is the producer end of a pipe.
type Writer interface {
	// Space reserves and returns a writable region of at least n bytes.
	// The region stays valid until the next Commit, Space or Reset.
	Space(n int) []byte

	// Commit appends the first n bytes of the current reservation to the
	// readable data. Committing more than was reserved panics.
	Commit(n int)

	// Push marks a flush boundary: everything committed so far forms one
	// transmission unit for the transport.
	Push()

	// Close half-closes the pipe. No further writes are permitted.
	Close()

	// IsEOF reports whether the pipe has been closed for writing.
	IsEOF() bool

	// ExceedsLimit reports whether more than n committed bytes remain
	// unconsumed. Used for backlog limits: a consumer that drains as
	// data arrives is never limited by total stream size.
	ExceedsLimit(n int) bool
}

// Duplex bundles the two ends of one transport stream as the protocol
// core sees it: the read end of the inbound pipe and the write end of
// the outbound pipe.
type Duplex struct {
	In  Reader
	Out Writer
}
