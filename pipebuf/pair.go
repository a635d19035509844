// File: pipebuf/pair.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pipebuf

import "github.com/momentics/pipews/api"

// Pair bundles the two pipes of one bidirectional transport stream.
// The transport commits received bytes into In and drains Out to the
// wire; the protocol core consumes In and commits replies into Out.
type Pair struct {
	In  *PipeBuf
	Out *PipeBuf
}

// NewPair returns a Pair with size bytes preallocated per direction.
func NewPair(size int) *Pair {
	return &Pair{In: New(size), Out: New(size)}
}

// Duplex exposes the pair the way the protocol core consumes it: the
// read end of In and the write end of Out.
func (p *Pair) Duplex() api.Duplex {
	return api.Duplex{In: p.In, Out: p.Out}
}
