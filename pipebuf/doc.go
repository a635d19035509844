// File: pipebuf/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package pipebuf implements the byte pipe the protocol layers are
// driven through: a single-direction buffer with reserve/commit writing,
// explicit consume, a flush boundary marker, and half-close.
//
// One PipeBuf value carries both capability halves: its producer end
// satisfies api.Writer and its consumer end api.Reader. A Pair bundles
// the two pipes of one bidirectional transport stream.
//
// PipeBuf is not safe for concurrent use; each pipe belongs to exactly
// one connection handler.
package pipebuf
