// File: protocol/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package protocol implements the WebSocket wire layer (RFC 6455) for
// pipews: an incremental slice-based frame codec, a byte-level HTTP
// request tokenizer, and the upgrade handshake validation and response
// serialization.
//
// The codec works strictly between caller-provided slices and carries
// its cross-call state in a Codec value, so multiple independent
// connections share the same logic safely. Decoding is streaming: a
// frame's payload may be delivered across several decode steps as its
// bytes arrive.
package protocol
