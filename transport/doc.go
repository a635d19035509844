// File: transport/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package transport is the connection pump around the websocket core:
// it owns the pipes the core is driven through and moves bytes between
// them and a net.Conn.
//
// A Session reads from the wire into the inbound pipe, drives the
// handshake and then Receive until no further progress is possible,
// hands completed messages to the Handler, and flushes whatever the
// core committed to the outbound pipe. Outbound application messages
// are queued and framed by a separate write loop, so handlers and other
// goroutines may send at any time while all calls into the core stay
// serialized on one session mutex.
package transport
