// File: websocket/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package websocket turns a byte-oriented pipe pair into a
// message-oriented WebSocket server endpoint.
//
// Upgrade recognizes and completes the HTTP handshake on a stream that
// may initially carry another protocol. Conn.Receive drives the frame
// codec across whatever input has arrived, streaming reassembled
// message data into a caller-supplied message buffer and answering
// protocol-mandated control traffic (Ping with Pong, peer Close with a
// close acknowledgement) transparently. The send path frames one
// outgoing message per call.
//
// Everything is synchronous and non-blocking: calls return early with
// retry signals instead of suspending, and all state lives on the Conn
// so independent connections share nothing. A Conn and its pipes belong
// to exactly one connection handler; concurrent calls are not
// permitted.
package websocket
