// File: api/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package api declares the capability surface shared by every layer of
// pipews: the pipe read/write capability halves the protocol core is
// driven through, the receive/transmit message-type enums, and the
// sentinel errors callers classify with errors.Is.
//
// The package contains interfaces and plain values only. Concrete pipe
// buffers live in pipebuf, the wire codec in protocol, and the
// reassembly core in websocket.
package api
