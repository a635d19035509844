// File: api/message.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Message-type enums and the decode result DTO exchanged between the
// frame codec and the reassembly core. Receive and transmit directions
// use distinct enums: the receive side distinguishes the two halves of
// the close handshake, the transmit side distinguishes a close we
// initiate from a close we answer.

package api

// RxMessageType classifies a decoded inbound frame.
type RxMessageType int

const (
	RxText RxMessageType = iota
	RxBinary
	// RxCloseMustReply is a peer-initiated Close; protocol requires a
	// close acknowledgement carrying the same payload.
	RxCloseMustReply
	// RxCloseCompleted is the peer's answer to a Close we sent; the
	// close handshake is finished and no reply is due.
	RxCloseCompleted
	RxPing
	RxPong
)

func (t RxMessageType) String() string {
	switch t {
	case RxText:
		return "text"
	case RxBinary:
		return "binary"
	case RxCloseMustReply:
		return "close-must-reply"
	case RxCloseCompleted:
		return "close-completed"
	case RxPing:
		return "ping"
	case RxPong:
		return "pong"
	default:
		return "unknown"
	}
}

// IsControl reports whether the type is a control frame rather than
// application data.
func (t RxMessageType) IsControl() bool {
	return t != RxText && t != RxBinary
}

// TxMessageType classifies an outbound frame.
type TxMessageType int

const (
	TxText TxMessageType = iota
	TxBinary
	TxPing
	TxPong
	// TxClose initiates the close handshake from our side.
	TxClose
	// TxCloseReply acknowledges a peer-initiated close.
	TxCloseReply
)

func (t TxMessageType) String() string {
	switch t {
	case TxText:
		return "text"
	case TxBinary:
		return "binary"
	case TxPing:
		return "ping"
	case TxPong:
		return "pong"
	case TxClose:
		return "close"
	case TxCloseReply:
		return "close-reply"
	default:
		return "unknown"
	}
}

// DecodeResult reports one decode step of the frame codec.
//
// A single frame may yield several results: the codec produces payload
// bytes as they become available, so Produced covers only the bytes
// written to scratch by this step. EndOfMessage is set on the step that
// completes the final fragment of a message (for control frames, the
// step that completes the frame).
type DecodeResult struct {
	Consumed     int
	Produced     int
	Type         RxMessageType
	EndOfMessage bool
}
