// File: protocol/constants.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

// Frame opcodes, RFC 6455 Section 5.2.
const (
	OpcodeContinuation byte = 0x0
	OpcodeText         byte = 0x1
	OpcodeBinary       byte = 0x2
	OpcodeClose        byte = 0x8
	OpcodePing         byte = 0x9
	OpcodePong         byte = 0xA
)

// MaxFramePayload caps the payload of a single frame. Larger messages
// must be fragmented; the cap protects against absurd length fields
// before any payload byte is read.
const MaxFramePayload = 1 << 20 // 1 MiB

// MaxControlPayload is the RFC 6455 Section 5.5 limit for control
// frame payloads.
const MaxControlPayload = 125

// MaxHeader is the reserve overhead for one outgoing frame. A server
// frame header is at most 10 bytes; the constant leaves slack.
const MaxHeader = 12

// HandshakeSpace is the reserve size for the 101 response. Generous
// enough for the worst-case line set including a subprotocol.
const HandshakeSpace = 1024

// MaxHandshakeHeadersSize caps the HTTP request head accepted during
// the upgrade, mitigating unbounded header buffering.
const MaxHandshakeHeadersSize = 8192

// WebSocketGUID is the fixed key-hashing GUID from RFC 6455 Section 1.3.
const WebSocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

func isControlOpcode(op byte) bool {
	return op&0x08 != 0
}

func isValidOpcode(op byte) bool {
	switch op {
	case OpcodeContinuation, OpcodeText, OpcodeBinary,
		OpcodeClose, OpcodePing, OpcodePong:
		return true
	default:
		return false
	}
}
