// File: protocol/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Wire-level error values. All of them are fatal to the connection
// except ErrMalformedRequest, which leaves the handshake input
// untouched so the caller may try another protocol.

package protocol

import "errors"

var (
	// ErrReservedBits reports RSV1/RSV2/RSV3 set without a negotiated
	// extension (RFC 6455 Section 5.2).
	ErrReservedBits = errors.New("protocol: reserved bits must be 0")

	// ErrInvalidOpcode reports an unknown or reserved opcode.
	ErrInvalidOpcode = errors.New("protocol: invalid opcode")

	// ErrControlFragmented reports a control frame with FIN=0
	// (RFC 6455 Section 5.5).
	ErrControlFragmented = errors.New("protocol: control frame must not be fragmented")

	// ErrControlTooLong reports a control frame payload above 125 bytes.
	ErrControlTooLong = errors.New("protocol: control frame payload too long")

	// ErrUnexpectedContinuation reports a continuation frame with no
	// fragmented message in progress (RFC 6455 Section 5.4).
	ErrUnexpectedContinuation = errors.New("protocol: unexpected continuation frame")

	// ErrFragmentOverlap reports a new data message started while a
	// fragmented message is still open.
	ErrFragmentOverlap = errors.New("protocol: data frame inside fragmented message")

	// ErrFrameTooLong reports a frame payload above MaxFramePayload.
	ErrFrameTooLong = errors.New("protocol: frame payload exceeds maximum allowed size")

	// ErrInvalidUTF8 reports invalid UTF-8 in a text message
	// (RFC 6455 Section 8.1).
	ErrInvalidUTF8 = errors.New("protocol: invalid UTF-8 in text message")

	// ErrEncodeSpace reports an encode scratch buffer too small for the
	// frame. Callers reserving len(payload)+MaxHeader never see it.
	ErrEncodeSpace = errors.New("protocol: encode buffer too small")

	// ErrMalformedRequest reports an HTTP request head that cannot be
	// tokenized.
	ErrMalformedRequest = errors.New("protocol: malformed HTTP request")

	// ErrInvalidUpgrade reports a request lacking the Upgrade/Connection
	// tokens required for a WebSocket handshake.
	ErrInvalidUpgrade = errors.New("protocol: invalid WebSocket upgrade headers")

	// ErrMissingKey reports a missing Sec-WebSocket-Key header.
	ErrMissingKey = errors.New("protocol: missing Sec-WebSocket-Key header")

	// ErrBadVersion reports an unsupported Sec-WebSocket-Version; only
	// version 13 is accepted.
	ErrBadVersion = errors.New("protocol: unsupported WebSocket version; only '13' is supported")
)
