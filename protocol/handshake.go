// File: protocol/handshake.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Upgrade handshake validation per RFC 6455 Section 4, and raw
// serialization of the 101 response into caller-reserved space.

package protocol

import (
	"crypto/sha1"
	"encoding/base64"
	"strings"
)

// ValidateUpgrade checks that req is a well-formed WebSocket upgrade
// request and returns the client key plus the subprotocols the client
// offered, in offer order.
func ValidateUpgrade(req *Request) (key string, offered []string, err error) {
	if req.Method != "GET" {
		return "", nil, ErrInvalidUpgrade
	}
	if !containsToken(req.HeaderValues("Connection"), "upgrade") ||
		!containsToken(req.HeaderValues("Upgrade"), "websocket") {
		return "", nil, ErrInvalidUpgrade
	}
	if string(req.Header("Sec-WebSocket-Version")) != "13" {
		return "", nil, ErrBadVersion
	}
	key = string(req.Header("Sec-WebSocket-Key"))
	if key == "" {
		return "", nil, ErrMissingKey
	}
	return key, req.HeaderValues("Sec-WebSocket-Protocol"), nil
}

// AcceptKey computes the Sec-WebSocket-Accept value for a client key,
// RFC 6455 Section 1.3.
func AcceptKey(clientKey string) string {
	h := sha1.Sum([]byte(clientKey + WebSocketGUID))
	return base64.StdEncoding.EncodeToString(h[:])
}

// WriteAcceptResponse serializes the 101 Switching Protocols response
// into scratch and returns the number of bytes written. An empty
// subprotocol omits the Sec-WebSocket-Protocol line. scratch must be at
// least HandshakeSpace bytes.
func WriteAcceptResponse(scratch []byte, clientKey, subprotocol string) int {
	n := copy(scratch, "HTTP/1.1 101 Switching Protocols\r\n"+
		"Upgrade: websocket\r\n"+
		"Connection: Upgrade\r\n"+
		"Sec-WebSocket-Accept: ")
	n += copy(scratch[n:], AcceptKey(clientKey))
	n += copy(scratch[n:], "\r\n")
	if subprotocol != "" {
		n += copy(scratch[n:], "Sec-WebSocket-Protocol: ")
		n += copy(scratch[n:], subprotocol)
		n += copy(scratch[n:], "\r\n")
	}
	n += copy(scratch[n:], "\r\n")
	return n
}

// containsToken reports whether any of the comma-split tokens equals
// token, case-insensitive.
func containsToken(tokens []string, token string) bool {
	for _, t := range tokens {
		if strings.EqualFold(t, token) {
			return true
		}
	}
	return false
}
