// File: api/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Sentinel errors shared across pipews layers. ErrNeedMoreData and
// ErrFrameIncomplete are retry signals, not failures: state is left
// untouched and the same call may be repeated once more input arrives.

package api

import "errors"

var (
	// ErrNeedMoreData reports that the buffered input does not yet hold a
	// complete HTTP request head. Nothing was consumed; retry after more
	// bytes arrive.
	ErrNeedMoreData = errors.New("pipews: need more data")

	// ErrInvalidHandshake reports a structurally invalid HTTP request or
	// one lacking the required WebSocket upgrade headers. Nothing was
	// consumed, so the caller may reinterpret the same bytes as another
	// protocol.
	ErrInvalidHandshake = errors.New("pipews: invalid websocket handshake")

	// ErrFrameIncomplete reports that the input does not yet hold a full
	// frame header. Nothing was consumed.
	ErrFrameIncomplete = errors.New("pipews: incomplete frame")

	// ErrMessageTooLarge reports that the unread backlog in the message
	// buffer exceeded the configured limit. Fatal to the connection.
	ErrMessageTooLarge = errors.New("pipews: message exceeds size limit")

	// ErrControlTooLarge reports that an accumulated control-frame payload
	// exceeded the configured limit. Fatal to the connection.
	ErrControlTooLarge = errors.New("pipews: control payload exceeds size limit")

	// ErrNotOpen reports a send attempted on a half- or fully-closed
	// outbound pipe.
	ErrNotOpen = errors.New("pipews: connection not open")
)
