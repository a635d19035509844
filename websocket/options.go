// File: websocket/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package websocket

// Default limits applied when no option overrides them.
const (
	// DefaultMaxMessageSize bounds the unread backlog of one message
	// buffer. Callers that stream-drain the buffer are not limited by
	// total message size, only by backlog.
	DefaultMaxMessageSize = 1 << 20

	// DefaultMaxControlSize bounds an accumulated control payload. The
	// codec already rejects control frames above 125 bytes, so the
	// default matches the RFC frame limit.
	DefaultMaxControlSize = 125
)

// Option customizes connection setup during Upgrade.
type Option func(*options)

type options struct {
	subprotocols []string
	maxMessage   int
	maxControl   int
	headerFunc   func(name string, value []byte)
}

func defaultOptions() options {
	return options{
		maxMessage: DefaultMaxMessageSize,
		maxControl: DefaultMaxControlSize,
	}
}

// WithSubprotocols lists the subprotocols the server supports, in
// preference order. The first one present in the client's offer is
// selected; with no match the connection opens without a subprotocol.
func WithSubprotocols(protocols ...string) Option {
	return func(o *options) {
		o.subprotocols = append(o.subprotocols, protocols...)
	}
}

// WithMaxMessageSize overrides the message-buffer backlog limit.
func WithMaxMessageSize(n int) Option {
	return func(o *options) {
		o.maxMessage = n
	}
}

// WithMaxControlSize overrides the control-payload accumulation limit.
func WithMaxControlSize(n int) Option {
	return func(o *options) {
		o.maxControl = n
	}
}

// WithHeaderFunc registers a callback invoked once per request header
// line, in order, after the handshake is verified. The value slice
// aliases the input pipe and must be copied if retained.
func WithHeaderFunc(fn func(name string, value []byte)) Option {
	return func(o *options) {
		o.headerFunc = fn
	}
}
