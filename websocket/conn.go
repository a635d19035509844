// File: websocket/conn.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Conn is the per-connection reassembly and control state machine. The
// codec may return a decode result for only part of a control frame's
// payload at a time, so control payloads are built up separately from
// message data; the two are never interleaved into the same buffer.

package websocket

import (
	"errors"
	"fmt"

	"github.com/momentics/pipews/api"
	"github.com/momentics/pipews/protocol"
)

// Conn is an established server-side WebSocket connection. Created by
// Upgrade; not safe for concurrent use.
type Conn struct {
	codec       protocol.Codec
	control     []byte
	maxMessage  int
	maxControl  int
	subprotocol string
	isText      bool
}

// Upgrade attempts to interpret the unconsumed bytes at the head of the
// inbound pipe as a WebSocket upgrade request.
//
// It returns api.ErrNeedMoreData while the request head is incomplete
// and wraps any validation failure in api.ErrInvalidHandshake; in both
// cases nothing is consumed, so the caller may retry later or hand the
// same bytes to another protocol. On success the 101 response is
// committed to the outbound pipe, the header callback (if any) fires
// once per header line, exactly the request's byte length is consumed,
// and the returned Conn is open.
func Upgrade(rw api.Duplex, opts ...Option) (*Conn, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	req, n, err := protocol.ParseRequest(rw.In.Data())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", api.ErrInvalidHandshake, err)
	}
	if req == nil {
		return nil, api.ErrNeedMoreData
	}
	key, offered, err := protocol.ValidateUpgrade(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", api.ErrInvalidHandshake, err)
	}
	sub := negotiate(o.subprotocols, offered)

	scratch := rw.Out.Space(protocol.HandshakeSpace)
	written := protocol.WriteAcceptResponse(scratch, key, sub)
	if o.headerFunc != nil {
		for _, h := range req.Headers {
			o.headerFunc(h.Name, h.Value)
		}
	}
	rw.Out.Commit(written)
	rw.In.Consume(n)

	return &Conn{
		maxMessage:  o.maxMessage,
		maxControl:  o.maxControl,
		subprotocol: sub,
	}, nil
}

// negotiate picks the first server-preferred protocol the client
// offered. Empty when there is no overlap.
func negotiate(supported, offered []string) string {
	for _, s := range supported {
		for _, o := range offered {
			if s == o {
				return s
			}
		}
	}
	return ""
}

// Subprotocol returns the negotiated subprotocol, or "".
func (c *Conn) Subprotocol() string {
	return c.subprotocol
}

// IsText reports whether the message currently (or last) streamed into
// the message buffer is text rather than binary.
func (c *Conn) IsText() bool {
	return c.isText
}

// Receive processes as much buffered input as possible. Reassembled
// message data is committed into msg as it arrives; when the final
// fragment completes, msg is closed (EOF) and Receive returns so the
// caller can drain and Reset it before the next message. Ping and
// peer-initiated Close are answered on the outbound pipe; a completed
// close handshake half-closes it.
//
// The activity return distinguishes "frames were processed, call again"
// from "no further progress until more input arrives". Errors are fatal
// to the connection and leak no partial state into msg.
//
// Calling Receive with msg still closed from the previous message is a
// programmer error and panics.
func (c *Conn) Receive(rw api.Duplex, msg api.Writer) (bool, error) {
	if msg.IsEOF() {
		panic("websocket: message buffer must be reset after EOF")
	}
	activity := false
	for !rw.In.IsEmpty() {
		// One decode step can never produce more than the input holds.
		scratch := msg.Space(rw.In.Len())
		res, err := c.codec.Decode(rw.In.Data(), scratch)
		if errors.Is(err, api.ErrFrameIncomplete) {
			break
		}
		if err != nil {
			return false, err
		}
		rw.In.Consume(res.Consumed)
		activity = true

		switch res.Type {
		case api.RxText, api.RxBinary:
			c.isText = res.Type == api.RxText
			msg.Commit(res.Produced)
			if msg.ExceedsLimit(c.maxMessage) {
				return false, api.ErrMessageTooLarge
			}
			if res.EndOfMessage {
				msg.Close()
				return true, nil
			}

		case api.RxCloseCompleted:
			rw.Out.Close()

		case api.RxCloseMustReply, api.RxPing, api.RxPong:
			c.control = append(c.control, scratch[:res.Produced]...)
			if len(c.control) > c.maxControl {
				return false, api.ErrControlTooLarge
			}
			if res.EndOfMessage {
				switch res.Type {
				case api.RxCloseMustReply:
					if err := c.reply(rw.Out, api.TxCloseReply); err != nil {
						return false, err
					}
					rw.Out.Close()
				case api.RxPing:
					if err := c.reply(rw.Out, api.TxPong); err != nil {
						return false, err
					}
				case api.RxPong:
					// Unsolicited pongs are informational only.
				}
				c.control = c.control[:0]
			}
		}
	}
	return activity, nil
}

// Send frames one message fragment onto the outbound pipe. fin is true
// for an unfragmented message or the final fragment. Public
// whole-message entry points additionally mark a flush boundary.
func (c *Conn) Send(out api.Writer, t api.TxMessageType, fin bool, payload []byte) error {
	if err := c.write(out, t, fin, payload); err != nil {
		return err
	}
	out.Push()
	return nil
}

// SendText sends an unfragmented text message.
func (c *Conn) SendText(out api.Writer, data string) error {
	return c.Send(out, api.TxText, true, []byte(data))
}

// SendBinary sends an unfragmented binary message.
func (c *Conn) SendBinary(out api.Writer, data []byte) error {
	return c.Send(out, api.TxBinary, true, data)
}

// Ping sends a Ping frame carrying payload.
func (c *Conn) Ping(out api.Writer, payload []byte) error {
	return c.Send(out, api.TxPing, true, payload)
}

// Close initiates the close handshake from our side and half-closes the
// outbound pipe. The peer's answering Close then surfaces through
// Receive as a completed handshake.
func (c *Conn) Close(out api.Writer, payload []byte) error {
	if err := c.Send(out, api.TxClose, true, payload); err != nil {
		return err
	}
	out.Close()
	return nil
}

// reply frames the accumulated control payload as a protocol reply. No
// flush boundary: replies ride along with whatever the caller flushes
// next.
func (c *Conn) reply(out api.Writer, t api.TxMessageType) error {
	return c.write(out, t, true, c.control)
}

func (c *Conn) write(out api.Writer, t api.TxMessageType, fin bool, payload []byte) error {
	if out.IsEOF() {
		return api.ErrNotOpen
	}
	scratch := out.Space(len(payload) + protocol.MaxHeader)
	n, err := c.codec.Encode(t, fin, payload, scratch)
	if err != nil {
		return err
	}
	out.Commit(n)
	return nil
}
