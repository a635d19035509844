// File: transport/session.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Session pumps one net.Conn through the websocket core. All core and
// pipe access is serialized on the session mutex; message delivery and
// wire writes happen outside it so handlers may call Send freely.

package transport

import (
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/momentics/pipews/api"
	"github.com/momentics/pipews/control"
	"github.com/momentics/pipews/pipebuf"
	"github.com/momentics/pipews/websocket"
)

// errSessionDone ends the read loop quietly once the close handshake
// has been flushed.
var errSessionDone = errors.New("transport: session done")

type outMessage struct {
	data []byte
	text bool
}

type inMessage struct {
	data []byte
	text bool
}

// Session is one transport connection being pumped through the
// websocket core.
type Session struct {
	id      string
	conn    net.Conn
	cfg     control.Config
	log     *zap.Logger
	handler Handler

	mu    sync.Mutex // guards pipes, msg, ws, outq
	pipes *pipebuf.Pair
	msg   *pipebuf.PipeBuf
	ws    *websocket.Conn
	outq  *queue.Queue

	notify chan struct{}
	done   chan struct{}
	closed atomic.Bool

	bytesReceived    atomic.Int64
	bytesSent        atomic.Int64
	messagesReceived atomic.Int64
	messagesSent     atomic.Int64
}

// NewSession wraps conn for pumping. The session does nothing until Run.
func NewSession(conn net.Conn, cfg control.Config, log *zap.Logger, h Handler) *Session {
	id := uuid.NewString()
	return &Session{
		id:      id,
		conn:    conn,
		cfg:     cfg,
		log:     log.With(zap.String("session", id), zap.Stringer("remote", conn.RemoteAddr())),
		handler: h,
		pipes:   pipebuf.NewPair(cfg.ReadBufferSize),
		msg:     pipebuf.New(cfg.ReadBufferSize),
		outq:    queue.New(),
		notify:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// RemoteAddr returns the peer address.
func (s *Session) RemoteAddr() net.Addr { return s.conn.RemoteAddr() }

// Subprotocol returns the negotiated subprotocol once the handshake is
// complete, otherwise "".
func (s *Session) Subprotocol() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ws == nil {
		return ""
	}
	return s.ws.Subprotocol()
}

// Run pumps the connection until it ends. It blocks; the caller
// typically runs one goroutine per session.
func (s *Session) Run() {
	go s.writeLoop()
	s.readLoop()
}

// SendText queues an unfragmented text message for transmission.
func (s *Session) SendText(data string) error {
	return s.send(outMessage{data: []byte(data), text: true})
}

// SendBinary queues an unfragmented binary message for transmission.
func (s *Session) SendBinary(data []byte) error {
	return s.send(outMessage{data: data, text: false})
}

func (s *Session) send(m outMessage) error {
	if s.closed.Load() {
		return api.ErrNotOpen
	}
	s.mu.Lock()
	s.outq.Add(m)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
	return nil
}

// Close tears the session down. Idempotent.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(s.done)
	return s.conn.Close()
}

// Done is closed when the session has ended.
func (s *Session) Done() <-chan struct{} { return s.done }

// Stats returns a snapshot of session counters.
func (s *Session) Stats() map[string]int64 {
	return map[string]int64{
		"bytes_received":    s.bytesReceived.Load(),
		"bytes_sent":        s.bytesSent.Load(),
		"messages_received": s.messagesReceived.Load(),
		"messages_sent":     s.messagesSent.Load(),
	}
}

func (s *Session) readLoop() {
	defer s.Close()
	rbuf := make([]byte, s.cfg.ReadBufferSize)
	for {
		if s.cfg.ReadTimeout > 0 {
			_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		}
		n, err := s.conn.Read(rbuf)
		if n > 0 {
			s.bytesReceived.Add(int64(n))
			if perr := s.advance(rbuf[:n]); perr != nil {
				if !errors.Is(perr, errSessionDone) {
					s.log.Warn("session failed", zap.Error(perr))
				}
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !s.closed.Load() {
				s.log.Debug("read ended", zap.Error(err))
			}
			return
		}
	}
}

// advance feeds newly arrived bytes into the inbound pipe and drives
// the core until it reports no further progress.
func (s *Session) advance(chunk []byte) error {
	s.mu.Lock()
	space := s.pipes.In.Space(len(chunk))
	copy(space, chunk)
	s.pipes.In.Commit(len(chunk))

	if s.ws == nil {
		ws, err := websocket.Upgrade(s.pipes.Duplex(),
			websocket.WithMaxMessageSize(s.cfg.MaxMessageSize),
			websocket.WithMaxControlSize(s.cfg.MaxControlSize),
			websocket.WithSubprotocols(s.cfg.Subprotocols...),
		)
		switch {
		case errors.Is(err, api.ErrNeedMoreData):
			s.mu.Unlock()
			return nil
		case err != nil:
			s.mu.Unlock()
			return err
		}
		s.ws = ws
		s.log.Info("websocket open", zap.String("subprotocol", ws.Subprotocol()))
	}

	var inbox []inMessage
	for {
		activity, err := s.ws.Receive(s.pipes.Duplex(), s.msg)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		if s.msg.IsEOF() {
			data := append([]byte(nil), s.msg.Data()...)
			s.msg.Consume(s.msg.Len())
			inbox = append(inbox, inMessage{data: data, text: s.ws.IsText()})
			s.messagesReceived.Add(1)
			s.msg.Reset()
			continue
		}
		if !activity {
			break
		}
	}
	out := s.takeOutputLocked()
	outClosed := s.pipes.Out.IsEOF()
	s.mu.Unlock()

	if err := s.flush(out); err != nil {
		return err
	}
	for _, m := range inbox {
		if err := s.handler.HandleMessage(s, m.data, m.text); err != nil {
			return err
		}
	}
	if outClosed {
		return errSessionDone
	}
	return nil
}

func (s *Session) writeLoop() {
	for {
		select {
		case <-s.done:
			return
		case <-s.notify:
			for {
				s.mu.Lock()
				if s.outq.Length() == 0 {
					s.mu.Unlock()
					break
				}
				m := s.outq.Remove().(outMessage)
				var err error
				if s.ws == nil {
					err = api.ErrNotOpen
				} else if m.text {
					err = s.ws.SendText(s.pipes.Out, string(m.data))
				} else {
					err = s.ws.SendBinary(s.pipes.Out, m.data)
				}
				var out []byte
				if err == nil {
					out = s.takeOutputLocked()
				}
				s.mu.Unlock()
				if err == nil {
					err = s.flush(out)
				}
				if err != nil {
					s.log.Warn("send failed", zap.Error(err))
					s.Close()
					return
				}
				s.messagesSent.Add(1)
			}
		}
	}
}

// takeOutputLocked copies and consumes everything the core committed to
// the outbound pipe. Callers hold the session mutex.
func (s *Session) takeOutputLocked() []byte {
	out := s.pipes.Out
	out.TakePush()
	if out.IsEmpty() {
		return nil
	}
	data := append([]byte(nil), out.Data()...)
	out.Consume(out.Len())
	return data
}

func (s *Session) flush(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if s.cfg.WriteTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
	n, err := s.conn.Write(data)
	s.bytesSent.Add(int64(n))
	return err
}
