// File: transport/server.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"context"
	"errors"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/momentics/pipews/control"
)

// Server accepts transport connections and runs one Session per
// connection.
type Server struct {
	store   *control.Store
	log     *zap.Logger
	handler Handler
	metrics *control.MetricsRegistry

	mu       sync.Mutex
	ln       net.Listener
	sessions map[string]*Session
	closed   bool
	wg       sync.WaitGroup
}

// NewServer builds a server around a config store, logger and handler.
// Config is snapshotted per accepted connection, so hot reload applies
// to new sessions.
func NewServer(store *control.Store, log *zap.Logger, h Handler) *Server {
	return &Server{
		store:    store,
		log:      log,
		handler:  h,
		metrics:  control.NewMetricsRegistry(),
		sessions: make(map[string]*Session),
	}
}

// Metrics exposes the server counter registry.
func (srv *Server) Metrics() *control.MetricsRegistry { return srv.metrics }

// ListenAndServe listens on the configured address and serves until
// Shutdown.
func (srv *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", srv.store.Snapshot().Addr)
	if err != nil {
		return err
	}
	return srv.Serve(ln)
}

// Serve accepts connections from ln until it is closed.
func (srv *Server) Serve(ln net.Listener) error {
	srv.mu.Lock()
	if srv.closed {
		srv.mu.Unlock()
		return net.ErrClosed
	}
	srv.ln = ln
	srv.mu.Unlock()
	srv.log.Info("listening", zap.Stringer("addr", ln.Addr()))

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		srv.metrics.Counter("connections_accepted").Add(1)
		sess := NewSession(conn, srv.store.Snapshot(), srv.log, srv.handler)

		srv.mu.Lock()
		if srv.closed {
			srv.mu.Unlock()
			_ = conn.Close()
			return nil
		}
		srv.sessions[sess.ID()] = sess
		srv.mu.Unlock()
		srv.metrics.Counter("connections_active").Add(1)

		srv.wg.Add(1)
		go func() {
			defer srv.wg.Done()
			sess.Run()
			srv.mu.Lock()
			delete(srv.sessions, sess.ID())
			srv.mu.Unlock()
			srv.metrics.Counter("connections_active").Add(-1)
		}()
	}
}

// Shutdown stops accepting, closes every session, and waits for the
// session goroutines, bounded by ctx.
func (srv *Server) Shutdown(ctx context.Context) error {
	srv.mu.Lock()
	srv.closed = true
	ln := srv.ln
	open := make([]*Session, 0, len(srv.sessions))
	for _, s := range srv.sessions {
		open = append(open, s)
	}
	srv.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}
	for _, s := range open {
		_ = s.Close()
	}

	done := make(chan struct{})
	go func() {
		srv.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
