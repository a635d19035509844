// File: transport/session_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport_test

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/momentics/pipews/api"
	"github.com/momentics/pipews/control"
	"github.com/momentics/pipews/transport"
)

const clientHandshake = "GET /chat HTTP/1.1\r\n" +
	"Host: server.example.com\r\n" +
	"Upgrade: websocket\r\n" +
	"Connection: Upgrade\r\n" +
	"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
	"Sec-WebSocket-Version: 13\r\n" +
	"\r\n"

// maskedFrame builds one client-to-server frame, masked as the protocol
// requires of clients.
func maskedFrame(opcode byte, fin bool, payload []byte) []byte {
	b0 := opcode
	if fin {
		b0 |= 0x80
	}
	if len(payload) > 125 {
		panic("test helper handles short frames only")
	}
	mask := [4]byte{0x11, 0x22, 0x33, 0x44}
	out := []byte{b0, 0x80 | byte(len(payload))}
	out = append(out, mask[:]...)
	for i, b := range payload {
		out = append(out, b^mask[i&3])
	}
	return out
}

// readServerFrame reads one unmasked frame off the wire.
func readServerFrame(t *testing.T, br *bufio.Reader) (opcode byte, payload []byte) {
	t.Helper()
	var hdr [2]byte
	_, err := io.ReadFull(br, hdr[:])
	require.NoError(t, err)
	require.Zero(t, hdr[1]&0x80, "server frames must not be masked")
	n := int(hdr[1] & 0x7F)
	require.LessOrEqual(t, n, 125, "test helper handles short frames only")
	payload = make([]byte, n)
	_, err = io.ReadFull(br, payload)
	require.NoError(t, err)
	return hdr[0] & 0x0F, payload
}

func performHandshake(t *testing.T, conn net.Conn, br *bufio.Reader) {
	t.Helper()
	_, err := conn.Write([]byte(clientHandshake))
	require.NoError(t, err)

	var head strings.Builder
	for !strings.HasSuffix(head.String(), "\r\n\r\n") {
		b, err := br.ReadByte()
		require.NoError(t, err)
		head.WriteByte(b)
	}
	require.Contains(t, head.String(), "101 Switching Protocols")
	require.Contains(t, head.String(), "Sec-WebSocket-Accept: s3pPLMBiTxaQ9kYGzzhZRbK+xOo=")
}

// startSession runs a session over one end of an in-memory pipe and
// returns the client end.
func startSession(t *testing.T, h transport.Handler) (net.Conn, *transport.Session) {
	t.Helper()
	client, server := net.Pipe()
	sess := transport.NewSession(server, control.Default(), zaptest.NewLogger(t), h)
	go sess.Run()
	t.Cleanup(func() {
		_ = client.Close()
		_ = sess.Close()
	})
	require.NoError(t, client.SetDeadline(time.Now().Add(5*time.Second)))
	return client, sess
}

func echoHandler() transport.Handler {
	return transport.HandlerFunc(func(s *transport.Session, data []byte, text bool) error {
		if text {
			return s.SendText(string(data))
		}
		return s.SendBinary(data)
	})
}

func TestSessionEchoRoundTrip(t *testing.T) {
	client, sess := startSession(t, echoHandler())
	br := bufio.NewReader(client)
	performHandshake(t, client, br)

	_, err := client.Write(maskedFrame(0x1, true, []byte("hello")))
	require.NoError(t, err)
	op, payload := readServerFrame(t, br)
	assert.Equal(t, byte(0x1), op)
	assert.Equal(t, "hello", string(payload))

	_, err = client.Write(maskedFrame(0x2, true, []byte{1, 2, 3}))
	require.NoError(t, err)
	op, payload = readServerFrame(t, br)
	assert.Equal(t, byte(0x2), op)
	assert.Equal(t, []byte{1, 2, 3}, payload)

	// Close handshake: the session answers with one close frame and
	// tears the connection down.
	_, err = client.Write(maskedFrame(0x8, true, []byte{0x03, 0xE8}))
	require.NoError(t, err)
	op, payload = readServerFrame(t, br)
	assert.Equal(t, byte(0x8), op)
	assert.Equal(t, []byte{0x03, 0xE8}, payload)
	_, err = br.ReadByte()
	assert.ErrorIs(t, err, io.EOF)

	select {
	case <-sess.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("session did not finish after close handshake")
	}

	assert.Eventually(t, func() bool {
		return sess.Stats()["messages_sent"] == 2
	}, time.Second, 10*time.Millisecond)
	stats := sess.Stats()
	assert.Equal(t, int64(2), stats["messages_received"])
	assert.Positive(t, stats["bytes_received"])
	assert.Positive(t, stats["bytes_sent"])
}

func TestSessionFragmentedMessageDeliveredWhole(t *testing.T) {
	var got []byte
	done := make(chan struct{})
	client, _ := startSession(t, transport.HandlerFunc(func(s *transport.Session, data []byte, text bool) error {
		got = append([]byte(nil), data...)
		close(done)
		return nil
	}))
	br := bufio.NewReader(client)
	performHandshake(t, client, br)

	_, err := client.Write(maskedFrame(0x1, false, []byte("frag")))
	require.NoError(t, err)
	_, err = client.Write(maskedFrame(0x0, true, []byte("mented")))
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not invoked")
	}
	assert.Equal(t, "fragmented", string(got))
}

func TestSessionAnswersPing(t *testing.T) {
	client, _ := startSession(t, echoHandler())
	br := bufio.NewReader(client)
	performHandshake(t, client, br)

	_, err := client.Write(maskedFrame(0x9, true, []byte("ka")))
	require.NoError(t, err)
	op, payload := readServerFrame(t, br)
	assert.Equal(t, byte(0xA), op)
	assert.Equal(t, "ka", string(payload))
}

func TestSessionServerInitiatedSend(t *testing.T) {
	client, sess := startSession(t, echoHandler())
	br := bufio.NewReader(client)
	performHandshake(t, client, br)

	require.NoError(t, sess.SendText("server says hi"))
	op, payload := readServerFrame(t, br)
	assert.Equal(t, byte(0x1), op)
	assert.Equal(t, "server says hi", string(payload))
}

func TestSessionRejectsInvalidHandshake(t *testing.T) {
	client, sess := startSession(t, echoHandler())
	_, err := client.Write([]byte("GET / HTTP/1.1\r\n\r\n"))
	require.NoError(t, err)

	select {
	case <-sess.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("session did not close on an invalid handshake")
	}
	buf := make([]byte, 1)
	_, err = client.Read(buf)
	assert.Error(t, err, "nothing is written for a rejected handshake")
}

func TestSessionSendAfterClose(t *testing.T) {
	client, sess := startSession(t, echoHandler())
	_ = client.Close()
	require.NoError(t, sess.Close())
	assert.ErrorIs(t, sess.SendText("late"), api.ErrNotOpen)
	assert.ErrorIs(t, sess.SendBinary([]byte{1}), api.ErrNotOpen)
}

func TestServerServeAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := transport.NewServer(control.NewStore(), zaptest.NewLogger(t), echoHandler())
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	br := bufio.NewReader(conn)
	performHandshake(t, conn, br)

	_, err = conn.Write(maskedFrame(0x1, true, []byte("over tcp")))
	require.NoError(t, err)
	op, payload := readServerFrame(t, br)
	assert.Equal(t, byte(0x1), op)
	assert.Equal(t, "over tcp", string(payload))

	assert.Equal(t, int64(1), srv.Metrics().Counter("connections_accepted").Load())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	require.NoError(t, <-served)
	assert.Equal(t, int64(0), srv.Metrics().Counter("connections_active").Load())
}
