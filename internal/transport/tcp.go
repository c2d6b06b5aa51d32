package transport

import (
	"errors"
	"io"
	"net"
	"time"
)

// TCP is a Transport backed by a live net.Conn to a VNC server.
type TCP struct {
	conn net.Conn
}

// DialTCP connects to addr (host:port) and returns a TCP transport.
func DialTCP(addr string, timeout time.Duration) (*TCP, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	return &TCP{conn: conn}, nil
}

// NewTCP wraps an already-connected net.Conn.
func NewTCP(conn net.Conn) *TCP {
	return &TCP{conn: conn}
}

// Recv reads exactly n bytes, looping over short reads as TCP permits.
func (t *TCP) Recv(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(t.conn, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
			return nil, ErrConnectionClosed
		}
		return nil, err
	}
	return buf, nil
}

// RecvTimeout reads exactly n bytes or reports a timeout if dt elapses
// first. On timeout the deadline is cleared and no bytes are consumed.
func (t *TCP) RecvTimeout(n int, dt time.Duration) ([]byte, bool, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(dt)); err != nil {
		return nil, false, err
	}
	defer t.conn.SetReadDeadline(time.Time{})

	buf := make([]byte, n)
	if _, err := io.ReadFull(t.conn, buf); err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, false, nil
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, false, ErrConnectionClosed
		}
		return nil, false, err
	}
	return buf, true, nil
}

// Send writes b to the server in full.
func (t *TCP) Send(b []byte) error {
	_, err := t.conn.Write(b)
	return err
}

// Close shuts down the underlying connection.
func (t *TCP) Close() error {
	return t.conn.Close()
}
