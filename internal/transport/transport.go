// Package transport abstracts the byte-level connection a VNC session
// speaks over: a live TCP socket, or a previously captured session file
// being replayed. Both implementations expose the same blocking-read,
// timed-read and send operations so the rest of the client never needs
// to know which one it has.
package transport

import (
	"errors"
	"time"
)

// ErrConnectionClosed is returned by Recv/RecvTimeout when the peer closed
// the connection mid-read (a short read at a point where more bytes were
// required).
var ErrConnectionClosed = errors.New("transport: connection closed")

// ErrEndOfStream is returned by a file-backed Transport when Recv hits a
// clean EOF at a message boundary. The session loop converts this into a
// normal end of replay rather than surfacing it as a failure.
var ErrEndOfStream = errors.New("transport: end of stream")

// Transport is the byte-level capability a VNC session needs from its
// connection. Implementations must make Recv block until exactly n bytes
// have been read (RFB messages are never read partially by a caller).
type Transport interface {
	// Recv blocks until exactly n bytes are available and returns them.
	Recv(n int) ([]byte, error)

	// RecvTimeout blocks until n bytes are available or dt elapses. It
	// returns ok=false (and a nil error) on timeout without consuming
	// any bytes from the stream.
	RecvTimeout(n int, dt time.Duration) (data []byte, ok bool, err error)

	// Send writes b to the peer. File-backed transports implement this
	// as a no-op: replay never talks back to a server.
	Send(b []byte) error

	// Close releases the underlying resource. Any Recv in flight must
	// subsequently fail with ErrConnectionClosed.
	Close() error
}

// Seekable is implemented by transports that support random access, used
// by the two-pass replay render in internal/frametick.
type Seekable interface {
	// Seek repositions the read cursor to an absolute byte offset.
	Seek(pos int64) error

	// Tell returns the current read cursor position.
	Tell() (int64, error)
}
