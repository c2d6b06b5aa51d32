// Package recorder implements the recording tee and the capture-file
// replay requester (§4.2, §6): the pieces that let a live session be
// mirrored to a `.vnclog` file and later read back deterministically.
package recorder

import (
	"encoding/binary"
	"io"
	"time"

	"github.com/rjsadow/vncwatch/internal/transport"
)

// Tee wraps a live Transport, mirroring every inbound byte to sink in
// the exact order the session consumed it. Send passes straight through
// to the underlying transport unmirrored: only server-to-client bytes
// are recorded (§4.2).
type Tee struct {
	transport.Transport
	sink io.Writer
}

// NewTee wraps t, writing every byte t.Recv/RecvTimeout returns to sink.
func NewTee(t transport.Transport, sink io.Writer) *Tee {
	return &Tee{Transport: t, sink: sink}
}

// Recv mirrors the bytes it returns to sink before handing them back.
func (t *Tee) Recv(n int) ([]byte, error) {
	b, err := t.Transport.Recv(n)
	if len(b) > 0 {
		if _, werr := t.sink.Write(b); werr != nil {
			return b, werr
		}
	}
	return b, err
}

// RecvTimeout mirrors the bytes it returns (on a non-timeout) to sink.
func (t *Tee) RecvTimeout(n int, dt time.Duration) ([]byte, bool, error) {
	b, ok, err := t.Transport.RecvTimeout(n, dt)
	if ok && len(b) > 0 {
		if _, werr := t.sink.Write(b); werr != nil {
			return b, ok, werr
		}
	}
	return b, ok, err
}

// MarkUpdateBoundary writes an 8-byte (sec:u32be, usec:u32be) wall-clock
// timestamp to sink, immediately preceding the bytes that the next
// RequestUpdate cycle will mirror. Writing it here rather than
// deferring it to the next Recv call produces byte-identical output,
// since a Tee has exactly one reader and nothing else writes to sink in
// between (§4.2, §5: single-threaded session ownership).
func (t *Tee) MarkUpdateBoundary() error {
	now := time.Now()
	var ts [8]byte
	binary.BigEndian.PutUint32(ts[0:4], uint32(now.Unix()))
	binary.BigEndian.PutUint32(ts[4:8], uint32(now.Nanosecond()/1000))
	_, err := t.sink.Write(ts[:])
	return err
}

var _ transport.Transport = (*Tee)(nil)
