package transport

import (
	"errors"
	"io"
	"os"
	"time"
)

// File is a Transport that replays a previously captured session file.
// Sends are silently discarded: replay never talks back to a server.
// RecvTimeout never actually times out — the whole point of replay is
// deterministic, synchronous consumption of bytes already on disk — it
// either returns the requested bytes or reports ErrEndOfStream.
type File struct {
	f *os.File
}

// OpenFile opens path for replay.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &File{f: f}, nil
}

// Recv reads exactly n bytes from the file. A short read at EOF is
// reported as ErrEndOfStream so the session loop can convert it into a
// clean end of replay.
func (f *File) Recv(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(f.f, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrEndOfStream
		}
		return nil, err
	}
	return buf, nil
}

// RecvTimeout behaves like Recv, with the live-timeout call shape used
// by the session loop's dispatch-byte read. It never reports a timeout:
// at EOF it returns ok=false together with ErrEndOfStream.
func (f *File) RecvTimeout(n int, _ time.Duration) ([]byte, bool, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(f.f, buf)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, false, ErrEndOfStream
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, false, ErrEndOfStream
		}
		return nil, false, err
	}
	return buf[:read], true, nil
}

// Send discards the outbound bytes: replay is one-directional.
func (f *File) Send(b []byte) error {
	return nil
}

// Close closes the underlying file.
func (f *File) Close() error {
	return f.f.Close()
}

// Seek repositions the read cursor to an absolute offset.
func (f *File) Seek(pos int64) error {
	_, err := f.f.Seek(pos, io.SeekStart)
	return err
}

// Tell returns the current read cursor position.
func (f *File) Tell() (int64, error) {
	return f.f.Seek(0, io.SeekCurrent)
}

var _ Seekable = (*File)(nil)
