package rfb

import (
	"bytes"
	"time"

	"github.com/rjsadow/vncwatch/internal/transport"
)

// fakeTransport is an in-memory Transport scripted with exactly the
// bytes a test wants the "server" to have sent; Sent records everything
// the code under test wrote.
type fakeTransport struct {
	in   *bytes.Reader
	Sent bytes.Buffer
}

func newFakeTransport(data []byte) *fakeTransport {
	return &fakeTransport{in: bytes.NewReader(data)}
}

func (f *fakeTransport) Recv(n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := f.in.Read(buf)
	if err != nil || read < n {
		return nil, transport.ErrConnectionClosed
	}
	return buf, nil
}

func (f *fakeTransport) RecvTimeout(n int, _ time.Duration) ([]byte, bool, error) {
	if f.in.Len() == 0 {
		return nil, false, transport.ErrEndOfStream
	}
	b, err := f.Recv(n)
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (f *fakeTransport) Send(b []byte) error {
	f.Sent.Write(b)
	return nil
}

func (f *fakeTransport) Close() error { return nil }

var _ transport.Transport = (*fakeTransport)(nil)
