package recorder

import (
	"encoding/binary"
	"fmt"

	"github.com/rjsadow/vncwatch/internal/rfb"
	"github.com/rjsadow/vncwatch/internal/transport"
)

// Replay implements rfb.UpdateRequester for a capture file: instead of
// sending a FramebufferUpdateRequest, it reads the next recorded 8-byte
// timestamp and reports it as the update's wall-clock time (§4.2, §9).
type Replay struct {
	T transport.Transport
}

// RequestUpdate reads the next (sec, usec) timestamp record.
func (r *Replay) RequestUpdate(_ rfb.Rectangle) (float64, error) {
	b, err := r.T.Recv(8)
	if err != nil {
		return 0, err
	}
	sec := binary.BigEndian.Uint32(b[0:4])
	usec := binary.BigEndian.Uint32(b[4:8])
	return float64(sec) + float64(usec)/1e6, nil
}

var _ rfb.UpdateRequester = (*Replay)(nil)

// OpenReplay reads the fixed `.vnclog` prologue off t (magic header,
// forged handshake, ServerInit) and returns a Session ready to drive
// the decode loop. The pixel data that follows was always captured
// after the live client negotiated the canonical format (Handshake
// always requests it), so replay always decodes with the identity
// converter regardless of what ServerInit's own pixel-format field
// reports — that field only carries the server's original screen
// geometry and name through to replay.
func OpenReplay(t transport.Transport) (*rfb.Session, error) {
	magic, err := t.Recv(len(magicHeader))
	if err != nil {
		return nil, err
	}
	if string(magic) != magicHeader {
		return nil, fmt.Errorf("recorder: not a capture file (bad magic %q)", magic)
	}

	greeting, err := t.Recv(len(forgedGreeting))
	if err != nil {
		return nil, err
	}
	if string(greeting) != forgedGreeting {
		return nil, fmt.Errorf("recorder: unexpected forged greeting %q", greeting)
	}

	secResult, err := t.Recv(4)
	if err != nil {
		return nil, err
	}
	if binary.BigEndian.Uint32(secResult) != 1 {
		return nil, fmt.Errorf("recorder: forged security type was not None")
	}

	hdr, err := t.Recv(24)
	if err != nil {
		return nil, err
	}
	width := binary.BigEndian.Uint16(hdr[0:2])
	height := binary.BigEndian.Uint16(hdr[2:4])
	if _, err := rfb.ParsePixelFormat(hdr[4:20]); err != nil {
		return nil, err
	}
	nameLen := binary.BigEndian.Uint32(hdr[20:24])
	nameBytes, err := t.Recv(int(nameLen))
	if err != nil {
		return nil, err
	}

	conv, err := rfb.BuildConverter(rfb.Canonical)
	if err != nil {
		return nil, err
	}

	return &rfb.Session{
		ProtocolVersion: 3,
		PixelFormat:     rfb.Canonical,
		Converter:       conv,
		ScreenW:         int(width),
		ScreenH:         int(height),
		Name:            string(nameBytes),
		BytesPerPixel:   int(rfb.Canonical.BitsPerPixel) / 8,
	}, nil
}
