package rfb

import (
	"encoding/binary"

	"github.com/rjsadow/vncwatch/internal/transport"
)

const (
	cmsgSetPixelFormat           byte = 0
	cmsgSetEncodings            byte = 2
	cmsgFramebufferUpdateRequest byte = 3
)

// sendSetPixelFormat requests pf as the server's outbound pixel format.
func sendSetPixelFormat(t transport.Transport, pf PixelFormat) error {
	msg := make([]byte, 4, 20)
	msg[0] = cmsgSetPixelFormat
	msg = append(msg, pf.Bytes()...)
	return t.Send(msg)
}

// sendSetEncodings declares the client's preferred rectangle encodings,
// in priority order.
func sendSetEncodings(t transport.Transport, encodings []int32) error {
	msg := make([]byte, 4, 4+4*len(encodings))
	msg[0] = cmsgSetEncodings
	binary.BigEndian.PutUint16(msg[2:4], uint16(len(encodings)))
	for _, enc := range encodings {
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], uint32(enc))
		msg = append(msg, buf[:]...)
	}
	return t.Send(msg)
}

// SendFramebufferUpdateRequest asks the server for the next update
// covering (x,y,w,h). incremental requests a diff against the client's
// current view rather than a full repaint.
func SendFramebufferUpdateRequest(t transport.Transport, incremental bool, x, y, w, h int) error {
	msg := make([]byte, 10)
	msg[0] = cmsgFramebufferUpdateRequest
	if incremental {
		msg[1] = 1
	}
	binary.BigEndian.PutUint16(msg[2:4], uint16(x))
	binary.BigEndian.PutUint16(msg[4:6], uint16(y))
	binary.BigEndian.PutUint16(msg[6:8], uint16(w))
	binary.BigEndian.PutUint16(msg[8:10], uint16(h))
	return t.Send(msg)
}
