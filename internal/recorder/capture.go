package recorder

import (
	"encoding/binary"
	"io"

	"github.com/rjsadow/vncwatch/internal/rfb"
)

// Capture file framing constants (§6).
const (
	magicHeader     = "vncLog0.0"
	forgedGreeting  = "RFB 003.003\n"
)

var forgedSecurityNone = [4]byte{0, 0, 0, 1}

// WriteCaptureHeader writes the fixed prologue of a `.vnclog` capture
// file: the magic header, a forged v3.3/None handshake, and a
// reconstructed ServerInit for sess. The real handshake that produced
// sess may have used a different version or VNC auth — replay only
// needs a screen size, a name, and a stable security framing a file
// Transport can deterministically reproduce, so every capture forges
// the same simplest handshake regardless of how the live session
// actually authenticated.
func WriteCaptureHeader(w io.Writer, sess *rfb.Session) error {
	if _, err := io.WriteString(w, magicHeader); err != nil {
		return err
	}
	if _, err := io.WriteString(w, forgedGreeting); err != nil {
		return err
	}
	if _, err := w.Write(forgedSecurityNone[:]); err != nil {
		return err
	}

	var hdr [24]byte
	binary.BigEndian.PutUint16(hdr[0:2], uint16(sess.ScreenW))
	binary.BigEndian.PutUint16(hdr[2:4], uint16(sess.ScreenH))
	copy(hdr[4:20], sess.PixelFormat.Bytes())
	binary.BigEndian.PutUint32(hdr[20:24], uint32(len(sess.Name)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := io.WriteString(w, sess.Name)
	return err
}
