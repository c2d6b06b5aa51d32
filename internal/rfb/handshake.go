package rfb

import (
	"encoding/binary"
	"fmt"

	"github.com/rjsadow/vncwatch/internal/transport"
)

const (
	secTypeInvalid byte = 0
	secTypeNone    byte = 1
	secTypeVNCAuth byte = 2
)

// HandshakeOptions configures the handshake-and-auth state machine
// (§4.3). PreferredEncodings and IncludeCursor drive the SetEncodings
// message sent right after ServerInit.
type HandshakeOptions struct {
	Password          PasswordSource
	PreferredEncodings []int32
	IncludeCursor     bool
}

// Session is the transient state produced by a successful handshake:
// negotiated protocol version, pixel format, converter, and screen
// geometry (§3).
type Session struct {
	ProtocolVersion int // 3, 7, or 8 (meaning 3.3, 3.7, 3.8)
	PixelFormat     PixelFormat
	Converter       *Converter
	ScreenW         int
	ScreenH         int
	Name            string
	BytesPerPixel   int
}

// Handshake drives the Greet -> Security -> Auth -> Result -> ServerInit
// state machine over t and, on success, sends SetPixelFormat and
// SetEncodings before returning the negotiated Session.
func Handshake(t transport.Transport, opts HandshakeOptions) (*Session, error) {
	version, err := greet(t)
	if err != nil {
		return nil, err
	}

	if err := negotiateSecurity(t, version, opts.Password); err != nil {
		return nil, err
	}

	sess, err := readServerInit(t, version)
	if err != nil {
		return nil, err
	}

	conv, err := BuildConverter(Canonical)
	if err != nil {
		return nil, err
	}
	sess.PixelFormat = Canonical
	sess.Converter = conv
	sess.BytesPerPixel = int(Canonical.BitsPerPixel) / 8

	if err := sendSetPixelFormat(t, Canonical); err != nil {
		return nil, err
	}

	encodings := opts.PreferredEncodings
	if opts.IncludeCursor {
		encodings = append(append([]int32{}, encodings...), EncodingRichCursor, EncodingCursorPos)
	}
	if err := sendSetEncodings(t, encodings); err != nil {
		return nil, err
	}

	return sess, nil
}

// greet performs the ProtocolVersion exchange: recv 12 bytes, classify
// by prefix, echo back the matching "RFB 003.NNN\n" line.
func greet(t transport.Transport) (int, error) {
	b, err := t.Recv(12)
	if err != nil {
		return 0, err
	}

	var version int
	var reply string
	switch string(b) {
	case "RFB 003.003\n":
		version, reply = 3, "RFB 003.003\n"
	case "RFB 003.007\n":
		version, reply = 7, "RFB 003.007\n"
	case "RFB 003.008\n":
		version, reply = 8, "RFB 003.008\n"
	default:
		// Any other 3.x minor version negotiates down to the highest
		// version this client understands, 3.8, as real servers expect.
		if len(b) >= 4 && string(b[0:4]) == "RFB " {
			version, reply = 8, "RFB 003.008\n"
		} else {
			return 0, &ProtocolError{Detail: fmt.Sprintf("unrecognized protocol greeting %q", b)}
		}
	}

	if err := t.Send([]byte(reply)); err != nil {
		return 0, err
	}
	return version, nil
}

// negotiateSecurity runs the version-dependent security-type exchange
// and, if VNC auth is selected, the DES challenge-response, following
// the per-version Result semantics of §4.3's state table exactly:
// a v3.3 auth result never carries a reason string (only a v3.3
// security type of 0 is followed by one), v3.7 with None has an implicit
// zero result with nothing on the wire, and v3.8 (or any VncAuth
// attempt on v3.7/3.8) always reads a u32 result and, on failure, a
// reason string.
func negotiateSecurity(t transport.Transport, version int, password PasswordSource) error {
	if version == 3 {
		b, err := t.Recv(4)
		if err != nil {
			return err
		}
		switch binary.BigEndian.Uint32(b) {
		case 0:
			return readFailureReason(t)
		case 1:
			return nil // None: no further Result message on v3.3
		case 2:
			return vncAuthV3(t, password)
		default:
			return &ProtocolError{Detail: "unknown v3.3 security type"}
		}
	}

	n, err := t.Recv(1)
	if err != nil {
		return err
	}
	types, err := t.Recv(int(n[0]))
	if err != nil {
		return err
	}

	var secType byte
	switch {
	case containsByte(types, secTypeNone):
		secType = secTypeNone
	case containsByte(types, secTypeVNCAuth):
		secType = secTypeVNCAuth
	default:
		return &ProtocolError{Detail: "server offered no supported security type"}
	}
	if err := t.Send([]byte{secType}); err != nil {
		return err
	}

	if secType == secTypeVNCAuth {
		if err := vncChallengeResponse(t, password); err != nil {
			return err
		}
		return readResultWithReason(t)
	}

	if version == 7 {
		return nil // implicit result=0, nothing more on the wire
	}
	return readResultWithReason(t) // v3.8 always sends a result
}

// vncAuthV3 runs the VNC auth challenge-response for a v3.3 server,
// whose failure result carries no reason string.
func vncAuthV3(t transport.Transport, password PasswordSource) error {
	if err := vncChallengeResponse(t, password); err != nil {
		return err
	}
	b, err := t.Recv(4)
	if err != nil {
		return err
	}
	if binary.BigEndian.Uint32(b) == 0 {
		return nil
	}
	return &AuthError{Reason: "authentication rejected"}
}

// vncChallengeResponse reads the 16-byte challenge and sends the
// DES-encrypted response. It does not read the SecurityResult: callers
// do that themselves, since the result framing differs by version.
func vncChallengeResponse(t transport.Transport, password PasswordSource) error {
	if password == nil {
		return &AuthError{Reason: "server requires VNC authentication but no password was provided"}
	}
	pw, err := password.Password()
	if err != nil {
		return err
	}
	challenge, err := t.Recv(16)
	if err != nil {
		return err
	}
	response, err := encryptChallenge(pw, challenge)
	if err != nil {
		return err
	}
	return t.Send(response)
}

// readResultWithReason reads a u32 SecurityResult and, on failure,
// the accompanying reason string (v3.7/3.8 framing only).
func readResultWithReason(t transport.Transport) error {
	b, err := t.Recv(4)
	if err != nil {
		return err
	}
	if binary.BigEndian.Uint32(b) == 0 {
		return nil
	}
	return readFailureReason(t)
}

func readFailureReason(t transport.Transport) error {
	b, err := t.Recv(4)
	if err != nil {
		return err
	}
	n := binary.BigEndian.Uint32(b)
	reason, err := t.Recv(int(n))
	if err != nil {
		return err
	}
	return &AuthError{Reason: string(reason)}
}

func readServerInit(t transport.Transport, version int) (*Session, error) {
	b, err := t.Recv(24)
	if err != nil {
		return nil, err
	}
	width := binary.BigEndian.Uint16(b[0:2])
	height := binary.BigEndian.Uint16(b[2:4])
	pf, err := ParsePixelFormat(b[4:20])
	if err != nil {
		return nil, err
	}
	nameLen := binary.BigEndian.Uint32(b[20:24])
	nameBytes, err := t.Recv(int(nameLen))
	if err != nil {
		return nil, err
	}

	return &Session{
		ProtocolVersion: version,
		PixelFormat:     pf,
		ScreenW:         int(width),
		ScreenH:         int(height),
		Name:            string(nameBytes),
	}, nil
}

func containsByte(haystack []byte, b byte) bool {
	for _, v := range haystack {
		if v == b {
			return true
		}
	}
	return false
}
