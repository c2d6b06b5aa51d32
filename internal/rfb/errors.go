package rfb

import "fmt"

// AuthError is returned when the server rejects the client's credentials
// during the security handshake. It is fatal; the session must not retry
// with the same password.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("rfb: authentication failed: %s", e.Reason)
}

// UnsupportedFormatError is returned when a server pixel format cannot be
// converted: an illegal bits-per-pixel, an out-of-range channel max, or
// overlapping channel bit windows.
type UnsupportedFormatError struct {
	Detail string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("rfb: unsupported pixel format: %s", e.Detail)
}

// UnsupportedEncodingError is returned for CopyRect, ZRLE, Tight, or any
// rectangle encoding tag outside the implemented set.
type UnsupportedEncodingError struct {
	Encoding int32
}

func (e *UnsupportedEncodingError) Error() string {
	return fmt.Sprintf("rfb: unsupported encoding %d", e.Encoding)
}

// ProtocolError reports a malformed message: a bad version string, an
// out-of-range Hextile subencoding byte, an unrecognized message type.
type ProtocolError struct {
	Detail string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("rfb: protocol error: %s", e.Detail)
}
