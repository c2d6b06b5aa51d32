package rfb

// Encoding tags recognized on the wire. Only the encodings named in
// spec.md §3 are implemented; CopyRect and ZRLE are recognized so they
// can fail with a precise UnsupportedEncodingError instead of a generic
// protocol error.
const (
	EncodingRaw         int32 = 0
	EncodingCopyRect    int32 = 1
	EncodingRRE         int32 = 2
	EncodingCoRRE       int32 = 4
	EncodingHextile     int32 = 5
	EncodingZRLE        int32 = 16
	EncodingCursorPos   int32 = -232
	EncodingRichCursor  int32 = -239
	EncodingXCursor     int32 = -240
)

// Server-to-client message types (§4.5).
const (
	msgFramebufferUpdate   byte = 0
	msgSetColourMapEntries byte = 1
	msgBell                byte = 2
	msgServerCutText       byte = 3
)

// Rectangle is a server-update region header: position, size, and the
// encoding tag describing how its payload is laid out.
type Rectangle struct {
	X, Y, W, H int
	Encoding   int32
}
