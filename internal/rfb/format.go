package rfb

import (
	"encoding/binary"
	"fmt"
)

// PixelFormat is the server's declared wire pixel layout, taken verbatim
// from ServerInit or a SetPixelFormat negotiation.
type PixelFormat struct {
	BitsPerPixel uint8
	Depth        uint8
	BigEndian    bool
	TrueColor    bool
	RedMax       uint16
	GreenMax     uint16
	BlueMax      uint16
	RedShift     uint8
	GreenShift   uint8
	BlueShift    uint8
}

// Canonical is the client-preferred pixel format: 32bpp, depth 24,
// big-endian, true-color, 8-bit channels left-aligned at byte boundaries.
// Requesting it from the server makes the fast path of Converter an
// identity transform.
var Canonical = PixelFormat{
	BitsPerPixel: 32,
	Depth:        24,
	BigEndian:    true,
	TrueColor:    true,
	RedMax:       255,
	GreenMax:     255,
	BlueMax:      255,
	RedShift:     24,
	GreenShift:   16,
	BlueShift:    8,
}

// Bytes encodes the format as the 16-byte wire representation used by
// ServerInit and SetPixelFormat.
func (pf PixelFormat) Bytes() []byte {
	b := make([]byte, 16)
	b[0] = pf.BitsPerPixel
	b[1] = pf.Depth
	if pf.BigEndian {
		b[2] = 1
	}
	if pf.TrueColor {
		b[3] = 1
	}
	binary.BigEndian.PutUint16(b[4:6], pf.RedMax)
	binary.BigEndian.PutUint16(b[6:8], pf.GreenMax)
	binary.BigEndian.PutUint16(b[8:10], pf.BlueMax)
	b[10] = pf.RedShift
	b[11] = pf.GreenShift
	b[12] = pf.BlueShift
	// b[13:16] padding, left zero
	return b
}

// ParsePixelFormat decodes the 16-byte wire pixel format carried in
// ServerInit.
func ParsePixelFormat(b []byte) (PixelFormat, error) {
	if len(b) != 16 {
		return PixelFormat{}, fmt.Errorf("rfb: pixel format must be 16 bytes, got %d", len(b))
	}
	return PixelFormat{
		BitsPerPixel: b[0],
		Depth:        b[1],
		BigEndian:    b[2] != 0,
		TrueColor:    b[3] != 0,
		RedMax:       binary.BigEndian.Uint16(b[4:6]),
		GreenMax:     binary.BigEndian.Uint16(b[6:8]),
		BlueMax:      binary.BigEndian.Uint16(b[8:10]),
		RedShift:     b[10],
		GreenShift:   b[11],
		BlueShift:    b[12],
	}, nil
}

// Equal reports whether two formats are wire-identical.
func (pf PixelFormat) Equal(other PixelFormat) bool {
	return pf == other
}

// channelBits returns n such that max == 2^n - 1, or 0 if max is not of
// that form. n is at most 8, so 255 is the largest legal max.
func channelBits(max uint16) (int, bool) {
	for n := 1; n <= 8; n++ {
		if max == uint16(1<<uint(n))-1 {
			return n, true
		}
	}
	return 0, false
}

// Validate checks the invariants spec.md §3 requires of a PixelFormat:
// bpp in {8,16,32}, max values of form 2^n-1, and disjoint channel bit
// windows.
func (pf PixelFormat) Validate() error {
	if pf.BitsPerPixel != 8 && pf.BitsPerPixel != 16 && pf.BitsPerPixel != 32 {
		return &UnsupportedFormatError{Detail: fmt.Sprintf("unsupported bits-per-pixel %d", pf.BitsPerPixel)}
	}
	if pf.BitsPerPixel < pf.Depth {
		return &UnsupportedFormatError{Detail: fmt.Sprintf("bits-per-pixel %d smaller than depth %d", pf.BitsPerPixel, pf.Depth)}
	}
	rBits, ok := channelBits(pf.RedMax)
	if !ok {
		return &UnsupportedFormatError{Detail: fmt.Sprintf("red max %d is not 2^n-1", pf.RedMax)}
	}
	gBits, ok := channelBits(pf.GreenMax)
	if !ok {
		return &UnsupportedFormatError{Detail: fmt.Sprintf("green max %d is not 2^n-1", pf.GreenMax)}
	}
	bBits, ok := channelBits(pf.BlueMax)
	if !ok {
		return &UnsupportedFormatError{Detail: fmt.Sprintf("blue max %d is not 2^n-1", pf.BlueMax)}
	}

	windows := []struct {
		lo, hi uint32
	}{
		{uint32(pf.RedShift), uint32(pf.RedShift) + uint32(rBits)},
		{uint32(pf.GreenShift), uint32(pf.GreenShift) + uint32(gBits)},
		{uint32(pf.BlueShift), uint32(pf.BlueShift) + uint32(bBits)},
	}
	for i := 0; i < len(windows); i++ {
		for j := i + 1; j < len(windows); j++ {
			if windows[i].lo < windows[j].hi && windows[j].lo < windows[i].hi {
				return &UnsupportedFormatError{Detail: "overlapping channel bit windows"}
			}
		}
	}
	return nil
}

// Converter turns raw server pixels into canonical 24-bit RGB. Both
// functions are pure and stateless once built; a single Converter is
// built per session, right after ServerInit/SetPixelFormat.
type Converter struct {
	// ConvertPixels turns a rectangle's worth of raw pixel bytes into a
	// flat R,G,B,... byte sequence three times as many bytes wide.
	ConvertPixels func(raw []byte) []byte

	// ConvertColor1 decodes a single pixel's worth of raw bytes into an
	// (r,g,b) triple.
	ConvertColor1 func(raw []byte) (r, g, b byte)
}

// BuildConverter synthesizes a Converter for the given server pixel
// format. If pf already equals Canonical the fast identity path is used.
func BuildConverter(pf PixelFormat) (*Converter, error) {
	if err := pf.Validate(); err != nil {
		return nil, err
	}

	if pf.Equal(Canonical) {
		return &Converter{
			ConvertPixels: identityConvertPixels,
			ConvertColor1: identityConvertColor1,
		}, nil
	}

	bpp := int(pf.BitsPerPixel) / 8
	rBits, _ := channelBits(pf.RedMax)
	gBits, _ := channelBits(pf.GreenMax)
	bBits, _ := channelBits(pf.BlueMax)

	extract := func(p uint32, shift uint8, max uint16, bits int) byte {
		c := (p >> shift) & uint32(max)
		return byte(c << uint(8-bits))
	}

	unpack := func(raw []byte) uint32 {
		switch bpp {
		case 1:
			return uint32(raw[0])
		case 2:
			if pf.BigEndian {
				return uint32(binary.BigEndian.Uint16(raw))
			}
			return uint32(binary.LittleEndian.Uint16(raw))
		default: // 4
			if pf.BigEndian {
				return binary.BigEndian.Uint32(raw)
			}
			return binary.LittleEndian.Uint32(raw)
		}
	}

	color1 := func(raw []byte) (byte, byte, byte) {
		p := unpack(raw)
		return extract(p, pf.RedShift, pf.RedMax, rBits),
			extract(p, pf.GreenShift, pf.GreenMax, gBits),
			extract(p, pf.BlueShift, pf.BlueMax, bBits)
	}

	pixels := func(raw []byte) []byte {
		n := len(raw) / bpp
		out := make([]byte, 0, n*3)
		for i := 0; i < n; i++ {
			r, g, b := color1(raw[i*bpp : i*bpp+bpp])
			out = append(out, r, g, b)
		}
		return out
	}

	return &Converter{ConvertPixels: pixels, ConvertColor1: color1}, nil
}

func identityConvertPixels(raw []byte) []byte {
	n := len(raw) / 4
	out := make([]byte, 0, n*3)
	for i := 0; i < n; i++ {
		// Canonical format is big-endian RGBX with shifts 24/16/8: the
		// first three bytes of each 4-byte pixel are R,G,B already.
		out = append(out, raw[i*4], raw[i*4+1], raw[i*4+2])
	}
	return out
}

func identityConvertColor1(raw []byte) (byte, byte, byte) {
	return raw[0], raw[1], raw[2]
}
