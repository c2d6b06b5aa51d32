package rfb

import (
	"encoding/binary"

	"github.com/rjsadow/vncwatch/internal/transport"
)

// Decoder reads FramebufferUpdate (and other server-to-client) messages
// from a transport and emits PaintEvents in server order. One Decoder is
// built per session, after the pixel format converter is known.
type Decoder struct {
	t   transport.Transport
	bpp int // bytes per pixel in the server's declared format
	cv  *Converter
}

// NewDecoder builds a Decoder over t, using conv to turn raw server
// pixels into canonical RGB. bytesPerPixel is the server's declared
// bits_per_pixel/8, needed to size Raw/Hextile pixel payloads.
func NewDecoder(t transport.Transport, bytesPerPixel int, conv *Converter) *Decoder {
	return &Decoder{t: t, bpp: bytesPerPixel, cv: conv}
}

func (d *Decoder) recv(n int) ([]byte, error) {
	return d.t.Recv(n)
}

func (d *Decoder) u8() (byte, error) {
	b, err := d.recv(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) u16() (uint16, error) {
	b, err := d.recv(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *Decoder) u32() (uint32, error) {
	b, err := d.recv(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *Decoder) i32() (int32, error) {
	v, err := d.u32()
	return int32(v), err
}

// ReadMessage reads and dispatches exactly one server-to-client message.
// It returns the PaintEvents produced (possibly empty, e.g. for Bell) and
// whether the message was a FramebufferUpdate (the session loop uses
// this to know when to emit a frame tick).
func (d *Decoder) ReadMessage() (events []PaintEvent, isUpdate bool, err error) {
	msgType, err := d.u8()
	if err != nil {
		return nil, false, err
	}
	return d.Dispatch(msgType)
}

// Dispatch handles one server-to-client message whose type byte has
// already been read by the caller. The session loop uses this to fold
// its own timeout-aware read of that first byte into the decoder.
func (d *Decoder) Dispatch(msgType byte) (events []PaintEvent, isUpdate bool, err error) {
	switch msgType {
	case msgFramebufferUpdate:
		events, err = d.readFramebufferUpdate()
		return events, true, err
	case msgSetColourMapEntries:
		err = d.skipSetColourMapEntries()
		return nil, false, err
	case msgBell:
		return nil, false, nil
	case msgServerCutText:
		err = d.skipServerCutText()
		return nil, false, err
	default:
		return nil, false, &ProtocolError{Detail: "unknown message type"}
	}
}

func (d *Decoder) readFramebufferUpdate() ([]PaintEvent, error) {
	if _, err := d.u8(); err != nil { // padding
		return nil, err
	}
	nrects, err := d.u16()
	if err != nil {
		return nil, err
	}

	var events []PaintEvent
	for i := uint16(0); i < nrects; i++ {
		rect, err := d.readRectHeader()
		if err != nil {
			return events, err
		}
		rectEvents, err := d.decodeRect(rect)
		events = append(events, rectEvents...)
		if err != nil {
			return events, err
		}
	}
	return events, nil
}

func (d *Decoder) readRectHeader() (Rectangle, error) {
	x, err := d.u16()
	if err != nil {
		return Rectangle{}, err
	}
	y, err := d.u16()
	if err != nil {
		return Rectangle{}, err
	}
	w, err := d.u16()
	if err != nil {
		return Rectangle{}, err
	}
	h, err := d.u16()
	if err != nil {
		return Rectangle{}, err
	}
	enc, err := d.i32()
	if err != nil {
		return Rectangle{}, err
	}
	return Rectangle{X: int(x), Y: int(y), W: int(w), H: int(h), Encoding: enc}, nil
}

func (d *Decoder) decodeRect(r Rectangle) ([]PaintEvent, error) {
	switch r.Encoding {
	case EncodingRaw:
		return d.decodeRaw(r)
	case EncodingRRE:
		return d.decodeRRE(r, false)
	case EncodingCoRRE:
		return d.decodeRRE(r, true)
	case EncodingHextile:
		return d.decodeHextile(r)
	case EncodingRichCursor:
		return d.decodeRichCursor(r)
	case EncodingXCursor:
		return d.decodeXCursor(r)
	case EncodingCursorPos:
		return []PaintEvent{CursorPos{X: r.X, Y: r.Y}}, nil
	case EncodingCopyRect, EncodingZRLE:
		return nil, &UnsupportedEncodingError{Encoding: r.Encoding}
	default:
		return nil, &UnsupportedEncodingError{Encoding: r.Encoding}
	}
}

func (d *Decoder) decodeRaw(r Rectangle) ([]PaintEvent, error) {
	n := r.W * r.H * d.bpp
	data, err := d.recv(n)
	if err != nil {
		return nil, err
	}
	return []PaintEvent{Pixels{X: r.X, Y: r.Y, W: r.W, H: r.H, RGB: d.cv.ConvertPixels(data)}}, nil
}

func (d *Decoder) skipSetColourMapEntries() error {
	if _, err := d.u8(); err != nil { // padding
		return err
	}
	if _, err := d.u16(); err != nil { // first colour
		return err
	}
	n, err := d.u16()
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	_, err = d.recv(6 * int(n))
	return err
}

func (d *Decoder) skipServerCutText() error {
	if _, err := d.recv(3); err != nil { // padding
		return err
	}
	n, err := d.u32()
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	_, err = d.recv(int(n))
	return err
}
