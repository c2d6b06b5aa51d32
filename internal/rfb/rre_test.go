package rfb

import "testing"

func TestDecodeRRE(t *testing.T) {
	var m []byte
	m = append(m, u32be(1)...)           // nsub = 1
	m = append(m, 0x10, 0x20, 0x30, 0x00) // background
	m = append(m, 0x40, 0x50, 0x60, 0x00) // subrect foreground
	m = append(m, u16be(2)...)           // x
	m = append(m, u16be(3)...)           // y
	m = append(m, u16be(5)...)           // w
	m = append(m, u16be(6)...)           // h

	conv, _ := BuildConverter(Canonical)
	ft := newFakeTransport(m)
	dec := NewDecoder(ft, 4, conv)

	events, err := dec.decodeRRE(Rectangle{X: 100, Y: 200, W: 50, H: 50}, false)
	if err != nil {
		t.Fatalf("decodeRRE: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	bg := events[0].(Solid)
	if bg.X != 100 || bg.Y != 200 || bg.W != 50 || bg.H != 50 {
		t.Fatalf("bg fill = %+v", bg)
	}
	sub := events[1].(Solid)
	if sub.X != 102 || sub.Y != 203 || sub.W != 5 || sub.H != 6 {
		t.Fatalf("subrect = %+v", sub)
	}
	if sub.R != 0x40 || sub.G != 0x50 || sub.B != 0x60 {
		t.Fatalf("subrect color = %v", sub)
	}
}

func TestDecodeCoRRE(t *testing.T) {
	var m []byte
	m = append(m, u32be(1)...)           // nsub = 1
	m = append(m, 0x01, 0x02, 0x03, 0x00) // background
	m = append(m, 0x0A, 0x0B, 0x0C, 0x00) // subrect foreground
	m = append(m, byte(2), byte(3), byte(5), byte(6)) // x,y,w,h (1 byte each)

	conv, _ := BuildConverter(Canonical)
	ft := newFakeTransport(m)
	dec := NewDecoder(ft, 4, conv)

	events, err := dec.decodeRRE(Rectangle{X: 0, Y: 0, W: 50, H: 50}, true)
	if err != nil {
		t.Fatalf("decodeRRE (CoRRE): %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	sub := events[1].(Solid)
	if sub.X != 2 || sub.Y != 3 || sub.W != 5 || sub.H != 6 {
		t.Fatalf("subrect = %+v", sub)
	}
}

func TestDecodeRRESkipsZeroSizedSubrects(t *testing.T) {
	var m []byte
	m = append(m, u32be(1)...)
	m = append(m, 0x00, 0x00, 0x00, 0x00) // background
	m = append(m, 0x00, 0x00, 0x00, 0x00) // subrect foreground
	m = append(m, u16be(0)...)
	m = append(m, u16be(0)...)
	m = append(m, u16be(0)...) // w=0
	m = append(m, u16be(4)...)

	conv, _ := BuildConverter(Canonical)
	ft := newFakeTransport(m)
	dec := NewDecoder(ft, 4, conv)

	events, err := dec.decodeRRE(Rectangle{X: 0, Y: 0, W: 10, H: 10}, false)
	if err != nil {
		t.Fatalf("decodeRRE: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1 (zero-width subrect skipped)", len(events))
	}
}

func TestUnsupportedEncodings(t *testing.T) {
	conv, _ := BuildConverter(Canonical)
	for _, enc := range []int32{EncodingCopyRect, EncodingZRLE} {
		ft := newFakeTransport(nil)
		dec := NewDecoder(ft, 4, conv)
		_, err := dec.decodeRect(Rectangle{W: 1, H: 1, Encoding: enc})
		ue, ok := err.(*UnsupportedEncodingError)
		if !ok {
			t.Fatalf("encoding %d: got %T, want *UnsupportedEncodingError", enc, err)
		}
		if ue.Encoding != enc {
			t.Fatalf("encoding %d: got %d in error", enc, ue.Encoding)
		}
	}
}
