package rfb

import "testing"

// Scenario 4 (§8): a 16x16 tile with c = 0b11111 = 31. Bit 0 (Raw) takes
// precedence over every other bit: the decoder must read a full
// 16*16*4 raw payload and emit nothing else for the tile.
func TestHextileRawShortCircuit(t *testing.T) {
	var msg []byte
	msg = append(msg, byte(31)) // subencoding
	msg = append(msg, make([]byte, 16*16*4)...)

	conv, _ := BuildConverter(Canonical)
	ft := newFakeTransport(msg)
	dec := NewDecoder(ft, 4, conv)

	events, err := dec.decodeHextile(Rectangle{X: 0, Y: 0, W: 16, H: 16, Encoding: EncodingHextile})
	if err != nil {
		t.Fatalf("decodeHextile: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1 (Raw short-circuit)", len(events))
	}
	if _, ok := events[0].(Pixels); !ok {
		t.Fatalf("got %T, want Pixels", events[0])
	}
}

// Scenario 5 (§8), adapted: c = 0x1E (background + foreground + subrects
// + subrects-coloured, no Raw) over a tile large enough to hold both
// packed subrects: background fill, then each coloured subrect in
// order.
func TestHextileSubrectsColoured(t *testing.T) {
	var m []byte
	m = append(m, byte(0x1E))
	m = append(m, 0x10, 0x20, 0x30, 0x00) // bg pixel, 4 bytes
	m = append(m, 0x40, 0x50, 0x60, 0x00) // fg pixel (unused: every subrect is coloured)
	m = append(m, byte(2))                // nsub = 2

	// subrect 1: coloured pixel + packed (xy,wh)
	m = append(m, 0x01, 0x02, 0x03, 0x00) // color1 R=1,G=2,B=3
	m = append(m, 0x00, 0x33)             // xy=0 -> (0,0); wh=0x33 -> (4,4)

	// subrect 2: coloured pixel + packed (xy,wh)
	m = append(m, 0x04, 0x05, 0x06, 0x00) // color2 R=4,G=5,B=6
	m = append(m, 0x44, 0x22)             // xy=0x44 -> (4,4); wh=0x22 -> (3,3)

	conv, _ := BuildConverter(Canonical)
	ft := newFakeTransport(m)
	dec := NewDecoder(ft, 4, conv)

	events, err := dec.decodeHextile(Rectangle{X: 100, Y: 200, W: 7, H: 7, Encoding: EncodingHextile})
	if err != nil {
		t.Fatalf("decodeHextile: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}

	bg := events[0].(Solid)
	if bg.X != 100 || bg.Y != 200 || bg.W != 7 || bg.H != 7 {
		t.Fatalf("bg fill = %+v", bg)
	}
	if bg.R != 0x10 || bg.G != 0x20 || bg.B != 0x30 {
		t.Fatalf("bg color = %v", bg)
	}

	s1 := events[1].(Solid)
	if s1.X != 100 || s1.Y != 200 || s1.W != 4 || s1.H != 4 {
		t.Fatalf("subrect1 = %+v", s1)
	}
	if s1.R != 1 || s1.G != 2 || s1.B != 3 {
		t.Fatalf("subrect1 color = %v", s1)
	}

	s2 := events[2].(Solid)
	if s2.X != 104 || s2.Y != 204 || s2.W != 3 || s2.H != 3 {
		t.Fatalf("subrect2 = %+v", s2)
	}
	if s2.R != 4 || s2.G != 5 || s2.B != 6 {
		t.Fatalf("subrect2 color = %v", s2)
	}
}

// Every Hextile subencoding byte must be < 32 (§8 universal invariant).
func TestHextileSubencodingMustBeBelow32(t *testing.T) {
	conv, _ := BuildConverter(Canonical)
	ft := newFakeTransport([]byte{32})
	dec := NewDecoder(ft, 4, conv)

	_, err := dec.decodeHextile(Rectangle{X: 0, Y: 0, W: 16, H: 16, Encoding: EncodingHextile})
	if err == nil {
		t.Fatal("expected a ProtocolError for subencoding byte 32")
	}
	if _, ok := err.(*ProtocolError); !ok {
		t.Fatalf("got %T, want *ProtocolError", err)
	}
}
