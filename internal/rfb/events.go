package rfb

// PaintEvent is one framebuffer-mutation instruction emitted by the
// rectangle decoder, in the order the server described them. Consumers
// (internal/consumer) type-switch on the concrete type.
type PaintEvent interface {
	isPaintEvent()
}

// Pixels is an opaque rectangle blit: w*h pixels, each already converted
// to canonical RGB, laid out row-major as R,G,B,R,G,B,...
type Pixels struct {
	X, Y, W, H int
	RGB        []byte
}

func (Pixels) isPaintEvent() {}

// Solid is a single-color fill over a rectangle.
type Solid struct {
	X, Y, W, H int
	R, G, B    byte
}

func (Solid) isPaintEvent() {}

// CursorImage replaces the cursor sprite. RGBA is premultiplied alpha:
// opaque pixels carry (0xFF, R, G, B); masked-out pixels are all zero.
// HotspotX/Y locate the click point within the WxH image.
type CursorImage struct {
	W, H             int
	HotspotX, HotspotY int
	RGBA             []byte
}

func (CursorImage) isPaintEvent() {}

// CursorPos moves the cursor to (X, Y) in screen coordinates without
// changing its image.
type CursorPos struct {
	X, Y int
}

func (CursorPos) isPaintEvent() {}
