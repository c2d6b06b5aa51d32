package rfb

// Hextile subencoding flag bits (§4.5).
const (
	hextileRaw             = 1 << 0
	hextileBackgroundSpec  = 1 << 1
	hextileForegroundSpec  = 1 << 2
	hextileAnySubrects     = 1 << 3
	hextileSubrectsColored = 1 << 4
)

// decodeHextile walks a rectangle tile-by-tile, 16x16 pixels at a time,
// row-major. Background and foreground colors persist across tiles of
// the same rectangle until a tile's subencoding byte declares fresh
// ones — this is why bg/fg live outside the per-tile loop.
func (d *Decoder) decodeHextile(r Rectangle) ([]PaintEvent, error) {
	var events []PaintEvent
	var bgR, bgG, bgB byte
	var fgR, fgG, fgB byte

	for ty := 0; ty < r.H; ty += 16 {
		th := 16
		if r.H-ty < 16 {
			th = r.H - ty
		}
		for tx := 0; tx < r.W; tx += 16 {
			tw := 16
			if r.W-tx < 16 {
				tw = r.W - tx
			}

			c, err := d.u8()
			if err != nil {
				return events, err
			}
			if c >= 32 {
				return events, &ProtocolError{Detail: "hextile subencoding byte out of range"}
			}

			originX, originY := r.X+tx, r.Y+ty

			if c&hextileRaw != 0 {
				data, err := d.recv(tw * th * d.bpp)
				if err != nil {
					return events, err
				}
				events = append(events, Pixels{X: originX, Y: originY, W: tw, H: th, RGB: d.cv.ConvertPixels(data)})
				continue
			}

			if c&hextileBackgroundSpec != 0 {
				raw, err := d.recv(d.bpp)
				if err != nil {
					return events, err
				}
				bgR, bgG, bgB = d.cv.ConvertColor1(raw)
			}
			if c&hextileForegroundSpec != 0 {
				raw, err := d.recv(d.bpp)
				if err != nil {
					return events, err
				}
				fgR, fgG, fgB = d.cv.ConvertColor1(raw)
			}

			events = append(events, Solid{X: originX, Y: originY, W: tw, H: th, R: bgR, G: bgG, B: bgB})

			if c&hextileAnySubrects == 0 {
				continue
			}

			nsub, err := d.u8()
			if err != nil {
				return events, err
			}

			for i := byte(0); i < nsub; i++ {
				subR, subG, subB := fgR, fgG, fgB
				if c&hextileSubrectsColored != 0 {
					raw, err := d.recv(d.bpp)
					if err != nil {
						return events, err
					}
					subR, subG, subB = d.cv.ConvertColor1(raw)
				}

				xy, err := d.u8()
				if err != nil {
					return events, err
				}
				wh, err := d.u8()
				if err != nil {
					return events, err
				}

				sx := int(xy >> 4)
				sy := int(xy & 0x0f)
				sw := int(wh>>4) + 1
				sh := int(wh&0x0f) + 1

				events = append(events, Solid{X: originX + sx, Y: originY + sy, W: sw, H: sh, R: subR, G: subG, B: subB})
			}
		}
	}
	return events, nil
}
