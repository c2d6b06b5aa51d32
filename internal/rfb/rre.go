package rfb

// decodeRRE implements both RRE (encoding 2, u16 subrect coordinates) and
// CoRRE (encoding 4, u8 subrect coordinates) — §4.5. CoRRE differs only
// in the width of the per-subrect geometry fields.
func (d *Decoder) decodeRRE(r Rectangle, coRRE bool) ([]PaintEvent, error) {
	n, err := d.u32()
	if err != nil {
		return nil, err
	}

	bg, err := d.recv(d.bpp)
	if err != nil {
		return nil, err
	}
	bgR, bgG, bgB := d.cv.ConvertColor1(bg)
	events := []PaintEvent{Solid{X: r.X, Y: r.Y, W: r.W, H: r.H, R: bgR, G: bgG, B: bgB}}

	for i := uint32(0); i < n; i++ {
		fg, err := d.recv(d.bpp)
		if err != nil {
			return events, err
		}
		fgR, fgG, fgB := d.cv.ConvertColor1(fg)

		var sx, sy, sw, sh int
		if coRRE {
			geom, err := d.recv(4)
			if err != nil {
				return events, err
			}
			sx, sy, sw, sh = int(geom[0]), int(geom[1]), int(geom[2]), int(geom[3])
		} else {
			ux, err := d.u16()
			if err != nil {
				return events, err
			}
			uy, err := d.u16()
			if err != nil {
				return events, err
			}
			uw, err := d.u16()
			if err != nil {
				return events, err
			}
			uh, err := d.u16()
			if err != nil {
				return events, err
			}
			sx, sy, sw, sh = int(ux), int(uy), int(uw), int(uh)
		}

		if sw == 0 || sh == 0 {
			continue
		}
		events = append(events, Solid{X: r.X + sx, Y: r.Y + sy, W: sw, H: sh, R: fgR, G: fgG, B: fgB})
	}
	return events, nil
}
