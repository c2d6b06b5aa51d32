package rfb

// maskBit extracts bit i (0 = leftmost) of a row-major, MSB-first,
// byte-padded bitmask where each row is ceil(w/8) bytes wide.
func maskBit(mask []byte, rowBytes, row, col int) bool {
	b := mask[row*rowBytes+col/8]
	return (b>>(7-uint(col&7)))&1 == 1
}

// decodeRichCursor implements the RichCursor pseudo-encoding (−239):
// w*h pixels in the server's format followed by a 1-bit-per-pixel mask,
// each mask row padded up to a byte boundary (§4.5, §8 scenario 6).
func (d *Decoder) decodeRichCursor(r Rectangle) ([]PaintEvent, error) {
	if r.W == 0 || r.H == 0 {
		return []PaintEvent{CursorImage{W: r.W, H: r.H, HotspotX: r.X, HotspotY: r.Y}}, nil
	}

	pixelData, err := d.recv(r.W * r.H * d.bpp)
	if err != nil {
		return nil, err
	}
	rowBytes := (r.W + 7) / 8
	maskData, err := d.recv(rowBytes * r.H)
	if err != nil {
		return nil, err
	}

	rgb := d.cv.ConvertPixels(pixelData)
	rgba := make([]byte, 0, r.W*r.H*4)
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			i := y*r.W + x
			if maskBit(maskData, rowBytes, y, x) {
				rgba = append(rgba, 0xFF, rgb[i*3], rgb[i*3+1], rgb[i*3+2])
			} else {
				rgba = append(rgba, 0, 0, 0, 0)
			}
		}
	}

	return []PaintEvent{CursorImage{W: r.W, H: r.H, HotspotX: r.X, HotspotY: r.Y, RGBA: rgba}}, nil
}

// decodeXCursor implements the XCursor pseudo-encoding (−240): a 3-byte
// foreground RGB, a 3-byte background RGB, then two 1-bpp bit planes
// (data, then mask) each w*h bits, row-padded to a byte boundary.
func (d *Decoder) decodeXCursor(r Rectangle) ([]PaintEvent, error) {
	if r.W == 0 || r.H == 0 {
		return []PaintEvent{CursorImage{W: r.W, H: r.H, HotspotX: r.X, HotspotY: r.Y}}, nil
	}

	fg, err := d.recv(3)
	if err != nil {
		return nil, err
	}
	bg, err := d.recv(3)
	if err != nil {
		return nil, err
	}

	rowBytes := (r.W + 7) / 8
	planeSize := rowBytes * r.H
	dataPlane, err := d.recv(planeSize)
	if err != nil {
		return nil, err
	}
	maskData, err := d.recv(planeSize)
	if err != nil {
		return nil, err
	}

	rgba := make([]byte, 0, r.W*r.H*4)
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			if !maskBit(maskData, rowBytes, y, x) {
				rgba = append(rgba, 0, 0, 0, 0)
				continue
			}
			if maskBit(dataPlane, rowBytes, y, x) {
				rgba = append(rgba, 0xFF, fg[0], fg[1], fg[2])
			} else {
				rgba = append(rgba, 0xFF, bg[0], bg[1], bg[2])
			}
		}
	}

	return []PaintEvent{CursorImage{W: r.W, H: r.H, HotspotX: r.X, HotspotY: r.Y, RGBA: rgba}}, nil
}
