// Package consumer defines the downstream contract the rectangle
// decoder and frame ticker drive: a frame encoder, movie writer, or
// spectator feed that wants canonical RGB blits and frame boundaries
// rather than raw RFB bytes (§6).
package consumer

import "github.com/rjsadow/vncwatch/internal/rfb"

// Consumer receives a decoded, frame-paced view of a VNC session. It
// corresponds one-to-one with the external consumer contract: init once,
// learn the converter once, then a stream of blits/fills/cursor changes
// punctuated by frame boundaries, ending in exactly one Close.
type Consumer interface {
	// InitScreen is called once after handshake with the server's
	// reported geometry and title; it returns the clipping rectangle the
	// caller should actually request (a Consumer may narrow it, e.g. to
	// crop a fixed region for recording).
	InitScreen(w, h int, name string) rfb.Rectangle

	// SetConverter is called once after pixel-format negotiation.
	SetConverter(conv *rfb.Converter)

	// ProcessPixels delivers an opaque blit, already canonical RGB.
	ProcessPixels(x, y, w, h int, rgb []byte) error

	// ProcessSolid delivers a single-color fill.
	ProcessSolid(x, y, w, h int, r, g, b byte) error

	// ChangeCursor replaces the cursor sprite. hotspotX/Y locate the
	// click point within the w x h image (§9: the contract must carry
	// the hotspot, resolving the spec's open question on this call's
	// signature).
	ChangeCursor(w, h, hotspotX, hotspotY int, rgba []byte) error

	// MoveCursor repositions the cursor without changing its image.
	MoveCursor(x, y int) error

	// UpdateScreen marks a frame boundary at wall-clock t (seconds).
	UpdateScreen(t float64) error

	// Close releases any resources. Called exactly once, whether the
	// session ended cleanly or with an error.
	Close() error
}
