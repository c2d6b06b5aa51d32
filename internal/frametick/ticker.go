// Package frametick buckets the rectangle decoder's PaintEvents into
// frames at a configured rate, and provides a two-pass variant for
// offline re-encoding of a captured session (§4.7).
package frametick

import (
	"math"

	"github.com/rjsadow/vncwatch/internal/consumer"
	"github.com/rjsadow/vncwatch/internal/rfb"
)

// Ticker implements rfb.MessageHandler. Paint events accumulate in a
// pending buffer between FramebufferUpdates; each update advances a
// frame counter against wall-clock time, emitting enough duplicate
// (no-op) frames to keep the consumer's cadence in lockstep before
// flushing the buffered events as the one real frame.
type Ticker struct {
	Consumer consumer.Consumer
	Rate     float64 // frames per second

	t0      float64
	haveT0  bool
	n       int
	pending []rfb.PaintEvent
}

// New builds a Ticker that paces events to the consumer at rate
// frames/sec.
func New(c consumer.Consumer, rate float64) *Ticker {
	return &Ticker{Consumer: c, Rate: rate}
}

// Handle is an rfb.MessageHandler: the Loop's per-message callback.
func (tk *Ticker) Handle(wallClockSeconds float64, events []rfb.PaintEvent, isUpdate bool) error {
	tk.pending = append(tk.pending, events...)
	if !isUpdate {
		return nil
	}
	return tk.tick(wallClockSeconds)
}

func (tk *Ticker) tick(t float64) error {
	if !tk.haveT0 {
		tk.t0 = t
		tk.haveT0 = true
	}
	target := int(math.Floor((t-tk.t0)*tk.Rate)) + 1

	for i := 0; i < target-1-tk.n; i++ {
		if err := tk.Consumer.UpdateScreen(t); err != nil {
			return err
		}
	}

	if err := tk.flush(); err != nil {
		return err
	}
	if err := tk.Consumer.UpdateScreen(t); err != nil {
		return err
	}
	tk.n = target
	return nil
}

// FrameCount reports how many frames have been emitted so far,
// including duplicates.
func (tk *Ticker) FrameCount() int {
	return tk.n
}

// flush forwards every buffered PaintEvent to the consumer in order,
// then clears the buffer. It does not itself call UpdateScreen: the
// caller owns the frame-boundary call that follows.
func (tk *Ticker) flush() error {
	for _, ev := range tk.pending {
		switch e := ev.(type) {
		case rfb.Pixels:
			if err := tk.Consumer.ProcessPixels(e.X, e.Y, e.W, e.H, e.RGB); err != nil {
				return err
			}
		case rfb.Solid:
			if err := tk.Consumer.ProcessSolid(e.X, e.Y, e.W, e.H, e.R, e.G, e.B); err != nil {
				return err
			}
		case rfb.CursorImage:
			if err := tk.Consumer.ChangeCursor(e.W, e.H, e.HotspotX, e.HotspotY, e.RGBA); err != nil {
				return err
			}
		case rfb.CursorPos:
			if err := tk.Consumer.MoveCursor(e.X, e.Y); err != nil {
				return err
			}
		}
	}
	tk.pending = tk.pending[:0]
	return nil
}
