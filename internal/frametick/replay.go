package frametick

import (
	"math"

	"github.com/rjsadow/vncwatch/internal/rfb"
	"github.com/rjsadow/vncwatch/internal/transport"
)

// FrameEntry is one output frame's byte range in a capture file. End of
// -1 means the frame carries no new bytes: it duplicates the previous
// frame's rendered content (§3, FrameIndex).
type FrameEntry struct {
	Begin int64
	End   int64
}

// FrameIndex maps output frame number to byte range, built by a Scanner
// and consumed by a Renderer for random-access re-rendering of a
// capture file.
type FrameIndex []FrameEntry

// Scanner is an rfb.MessageHandler that runs the session loop over a
// seekable replay transport with event emission disabled, recording one
// FrameEntry per frame tick instead of touching a Consumer at all. This
// is pass 1 of the two-pass replay (§4.7).
type Scanner struct {
	Seek transport.Seekable
	Rate float64

	t0         float64
	haveT0     bool
	n          int
	lastOffset int64
	started    bool
	Index      FrameIndex
}

// NewScanner builds a Scanner over seek at the given frame rate.
func NewScanner(seek transport.Seekable, rate float64) *Scanner {
	return &Scanner{Seek: seek, Rate: rate}
}

// Handle implements rfb.MessageHandler.
func (s *Scanner) Handle(wallClockSeconds float64, _ []rfb.PaintEvent, isUpdate bool) error {
	if !isUpdate {
		return nil
	}
	if !s.started {
		pos, err := s.Seek.Tell()
		if err != nil {
			return err
		}
		s.lastOffset = pos
		s.started = true
	}
	if !s.haveT0 {
		s.t0 = wallClockSeconds
		s.haveT0 = true
	}
	target := int(math.Floor((wallClockSeconds-s.t0)*s.Rate)) + 1

	for i := 0; i < target-1-s.n; i++ {
		s.Index = append(s.Index, FrameEntry{Begin: s.lastOffset, End: -1})
	}

	pos, err := s.Seek.Tell()
	if err != nil {
		return err
	}
	s.Index = append(s.Index, FrameEntry{Begin: s.lastOffset, End: pos})
	s.lastOffset = pos
	s.n = target
	return nil
}

// Renderer is pass 2 of the two-pass replay: given a FrameIndex built by
// a Scanner over the same capture file, it seeks to each entry's Begin,
// decodes forward to End (or, for a duplicate entry, renders nothing
// new), and emits exactly one frame per entry to a Consumer-backed
// Ticker.
//
// Renderer does not itself decode messages: it is driven externally by
// a caller that, for each FrameEntry, seeks the transport to Begin and
// runs the decode loop until the read cursor reaches End (skipped
// entirely when End == -1), then calls Tick to flush whatever the
// Ticker buffered plus emit the frame boundary.
type Renderer struct {
	Ticker *Ticker
}

// NewRenderer builds a Renderer that drives t for each rendered frame.
func NewRenderer(t *Ticker) *Renderer {
	return &Renderer{Ticker: t}
}

// RenderDuplicate emits one duplicate frame: no new events, just a
// frame-boundary call to the consumer, reusing whatever content is
// already on screen.
func (r *Renderer) RenderDuplicate(wallClockSeconds float64) error {
	return r.Ticker.Consumer.UpdateScreen(wallClockSeconds)
}

// RenderReal flushes the Ticker's buffered events (accumulated by the
// caller feeding decoded messages through Ticker.Handle up to the
// entry's End offset) and emits the frame boundary.
func (r *Renderer) RenderReal(wallClockSeconds float64) error {
	if err := r.Ticker.flush(); err != nil {
		return err
	}
	return r.Ticker.Consumer.UpdateScreen(wallClockSeconds)
}
