package rfb

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/rjsadow/vncwatch/internal/transport"
)

// dispatchTimeout is the granularity of cancellation responsiveness:
// every iteration of the session loop blocks on the dispatch byte for
// at most this long before checking the cancellation flag again (§5).
const dispatchTimeout = 50 * time.Millisecond

// UpdateRequester signals the start of a new update request cycle and
// reports the wall-clock time to associate with it. A live session
// sends a FramebufferUpdateRequest and stamps time.Now(); a replayed
// session reads the next recorded timestamp instead of sending
// anything (internal/recorder.Replay).
type UpdateRequester interface {
	RequestUpdate(clip Rectangle) (wallClockSeconds float64, err error)
}

// LiveRequester sends real FramebufferUpdateRequest messages and, if
// Mark is set, calls it first so a recording tee can stamp the
// boundary (§4.2). Limiter, if set, throttles how often requests go
// out — protection against a misbehaving server driving the client
// into a tight request/update spin.
type LiveRequester struct {
	T       transport.Transport
	Mark    func()
	Limiter *rate.Limiter
}

// RequestUpdate implements UpdateRequester for a live connection.
func (r LiveRequester) RequestUpdate(clip Rectangle) (float64, error) {
	if r.Limiter != nil {
		if err := r.Limiter.Wait(context.Background()); err != nil {
			return 0, err
		}
	}
	if r.Mark != nil {
		r.Mark()
	}
	err := SendFramebufferUpdateRequest(r.T, true, clip.X, clip.Y, clip.W, clip.H)
	return float64(time.Now().UnixNano()) / 1e9, err
}

// MessageHandler receives each decoded message. isUpdate is true only
// for FramebufferUpdate messages, which is when the frame ticker
// (internal/frametick) should advance.
type MessageHandler func(wallClockSeconds float64, events []PaintEvent, isUpdate bool) error

// Loop drives the request -> recv -> decode -> emit cycle of §4.6.
type Loop struct {
	T          transport.Transport
	Decoder    *Decoder
	Clip       Rectangle
	Requester  UpdateRequester
	Cancelled  *atomic.Bool
}

// NewLoop builds a Loop with a fresh cancellation flag.
func NewLoop(t transport.Transport, dec *Decoder, clip Rectangle, req UpdateRequester) *Loop {
	return &Loop{T: t, Decoder: dec, Clip: clip, Requester: req, Cancelled: &atomic.Bool{}}
}

// Cancel requests a clean stop. The loop exits at its next dispatch
// check, at most dispatchTimeout later.
func (l *Loop) Cancel() {
	l.Cancelled.Store(true)
}

// Run executes the loop until cancellation, a clean end of stream
// (ErrEndOfStream / ErrConnectionClosed), or a fatal decode error.
// ErrEndOfStream and ErrConnectionClosed are swallowed and reported as a
// nil return, per §7: they are clean terminations, not failures.
func (l *Loop) Run(handler MessageHandler) error {
	wall, err := l.Requester.RequestUpdate(l.Clip)
	if err != nil {
		return err
	}

	for {
		if l.Cancelled.Load() {
			return nil
		}

		b, ok, err := l.T.RecvTimeout(1, dispatchTimeout)
		if err != nil {
			if errors.Is(err, transport.ErrEndOfStream) || errors.Is(err, transport.ErrConnectionClosed) {
				return nil
			}
			return err
		}
		if !ok {
			continue
		}

		events, isUpdate, err := l.Decoder.Dispatch(b[0])
		if handlerErr := handler(wall, events, isUpdate); handlerErr != nil {
			return handlerErr
		}
		if err != nil {
			if errors.Is(err, transport.ErrEndOfStream) || errors.Is(err, transport.ErrConnectionClosed) {
				return nil
			}
			return err
		}

		wall, err = l.Requester.RequestUpdate(l.Clip)
		if err != nil {
			if errors.Is(err, transport.ErrEndOfStream) || errors.Is(err, transport.ErrConnectionClosed) {
				return nil
			}
			return err
		}
	}
}
