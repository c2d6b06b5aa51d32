package rfb

import (
	"errors"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/rjsadow/vncwatch/internal/transport"
)

// Dialer opens a fresh Transport, used both for the initial connection
// and for reconnect attempts.
type Dialer func() (transport.Transport, error)

// ClientOptions configures a Client's connect/reconnect/decode behavior.
type ClientOptions struct {
	Handshake HandshakeOptions
	Clip      *Rectangle // nil selects the full screen reported by ServerInit
	Reconnect int        // number of reconnect attempts after a transport error; 0 disables reconnection
	Logger    *slog.Logger

	// RequestRate caps FramebufferUpdateRequest cadence (requests/sec);
	// zero leaves requests unthrottled.
	RequestRate rate.Limit
	RequestBurst int
}

// Client owns a single VNC session's lifecycle: dial, handshake, run
// the decode loop, and (per ClientOptions.Reconnect) retry on transport
// failure. It is not safe for concurrent use from more than one
// goroutine (§5).
type Client struct {
	dial      Dialer
	opts      ClientOptions
	cancelled atomic.Bool
	current   transport.Transport
}

// NewClient builds a Client that dials connections with dial.
func NewClient(dial Dialer, opts ClientOptions) *Client {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{dial: dial, opts: opts}
}

// Close shuts down the in-flight transport, if any, causing the current
// Run call to exit after its next dispatch check.
func (c *Client) Close() error {
	c.cancelled.Store(true)
	if c.current != nil {
		return c.current.Close()
	}
	return nil
}

// Run connects, handshakes, and drives the decode loop until
// cancellation, a clean end of stream, or reconnect attempts are
// exhausted. onSession is called once per successful handshake (live
// reconnects call it again for the new Session); handler receives every
// decoded message as in Loop.Run.
func (c *Client) Run(onSession func(*Session), handler MessageHandler) error {
	isTransportErr := func(err error) bool {
		var netErr net.Error
		return errors.Is(err, transport.ErrConnectionClosed) || errors.As(err, &netErr)
	}
	attempt := 0
	for {
		if c.cancelled.Load() {
			return nil
		}

		t, err := c.dial()
		if err != nil {
			return err
		}
		c.current = t

		sess, err := Handshake(t, c.opts.Handshake)
		if err != nil {
			t.Close()
			if !isTransportErr(err) {
				return err // AuthError and protocol/format errors are fatal, no retry
			}
			if attempt >= c.opts.Reconnect {
				return err
			}
			attempt++
			c.opts.Logger.Warn("handshake failed, retrying", "attempt", attempt, "error", err)
			time.Sleep(time.Second)
			continue
		}
		attempt = 0

		if onSession != nil {
			onSession(sess)
		}

		clip := Rectangle{X: 0, Y: 0, W: sess.ScreenW, H: sess.ScreenH}
		if c.opts.Clip != nil {
			clip = *c.opts.Clip
		}

		var limiter *rate.Limiter
		if c.opts.RequestRate > 0 {
			limiter = rate.NewLimiter(c.opts.RequestRate, c.opts.RequestBurst)
		}

		dec := NewDecoder(t, sess.BytesPerPixel, sess.Converter)
		loop := NewLoop(t, dec, clip, LiveRequester{T: t, Limiter: limiter})
		runErr := loop.Run(handler)
		t.Close()

		if runErr == nil {
			return nil
		}
		if c.cancelled.Load() {
			return nil
		}
		if !isTransportErr(runErr) || attempt >= c.opts.Reconnect {
			return runErr
		}
		attempt++
		c.opts.Logger.Warn("session loop failed, reconnecting", "attempt", attempt, "error", runErr)
		time.Sleep(time.Second)
	}
}
