package consumer

import "github.com/rjsadow/vncwatch/internal/rfb"

// Multi fans a single decoded stream out to several consumers at
// once — e.g. a movie.Writer encoding to disk and a monitor.Broadcaster
// serving spectators from the same capture — the same "one writer,
// many sinks" shape as io.MultiWriter.
type Multi []Consumer

// InitScreen calls every consumer and returns the first one's answer:
// all consumers see the same geometry, so they must agree on the clip.
func (m Multi) InitScreen(w, h int, name string) rfb.Rectangle {
	var clip rfb.Rectangle
	for i, c := range m {
		got := c.InitScreen(w, h, name)
		if i == 0 {
			clip = got
		}
	}
	return clip
}

func (m Multi) SetConverter(conv *rfb.Converter) {
	for _, c := range m {
		c.SetConverter(conv)
	}
}

func (m Multi) ProcessPixels(x, y, w, h int, rgb []byte) error {
	for _, c := range m {
		if err := c.ProcessPixels(x, y, w, h, rgb); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) ProcessSolid(x, y, w, h int, r, g, b byte) error {
	for _, c := range m {
		if err := c.ProcessSolid(x, y, w, h, r, g, b); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) ChangeCursor(w, h, hotspotX, hotspotY int, rgba []byte) error {
	for _, c := range m {
		if err := c.ChangeCursor(w, h, hotspotX, hotspotY, rgba); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) MoveCursor(x, y int) error {
	for _, c := range m {
		if err := c.MoveCursor(x, y); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) UpdateScreen(t float64) error {
	for _, c := range m {
		if err := c.UpdateScreen(t); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Close() error {
	var first error
	for _, c := range m {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

var _ Consumer = (Multi)(nil)
