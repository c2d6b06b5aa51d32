package consumer

import "github.com/rjsadow/vncwatch/internal/rfb"

// CallKind identifies which Consumer method produced a logged Call.
type CallKind string

const (
	CallInitScreen    CallKind = "init_screen"
	CallSetConverter  CallKind = "set_converter"
	CallProcessPixels CallKind = "process_pixels"
	CallProcessSolid  CallKind = "process_solid"
	CallChangeCursor  CallKind = "change_cursor"
	CallMoveCursor    CallKind = "move_cursor"
	CallUpdateScreen  CallKind = "update_screen"
	CallClose         CallKind = "close"
)

// Call is one recorded Consumer invocation, kept generic enough for
// tests to assert on ordering and geometry without caring about pixel
// content.
type Call struct {
	Kind                   CallKind
	X, Y, W, H             int
	R, G, B                byte
	RGBLen, RGBALen        int
	HotspotX, HotspotY     int
	WallClockSeconds       float64
}

// Log is a Consumer that records every call instead of rendering
// anything — the reference implementation used by tests, and a
// starting point for a real encoder or movie writer
// (internal/movie.Writer wraps the same interface with an ffmpeg
// subprocess instead of a slice).
type Log struct {
	ScreenW, ScreenH int
	ScreenName       string
	Clip             rfb.Rectangle
	Converter        *rfb.Converter
	Calls            []Call
	Closed           bool
}

// NewLog builds a Log consumer that requests clip as its clipping
// rectangle from InitScreen (the zero Rectangle selects the full
// screen).
func NewLog(clip rfb.Rectangle) *Log {
	return &Log{Clip: clip}
}

func (l *Log) InitScreen(w, h int, name string) rfb.Rectangle {
	l.ScreenW, l.ScreenH, l.ScreenName = w, h, name
	l.Calls = append(l.Calls, Call{Kind: CallInitScreen, W: w, H: h})
	if l.Clip.W == 0 && l.Clip.H == 0 {
		return rfb.Rectangle{X: 0, Y: 0, W: w, H: h}
	}
	return l.Clip
}

func (l *Log) SetConverter(conv *rfb.Converter) {
	l.Converter = conv
	l.Calls = append(l.Calls, Call{Kind: CallSetConverter})
}

func (l *Log) ProcessPixels(x, y, w, h int, rgb []byte) error {
	l.Calls = append(l.Calls, Call{Kind: CallProcessPixels, X: x, Y: y, W: w, H: h, RGBLen: len(rgb)})
	return nil
}

func (l *Log) ProcessSolid(x, y, w, h int, r, g, b byte) error {
	l.Calls = append(l.Calls, Call{Kind: CallProcessSolid, X: x, Y: y, W: w, H: h, R: r, G: g, B: b})
	return nil
}

func (l *Log) ChangeCursor(w, h, hotspotX, hotspotY int, rgba []byte) error {
	l.Calls = append(l.Calls, Call{Kind: CallChangeCursor, W: w, H: h, HotspotX: hotspotX, HotspotY: hotspotY, RGBALen: len(rgba)})
	return nil
}

func (l *Log) MoveCursor(x, y int) error {
	l.Calls = append(l.Calls, Call{Kind: CallMoveCursor, X: x, Y: y})
	return nil
}

func (l *Log) UpdateScreen(t float64) error {
	l.Calls = append(l.Calls, Call{Kind: CallUpdateScreen, WallClockSeconds: t})
	return nil
}

func (l *Log) Close() error {
	l.Closed = true
	l.Calls = append(l.Calls, Call{Kind: CallClose})
	return nil
}

var _ Consumer = (*Log)(nil)
