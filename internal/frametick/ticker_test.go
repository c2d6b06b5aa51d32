package frametick

import (
	"testing"

	"github.com/rjsadow/vncwatch/internal/consumer"
	"github.com/rjsadow/vncwatch/internal/rfb"
)

func TestTickerFirstUpdateEmitsNoDuplicates(t *testing.T) {
	c := consumer.NewLog(rfb.Rectangle{})
	tk := New(c, 10)

	px := rfb.Pixels{X: 0, Y: 0, W: 1, H: 1, RGB: []byte{1, 2, 3}}
	if err := tk.Handle(100.0, []rfb.PaintEvent{px}, true); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	var updates, pixelCalls int
	for _, call := range c.Calls {
		switch call.Kind {
		case consumer.CallUpdateScreen:
			updates++
		case consumer.CallProcessPixels:
			pixelCalls++
		}
	}
	if updates != 1 {
		t.Fatalf("got %d UpdateScreen calls, want 1 (no duplicates on the first tick)", updates)
	}
	if pixelCalls != 1 {
		t.Fatalf("got %d ProcessPixels calls, want 1", pixelCalls)
	}
}

func TestTickerEmitsDuplicatesForElapsedTime(t *testing.T) {
	c := consumer.NewLog(rfb.Rectangle{})
	tk := New(c, 10) // 10 fps -> 0.1s per frame

	if err := tk.Handle(100.0, nil, true); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	// 0.35s later: target = floor(0.35*10)+1 = 4, n was 1, so 2 duplicates then 1 real frame.
	px := rfb.Pixels{X: 5, Y: 5, W: 1, H: 1, RGB: []byte{9, 9, 9}}
	if err := tk.Handle(100.35, []rfb.PaintEvent{px}, true); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	var updates int
	for _, call := range c.Calls {
		if call.Kind == consumer.CallUpdateScreen {
			updates++
		}
	}
	if updates != 1+3 {
		t.Fatalf("got %d UpdateScreen calls, want 4 (1 + 2 duplicates + 1 real)", updates)
	}
	if tk.n != 4 {
		t.Fatalf("got n=%d, want 4", tk.n)
	}
}

func TestTickerBuffersAcrossNonUpdateMessages(t *testing.T) {
	c := consumer.NewLog(rfb.Rectangle{})
	tk := New(c, 10)

	// Bell (isUpdate=false) must not flush or tick.
	if err := tk.Handle(50.0, nil, false); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(c.Calls) != 0 {
		t.Fatalf("non-update message should not call the consumer, got %d calls", len(c.Calls))
	}
}
