package consumer

import (
	"errors"
	"testing"

	"github.com/rjsadow/vncwatch/internal/rfb"
)

func TestMultiFansOutToEveryConsumer(t *testing.T) {
	a := NewLog(rfb.Rectangle{})
	b := NewLog(rfb.Rectangle{})
	m := Multi{a, b}

	m.InitScreen(100, 80, "test")
	m.ProcessSolid(1, 2, 3, 4, 5, 6, 7)
	m.UpdateScreen(1.5)
	m.Close()

	for _, l := range []*Log{a, b} {
		if len(l.Calls) != 4 {
			t.Fatalf("got %d calls, want 4", len(l.Calls))
		}
		if !l.Closed {
			t.Fatal("expected Close to reach every consumer")
		}
	}
}

type failingConsumer struct{ *Log }

func (f failingConsumer) ProcessSolid(int, int, int, int, byte, byte, byte) error {
	return errors.New("boom")
}

func TestMultiStopsOnFirstError(t *testing.T) {
	ok := NewLog(rfb.Rectangle{})
	bad := failingConsumer{NewLog(rfb.Rectangle{})}
	after := NewLog(rfb.Rectangle{})
	m := Multi{ok, bad, after}

	err := m.ProcessSolid(0, 0, 1, 1, 0, 0, 0)
	if err == nil {
		t.Fatal("expected an error from the failing consumer")
	}
	if len(after.Calls) != 0 {
		t.Fatal("a consumer after the failing one must not be called")
	}
}
