package rfb

import "testing"

// bell builds a single-byte Bell message.
func bell() []byte { return []byte{msgBell} }

// cutText builds a ServerCutText message with an empty payload.
func cutText() []byte {
	return []byte{msgServerCutText, 0, 0, 0, 0, 0, 0, 0}
}

// emptyUpdate builds a FramebufferUpdate with zero rectangles.
func emptyUpdate() []byte {
	return []byte{msgFramebufferUpdate, 0, 0, 0}
}

// TestLoopResendsAfterEveryMessage verifies that a fresh
// FramebufferUpdateRequest goes out after every dispatched message, not
// only after a FramebufferUpdate — Bell and ServerCutText must each
// trigger a resend too (§4.6).
func TestLoopResendsAfterEveryMessage(t *testing.T) {
	var stream []byte
	stream = append(stream, bell()...)
	stream = append(stream, cutText()...)
	stream = append(stream, emptyUpdate()...)
	stream = append(stream, bell()...)

	conv, err := BuildConverter(Canonical)
	if err != nil {
		t.Fatalf("BuildConverter: %v", err)
	}
	ft := newFakeTransport(stream)
	dec := NewDecoder(ft, int(Canonical.BitsPerPixel)/8, conv)
	loop := NewLoop(ft, dec, Rectangle{W: 100, H: 80}, LiveRequester{T: ft})

	var isUpdates []bool
	err = loop.Run(func(_ float64, _ []PaintEvent, isUpdate bool) error {
		isUpdates = append(isUpdates, isUpdate)
		return nil
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	wantIsUpdates := []bool{false, false, true, false}
	if len(isUpdates) != len(wantIsUpdates) {
		t.Fatalf("got %d dispatched messages, want %d", len(isUpdates), len(wantIsUpdates))
	}
	for i, want := range wantIsUpdates {
		if isUpdates[i] != want {
			t.Errorf("message %d: isUpdate = %v, want %v", i, isUpdates[i], want)
		}
	}

	const requestSize = 10
	wantRequests := 1 + len(wantIsUpdates) // initial request plus one after each message
	if ft.Sent.Len() != requestSize*wantRequests {
		t.Errorf("sent %d bytes of requests, want %d (%d requests)",
			ft.Sent.Len(), requestSize*wantRequests, wantRequests)
	}
}

// TestLoopStopsOnCancel verifies Cancel causes Run to return promptly
// without requiring the stream to end.
func TestLoopStopsOnCancel(t *testing.T) {
	conv, convErr := BuildConverter(Canonical)
	if convErr != nil {
		t.Fatalf("BuildConverter: %v", convErr)
	}
	ft := newFakeTransport(nil)
	dec := NewDecoder(ft, int(Canonical.BitsPerPixel)/8, conv)
	loop := NewLoop(ft, dec, Rectangle{W: 10, H: 10}, LiveRequester{T: ft})
	loop.Cancel()

	err := loop.Run(func(_ float64, _ []PaintEvent, _ bool) error {
		t.Fatal("handler should not be called once cancelled before the first dispatch")
		return nil
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}
