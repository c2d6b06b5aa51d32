package catalog

import (
	"os"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "catalog-test-*.db")
	if err != nil {
		t.Fatalf("create temp: %v", err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateAndGetCapture(t *testing.T) {
	db := openTestDB(t)

	c := Capture{ID: "cap-1", Host: "10.0.0.5:5900", ScreenW: 1024, ScreenH: 768}
	if err := db.CreateCapture(c); err != nil {
		t.Fatalf("CreateCapture: %v", err)
	}

	got, err := db.GetCapture("cap-1")
	if err != nil {
		t.Fatalf("GetCapture: %v", err)
	}
	if got == nil {
		t.Fatal("expected a capture, got nil")
	}
	if got.Host != "10.0.0.5:5900" || got.ScreenW != 1024 {
		t.Fatalf("got %+v", got)
	}
}

func TestGetCaptureMissingReturnsNil(t *testing.T) {
	db := openTestDB(t)
	got, err := db.GetCapture("does-not-exist")
	if err != nil {
		t.Fatalf("GetCapture: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestUpdateCaptureCompletion(t *testing.T) {
	db := openTestDB(t)
	if err := db.CreateCapture(Capture{ID: "cap-2", Host: "h"}); err != nil {
		t.Fatalf("CreateCapture: %v", err)
	}

	done := time.Now().Truncate(time.Second)
	if err := db.UpdateCaptureCompletion("cap-2", done, 42, "2026/07/cap-2.vnclog", "2026/07/cap-2.mp4"); err != nil {
		t.Fatalf("UpdateCaptureCompletion: %v", err)
	}

	got, err := db.GetCapture("cap-2")
	if err != nil {
		t.Fatalf("GetCapture: %v", err)
	}
	if got.FrameCount != 42 || got.StoragePath != "2026/07/cap-2.vnclog" {
		t.Fatalf("got %+v", got)
	}
}

func TestListCapturesOrdersMostRecentFirst(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().Truncate(time.Second)
	if err := db.CreateCapture(Capture{ID: "older", Host: "h", StartedAt: now.Add(-time.Hour)}); err != nil {
		t.Fatalf("CreateCapture: %v", err)
	}
	if err := db.CreateCapture(Capture{ID: "newer", Host: "h", StartedAt: now}); err != nil {
		t.Fatalf("CreateCapture: %v", err)
	}

	list, err := db.ListCaptures()
	if err != nil {
		t.Fatalf("ListCaptures: %v", err)
	}
	if len(list) != 2 || list[0].ID != "newer" {
		t.Fatalf("got %+v", list)
	}
}

func TestListExpiredCapturesExcludesIncomplete(t *testing.T) {
	db := openTestDB(t)
	if err := db.CreateCapture(Capture{ID: "in-progress", Host: "h"}); err != nil {
		t.Fatalf("CreateCapture: %v", err)
	}

	expired, err := db.ListExpiredCaptures(time.Now())
	if err != nil {
		t.Fatalf("ListExpiredCaptures: %v", err)
	}
	for _, c := range expired {
		if c.ID == "in-progress" {
			t.Fatal("a capture with zero CompletedAt must never be treated as expired")
		}
	}
}

func TestDeleteCapture(t *testing.T) {
	db := openTestDB(t)
	if err := db.CreateCapture(Capture{ID: "to-delete", Host: "h"}); err != nil {
		t.Fatalf("CreateCapture: %v", err)
	}
	if err := db.DeleteCapture("to-delete"); err != nil {
		t.Fatalf("DeleteCapture: %v", err)
	}
	got, err := db.GetCapture("to-delete")
	if err != nil {
		t.Fatalf("GetCapture: %v", err)
	}
	if got != nil {
		t.Fatal("expected capture to be gone after DeleteCapture")
	}
}
