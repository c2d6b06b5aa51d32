package catalog

import (
	"log/slog"
	"time"

	"github.com/rjsadow/vncwatch/internal/capturestore"
)

// Cleaner periodically removes expired captures from storage and the
// catalog database.
type Cleaner struct {
	db            *DB
	store         capturestore.CaptureStore
	retentionDays int
	interval      time.Duration
	stopCh        chan struct{}
}

// NewCleaner creates a Cleaner that deletes captures completed more
// than retentionDays ago. If retentionDays is 0, Start does nothing.
func NewCleaner(db *DB, store capturestore.CaptureStore, retentionDays int) *Cleaner {
	return &Cleaner{
		db:            db,
		store:         store,
		retentionDays: retentionDays,
		interval:      1 * time.Hour,
		stopCh:        make(chan struct{}),
	}
}

// Start launches the cleanup goroutine. It returns immediately.
func (c *Cleaner) Start() {
	if c.retentionDays <= 0 {
		return
	}
	go c.loop()
}

// Stop signals the cleanup goroutine to exit.
func (c *Cleaner) Stop() {
	close(c.stopCh)
}

func (c *Cleaner) loop() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.run()
		case <-c.stopCh:
			return
		}
	}
}

func (c *Cleaner) run() {
	if c.retentionDays <= 0 {
		return
	}
	cutoff := time.Now().Add(-time.Duration(c.retentionDays) * 24 * time.Hour)
	expired, err := c.db.ListExpiredCaptures(cutoff)
	if err != nil {
		slog.Warn("catalog cleanup: failed to list expired captures", "error", err)
		return
	}

	for _, rec := range expired {
		if rec.StoragePath != "" {
			if err := c.store.Delete(rec.StoragePath); err != nil {
				slog.Warn("catalog cleanup: failed to delete capture file",
					"capture_id", rec.ID, "storage_path", rec.StoragePath, "error", err)
			}
		}
		if rec.MoviePath != "" {
			if err := c.store.Delete(rec.MoviePath); err != nil {
				slog.Warn("catalog cleanup: failed to delete movie file",
					"capture_id", rec.ID, "movie_path", rec.MoviePath, "error", err)
			}
		}

		if err := c.db.DeleteCapture(rec.ID); err != nil {
			slog.Warn("catalog cleanup: failed to delete catalog row", "capture_id", rec.ID, "error", err)
			continue
		}

		slog.Info("catalog cleanup: deleted expired capture",
			"capture_id", rec.ID, "completed_at", rec.CompletedAt)
	}
}
