// Package catalog records metadata about finished captures — one row
// per capture session, queryable by the `list`/`show` CLI commands —
// in a single embedded sqlite file via bun. Unlike the application
// database it's generalized from, the catalog has one fixed schema
// and no migration runner: CREATE TABLE IF NOT EXISTS is enough for a
// single-table, single-tenant store that only ever grows one way.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "modernc.org/sqlite"
)

func ctx() context.Context { return context.Background() }

// Capture is one row recorded per capture session.
type Capture struct {
	bun.BaseModel `bun:"table:captures"`

	ID          string    `json:"id" bun:"id,pk"`
	Host        string    `json:"host" bun:"host"`
	StartedAt   time.Time `json:"started_at" bun:"started_at,nullzero,notnull,default:current_timestamp"`
	CompletedAt time.Time `json:"completed_at,omitempty" bun:"completed_at"`
	FrameCount  int       `json:"frame_count" bun:"frame_count"`
	StoragePath string    `json:"storage_path" bun:"storage_path"`
	MoviePath   string    `json:"movie_path,omitempty" bun:"movie_path"`
	ScreenW     int       `json:"screen_w" bun:"screen_w"`
	ScreenH     int       `json:"screen_h" bun:"screen_h"`
}

// DB wraps the bun connection to the capture catalog.
type DB struct {
	bun *bun.DB
}

// Open opens (creating if necessary) the sqlite catalog at dbPath.
func Open(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("catalog: open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: set busy_timeout: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: enable WAL mode: %w", err)
	}
	conn.SetMaxIdleConns(1)

	bunDB := bun.NewDB(conn, sqlitedialect.New())
	db := &DB{bun: bunDB}
	if err := db.ensureSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) ensureSchema() error {
	_, err := db.bun.NewCreateTable().Model((*Capture)(nil)).IfNotExists().Exec(ctx())
	if err != nil {
		return fmt.Errorf("catalog: create captures table: %w", err)
	}
	return nil
}

// Close closes the catalog's database connection.
func (db *DB) Close() error {
	return db.bun.Close()
}

// Ping verifies the database connection is alive.
func (db *DB) Ping() error {
	return db.bun.PingContext(ctx())
}

// CreateCapture inserts a new capture row.
func (db *DB) CreateCapture(c Capture) error {
	_, err := db.bun.NewInsert().Model(&c).Exec(ctx())
	return err
}

// GetCapture returns a single capture by ID, or nil if not found.
func (db *DB) GetCapture(id string) (*Capture, error) {
	var c Capture
	err := db.bun.NewSelect().Model(&c).Where("id = ?", id).Scan(ctx())
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCaptures returns every capture, most recent first.
func (db *DB) ListCaptures() ([]Capture, error) {
	var cs []Capture
	err := db.bun.NewSelect().Model(&cs).OrderExpr("started_at desc").Scan(ctx())
	return cs, err
}

// UpdateCaptureCompletion records a capture's completion time, frame
// count, and output paths once a session ends.
func (db *DB) UpdateCaptureCompletion(id string, completedAt time.Time, frameCount int, storagePath, moviePath string) error {
	_, err := db.bun.NewUpdate().
		Model((*Capture)(nil)).
		Set("completed_at = ?", completedAt).
		Set("frame_count = ?", frameCount).
		Set("storage_path = ?", storagePath).
		Set("movie_path = ?", moviePath).
		Where("id = ?", id).
		Exec(ctx())
	return err
}

// ListExpiredCaptures returns captures completed before cutoff, for
// the retention cleaner to remove.
func (db *DB) ListExpiredCaptures(cutoff time.Time) ([]Capture, error) {
	var cs []Capture
	err := db.bun.NewSelect().
		Model(&cs).
		Where("completed_at < ?", cutoff).
		Where("completed_at != ?", time.Time{}).
		Scan(ctx())
	return cs, err
}

// DeleteCapture removes a capture row.
func (db *DB) DeleteCapture(id string) error {
	_, err := db.bun.NewDelete().Model((*Capture)(nil)).Where("id = ?", id).Exec(ctx())
	return err
}
