package capturestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore implements CaptureStore on the local filesystem. Files
// are stored at {baseDir}/{year}/{month}/{id}.{ext}.
type LocalStore struct {
	baseDir string
	ext     string
}

// NewLocalStore creates a LocalStore rooted at baseDir, storing files
// with the given extension (e.g. "vnclog" or "mp4").
func NewLocalStore(baseDir, ext string) *LocalStore {
	return &LocalStore{baseDir: baseDir, ext: ext}
}

// Save writes a capture file to disk and returns its relative storage
// path.
func (s *LocalStore) Save(id string, r io.Reader) (string, error) {
	now := time.Now()
	cleanID := filepath.Base(id) // strip any directory components
	relPath := filepath.Join(fmt.Sprintf("%d", now.Year()), fmt.Sprintf("%02d", now.Month()), cleanID+"."+s.ext)

	absPath, err := s.resolve(relPath)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("capturestore: create directory %s: %w", dir, err)
	}

	f, err := os.Create(absPath)
	if err != nil {
		return "", fmt.Errorf("capturestore: create file %s: %w", absPath, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(absPath)
		return "", fmt.Errorf("capturestore: write capture: %w", err)
	}

	return relPath, nil
}

// Get opens the capture file at the given storage path for reading.
func (s *LocalStore) Get(storagePath string) (io.ReadCloser, error) {
	absPath, err := s.resolve(storagePath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("capturestore: open capture: %w", err)
	}
	return f, nil
}

// Delete removes the capture file at the given storage path.
func (s *LocalStore) Delete(storagePath string) error {
	absPath, err := s.resolve(storagePath)
	if err != nil {
		return err
	}
	if err := os.Remove(absPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("capturestore: delete capture: %w", err)
	}
	return nil
}

// resolve joins storagePath under baseDir and rejects any path that
// would escape it, guarding against a crafted capture id like
// "../../etc/passwd" reaching outside the store's root.
func (s *LocalStore) resolve(storagePath string) (string, error) {
	fullPath := filepath.Clean(filepath.Join(s.baseDir, storagePath))
	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("capturestore: invalid base dir: %w", err)
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("capturestore: invalid path: %w", err)
	}
	if absPath != absBase && !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("capturestore: path traversal detected: %s", storagePath)
	}
	return absPath, nil
}

var _ CaptureStore = (*LocalStore)(nil)
