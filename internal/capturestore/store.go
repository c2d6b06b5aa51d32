// Package capturestore abstracts where finished `.vnclog` capture
// files (and their optional `.mp4` movie renders) end up once a
// session closes: a local directory tree or an S3-compatible bucket.
package capturestore

import "io"

// CaptureStore abstracts capture file storage, mirroring the shape
// the teacher's recording storage interface gave its backends.
type CaptureStore interface {
	// Save writes r under id and returns the backend-relative storage
	// path a later Get/Delete call must be given.
	Save(id string, r io.Reader) (string, error)
	// Get opens the stored file for reading.
	Get(storagePath string) (io.ReadCloser, error)
	// Delete removes the stored file. Deleting a path that no longer
	// exists is not an error.
	Delete(storagePath string) error
}
