package core

import "io"

// FileStorage is any backend that can store uploaded files under
// slash-separated relative paths.
type FileStorage interface {
	// Save writes r under path, creating parent directories as needed,
	// and returns the stored path.
	Save(path string, r io.Reader) (string, error)
	Delete(path string) error
	Exists(path string) (bool, error)
	// Open returns the stored file for reading; the caller closes it.
	Open(path string) (io.ReadCloser, error)
}
