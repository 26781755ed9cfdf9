// Package filestore persists uploaded media on the local filesystem.
package filestore

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

type diskStorage struct {
	root string
}

var _ core.FileStorage = (*diskStorage)(nil)

// NewDiskStorage stores files under root (Config.MediaRoot).
func NewDiskStorage(root string) core.FileStorage {
	return &diskStorage{root: root}
}

// abs resolves the slash-separated relative path under root, refusing any
// path that escapes it.
func (s *diskStorage) abs(path string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(path))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", errors.Errorf("filestore: invalid path %q", path)
	}
	return filepath.Join(s.root, cleaned), nil
}

func (s *diskStorage) Save(path string, r io.Reader) (string, error) {
	fp, err := s.abs(path)
	if err != nil {
		return "", err
	}
	if err = os.MkdirAll(filepath.Dir(fp), 0o755); err != nil {
		return "", errors.Wrap(err, "creating media directory")
	}
	f, err := os.Create(fp)
	if err != nil {
		return "", errors.Wrap(err, "creating media file")
	}
	defer f.Close()
	if _, err = io.Copy(f, r); err != nil {
		return "", errors.Wrap(err, "writing media file")
	}
	return path, nil
}

func (s *diskStorage) Delete(path string) error {
	fp, err := s.abs(path)
	if err != nil {
		return err
	}
	if err = os.Remove(fp); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "deleting media file")
	}
	return nil
}

func (s *diskStorage) Exists(path string) (bool, error) {
	fp, err := s.abs(path)
	if err != nil {
		return false, err
	}
	if _, err = os.Stat(fp); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *diskStorage) Open(path string) (io.ReadCloser, error) {
	fp, err := s.abs(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fp)
	if err != nil {
		return nil, errors.Wrap(err, "opening media file")
	}
	return f, nil
}
