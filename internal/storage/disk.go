package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"taskdeck/internal/apperr"
)

// DiskStore keeps attachment binaries in a local directory and serves
// them under <baseURL>/storage/<ref>.
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperr.Wrap(apperr.Storage, "create storage dir", err)
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the directory binaries live in, for static file serving.
func (s *DiskStore) Dir() string { return s.dir }

func (s *DiskStore) Save(ctx context.Context, r io.Reader, originalName string) (string, error) {
	ref := uuid.NewString() + sanitizeExt(originalName)
	f, err := os.Create(filepath.Join(s.dir, ref))
	if err != nil {
		return "", apperr.Wrap(apperr.Storage, "create attachment file", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", apperr.Wrap(apperr.Storage, "write attachment file", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", apperr.Wrap(apperr.Storage, "close attachment file", err)
	}
	return ref, nil
}

func (s *DiskStore) Delete(ctx context.Context, ref string) error {
	// Base strips any path traversal a stale reference could carry.
	err := os.Remove(filepath.Join(s.dir, filepath.Base(ref)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperr.Wrap(apperr.Storage, "delete attachment file", err)
	}
	return nil
}

func (s *DiskStore) URL(ref string) string {
	return s.baseURL + "/storage/" + filepath.Base(ref)
}

// sanitizeExt keeps a short, harmless extension from the original name.
func sanitizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}
