package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/postoko-backend/pkg/errors"
)

// Upload is an image received from a multipart form.
type Upload struct {
	Filename string
	Reader   io.Reader
}

// Store keeps uploaded images in one flat directory.
type Store struct {
	dir      string
	relative string
	maxBytes int64
}

// NewStore prepares dir for writes. urlPrefix is the public mount point, e.g. /uploads.
func NewStore(dir, urlPrefix string, maxBytes int64) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", dir, err)
	}
	relative := strings.Trim(urlPrefix, "/")
	if relative == "" {
		relative = "uploads"
	}
	return &Store{dir: dir, relative: relative, maxBytes: maxBytes}, nil
}

// Dir returns the directory files are written to.
func (s *Store) Dir() string { return s.dir }

// Save validates the upload as an image and writes it under a fresh name.
// It returns the relative path recorded on the product, e.g. uploads/<uuid>.png.
func (s *Store) Save(ctx context.Context, up Upload) (string, error) {
	if up.Reader == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "Product image is required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	reader := up.Reader
	if s.maxBytes > 0 {
		reader = io.LimitReader(up.Reader, s.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read image upload")
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "Product image is too large")
	}

	mimeType, fallbackExt, err := DetectImage(data)
	if err != nil {
		return "", err
	}
	name := uuid.NewString() + extensionFor(filepath.Ext(up.Filename), mimeType, fallbackExt)

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store image")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store image")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store image")
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store image")
	}

	return path.Join(s.relative, name), nil
}

// Delete removes the file behind a stored path. A missing file is not an error.
func (s *Store) Delete(ctx context.Context, stored string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, ok := fileName(stored)
	if !ok {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Exists reports whether a stored path still has a file behind it.
func (s *Store) Exists(stored string) bool {
	name, ok := fileName(stored)
	if !ok {
		return false
	}
	info, err := os.Stat(filepath.Join(s.dir, name))
	return err == nil && info.Mode().IsRegular()
}

// Open returns a regular file from the upload directory. Directories and
// names that try to escape the directory are reported as not found.
func (s *Store) Open(name string) (*os.File, fs.FileInfo, error) {
	clean, ok := fileName(name)
	if !ok || clean != strings.TrimPrefix(name, "/") {
		return nil, nil, fs.ErrNotExist
	}
	f, err := os.Open(filepath.Join(s.dir, clean))
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, nil, fs.ErrNotExist
	}
	return f, info, nil
}

func fileName(stored string) (string, bool) {
	stored = strings.TrimSpace(stored)
	if stored == "" {
		return "", false
	}
	name := path.Base(filepath.ToSlash(stored))
	if name == "." || name == "/" || name == ".." || strings.HasPrefix(name, ".") {
		return "", false
	}
	return name, true
}
