// Package files is the blob store backing task attachments: flat directory,
// random stored names, deletes tolerant of already-missing files.
package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type Store struct {
	root string
}

func NewStore(root string) (*Store, error) {
	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create files root %s: %w", root, err)
	}
	return &Store{root: root}, nil
}

// Save streams src into a new blob and returns its stored name (relative to
// the root) and the number of bytes written.
func (s *Store) Save(src io.Reader, originalName string) (string, int64, error) {
	name := uniqueName(originalName)
	abs := filepath.Join(s.root, name)

	dst, err := os.Create(abs)
	if err != nil {
		return "", 0, err
	}
	size, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(abs)
		return "", 0, err
	}
	return name, size, nil
}

// Open opens a stored blob for reading.
func (s *Store) Open(name string) (*os.File, error) {
	return os.Open(s.abs(name))
}

// Path resolves a stored name to an absolute filesystem path.
func (s *Store) Path(name string) string {
	return s.abs(name)
}

// Remove deletes a stored blob. A blob that is already gone is not an error.
func (s *Store) Remove(name string) error {
	err := os.Remove(s.abs(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// abs confines a stored name to the root: only the base name is honored, so
// no client-supplied nesting can escape.
func (s *Store) abs(name string) string {
	return filepath.Join(s.root, filepath.Base(strings.TrimSpace(name)))
}

func uniqueName(originalName string) string {
	ext := filepath.Ext(originalName)
	base := strings.TrimSuffix(filepath.Base(originalName), ext)
	if base == "" || base == "." {
		base = "file"
	}
	return fmt.Sprintf("%s-%s%s", base, uuid.NewString(), ext)
}

// allowedMimetypes mirrors the upload allow-list: images, office documents,
// text and zip archives.
var allowedMimetypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         {},
	"application/vnd.ms-powerpoint": {},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},
	"text/plain": {},
	"text/csv":   {},
	"application/zip":              {},
	"application/x-zip-compressed": {},
}

// AllowedType reports whether mimetype may be uploaded. Parameters after a
// semicolon (charset etc.) are ignored.
func AllowedType(mimetype string) bool {
	if i := strings.Index(mimetype, ";"); i >= 0 {
		mimetype = mimetype[:i]
	}
	_, ok := allowedMimetypes[strings.TrimSpace(strings.ToLower(mimetype))]
	return ok
}
