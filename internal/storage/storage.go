// Package storage keeps uploaded CV attachments on local disk, one file per
// application, keyed by a generated filename the applications table links to.
package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var ErrNotPDF = errors.New("only PDF files are allowed for CV")

// Store is a disk-backed attachment store rooted at a single directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New creates the upload directory if needed and returns a Store.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &Store{dir: dir, logger: logger}, nil
}

// Save validates and writes a single uploaded CV, returning the generated
// filename. The name embeds the owner id and a fractional unix timestamp so
// repeated uploads never collide.
func (s *Store) Save(ownerID int64, src io.Reader, originalName string) (string, error) {
	if !IsPDF(originalName) {
		return "", ErrNotPDF
	}

	now := time.Now().UTC()
	name := fmt.Sprintf("%d_%d.%06d_%s", ownerID, now.Unix(), now.Nanosecond()/1000, SanitizeFilename(originalName))

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create attachment: %w", err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write attachment: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close attachment: %w", err)
	}

	return name, nil
}

// Replace stores a new CV in place of an existing one. The replacement is
// validated before the old file is touched, so a rejected upload never
// destroys the current attachment. A missing old file is not an error.
func (s *Store) Replace(ownerID int64, oldName string, src io.Reader, originalName string) (string, error) {
	if !IsPDF(originalName) {
		return "", ErrNotPDF
	}

	if oldName != "" {
		s.Remove(oldName)
	}

	return s.Save(ownerID, src, originalName)
}

// Remove deletes a stored attachment, best-effort. A missing file is fine;
// anything else is logged and swallowed.
func (s *Store) Remove(name string) {
	if name == "" {
		return
	}
	if err := os.Remove(filepath.Join(s.dir, filepath.Base(name))); err != nil && !os.IsNotExist(err) {
		s.logger.Error("failed to remove attachment", slog.String("filename", name), slog.Any("err", err))
	}
}

// Path returns the on-disk location of a stored attachment, or an error when
// no such file exists. The name is reduced to its base to keep lookups inside
// the upload directory.
func (s *Store) Path(name string) (string, error) {
	p := filepath.Join(s.dir, filepath.Base(name))
	if _, err := os.Stat(p); err != nil {
		return "", err
	}

	return p, nil
}

// IsPDF reports whether name carries a .pdf extension, case-insensitive.
func IsPDF(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}

// SanitizeFilename strips path components and replaces anything outside
// [A-Za-z0-9._-] with an underscore.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		out = "file"
	}

	return out
}
