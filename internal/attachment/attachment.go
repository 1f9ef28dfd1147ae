// Package attachment stores files uploaded alongside complaints.
package attachment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sakif/ncps/internal/apperror"
)

// Sink persists an uploaded file and returns a reference that can later be
// served back or removed.
type Sink interface {
	Store(ctx context.Context, r io.Reader, originalName string) (string, error)
	Remove(ref string) error
}

// maxCreateAttempts bounds the retries when a generated name already exists.
const maxCreateAttempts = 5

// DiskSink writes uploads into a single directory. References have the form
// urlPrefix + "/" + storedName, e.g. "/uploads/1718000000000_42_report.pdf".
//
// Stored names are never chosen by the client: the original name is reduced
// to a safe charset and prefixed with a timestamp and a random number, and
// files are opened with O_EXCL so an existing upload is never overwritten.
type DiskSink struct {
	dir       string
	urlPrefix string
	now       func() time.Time
}

// NewDiskSink creates dir if needed.
func NewDiskSink(dir, urlPrefix string) (*DiskSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("attachment: creating upload dir: %w", err)
	}
	return &DiskSink{
		dir:       dir,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
		now:       time.Now,
	}, nil
}

// Dir is the directory files are written to, for serving them back.
func (s *DiskSink) Dir() string { return s.dir }

// Store copies r into a new file. On any failure the partial file is removed
// and a StorageFailed error is returned; nothing is left behind.
func (s *DiskSink) Store(ctx context.Context, r io.Reader, originalName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperror.StorageFailed("writing attachment", err)
	}

	safe := SanitizeName(originalName)

	var (
		f    *os.File
		name string
		err  error
	)
	for range maxCreateAttempts {
		name = fmt.Sprintf("%d_%d_%s", s.now().UnixMilli(), rand.IntN(1_000_000_000), safe)
		f, err = os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if !errors.Is(err, os.ErrExist) {
			break
		}
	}
	if err != nil {
		return "", apperror.StorageFailed("creating attachment", err)
	}

	path := f.Name()
	if err := writeAndSync(f, r); err != nil {
		os.Remove(path)
		return "", apperror.StorageFailed("writing attachment", err)
	}

	return s.urlPrefix + "/" + name, nil
}

func writeAndSync(f *os.File, r io.Reader) error {
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Remove deletes a file previously returned by Store. References that do not
// belong to this sink are refused; a file that is already gone is not an error.
func (s *DiskSink) Remove(ref string) error {
	name, ok := strings.CutPrefix(ref, s.urlPrefix+"/")
	if !ok || name == "" || name != filepath.Base(name) {
		return fmt.Errorf("attachment: %q is not a reference of this sink", ref)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("attachment: removing %s: %w", name, err)
	}
	return nil
}

// SanitizeName keeps ASCII letters, digits, '.', '_' and '-' and replaces
// every other rune with '_'. Path separators are replaced too, so the result
// can never escape the upload directory. An empty result becomes "file".
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	// "." and ".." are the only all-dot names with a special meaning.
	if out == "" || strings.Trim(out, ".") == "" {
		return "file"
	}
	return out
}
