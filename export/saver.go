// Package export writes normalized messages and raw attachments to disk,
// reproducing the mailstore folder hierarchy under one output root.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dhcgn/pst-exporter/model"
	"github.com/dhcgn/pst-exporter/normalize"
)

// Header placeholders shared by the EML and PDF renderers.
const (
	UnknownSender  = "Unknown Sender"
	UnknownEmail   = "Unknown Email"
	UnknownSubject = "No Subject"
)

// ErrEmptyAttachment marks an attachment whose payload was readable but
// empty. The caller reports it and moves on.
var ErrEmptyAttachment = errors.New("attachment has no data")

// Saver writes output files under a base directory. Uniqueness of file
// names is resolved lazily at write time, which is only correct for a
// single writer.
type Saver struct {
	base string
}

func NewSaver(base string) *Saver {
	return &Saver{base: base}
}

// EnsureRoot creates the output root. Failure here aborts the run.
func (s *Saver) EnsureRoot() error {
	if err := os.MkdirAll(s.base, 0o755); err != nil {
		return fmt.Errorf("create output root %s: %w", s.base, err)
	}
	return nil
}

// EnsureFolder creates base/folderPath and returns its absolute path.
func (s *Saver) EnsureFolder(folderPath string) (string, error) {
	dir := filepath.Join(s.base, filepath.FromSlash(folderPath))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create folder %s: %w", dir, err)
	}
	return dir, nil
}

// FileBaseName derives the shared output base name:
// "{date_prefix} - {sanitized subject}".
func FileBaseName(n model.Normalized) string {
	return n.DatePrefix + " - " + normalize.FileSubject(n.Subject)
}

// uniquePath returns dir/base.ext, appending _1, _2, ... before the
// extension until the candidate does not exist. The counter is unbounded.
func uniquePath(dir, base, ext string) string {
	candidate := filepath.Join(dir, base+"."+ext)
	for counter := 1; ; counter++ {
		_, err := os.Stat(candidate)
		if os.IsNotExist(err) {
			return candidate
		}
		if err != nil {
			// Stat failed for a reason other than absence, such as a name
			// over the filesystem limit. Probing cannot make progress, so
			// hand the candidate back and let the write report the error.
			return candidate
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d.%s", base, counter, ext))
	}
}
