package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/dhcgn/pst-exporter/mailstore"
	"github.com/dhcgn/pst-exporter/normalize"
)

// SaveAttachment writes one attachment payload verbatim into dir and
// returns the written path. index names attachments that carry no
// filename of their own. Every failure is scoped to this attachment; the
// caller decides whether to keep going.
func (s *Saver) SaveAttachment(att mailstore.Attachment, index int, dir string) (string, error) {
	name, ok := att.Name()
	if !ok {
		name = fmt.Sprintf("attachment_%d", index)
	}
	base, ext := splitAttachmentName(normalize.SanitizeFileName(name))

	payload, err := att.Payload()
	if err != nil {
		return "", fmt.Errorf("read attachment %q: %w", name, err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("attachment %q: %w", name, ErrEmptyAttachment)
	}

	path := uniquePath(dir, base, ext)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write attachment %q: %w", name, err)
	}
	return path, nil
}

// splitAttachmentName splits a sanitized name into base and extension,
// defaulting to "bin" when no extension is present.
func splitAttachmentName(name string) (base, ext string) {
	if i := strings.LastIndex(name, "."); i > 0 && i < len(name)-1 {
		return name[:i], name[i+1:]
	}
	return name, "bin"
}
