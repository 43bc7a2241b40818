package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/dhcgn/pst-exporter/model"
)

// SaveEML writes the message as a simplified human-readable EML file in
// dir and returns the written path. The format is four fields in fixed
// order followed by the body verbatim; no MIME structure and no header
// folding.
func (s *Saver) SaveEML(n model.Normalized, dir string) (string, error) {
	path := uniquePath(dir, FileBaseName(n), "eml")
	if err := os.WriteFile(path, []byte(emlContent(n)), 0o644); err != nil {
		return "", fmt.Errorf("write eml: %w", err)
	}
	return path, nil
}

func emlContent(n model.Normalized) string {
	var b strings.Builder
	b.WriteString("Subject: " + headerSubject(n) + "\n")
	b.WriteString("From: " + emlFrom(n) + "\n")
	b.WriteString("To: " + strings.Join(n.Recipients, ", ") + "\n")
	b.WriteString("\n")
	b.WriteString(n.Body)
	return b.String()
}

func headerSubject(n model.Normalized) string {
	if n.Subject == "" {
		return UnknownSubject
	}
	return n.Subject
}

// emlFrom renders the sender name with an address suffix only when one was
// actually recovered.
func emlFrom(n model.Normalized) string {
	name := n.SenderName
	if name == "" {
		name = UnknownSender
	}
	if n.SenderEmail == "" {
		return name
	}
	return name + " <" + n.SenderEmail + ">"
}
