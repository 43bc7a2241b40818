package export

import (
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/dhcgn/pst-exporter/model"
)

// PDF layout constants. Vertical positions are measured bottom-up on a
// Letter page (612x792pt), matching the header block and body flow the
// exported archives already use.
const (
	pdfPageHeight = 792.0
	pdfMarginX    = 50.0
	pdfSubjectY   = 750.0
	pdfFromY      = 730.0
	pdfToY        = 710.0
	pdfBodyTopY   = 690.0
	pdfBodyMinY   = 50.0
	pdfLineHeight = 14.0
	pdfFontSize   = 12.0
)

const pdfEmptyBody = "No content available for this email."

// SavePDF renders the message as a paginated PDF in dir and returns the
// written path. Header fields come from the same normalized view the EML
// renderer uses. Long source lines overflow the page width; no wrapping
// is performed.
func (s *Saver) SavePDF(n model.Normalized, dir string) (string, error) {
	path := uniquePath(dir, FileBaseName(n), "pdf")

	pdf := gofpdf.New("P", "pt", "Letter", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", pdfFontSize)

	draw := func(y float64, text string) {
		pdf.Text(pdfMarginX, pdfPageHeight-y, tr(text))
	}

	draw(pdfSubjectY, "Subject: "+headerSubject(n))
	draw(pdfFromY, "From: "+pdfFrom(n))
	draw(pdfToY, "To: "+strings.Join(n.Recipients, ", "))

	body := n.Body
	if body == "" {
		body = pdfEmptyBody
	}

	y := pdfBodyTopY
	for _, line := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n") {
		if y < pdfBodyMinY {
			pdf.AddPage()
			pdf.SetFont("Helvetica", "", pdfFontSize)
			y = pdfSubjectY
		}
		draw(y, line)
		y -= pdfLineHeight
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}
	return path, nil
}

// pdfFrom always renders the "{name} <{email}>" form, substituting
// placeholders for missing parts.
func pdfFrom(n model.Normalized) string {
	name := n.SenderName
	if name == "" {
		name = UnknownSender
	}
	email := n.SenderEmail
	if email == "" {
		email = UnknownEmail
	}
	return name + " <" + email + ">"
}
