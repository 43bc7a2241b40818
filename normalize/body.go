package normalize

import (
	"strings"
	"unicode/utf8"

	"github.com/k3a/html2text"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// telltales are two-character sequences that appear when UTF-8 text was
// mis-read as Latin-1 and saved again. Their presence marks a decode as a
// false success. The check is approximate: genuine Latin-1 text containing
// these sequences triggers the repair too (a known false-positive source,
// kept for behavioral compatibility with archives already exported this
// way).
var telltales = []string{"Ã§", "Ã£", "Ã¡", "Ã©", "Ã­", "Ã³", "Ãº"}

func containsTelltale(s string) bool {
	for _, t := range telltales {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

type decodeStep struct {
	name   string
	decode func([]byte) (string, error)
}

// cascade is the fixed charset priority order used after the UTF-8 attempt.
// Windows-1252 covers the CP1252 alias; both names map to one table.
var cascade = []decodeStep{
	{"iso-8859-1", decodeWith(charmap.ISO8859_1)},
	{"windows-1252", decodeWith(charmap.Windows1252)},
	{"iso-8859-15", decodeWith(charmap.ISO8859_15)},
	{"utf-16", decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM))},
	{"utf-16le", decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM))},
	{"utf-16be", decodeWith(unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM))},
	{"ascii", asciiDecode},
}

func decodeWith(enc encoding.Encoding) func([]byte) (string, error) {
	return func(raw []byte) (string, error) {
		decoded, err := enc.NewDecoder().Bytes(raw)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	}
}

func asciiDecode(raw []byte) (string, error) {
	for _, b := range raw {
		if b > 0x7f {
			return "", errNotASCII
		}
	}
	return string(raw), nil
}

var errNotASCII = stringError("not ascii")

type stringError string

func (e stringError) Error() string { return string(e) }

// DecodeBody turns raw body bytes of unknown encoding into a string. It is
// total: every input, including invalid and truncated multi-byte sequences,
// yields a string.
func DecodeBody(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	// Double-encoding repair: when the Latin-1 view shows tell-tale
	// sequences the bytes are UTF-8 that survived a Latin-1 round trip,
	// so re-reading them as UTF-8 recovers the original text.
	latin, err := decodeWith(charmap.ISO8859_1)(raw)
	if err == nil && containsTelltale(latin) && utf8.Valid(raw) {
		return string(raw)
	}

	if utf8.Valid(raw) && !containsTelltale(string(raw)) {
		return string(raw)
	}

	for _, step := range cascade {
		if decoded, err := step.decode(raw); err == nil {
			return decoded
		}
	}

	// Unreachable in practice (ISO-8859-1 accepts any byte), kept so the
	// function stays total even if the cascade changes.
	return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
}

// HTMLToText renders an HTML body as readable plain text. Used when a
// message carries only an HTML body, so the EML and PDF renderers see the
// same text.
func HTMLToText(html string) string {
	if html == "" {
		return ""
	}
	return collapseBlankLines(html2text.HTML2Text(html))
}

// collapseBlankLines trims trailing space and allows at most two
// consecutive blank lines.
func collapseBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	result := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blank++
			if blank <= 2 {
				result = append(result, "")
			}
			continue
		}
		blank = 0
		result = append(result, line)
	}
	return strings.TrimSpace(strings.Join(result, "\n"))
}
