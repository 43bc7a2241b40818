// Package normalize derives a renderer-facing view from a raw mailstore
// message. Every helper here is total: missing or malformed source data
// degrades to a documented placeholder instead of an error, because
// malformed archives are the common case.
package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"

	"github.com/dhcgn/pst-exporter/mailstore"
	"github.com/dhcgn/pst-exporter/model"
)

// UnknownRecipient is the final fallback when neither transport headers
// nor the display-to field yield any recipient.
const UnknownRecipient = "Unknown Recipient"

const maxFileSubjectLen = 50

var angleAddrPattern = regexp.MustCompile(`<(.+?)>`)

// Normalize builds the single message view both renderers consume.
func Normalize(msg mailstore.Message) model.Normalized {
	subject, _ := msg.Subject()
	name, email := sender(msg)
	return model.Normalized{
		Subject:     subject,
		DatePrefix:  DatePrefix(msg),
		SenderName:  name,
		SenderEmail: email,
		Recipients:  Recipients(msg),
		Body:        body(msg),
	}
}

// DatePrefix formats the filing date as "[YYYY-MM-DD]", preferring the
// delivery time, then the creation time, then the current date. It never
// fails.
func DatePrefix(msg mailstore.Message) string {
	if t, ok := msg.DeliveryTime(); ok {
		return formatDate(t)
	}
	if t, ok := msg.CreationTime(); ok {
		return formatDate(t)
	}
	return formatDate(time.Now())
}

func formatDate(t time.Time) string {
	return t.Format("[2006-01-02]")
}

// SanitizeSubject removes characters that are invalid in file names on
// Windows and Unix: < > : " / \ | ? * and C0 controls.
func SanitizeSubject(subject string) string {
	var b strings.Builder
	b.Grow(len(subject))
	for _, r := range subject {
		if r < 0x20 || strings.ContainsRune(`<>:"/\|?*`, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FileSubject produces the subject part of an output filename: sanitized,
// truncated to 50 runes and stripped of surrounding whitespace, with
// "no_subject" substituted for an absent subject.
func FileSubject(subject string) string {
	if subject == "" {
		subject = "no_subject"
	}
	clean := []rune(SanitizeSubject(subject))
	if len(clean) > maxFileSubjectLen {
		clean = clean[:maxFileSubjectLen]
	}
	return strings.TrimSpace(string(clean))
}

// SanitizeFileName sanitizes an attachment name: invalid characters
// removed, surrounding spaces and dots stripped, capped at 200 runes, with
// "unnamed_file" substituted when nothing useful remains.
func SanitizeFileName(name string) string {
	clean := strings.Trim(SanitizeSubject(name), " .")
	if runes := []rune(clean); len(runes) > 200 {
		clean = string(runes[:200])
	}
	if clean == "" {
		return "unnamed_file"
	}
	return clean
}

// Recipients recovers the recipient list with a three-tier fallback:
// transport headers (To, Cc, Bcc in that order, duplicates allowed), then
// the display-to field, then a single placeholder. The result always has
// at least one entry.
func Recipients(msg mailstore.Message) []string {
	if blob, ok := msg.TransportHeaders(); ok {
		if recipients := recipientsFromHeaders(blob); len(recipients) > 0 {
			return recipients
		}
	}
	if display, ok := msg.DisplayTo(); ok {
		return []string{display}
	}
	return []string{UnknownRecipient}
}

func recipientsFromHeaders(blob string) []string {
	header, ok := parseHeaderBlob(blob)
	if !ok {
		return nil
	}

	var recipients []string
	for _, key := range []string{"To", "Cc", "Bcc"} {
		addrs, err := header.AddressList(key)
		if err != nil {
			// Unparsable address list: keep the raw field text rather
			// than dropping the recipients entirely.
			if raw := header.Get(key); raw != "" {
				recipients = append(recipients, strings.TrimSpace(raw))
			}
			continue
		}
		for _, addr := range addrs {
			recipients = append(recipients, formatAddress(addr))
		}
	}
	return recipients
}

func sender(msg mailstore.Message) (name, email string) {
	if blob, ok := msg.TransportHeaders(); ok {
		if header, ok := parseHeaderBlob(blob); ok {
			if addrs, err := header.AddressList("From"); err == nil && len(addrs) > 0 {
				name = addrs[0].Name
				if name == "" {
					name = addrs[0].Address
				}
				email = addrs[0].Address
			} else if raw := strings.TrimSpace(header.Get("From")); raw != "" {
				name = raw
				if m := angleAddrPattern.FindStringSubmatch(raw); m != nil {
					email = m[1]
				}
			}
		}
	}
	if name == "" {
		name, _ = msg.SenderName()
	}
	if email == "" {
		email, _ = msg.SenderEmail()
	}
	return name, email
}

// parseHeaderBlob parses the raw transport-header blob as a structured
// header set. The blob is only headers, so a terminating blank line is
// appended before parsing.
func parseHeaderBlob(blob string) (*mail.Header, bool) {
	entity, err := message.Read(strings.NewReader(blob + "\r\n\r\n"))
	if entity == nil {
		return nil, false
	}
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, false
	}
	header := mail.Header{Header: entity.Header}
	return &header, true
}

func formatAddress(addr *mail.Address) string {
	if addr.Name != "" {
		return addr.Name + " <" + addr.Address + ">"
	}
	return addr.Address
}

func body(msg mailstore.Message) string {
	if plain, ok := msg.PlainTextBody(); ok {
		return DecodeBody(plain)
	}
	if html, ok := msg.HTMLBody(); ok {
		return HTMLToText(DecodeBody(html))
	}
	return ""
}
