package model

import "github.com/dhcgn/pst-exporter/mailstore"

// Item is a single message discovered during traversal, tagged with the
// slash-joined path of its parent folder relative to the mailstore root.
type Item struct {
	Message    mailstore.Message
	FolderPath string
}

// Normalized is the renderer-facing view of a message. Every field is a
// decoded string; missing source data surfaces as an empty field or a
// documented placeholder, never as an error.
type Normalized struct {
	Subject     string
	DatePrefix  string
	SenderName  string
	SenderEmail string
	Recipients  []string
	Body        string
}

// Outcome records the result of processing one item.
type Outcome struct {
	Index      int
	FolderPath string
	Subject    string
	Filtered   bool
	Err        error
}

// OK reports whether the item was exported.
func (o Outcome) OK() bool {
	return o.Err == nil && !o.Filtered
}
