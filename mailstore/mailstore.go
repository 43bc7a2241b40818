// Package mailstore exposes the archive container as a narrow capability
// set. All knowledge about the on-disk PST/OST format stays behind these
// interfaces; the rest of the pipeline only sees folders, messages and
// attachments with optional, typed fields.
package mailstore

import "time"

// Store is an opened archive container. It is opened once, fully traversed
// and closed before any export begins.
type Store interface {
	RootFolder() (Folder, error)
	Close() error
}

// Folder is a node in the mailstore tree. Messages and subfolders are
// addressed by their native index order.
type Folder interface {
	// Name returns the folder's display name, which may be empty.
	Name() string
	MessageCount() int
	Message(i int) (Message, error)
	SubfolderCount() int
	Subfolder(i int) (Folder, error)
}

// Message is a single mail item. Accessors return ok=false when the
// underlying field is absent or empty, so callers never probe raw handles.
type Message interface {
	Subject() (string, bool)
	SenderName() (string, bool)
	SenderEmail() (string, bool)
	// DisplayTo is the container's own display string for the To line,
	// used when the transport headers are missing or unparsable.
	DisplayTo() (string, bool)
	// TransportHeaders returns the raw RFC 822 style header blob as
	// originally transmitted.
	TransportHeaders() (string, bool)
	DeliveryTime() (time.Time, bool)
	CreationTime() (time.Time, bool)
	// PlainTextBody and HTMLBody return raw, possibly mis-encoded bytes.
	// Decoding is the normalizer's job.
	PlainTextBody() ([]byte, bool)
	HTMLBody() ([]byte, bool)
	AttachmentCount() int
	Attachment(i int) (Attachment, error)
}

// Attachment is a binary payload with an optional original filename.
type Attachment interface {
	Name() (string, bool)
	Payload() ([]byte, error)
}
