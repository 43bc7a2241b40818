package mailstore

import "time"

// MemoryStore is an in-memory Store used by tests and fixtures.
type MemoryStore struct {
	Root   *MemoryFolder
	closed bool
}

func (s *MemoryStore) RootFolder() (Folder, error) {
	return s.Root, nil
}

func (s *MemoryStore) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (s *MemoryStore) Closed() bool {
	return s.closed
}

// MemoryFolder is an in-memory Folder.
type MemoryFolder struct {
	FolderName string
	Messages   []*MemoryMessage
	Subfolders []*MemoryFolder
}

func (f *MemoryFolder) Name() string { return f.FolderName }

func (f *MemoryFolder) MessageCount() int { return len(f.Messages) }

func (f *MemoryFolder) Message(i int) (Message, error) {
	return f.Messages[i], nil
}

func (f *MemoryFolder) SubfolderCount() int { return len(f.Subfolders) }

func (f *MemoryFolder) Subfolder(i int) (Folder, error) {
	return f.Subfolders[i], nil
}

// MemoryMessage is an in-memory Message. Zero-valued fields read as absent.
type MemoryMessage struct {
	MsgSubject     string
	MsgSenderName  string
	MsgSenderEmail string
	MsgDisplayTo   string
	MsgHeaders     string
	MsgDelivery    time.Time
	MsgCreation    time.Time
	MsgPlainBody   []byte
	MsgHTMLBody    []byte
	Attachments    []*MemoryAttachment
}

func optional(s string) (string, bool) {
	return s, s != ""
}

func (m *MemoryMessage) Subject() (string, bool)          { return optional(m.MsgSubject) }
func (m *MemoryMessage) SenderName() (string, bool)       { return optional(m.MsgSenderName) }
func (m *MemoryMessage) SenderEmail() (string, bool)      { return optional(m.MsgSenderEmail) }
func (m *MemoryMessage) DisplayTo() (string, bool)        { return optional(m.MsgDisplayTo) }
func (m *MemoryMessage) TransportHeaders() (string, bool) { return optional(m.MsgHeaders) }

func (m *MemoryMessage) DeliveryTime() (time.Time, bool) {
	return m.MsgDelivery, !m.MsgDelivery.IsZero()
}

func (m *MemoryMessage) CreationTime() (time.Time, bool) {
	return m.MsgCreation, !m.MsgCreation.IsZero()
}

func (m *MemoryMessage) PlainTextBody() ([]byte, bool) {
	return m.MsgPlainBody, len(m.MsgPlainBody) > 0
}

func (m *MemoryMessage) HTMLBody() ([]byte, bool) {
	return m.MsgHTMLBody, len(m.MsgHTMLBody) > 0
}

func (m *MemoryMessage) AttachmentCount() int { return len(m.Attachments) }

func (m *MemoryMessage) Attachment(i int) (Attachment, error) {
	return m.Attachments[i], nil
}

// MemoryAttachment is an in-memory Attachment.
type MemoryAttachment struct {
	AttName string
	Data    []byte
	ReadErr error
}

func (a *MemoryAttachment) Name() (string, bool) { return optional(a.AttName) }

func (a *MemoryAttachment) Payload() ([]byte, error) {
	if a.ReadErr != nil {
		return nil, a.ReadErr
	}
	return a.Data, nil
}
