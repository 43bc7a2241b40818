package mailstore

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	pst "github.com/mooijtech/go-pst/v6/pkg"
	"github.com/mooijtech/go-pst/v6/pkg/properties"
)

// Open opens a PST/OST container at path. Failures here are fatal for the
// run; there is no per-item degradation at the container boundary.
func Open(path string) (Store, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	pstFile, err := pst.New(file)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("parse archive %s: %w", path, err)
	}

	return &pstStore{file: file, pst: pstFile}, nil
}

type pstStore struct {
	file *os.File
	pst  *pst.File
}

func (s *pstStore) RootFolder() (Folder, error) {
	root, err := s.pst.GetRootFolder()
	if err != nil {
		return nil, fmt.Errorf("root folder: %w", err)
	}

	folder := &pstFolder{folder: root}
	if err := folder.load(); err != nil {
		return nil, err
	}
	return folder, nil
}

func (s *pstStore) Close() error {
	s.pst.Cleanup()
	return s.file.Close()
}

// pstFolder adapts a go-pst folder. Children are materialized by load
// before the folder is handed out, so container access errors surface
// from RootFolder and Subfolder instead of hiding behind zero counts.
type pstFolder struct {
	folder pst.Folder

	loaded     bool
	messages   []*pstMessage
	subfolders []*pstFolder
}

func (f *pstFolder) load() error {
	if f.loaded {
		return nil
	}
	f.messages, f.subfolders = nil, nil

	subfolders, err := f.folder.GetSubFolders()
	if err != nil {
		return fmt.Errorf("subfolders of %q: %w", f.folder.Name, err)
	}
	for i := range subfolders {
		f.subfolders = append(f.subfolders, &pstFolder{folder: subfolders[i]})
	}

	iterator, err := f.folder.GetMessageIterator()
	if err != nil && !errors.Is(err, pst.ErrMessagesNotFound) {
		return fmt.Errorf("messages of %q: %w", f.folder.Name, err)
	}
	if err == nil {
		for iterator.Next() {
			message := iterator.Value()
			props, _ := message.Properties.(*properties.Message)
			f.messages = append(f.messages, &pstMessage{message: message, props: props})
		}
		if err := iterator.Err(); err != nil {
			return fmt.Errorf("iterate messages of %q: %w", f.folder.Name, err)
		}
	}

	f.loaded = true
	return nil
}

func (f *pstFolder) Name() string {
	return f.folder.Name
}

func (f *pstFolder) MessageCount() int {
	return len(f.messages)
}

func (f *pstFolder) Message(i int) (Message, error) {
	return f.messages[i], nil
}

func (f *pstFolder) SubfolderCount() int {
	return len(f.subfolders)
}

func (f *pstFolder) Subfolder(i int) (Folder, error) {
	sub := f.subfolders[i]
	if err := sub.load(); err != nil {
		return nil, err
	}
	return sub, nil
}

// pstMessage adapts a go-pst message. props is nil when the item decodes
// to a non-mail property set (appointments, contacts, tasks); the
// protobuf getters tolerate a nil receiver, so every field then reads as
// absent and the normalizer's placeholders take over.
type pstMessage struct {
	message *pst.Message
	props   *properties.Message

	attLoaded   bool
	attErr      error
	attachments []*pstAttachment
}

func (m *pstMessage) Subject() (string, bool) {
	return optional(m.props.GetSubject())
}

func (m *pstMessage) SenderName() (string, bool) {
	return optional(m.props.GetSenderName())
}

func (m *pstMessage) SenderEmail() (string, bool) {
	return optional(m.props.GetSenderEmailAddress())
}

func (m *pstMessage) DisplayTo() (string, bool) {
	return optional(m.props.GetDisplayTo())
}

func (m *pstMessage) TransportHeaders() (string, bool) {
	return optional(m.props.GetTransportMessageHeaders())
}

func (m *pstMessage) DeliveryTime() (time.Time, bool) {
	return filetime(m.props.GetMessageDeliveryTime())
}

func (m *pstMessage) CreationTime() (time.Time, bool) {
	return filetime(m.props.GetCreationTime())
}

func (m *pstMessage) PlainTextBody() ([]byte, bool) {
	body := []byte(m.props.GetBody())
	return body, len(body) > 0
}

func (m *pstMessage) HTMLBody() ([]byte, bool) {
	body := []byte(m.props.GetBodyHtml())
	return body, len(body) > 0
}

func (m *pstMessage) AttachmentCount() int {
	if err := m.loadAttachments(); err != nil {
		return 0
	}
	return len(m.attachments)
}

func (m *pstMessage) Attachment(i int) (Attachment, error) {
	if err := m.loadAttachments(); err != nil {
		return nil, err
	}
	return m.attachments[i], nil
}

func (m *pstMessage) loadAttachments() error {
	if m.attLoaded {
		return m.attErr
	}
	m.attLoaded = true

	iterator, err := m.message.GetAttachmentIterator()
	if err != nil {
		if errors.Is(err, pst.ErrAttachmentsNotFound) {
			return nil
		}
		m.attErr = fmt.Errorf("attachments: %w", err)
		return m.attErr
	}
	for iterator.Next() {
		m.attachments = append(m.attachments, &pstAttachment{attachment: iterator.Value()})
	}
	if err := iterator.Err(); err != nil {
		m.attErr = fmt.Errorf("iterate attachments: %w", err)
	}
	return m.attErr
}

type pstAttachment struct {
	attachment *pst.Attachment
}

func (a *pstAttachment) Name() (string, bool) {
	if name, ok := optional(a.attachment.GetAttachLongFilename()); ok {
		return name, true
	}
	return optional(a.attachment.GetAttachFilename())
}

func (a *pstAttachment) Payload() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := a.attachment.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("read attachment payload: %w", err)
	}
	return buf.Bytes(), nil
}

// filetime converts a MAPI FILETIME value (100ns ticks since 1601-01-01
// UTC) into a time.Time. Zero means the property is absent.
func filetime(ticks int64) (time.Time, bool) {
	if ticks == 0 {
		return time.Time{}, false
	}
	const epochDelta = 116444736000000000 // 1601-01-01 to 1970-01-01 in ticks
	nsec := (ticks - epochDelta) * 100
	return time.Unix(0, nsec).UTC(), true
}
