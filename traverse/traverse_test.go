package traverse

import (
	"errors"
	"strings"
	"testing"

	"github.com/dhcgn/pst-exporter/mailstore"
)

// brokenFolder reports children but fails to hand them out, the way a
// container driver surfaces a read failure.
type brokenFolder struct {
	mailstore.MemoryFolder
	subErr error
	msgErr error
}

func (f *brokenFolder) Subfolder(i int) (mailstore.Folder, error) {
	if f.subErr != nil {
		return nil, f.subErr
	}
	return f.MemoryFolder.Subfolder(i)
}

func (f *brokenFolder) Message(i int) (mailstore.Message, error) {
	if f.msgErr != nil {
		return nil, f.msgErr
	}
	return f.MemoryFolder.Message(i)
}

func msg(subject string) *mailstore.MemoryMessage {
	return &mailstore.MemoryMessage{MsgSubject: subject}
}

func TestExtract_Completeness(t *testing.T) {
	root := &mailstore.MemoryFolder{
		Messages: []*mailstore.MemoryMessage{msg("r1"), msg("r2")},
		Subfolders: []*mailstore.MemoryFolder{
			{
				FolderName: "A",
				Messages:   []*mailstore.MemoryMessage{msg("a1")},
				Subfolders: []*mailstore.MemoryFolder{
					{
						FolderName: "B",
						Messages:   []*mailstore.MemoryMessage{msg("b1"), msg("b2")},
					},
				},
			},
			{
				FolderName: "C",
				Messages:   []*mailstore.MemoryMessage{msg("c1")},
			},
		},
	}

	items, err := Extract(root)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(items) != 6 {
		t.Fatalf("Expected 6 items, got %d", len(items))
	}

	// Pre-order: own messages first, then subfolders in index order.
	wantOrder := []struct {
		subject string
		path    string
	}{
		{"r1", ""},
		{"r2", ""},
		{"a1", "A"},
		{"b1", "A/B"},
		{"b2", "A/B"},
		{"c1", "C"},
	}
	for i, want := range wantOrder {
		got, _ := items[i].Message.Subject()
		if got != want.subject {
			t.Errorf("item %d: subject = %q, want %q", i, got, want.subject)
		}
		if items[i].FolderPath != want.path {
			t.Errorf("item %d: folder path = %q, want %q", i, items[i].FolderPath, want.path)
		}
	}
}

func TestExtract_UnnamedFolder(t *testing.T) {
	root := &mailstore.MemoryFolder{
		Subfolders: []*mailstore.MemoryFolder{
			{
				FolderName: "A",
				Subfolders: []*mailstore.MemoryFolder{
					{
						// no name
						Messages: []*mailstore.MemoryMessage{msg("m")},
					},
				},
			},
		},
	}

	items, err := Extract(root)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if items[0].FolderPath != "A/Unnamed Folder" {
		t.Errorf("folder path = %q, want %q", items[0].FolderPath, "A/Unnamed Folder")
	}
}

func TestExtract_AccessErrorsAbortTraversal(t *testing.T) {
	tests := []struct {
		name    string
		root    *brokenFolder
		wantErr string
	}{
		{
			name: "subfolder access fails",
			root: &brokenFolder{
				MemoryFolder: mailstore.MemoryFolder{
					Subfolders: []*mailstore.MemoryFolder{{FolderName: "A"}},
				},
				subErr: errors.New("container read failure"),
			},
			wantErr: "container read failure",
		},
		{
			name: "message access fails",
			root: &brokenFolder{
				MemoryFolder: mailstore.MemoryFolder{
					Messages: []*mailstore.MemoryMessage{msg("m1")},
				},
				msgErr: errors.New("item unreadable"),
			},
			wantErr: "item unreadable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := Extract(tt.root)
			if err == nil {
				t.Fatalf("Extract() = %d items, want error", len(items))
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to wrap %q", err, tt.wantErr)
			}
		})
	}
}

func TestExtract_EmptyTree(t *testing.T) {
	items, err := Extract(&mailstore.MemoryFolder{FolderName: "root"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected 0 items, got %d", len(items))
	}
}
