package export

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dhcgn/pst-exporter/mailstore"
	"github.com/dhcgn/pst-exporter/model"
)

func fixture() model.Normalized {
	return model.Normalized{
		Subject:    "Quarterly Report",
		DatePrefix: "[2024-05-01]",
		SenderName: "Alice",
		Recipients: []string{"bob@example.com", "carol@example.com"},
		Body:       "line1\nline2",
	}
}

func TestSaveEML_Content(t *testing.T) {
	dir := t.TempDir()
	s := NewSaver(dir)

	n := fixture()
	n.SenderEmail = "alice@example.com"

	path, err := s.SaveEML(n, dir)
	if err != nil {
		t.Fatalf("SaveEML() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read eml: %v", err)
	}

	want := "Subject: Quarterly Report\n" +
		"From: Alice <alice@example.com>\n" +
		"To: bob@example.com, carol@example.com\n" +
		"\n" +
		"line1\nline2"
	if string(data) != want {
		t.Errorf("eml content = %q, want %q", string(data), want)
	}

	if got := filepath.Base(path); got != "[2024-05-01] - Quarterly Report.eml" {
		t.Errorf("file name = %q", got)
	}
}

func TestSaveEML_Placeholders(t *testing.T) {
	dir := t.TempDir()
	s := NewSaver(dir)

	n := model.Normalized{
		DatePrefix: "[2024-05-01]",
		Recipients: []string{"Unknown Recipient"},
	}

	path, err := s.SaveEML(n, dir)
	if err != nil {
		t.Fatalf("SaveEML() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	content := string(data)
	if !strings.HasPrefix(content, "Subject: No Subject\n") {
		t.Errorf("missing subject placeholder: %q", content)
	}
	if !strings.Contains(content, "From: Unknown Sender\n") {
		t.Errorf("missing sender placeholder (and no email suffix expected): %q", content)
	}
	if got := filepath.Base(path); got != "[2024-05-01] - no_subject.eml" {
		t.Errorf("file name = %q", got)
	}
}

func TestSaveEML_UniqueNames(t *testing.T) {
	dir := t.TempDir()
	s := NewSaver(dir)
	n := fixture()

	first, err := s.SaveEML(n, dir)
	if err != nil {
		t.Fatalf("first SaveEML() error = %v", err)
	}
	second, err := s.SaveEML(n, dir)
	if err != nil {
		t.Fatalf("second SaveEML() error = %v", err)
	}
	third, err := s.SaveEML(n, dir)
	if err != nil {
		t.Fatalf("third SaveEML() error = %v", err)
	}

	if first == second || second == third {
		t.Fatalf("paths collide: %q %q %q", first, second, third)
	}
	if got := filepath.Base(second); got != "[2024-05-01] - Quarterly Report_1.eml" {
		t.Errorf("second file name = %q", got)
	}
	if got := filepath.Base(third); got != "[2024-05-01] - Quarterly Report_2.eml" {
		t.Errorf("third file name = %q", got)
	}
}

func TestSavePDF_ProducesDocument(t *testing.T) {
	dir := t.TempDir()
	s := NewSaver(dir)

	path, err := s.SavePDF(fixture(), dir)
	if err != nil {
		t.Fatalf("SavePDF() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("pdf is empty")
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Errorf("pdf does not start with %%PDF header: % x", data[:8])
	}
}

func TestSavePDF_ManyLinesPaginates(t *testing.T) {
	dir := t.TempDir()
	s := NewSaver(dir)

	n := fixture()
	n.Body = strings.Repeat("a line of body text\n", 120)

	if _, err := s.SavePDF(n, dir); err != nil {
		t.Fatalf("SavePDF() error = %v", err)
	}
}

func TestSaveAttachment(t *testing.T) {
	dir := t.TempDir()
	s := NewSaver(dir)

	tests := []struct {
		name     string
		att      *mailstore.MemoryAttachment
		index    int
		wantBase string
	}{
		{
			name:     "named with extension",
			att:      &mailstore.MemoryAttachment{AttName: "report.pdf", Data: []byte{1, 2, 3}},
			wantBase: "report.pdf",
		},
		{
			name:     "no extension gets bin",
			att:      &mailstore.MemoryAttachment{AttName: "archive", Data: []byte{1}},
			wantBase: "archive.bin",
		},
		{
			name:     "unnamed gets synthetic name",
			att:      &mailstore.MemoryAttachment{Data: []byte{1}},
			index:    3,
			wantBase: "attachment_3.bin",
		},
		{
			name:     "invalid characters removed",
			att:      &mailstore.MemoryAttachment{AttName: "we?ird:name.txt", Data: []byte{1}},
			wantBase: "weirdname.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := s.SaveAttachment(tt.att, tt.index, dir)
			if err != nil {
				t.Fatalf("SaveAttachment() error = %v", err)
			}
			if got := filepath.Base(path); got != tt.wantBase {
				t.Errorf("file name = %q, want %q", got, tt.wantBase)
			}
		})
	}
}

func TestSaveAttachment_UniqueNames(t *testing.T) {
	dir := t.TempDir()
	s := NewSaver(dir)
	att := &mailstore.MemoryAttachment{AttName: "dup.txt", Data: []byte("x")}

	if _, err := s.SaveAttachment(att, 0, dir); err != nil {
		t.Fatalf("first SaveAttachment() error = %v", err)
	}
	second, err := s.SaveAttachment(att, 0, dir)
	if err != nil {
		t.Fatalf("second SaveAttachment() error = %v", err)
	}
	if got := filepath.Base(second); got != "dup_1.txt" {
		t.Errorf("second file name = %q, want dup_1.txt", got)
	}
}

func TestSaveAttachment_EmptyPayload(t *testing.T) {
	dir := t.TempDir()
	s := NewSaver(dir)

	att := &mailstore.MemoryAttachment{AttName: "empty.txt"}
	_, err := s.SaveAttachment(att, 0, dir)
	if !errors.Is(err, ErrEmptyAttachment) {
		t.Errorf("error = %v, want ErrEmptyAttachment", err)
	}
}

func TestSaveAttachment_NameOverFilesystemLimit(t *testing.T) {
	dir := t.TempDir()
	s := NewSaver(dir)

	// 200 two-byte runes survive sanitization but exceed the 255-byte
	// name limit, so every stat and the final write fail with an error
	// other than not-exist. The save must return, not probe forever.
	att := &mailstore.MemoryAttachment{AttName: strings.Repeat("é", 200), Data: []byte("x")}
	if _, err := s.SaveAttachment(att, 0, dir); err == nil {
		t.Error("expected an error for a name over the filesystem limit")
	}
}

func TestSaveAttachment_ReadError(t *testing.T) {
	dir := t.TempDir()
	s := NewSaver(dir)

	att := &mailstore.MemoryAttachment{AttName: "bad.txt", ReadErr: errors.New("io failure")}
	if _, err := s.SaveAttachment(att, 0, dir); err == nil {
		t.Error("expected read error to propagate")
	}
}

func TestEnsureFolder(t *testing.T) {
	base := t.TempDir()
	s := NewSaver(filepath.Join(base, "out"))

	if err := s.EnsureRoot(); err != nil {
		t.Fatalf("EnsureRoot() error = %v", err)
	}

	dir, err := s.EnsureFolder("Inbox/Work")
	if err != nil {
		t.Fatalf("EnsureFolder() error = %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("expected directory at %q, err = %v", dir, err)
	}
}
