package normalize

import (
	"strings"
	"testing"
)

func TestDecodeBody_Totality(t *testing.T) {
	inputs := [][]byte{
		nil,
		{},
		[]byte("plain ascii"),
		[]byte("valid utf-8 ção"),
		{0xff, 0xfe, 0x41, 0x00},       // UTF-16LE BOM
		{0xc3},                         // truncated multi-byte sequence
		{0xe2, 0x82},                   // truncated three-byte sequence
		{0x00, 0x01, 0x02, 0xfe, 0xff}, // binary junk
	}

	for _, raw := range inputs {
		got := DecodeBody(raw)
		if len(raw) > 0 && got == "" {
			t.Errorf("DecodeBody(% x) returned empty string", raw)
		}
	}
}

func TestDecodeBody_ValidUTF8PassesThrough(t *testing.T) {
	in := "line1\nline2 — naïve café"
	if got := DecodeBody([]byte(in)); got != in {
		t.Errorf("DecodeBody() = %q, want %q", got, in)
	}
}

func TestDecodeBody_DoubleEncodingRepair(t *testing.T) {
	// UTF-8 text whose Latin-1 view shows the tell-tale sequences:
	// "ção" is the byte sequence c3 a7 c3 a3 6f, which reads as
	// "Ã§Ã£o" under Latin-1.
	raw := []byte("ção")
	if got := DecodeBody(raw); got != "ção" {
		t.Errorf("DecodeBody() = %q, want %q", got, "ção")
	}
}

func TestDecodeBody_Latin1Fallback(t *testing.T) {
	// 0xe9 is not valid UTF-8 on its own; Latin-1 reads it as é.
	if got := DecodeBody([]byte{0x63, 0x61, 0x66, 0xe9}); got != "café" {
		t.Errorf("DecodeBody() = %q, want %q", got, "café")
	}
}

func TestDecodeBody_RejectsUTF8FalseSuccess(t *testing.T) {
	// Valid UTF-8 encoding of the string "Ã§" (c3 83 c2 a7): taking it
	// at face value would keep the mis-decoded text, so the UTF-8
	// attempt is vetoed and the cascade decides instead.
	raw := []byte{0xc3, 0x83, 0xc2, 0xa7}
	got := DecodeBody(raw)
	if got == "Ã§" {
		t.Errorf("DecodeBody() accepted a tell-tale UTF-8 decode: %q", got)
	}
}

func TestCascadeSteps_Decode(t *testing.T) {
	tests := []struct {
		step string
		raw  []byte
		want string
	}{
		{"iso-8859-1", []byte{0x63, 0x61, 0x66, 0xe9}, "café"},
		{"windows-1252", []byte{0x93, 0x68, 0x69, 0x94}, "“hi”"},
		{"utf-16le", []byte{0x68, 0x00, 0x69, 0x00}, "hi"},
		{"utf-16be", []byte{0x00, 0x68, 0x00, 0x69}, "hi"},
		{"ascii", []byte("plain"), "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.step, func(t *testing.T) {
			for _, step := range cascade {
				if step.name != tt.step {
					continue
				}
				got, err := step.decode(tt.raw)
				if err != nil {
					t.Fatalf("decode error = %v", err)
				}
				if got != tt.want {
					t.Errorf("decode = %q, want %q", got, tt.want)
				}
				return
			}
			t.Fatalf("no cascade step named %q", tt.step)
		})
	}
}

func TestDecodeBody_Empty(t *testing.T) {
	if got := DecodeBody(nil); got != "" {
		t.Errorf("DecodeBody(nil) = %q, want empty", got)
	}
}

func TestHTMLToText(t *testing.T) {
	html := "<html><body><p>Hello</p><p>World</p></body></html>"
	got := HTMLToText(html)
	if !strings.Contains(got, "Hello") || !strings.Contains(got, "World") {
		t.Errorf("HTMLToText() = %q, want text containing Hello and World", got)
	}
	if strings.Contains(got, "<p>") {
		t.Errorf("HTMLToText() left markup in place: %q", got)
	}
}

func TestHTMLToText_Empty(t *testing.T) {
	if got := HTMLToText(""); got != "" {
		t.Errorf("HTMLToText(\"\") = %q, want empty", got)
	}
}

func TestCollapseBlankLines(t *testing.T) {
	in := "a\n\n\n\n\nb"
	want := "a\n\n\nb"
	if got := collapseBlankLines(in); got != want {
		t.Errorf("collapseBlankLines() = %q, want %q", got, want)
	}
}
