package parser

import (
	"testing"

	"github.com/dgallion1/headfix/internal/heading"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"a.html", "*parser.HTMLParser"},
		{"a.HTM", "*parser.HTMLParser"},
		{"a.md", "*parser.MarkdownParser"},
		{"a.markdown", "*parser.MarkdownParser"},
		{"a.docx", "*parser.DOCXParser"},
	}
	for _, tt := range tests {
		p, err := ForFile(tt.filename, heading.Options{})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.filename, err)
		}
		if got := typeName(p); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.filename, got, tt.want)
		}
	}

	if _, err := ForFile("a.pdf", heading.Options{}); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if IsSupportedExtension("notes.txt") {
		t.Error("txt should not be supported")
	}
}

func TestForType_Unknown(t *testing.T) {
	if _, err := ForType("rtf", heading.Options{}); err == nil {
		t.Error("expected error for unknown type")
	}
}

func typeName(p Parser) string {
	switch p.(type) {
	case *HTMLParser:
		return "*parser.HTMLParser"
	case *MarkdownParser:
		return "*parser.MarkdownParser"
	case *DOCXParser:
		return "*parser.DOCXParser"
	}
	return "unknown"
}
