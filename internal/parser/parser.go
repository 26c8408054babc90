package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/headfix/internal/doctree"
	"github.com/dgallion1/headfix/internal/heading"
)

// Parser converts raw document bytes into a corrected DocTree.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.DocTree, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".html":     true,
	".htm":      true,
	".md":       true,
	".markdown": true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts heading.Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !SupportedExtensions[ext] {
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
	return ForType(strings.TrimPrefix(ext, "."), opts)
}

// ForType returns the parser for a document type name: html, md or docx.
func ForType(kind string, opts heading.Options) (Parser, error) {
	switch strings.ToLower(kind) {
	case "html", "htm":
		return &HTMLParser{Options: opts}, nil
	case "md", "markdown":
		return &MarkdownParser{Options: opts}, nil
	case "docx":
		return &DOCXParser{Options: opts}, nil
	default:
		return nil, fmt.Errorf("unsupported document type: %s", kind)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

func trimExt(filename string, exts ...string) string {
	for _, ext := range exts {
		if strings.HasSuffix(strings.ToLower(filename), ext) {
			return filename[:len(filename)-len(ext)]
		}
	}
	return filename
}
