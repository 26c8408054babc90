package parser

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dgallion1/headfix/internal/doctree"
	"github.com/dgallion1/headfix/internal/heading"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// MarkdownParser renders Markdown with goldmark and corrects the headings
// of the resulting HTML.
type MarkdownParser struct {
	Options heading.Options
}

// Raw HTML is passed through so inline heading tags get renumbered too.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := markdown.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	hp := &HTMLParser{Options: p.Options}
	return hp.fix(buf.String(), trimExt(filename, ".md", ".markdown"))
}
