package parser

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/headfix/internal/doctree"
	"github.com/dgallion1/headfix/internal/heading"
	"github.com/fumiama/go-docx"
	"golang.org/x/net/html"
)

// DOCXParser handles .docx files. Paragraphs styled as headings become
// heading tags and go through the same correction as HTML input.
type DOCXParser struct {
	Options heading.Options
}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var blocks []block
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		blocks = append(blocks, block{level: docxHeadingLevel(para), text: text})
	}

	hp := &HTMLParser{Options: p.Options}
	return hp.fix(renderBlocks(blocks), trimExt(filename, ".docx"))
}

// block is a paragraph of a word-processing document. level is zero for
// body text.
type block struct {
	level int
	text  string
}

func renderBlocks(blocks []block) string {
	var b strings.Builder
	for _, bl := range blocks {
		tag := "p"
		if bl.level > 0 {
			tag = "h" + strconv.Itoa(bl.level)
		}
		fmt.Fprintf(&b, "<%s>%s</%s>\n", tag, html.EscapeString(bl.text), tag)
	}
	return b.String()
}

var headingStyle = regexp.MustCompile(`(?i)^heading\s*(\d+)$`)

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	return styleLevel(para.Properties.Style.Val)
}

// styleLevel maps "Heading3" or "heading 3" to 3. Levels are not capped
// at 6; the correction pass renumbers them anyway.
func styleLevel(style string) int {
	m := headingStyle.FindStringSubmatch(strings.TrimSpace(style))
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
