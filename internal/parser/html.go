package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/headfix/internal/doctree"
	"github.com/dgallion1/headfix/internal/heading"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLParser handles HTML files.
type HTMLParser struct {
	Options heading.Options
}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read html: %w", err)
	}
	return p.fix(string(src), trimExt(filename, ".html", ".htm"))
}

// fix renumbers the headings of src and builds the outline from the
// corrected tree.
func (p *HTMLParser) fix(src, title string) (*doctree.DocTree, error) {
	res := heading.FixText(src, p.Options)

	tree := &doctree.DocTree{
		Title: title,
		HTML:  res.Text,
	}

	doc, err := html.Parse(strings.NewReader(res.Text))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	if t := findTitle(doc); t != "" {
		tree.Title = t
	}

	tree.Children = doctree.FromHeadings(res.Root, p.Options, plainText)
	return tree, nil
}

var fragmentContext = &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}

// plainText strips markup from a heading's inner HTML and collapses
// whitespace.
func plainText(fragment string) string {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), fragmentContext)
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	var buf strings.Builder
	for _, n := range nodes {
		collectText(n, &buf)
	}
	return strings.Join(strings.Fields(buf.String()), " ")
}

func collectText(n *html.Node, buf *strings.Builder) {
	if n.Type == html.TextNode {
		buf.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, buf)
	}
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	collectText(n, &buf)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}
