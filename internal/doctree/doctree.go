package doctree

import (
	"strconv"
	"strings"

	"github.com/dgallion1/headfix/internal/heading"
)

// DocTree is the root of a corrected document.
type DocTree struct {
	Title    string     // Document title (from <title> or filename)
	HTML     string     // Document body with renumbered headings
	Children []*DocNode // Top-level sections
}

// DocNode is a section of the corrected outline.
type DocNode struct {
	Title         string     `json:"title" yaml:"title"` // Heading text without markup
	Level         int        `json:"level" yaml:"level"` // Corrected level
	DeclaredLevel int        `json:"declared_level" yaml:"declared_level"`
	ID            string     `json:"id,omitempty" yaml:"id,omitempty"`
	Children      []*DocNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// Entry is one line of a flat table of contents.
type Entry struct {
	Title      string   `json:"title" yaml:"title"`
	Level      int      `json:"level" yaml:"level"`
	ID         string   `json:"id,omitempty" yaml:"id,omitempty"`
	Breadcrumb []string `json:"breadcrumb" yaml:"breadcrumb"` // Heading hierarchy, e.g. ["Intro", "Scope"]
}

// FromHeadings converts a fixed heading tree into outline nodes. title
// turns the inner HTML of a heading into display text.
func FromHeadings(root *heading.Node, opts heading.Options, title func(string) string) []*DocNode {
	var out []*DocNode
	for _, h := range root.Children() {
		out = append(out, &DocNode{
			Title:         title(h.Text()),
			Level:         h.RealLevel(opts.Delta),
			DeclaredLevel: h.DeclaredLevel(),
			ID:            h.ID(opts),
			Children:      FromHeadings(h, opts, title),
		})
	}
	return out
}

// Flatten walks the outline in document order.
func (t *DocTree) Flatten() []Entry {
	var entries []Entry
	for _, child := range t.Children {
		entries = flattenNode(child, nil, entries)
	}
	return entries
}

func flattenNode(node *DocNode, breadcrumb []string, entries []Entry) []Entry {
	bc := make([]string, 0, len(breadcrumb)+1)
	bc = append(bc, breadcrumb...)
	bc = append(bc, node.Title)

	entries = append(entries, Entry{
		Title:      node.Title,
		Level:      node.Level,
		ID:         node.ID,
		Breadcrumb: bc,
	})
	for _, child := range node.Children {
		entries = flattenNode(child, bc, entries)
	}
	return entries
}

// Indented renders the outline as text, indented two spaces per nesting
// depth.
func (t *DocTree) Indented() string {
	var b strings.Builder
	for _, e := range t.Flatten() {
		b.WriteString(strings.Repeat("  ", len(e.Breadcrumb)-1))
		b.WriteString("h")
		b.WriteString(strconv.Itoa(e.Level))
		b.WriteString(" ")
		b.WriteString(e.Title)
		if e.ID != "" {
			b.WriteString(" #")
			b.WriteString(e.ID)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
