// Package heading renumbers HTML headings so their levels follow the
// document structure.
//
// Headings are read in document order and nested by declared level:
// a heading becomes a child of the most recent heading with a strictly
// lower level. The real level of a heading is its depth in that tree,
// so the corrected document never skips a level.
package heading

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// DefaultIDPrefix is used for generated identifiers when none is given.
const DefaultIDPrefix = "section-"

var idAttrPattern = regexp.MustCompile(`(?i)(^|\s)id\s*=`)

// Options controls the correction pass.
type Options struct {
	Delta           int    // Level of the virtual root; top-level headings get Delta+1
	RelocateOrphans bool   // Move single children of nested headings up one level
	AssignIDs       bool   // Insert a generated id attribute when rewriting
	IDPrefix        string // Prefix of generated ids, DefaultIDPrefix when empty

	// PreserveExistingIDs skips id generation for headings that already
	// carry an id attribute.
	PreserveExistingIDs bool
}

func (o Options) prefix() string {
	if o.IDPrefix == "" {
		return DefaultIDPrefix
	}
	return o.IDPrefix
}

// Node is a heading in the tree. The root returned by Find is virtual and
// has no text.
type Node struct {
	offset     int
	length     int
	level      int
	text       string
	attributes string

	computed    int
	hasComputed bool

	parent   *Node // back reference only, children own the tree
	children []*Node
}

// Find scans text and builds the heading tree.
func Find(text string) *Node {
	return Build(Scan(text))
}

// Build creates a tree from occurrences given in document order.
func Build(occs []Occurrence) *Node {
	root := &Node{}
	for _, o := range occs {
		root.append(&Node{
			offset:     o.Offset,
			length:     o.Length,
			level:      o.Level,
			text:       o.Text,
			attributes: o.Attributes,
		})
	}
	return root
}

// append places n under the deepest open heading with a lower level.
// Only used while building.
func (h *Node) append(n *Node) {
	cur := h
	for len(cur.children) > 0 {
		last := cur.children[len(cur.children)-1]
		if last.level >= n.level {
			break
		}
		cur = last
	}
	cur.children = append(cur.children, n)
	n.parent = cur
}

// Offset is the byte offset of the heading element in the scanned text.
func (h *Node) Offset() int { return h.offset }

// Length is the byte length of the whole element, closing tag included.
func (h *Node) Length() int { return h.length }

// DeclaredLevel is the level written in the source tag, 0 for the root.
func (h *Node) DeclaredLevel() int { return h.level }

// Text is the inner HTML of the heading.
func (h *Node) Text() string { return h.text }

// Attributes is the raw attribute string of the opening tag.
func (h *Node) Attributes() string { return h.attributes }

// Parent returns the enclosing heading, or nil for the root.
func (h *Node) Parent() *Node { return h.parent }

// IsRoot reports whether h is the virtual root.
func (h *Node) IsRoot() bool { return h.parent == nil }

// Children returns the child headings in document order. The slice must
// not be modified.
func (h *Node) Children() []*Node { return h.children }

// HasID reports whether the opening tag already carries an id attribute.
func (h *Node) HasID() bool {
	return idAttrPattern.MatchString(h.attributes)
}

// Walk calls fn for every heading below h in document order, skipping h
// itself.
func (h *Node) Walk(fn func(*Node)) {
	for _, c := range h.children {
		fn(c)
		c.Walk(fn)
	}
}

// Len returns the number of headings below h.
func (h *Node) Len() int {
	n := 0
	h.Walk(func(*Node) { n++ })
	return n
}

// Position is the index of h among its siblings. It is looked up on every
// call because relocation reorders children.
func (h *Node) Position() int {
	if h.parent == nil {
		return 0
	}
	for i, c := range h.parent.children {
		if c == h {
			return i
		}
	}
	return 0
}

// RealLevel returns the corrected level. Once Fix has assigned a level it
// is returned as is; before that it is the depth of h plus delta.
func (h *Node) RealLevel(delta int) int {
	if h.hasComputed {
		return h.computed
	}
	if h.parent != nil {
		return h.parent.RealLevel(delta) + 1
	}
	return delta
}

// UserRepresentation joins the declared levels from the top-level
// ancestor down to h, e.g. "1.2.42".
func (h *Node) UserRepresentation(sep string) string {
	return h.representation(sep, func(n *Node) int { return n.level })
}

// RealRepresentation is UserRepresentation with real levels.
func (h *Node) RealRepresentation(sep string) string {
	return h.representation(sep, func(n *Node) int { return n.RealLevel(0) })
}

func (h *Node) representation(sep string, level func(*Node) int) string {
	s := strconv.Itoa(level(h))
	if h.parent != nil && !h.parent.IsRoot() {
		return h.parent.representation(sep, level) + sep + s
	}
	return s
}

// Identifier returns the generated id for h, e.g. "section-1.2-0".
func (h *Node) Identifier(prefix string) string {
	if prefix == "" {
		prefix = DefaultIDPrefix
	}
	return prefix + h.UserRepresentation(".") + "-" + strconv.Itoa(h.Position())
}

// Fix assigns real levels to h and everything below it, relocating
// orphans first when asked to.
func (h *Node) Fix(opts Options) {
	if opts.RelocateOrphans && h.isOrphan() {
		parent := h.parent
		grand := parent.parent
		pos := parent.Position() + 1
		parent.removeChild(h)
		grand.insertChild(h, pos)
	}

	if !h.hasComputed {
		h.computed = h.RealLevel(opts.Delta)
		h.hasComputed = true
	}

	// Children may move out of h while being fixed.
	children := append([]*Node(nil), h.children...)
	for _, c := range children {
		c.Fix(opts)
	}
}

// isOrphan reports whether h is the only child of a heading that is not
// itself top-level.
func (h *Node) isOrphan() bool {
	p := h.parent
	if p == nil || p.IsRoot() || p.parent.IsRoot() {
		return false
	}
	return len(p.children) == 1
}

func (h *Node) removeChild(n *Node) {
	h.children = slices.DeleteFunc(h.children, func(c *Node) bool { return c == n })
	if n.parent == h {
		n.parent = nil
	}
}

func (h *Node) insertChild(n *Node, pos int) {
	h.removeChild(n)
	pos = max(0, min(pos, len(h.children)))
	h.children = slices.Insert(h.children, pos, n)
	n.parent = h
}

// String renders the subtree one heading per line as
// "user -> real", mostly for debugging and tests.
func (h *Node) String() string {
	var b strings.Builder
	h.Walk(func(n *Node) {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(n.UserRepresentation("."))
		b.WriteString(" -> ")
		b.WriteString(n.RealRepresentation("."))
	})
	return b.String()
}
