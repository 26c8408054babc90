package heading

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Result pairs the corrected tree with the rewritten text.
type Result struct {
	Root *Node
	Text string
}

func (r Result) String() string { return r.Text }

// FixText renumbers every heading of text. Attributes are kept and, when
// opts.AssignIDs is set, a generated id is placed first in the opening tag.
func FixText(text string, opts Options) Result {
	root := Find(text)
	root.Fix(opts)

	// Later headings are replaced first so the offsets of earlier ones
	// stay valid whatever the length of each replacement.
	out := text
	root.walkReverse(func(n *Node) {
		tag := n.render(opts)
		out = out[:n.offset] + tag + out[n.offset+n.length:]
	})

	return Result{Root: root, Text: out}
}

// walkReverse visits the headings below h in reverse document order:
// siblings right to left, children before their parent.
func (h *Node) walkReverse(fn func(*Node)) {
	for i := len(h.children) - 1; i >= 0; i-- {
		c := h.children[i]
		c.walkReverse(fn)
		fn(c)
	}
}

// ID returns the id that the rewriter inserts for h under opts, or the
// empty string when none is inserted.
func (h *Node) ID(opts Options) string {
	if !opts.AssignIDs || (opts.PreserveExistingIDs && h.HasID()) {
		return ""
	}
	return h.Identifier(opts.prefix())
}

func (h *Node) render(opts Options) string {
	level := strconv.Itoa(h.RealLevel(opts.Delta))

	var b strings.Builder
	b.Grow(len(h.text) + len(h.attributes) + 16)
	b.WriteString("<h")
	b.WriteString(level)
	if id := h.ID(opts); id != "" {
		b.WriteString(` id="`)
		b.WriteString(html.EscapeString(id))
		b.WriteByte('"')
	}
	if attrs := strings.TrimSpace(h.attributes); attrs != "" {
		b.WriteByte(' ')
		b.WriteString(attrs)
	}
	b.WriteByte('>')
	b.WriteString(h.text)
	b.WriteString("</h")
	b.WriteString(level)
	b.WriteByte('>')
	return b.String()
}
