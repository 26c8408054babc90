package heading

import (
	"strings"
	"testing"
)

func TestFixText_Levels(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"plain", Options{}, doc(1, 2, 3, 3, 4, 1, 2, 3, 4, 2)},
		{"relocate", Options{RelocateOrphans: true}, doc(1, 2, 3, 3, 3, 1, 2, 2, 2, 2)},
		{"delta", Options{Delta: 5}, doc(6, 7, 8, 8, 9, 6, 7, 8, 9, 7)},
		{"delta and relocate", Options{Delta: 2, RelocateOrphans: true}, doc(3, 4, 5, 5, 5, 3, 4, 4, 4, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FixText(mixed, tt.opts)
			if got.Text != tt.want {
				t.Errorf("unexpected text:\n%s\nwant:\n%s", got.Text, tt.want)
			}
			if got.String() != got.Text {
				t.Errorf("String() should return the text")
			}
		})
	}
}

func TestFixText_AttributePreservation(t *testing.T) {
	input := `<h2     class="foo">first</h2>
<p>noise</p>

<h1>second</h2>
<p>noise</p>

<h4>third</h2>
<p>noise</p>`

	want := `<h1 class="foo">first</h1>
<p>noise</p>

<h1>second</h1>
<p>noise</p>

<h2>third</h2>
<p>noise</p>`

	if got := FixText(input, Options{}).Text; got != want {
		t.Errorf("unexpected text:\n%s\nwant:\n%s", got, want)
	}
}

func TestFixText_AssignIDs(t *testing.T) {
	input := `<h1 class="foo">first</h2>`

	got := FixText(input, Options{AssignIDs: true}).Text
	if want := `<h1 id="section-1-0" class="foo">first</h1>`; got != want {
		t.Errorf("default prefix: got %q, want %q", got, want)
	}

	got = FixText(input, Options{AssignIDs: true, IDPrefix: "foo"}).Text
	if want := `<h1 id="foo1-0" class="foo">first</h1>`; got != want {
		t.Errorf("custom prefix: got %q, want %q", got, want)
	}

	// The id keeps the declared level even though the tag is renumbered.
	got = FixText(`<h2 class="foo">text</h2>`, Options{AssignIDs: true, IDPrefix: "foo"}).Text
	if want := `<h1 id="foo2-0" class="foo">text</h1>`; got != want {
		t.Errorf("declared level: got %q, want %q", got, want)
	}
}

func TestFixText_IDsUseDeclaredRepresentationAndPosition(t *testing.T) {
	input := "<h1>a</h1><h3>b</h3><h3>c</h3><h1>d</h1>"
	want := `<h1 id="s1-0">a</h1><h2 id="s1.3-0">b</h2><h2 id="s1.3-1">c</h2><h1 id="s1-1">d</h1>`

	if got := FixText(input, Options{AssignIDs: true, IDPrefix: "s"}).Text; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFixText_ExistingID(t *testing.T) {
	input := `<h3 id="keep">x</h3>`

	got := FixText(input, Options{AssignIDs: true}).Text
	if want := `<h1 id="section-3-0" id="keep">x</h1>`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got = FixText(input, Options{AssignIDs: true, PreserveExistingIDs: true}).Text
	if want := `<h1 id="keep">x</h1>`; got != want {
		t.Errorf("preserve: got %q, want %q", got, want)
	}
}

func TestFixText_EscapesID(t *testing.T) {
	got := FixText("<h1>a</h1>", Options{AssignIDs: true, IDPrefix: `x"<`}).Text
	if want := `<h1 id="x&#34;&lt;1-0">a</h1>`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFixText_LengthChangesKeepEarlierRanges(t *testing.T) {
	// Every replacement grows or shrinks its range; the surrounding text
	// must come through untouched.
	input := "A<h12>one</h12>B<h30 class=\"c\">two</h30>C<h1>three</h1>D"
	want := "A<h11 id=\"section-12-0\">one</h11>B<h12 id=\"section-12.30-0\" class=\"c\">two</h12>C<h11 id=\"section-1-1\">three</h11>D"

	got := FixText(input, Options{Delta: 10, AssignIDs: true}).Text
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFixText_MultilineContent(t *testing.T) {
	input := "<H3>line one\n<em>line two</em></H3>"
	want := "<h1>line one\n<em>line two</em></h1>"
	if got := FixText(input, Options{}).Text; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFixText_NoHeadings(t *testing.T) {
	input := "<p>nothing to see</p>"
	res := FixText(input, Options{AssignIDs: true})
	if res.Text != input {
		t.Errorf("expected text unchanged, got %q", res.Text)
	}
	if len(res.Root.Children()) != 0 {
		t.Errorf("expected empty tree")
	}
}

func TestFixText_DeltaShift(t *testing.T) {
	res := FixText("<h1>A</h1><h2>B</h2>", Options{Delta: 5})
	if got := res.Root.RealLevel(5); got != 5 {
		t.Errorf("expected root level 5, got %d", got)
	}
	if want := "<h6>A</h6><h7>B</h7>"; res.Text != want {
		t.Errorf("got %q, want %q", res.Text, want)
	}
}

func TestWalkReverse_DescendingOffsets(t *testing.T) {
	for _, relocate := range []bool{false, true} {
		root := Find(mixed)
		root.Fix(Options{RelocateOrphans: relocate})

		prev := len(mixed) + 1
		var seen int
		root.walkReverse(func(n *Node) {
			if n.Offset() >= prev {
				t.Errorf("relocate=%t: offset %d visited after %d", relocate, n.Offset(), prev)
			}
			prev = n.Offset()
			seen++
		})
		if seen != 10 {
			t.Errorf("relocate=%t: expected 10 visits, got %d", relocate, seen)
		}
	}
}

func TestFixText_ClosingTagFollowsOpening(t *testing.T) {
	got := FixText("<h2>x</H5>", Options{}).Text
	if !strings.HasSuffix(got, "</h1>") {
		t.Errorf("expected closing tag rewritten, got %q", got)
	}
}
