package heading

import (
	"regexp"
	"strconv"
)

// headingPattern matches a full heading element. Content is matched
// lazily so two headings on one line stay separate.
var headingPattern = regexp.MustCompile(`(?is)<h(\d+)([^>]*)>(.*?)</h\d+>`)

// Occurrence is one heading found in a text.
type Occurrence struct {
	Offset     int    // Byte offset of the full match
	Length     int    // Byte length of the full match, closing tag included
	Level      int    // Declared level, as written
	Text       string // Inner text between the tags
	Attributes string // Raw attribute text of the opening tag, may be empty
}

// Scan returns the headings of text in document order.
func Scan(text string) []Occurrence {
	matches := headingPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	occs := make([]Occurrence, 0, len(matches))
	for _, m := range matches {
		level, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			// Digit run too long for an int.
			continue
		}
		occs = append(occs, Occurrence{
			Offset:     m[0],
			Length:     m[1] - m[0],
			Level:      level,
			Text:       text[m[6]:m[7]],
			Attributes: text[m[4]:m[5]],
		})
	}
	return occs
}
