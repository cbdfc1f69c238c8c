package content

import (
	"fmt"
	"regexp"
	"strings"
)

// RenderInlineSpans splits text into plain and code fragments. A code span
// is a non-empty run between two delimiters; the delimiters are dropped.
// Spans do not nest, and a delimiter without a partner stays in plain text.
func RenderInlineSpans(text string) []Fragment {
	fragments := []Fragment{}
	var plain strings.Builder

	flush := func() {
		if plain.Len() > 0 {
			fragments = append(fragments, Fragment{Text: plain.String()})
			plain.Reset()
		}
	}

	rest := text
	for {
		open := strings.Index(rest, CodeDelimiter)
		if open == -1 {
			plain.WriteString(rest)
			break
		}

		after := rest[open+len(CodeDelimiter):]
		end := strings.Index(after, CodeDelimiter)
		if end == -1 {
			plain.WriteString(rest)
			break
		}
		if end == 0 {
			// Spans are never empty: the first delimiter is text and the
			// second may still open a span
			plain.WriteString(rest[:open+len(CodeDelimiter)])
			rest = after
			continue
		}

		plain.WriteString(rest[:open])
		flush()
		fragments = append(fragments, Fragment{Text: after[:end], Code: true})
		rest = after[end+len(CodeDelimiter):]
	}
	flush()

	return fragments
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// TableOfContents lists one anchor per section in document order
func (d Document) TableOfContents() []TOCEntry {
	entries := make([]TOCEntry, 0, len(d.Sections))
	for i, s := range d.Sections {
		entries = append(entries, TOCEntry{
			Index:  i,
			Anchor: Anchor(i, s.Header),
			Header: strings.TrimSpace(s.Header),
		})
	}
	return entries
}

// Anchor builds a stable element id for a section
func Anchor(index int, header string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(header), "-"), "-")
	if slug == "" {
		return fmt.Sprintf("section-%d", index)
	}
	return fmt.Sprintf("section-%d-%s", index, slug)
}
