package content

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// sentenceBoundary matches the whitespace after a terminator. The lookbehind
// keeps the terminator attached to its sentence, which RE2 cannot express.
var sentenceBoundary = regexp2.MustCompile(`(?<=[.!?])\s+`, regexp2.None)

// Parse runs the full pipeline over an intro. It never fails: paragraphs
// that do not look like "Header: content" are counted in Dropped.
func Parse(text string) Document {
	paragraphs := SplitIntoParagraphs(text)
	lead, hasLead, rest := ClassifyFirstParagraph(paragraphs)

	doc := Document{
		Lead:     lead,
		HasLead:  hasLead,
		Sections: make([]Section, 0, len(rest)),
	}
	for _, p := range rest {
		section, ok := ParseSection(p)
		if !ok {
			doc.Dropped++
			continue
		}
		doc.Sections = append(doc.Sections, section)
	}
	return doc
}

// SplitIntoParagraphs splits on blank lines and drops empty paragraphs
func SplitIntoParagraphs(text string) []string {
	parts := strings.Split(text, ParagraphSeparator)
	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	return paragraphs
}

// ClassifyFirstParagraph separates a lead paragraph from the rest. The first
// paragraph is a lead when it has no header delimiter or the delimiter sits
// past LeadHeaderLimit.
func ClassifyFirstParagraph(paragraphs []string) (lead string, ok bool, rest []string) {
	if len(paragraphs) == 0 {
		return "", false, []string{}
	}

	first := paragraphs[0]
	if idx := delimiterIndex(first); idx == -1 || idx > LeadHeaderLimit {
		return first, true, paragraphs[1:]
	}
	return "", false, paragraphs
}

// ParseSection turns a "Header: content" paragraph into a Section. It
// returns false when the first delimiter is not in (0, SectionHeaderLimit).
func ParseSection(paragraph string) (Section, bool) {
	idx := delimiterIndex(paragraph)
	if idx <= 0 || idx >= SectionHeaderLimit {
		return Section{}, false
	}

	cut := strings.Index(paragraph, HeaderDelimiter)
	header := paragraph[:cut]
	body := paragraph[cut+len(HeaderDelimiter):]

	prose, bullets := SplitBulletsAndProse(body)
	return Section{
		Header:    header,
		Sentences: SplitSentences(prose),
		Bullets:   bullets,
	}, true
}

// SplitBulletsAndProse pulls bullet lines out of a section body. Remaining
// non-empty lines are joined with single spaces into one prose block.
func SplitBulletsAndProse(body string) (prose string, bullets []string) {
	bullets = []string{}
	var lines []string

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
		case strings.HasPrefix(trimmed, BulletGlyph):
			bullets = append(bullets, strings.TrimSpace(strings.TrimPrefix(trimmed, BulletGlyph)))
		default:
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, " "), bullets
}

// SplitSentences splits prose after '.', '!' or '?' followed by whitespace
func SplitSentences(prose string) []string {
	sentences := []string{}
	runes := []rune(prose)

	emit := func(s string) {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}

	start := 0
	m, err := sentenceBoundary.FindRunesMatch(runes)
	for err == nil && m != nil {
		emit(string(runes[start:m.Index]))
		start = m.Index + m.Length
		m, err = sentenceBoundary.FindNextMatch(m)
	}
	emit(string(runes[start:]))

	return sentences
}

// delimiterIndex reports the position of the first header delimiter in
// UTF-16 code units, or -1. The limits were tuned against browser string
// offsets, so a multi-byte glyph ahead of the colon counts the same way here.
func delimiterIndex(s string) int {
	cut := strings.Index(s, HeaderDelimiter)
	if cut == -1 {
		return -1
	}

	units := 0
	for _, r := range s[:cut] {
		if r == utf8.RuneError {
			units++
			continue
		}
		units += utf16.RuneLen(r)
	}
	return units
}
