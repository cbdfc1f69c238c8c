/*
Package content parses topic intro text into a lead paragraph and a list of
collapsible sections.

# Intro Format

An intro is a single string with two structural conventions:

  - Paragraphs are separated by a blank line.
  - Inside a paragraph, a line starting with the bullet glyph (•) is a list
    item; any other non-empty line is prose.

Inline spans wrapped in backticks are code and are reported as separate
fragments by RenderInlineSpans.

# Heuristics

A paragraph becomes a Section when its first colon sits strictly between
index 0 and SectionHeaderLimit. The first paragraph is a lead paragraph when
it has no colon or its first colon sits beyond LeadHeaderLimit. Both limits
are tuned against the existing content corpus and must not change without
re-checking every topic.

Paragraphs that fail the section test are dropped silently. Pages rely on
this to hide stray prose that does not have the "Header: content" shape.

# Usage

	doc := content.Parse(topic.Intro)
	if doc.HasLead {
		fmt.Println(doc.Lead)
	}
	for _, s := range doc.Sections {
		fmt.Println(s.Header, len(s.Sentences), len(s.Bullets))
	}
*/
package content
