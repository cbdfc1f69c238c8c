package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWorkedExample(t *testing.T) {
	text := "Intro sentence without colon.\n\nTopic One: First fact. Second fact.\n• bullet A\n• bullet B"

	doc := Parse(text)

	require.True(t, doc.HasLead)
	assert.Equal(t, "Intro sentence without colon.", doc.Lead)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "Topic One", doc.Sections[0].Header)
	assert.Equal(t, []string{"First fact.", "Second fact."}, doc.Sections[0].Sentences)
	assert.Equal(t, []string{"bullet A", "bullet B"}, doc.Sections[0].Bullets)
	assert.Zero(t, doc.Dropped)
}

func TestShortFirstParagraphIsSection(t *testing.T) {
	doc := Parse("Short: abc")

	assert.False(t, doc.HasLead)
	assert.Empty(t, doc.Lead)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "Short", doc.Sections[0].Header)
	assert.Equal(t, []string{"abc"}, doc.Sections[0].Sentences)
}

func TestSplitIntoParagraphs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: []string{}},
		{name: "whitespace only", text: " \n\n \n\n\t", want: []string{}},
		{name: "single", text: "one", want: []string{"one"}},
		{name: "trims", text: "  one  \n\n two ", want: []string{"one", "two"}},
		{name: "extra blank lines", text: "a\n\n\n\nb", want: []string{"a", "b"}},
		{name: "single newline stays inside", text: "a\nb\n\nc", want: []string{"a\nb", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitIntoParagraphs(tt.text))
		})
	}
}

func TestParagraphRoundTrip(t *testing.T) {
	inputs := []string{
		"a\n\nb\n\nc",
		"  lead  \n\n\n\nHeader: body\n• x\n\n   \n\nTail: end.",
		"\n\nonly\n\n",
	}

	for _, in := range inputs {
		paragraphs := SplitIntoParagraphs(in)
		joined := strings.Join(paragraphs, ParagraphSeparator)
		assert.Equal(t, paragraphs, SplitIntoParagraphs(joined))
	}
}

func TestClassifyFirstParagraph(t *testing.T) {
	long := strings.Repeat("x", 41) + ": tail"
	exact := strings.Repeat("x", 40) + ": tail"

	tests := []struct {
		name     string
		input    []string
		wantLead string
		wantOK   bool
		wantRest int
	}{
		{name: "empty", input: nil, wantRest: 0},
		{name: "no colon", input: []string{"Plain lead.", "H: b"}, wantLead: "Plain lead.", wantOK: true, wantRest: 1},
		{name: "colon past limit", input: []string{long, "H: b"}, wantLead: long, wantOK: true, wantRest: 1},
		{name: "colon at limit", input: []string{exact, "H: b"}, wantRest: 2},
		{name: "short header", input: []string{"Short: abc"}, wantRest: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead, ok, rest := ClassifyFirstParagraph(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantLead, lead)
			assert.Len(t, rest, tt.wantRest)
			assert.NotNil(t, rest)
		})
	}
}

func TestParseSectionHeaderRecovery(t *testing.T) {
	headers := []string{
		"A",
		"Topic One",
		"Lists and tuples",
		" padded ",
		strings.Repeat("h", 99),
	}

	for _, h := range headers {
		section, ok := ParseSection(h + ": body text.")
		require.True(t, ok, "header %q", h)
		assert.Equal(t, h, section.Header)
	}
}

func TestParseSectionDrops(t *testing.T) {
	tests := []struct {
		name      string
		paragraph string
	}{
		{name: "no delimiter", paragraph: "Just prose here."},
		{name: "delimiter at zero", paragraph: ": leading colon"},
		{name: "delimiter at 100", paragraph: strings.Repeat("h", 100) + ": body"},
		{name: "delimiter at 150", paragraph: strings.Repeat("w", 150) + ": body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseSection(tt.paragraph)
			assert.False(t, ok)
		})
	}
}

func TestParseDropsStrayParagraphs(t *testing.T) {
	text := strings.Join([]string{
		"Welcome to lists.",
		"Creation: Use brackets.",
		"This paragraph has no header at all.",
		strings.Repeat("z", 150) + ": too far",
		"Slicing: Use `a[1:3]`.",
	}, ParagraphSeparator)

	doc := Parse(text)

	require.True(t, doc.HasLead)
	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "Creation", doc.Sections[0].Header)
	assert.Equal(t, "Slicing", doc.Sections[1].Header)
	assert.Equal(t, 2, doc.Dropped)
}

func TestColonBetweenLeadAndSectionLimits(t *testing.T) {
	header := strings.Repeat("m", 60)

	// As the first paragraph it reads as a long sentence
	doc := Parse(header + ": body.")
	assert.True(t, doc.HasLead)
	assert.Empty(t, doc.Sections)

	// Anywhere else it is still a section
	doc = Parse("Lead.\n\n" + header + ": body.")
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, header, doc.Sections[0].Header)
}

func TestDelimiterIndexCountsUTF16Units(t *testing.T) {
	assert.Equal(t, -1, delimiterIndex("none"))
	assert.Equal(t, 5, delimiterIndex("Short: abc"))
	assert.Equal(t, 2, delimiterIndex("é•: x"))
	assert.Equal(t, 3, delimiterIndex("a🐍: x"))
}

func TestSplitBulletsAndProse(t *testing.T) {
	body := " First line.\n• one\n   • two  \n\nSecond line!\n•three"

	prose, bullets := SplitBulletsAndProse(body)

	assert.Equal(t, "First line. Second line!", prose)
	assert.Equal(t, []string{"one", "two", "three"}, bullets)
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name  string
		prose string
		want  []string
	}{
		{name: "empty", prose: "", want: []string{}},
		{name: "single", prose: "One sentence", want: []string{"One sentence"}},
		{name: "mixed terminators", prose: "Is it? Yes! It is. Done", want: []string{"Is it?", "Yes!", "It is.", "Done"}},
		{name: "no space after dot", prose: "Use x.append(1) here. Then", want: []string{"Use x.append(1) here.", "Then"}},
		{name: "multiple spaces", prose: "A.   B.", want: []string{"A.", "B."}},
		{name: "non ascii", prose: "Café é bom. Olá!", want: []string{"Café é bom.", "Olá!"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.prose))
		})
	}
}
