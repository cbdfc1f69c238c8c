package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderInlineSpans(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Fragment
	}{
		{name: "empty", text: "", want: []Fragment{}},
		{name: "plain", text: "no code", want: []Fragment{{Text: "no code"}}},
		{
			name: "one span",
			text: "Call `len(x)` now",
			want: []Fragment{{Text: "Call "}, {Text: "len(x)", Code: true}, {Text: " now"}},
		},
		{
			name: "adjacent spans",
			text: "`a``b`",
			want: []Fragment{{Text: "a", Code: true}, {Text: "b", Code: true}},
		},
		{
			name: "colon inside span",
			text: "Slice `a[1:3]`.",
			want: []Fragment{{Text: "Slice "}, {Text: "a[1:3]", Code: true}, {Text: "."}},
		},
		{
			name: "unbalanced",
			text: "Stray ` mark",
			want: []Fragment{{Text: "Stray ` mark"}},
		},
		{
			name: "empty pair",
			text: "x `` y",
			want: []Fragment{{Text: "x `` y"}},
		},
		{
			name: "doubled delimiter before span",
			text: "``a`",
			want: []Fragment{{Text: "`"}, {Text: "a", Code: true}},
		},
		{
			name: "second of doubled delimiter opens span",
			text: "`` then `x`",
			want: []Fragment{{Text: "`"}, {Text: " then ", Code: true}, {Text: "x`"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderInlineSpans(tt.text))
		})
	}
}

func TestRenderInlineSpansPreservesText(t *testing.T) {
	inputs := []string{
		"Use `print()` to show `x` values",
		"`start` middle `end`",
		"Dict `{'k': 1}` and list `[1, 2]`.",
	}

	for _, in := range inputs {
		fragments := RenderInlineSpans(in)

		var sb strings.Builder
		for _, f := range fragments {
			sb.WriteString(f.Text)
		}
		assert.Equal(t, strings.ReplaceAll(in, CodeDelimiter, ""), sb.String())
		assert.Equal(t, fragments, RenderInlineSpans(in))
	}
}

func TestTableOfContents(t *testing.T) {
	doc := Parse("Lead.\n\nWhat Are Lists?: Ordered.\n\n???: odd")

	toc := doc.TableOfContents()

	assert.Equal(t, []TOCEntry{
		{Index: 0, Anchor: "section-0-what-are-lists", Header: "What Are Lists?"},
		{Index: 1, Anchor: "section-1", Header: "???"},
	}, toc)
}
