package disclosure

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/GriffinCanCode/PyLearn/backend/internal/domain/content"
)

// Assets holds the client-side disclosure script
//
//go:embed assets/disclosure.js
var Assets embed.FS

// Card is the view model for one section
type Card struct {
	Index     int                  `json:"index"`
	Anchor    string               `json:"anchor"`
	Header    string               `json:"header"`
	Open      bool                 `json:"open"`
	Sentences [][]content.Fragment `json:"sentences"`
	Bullets   [][]content.Fragment `json:"bullets"`
}

// Page is the view model for a whole intro
type Page struct {
	Title string             `json:"title,omitempty"`
	Lead  []content.Fragment `json:"lead,omitempty"`
	Cards []Card             `json:"cards"`
	TOC   []content.TOCEntry `json:"toc"`
}

// BuildPage combines a parsed intro with its disclosure state. A nil state
// renders every card collapsed.
func BuildPage(title string, doc content.Document, state *State) Page {
	page := Page{
		Title: title,
		Cards: make([]Card, 0, len(doc.Sections)),
		TOC:   doc.TableOfContents(),
	}
	if doc.HasLead {
		page.Lead = content.RenderInlineSpans(doc.Lead)
	}

	for i, s := range doc.Sections {
		card := Card{
			Index:     i,
			Anchor:    content.Anchor(i, s.Header),
			Header:    strings.TrimSpace(s.Header),
			Open:      state != nil && state.IsOpen(i),
			Sentences: make([][]content.Fragment, 0, len(s.Sentences)),
			Bullets:   make([][]content.Fragment, 0, len(s.Bullets)),
		}
		for _, sentence := range s.Sentences {
			card.Sentences = append(card.Sentences, content.RenderInlineSpans(sentence))
		}
		for _, bullet := range s.Bullets {
			card.Bullets = append(card.Bullets, content.RenderInlineSpans(bullet))
		}
		page.Cards = append(page.Cards, card)
	}
	return page
}

const pageTemplate = `<div class="intro" data-sections="{{len .Cards}}">
{{- if .Title}}<h2 class="intro-title">{{.Title}}</h2>{{end}}
{{- if .Lead}}<p class="intro-lead">{{fragments .Lead}}</p>{{end}}
{{- if .TOC}}<nav class="intro-toc">{{range .TOC}}<a href="#{{.Anchor}}">{{.Header}}</a>{{end}}</nav>{{end}}
{{- if .Cards}}<div class="intro-actions"><button type="button" data-action="expand-all">Expand all</button><button type="button" data-action="collapse-all">Collapse all</button></div>{{end}}
{{- range .Cards}}
<section class="intro-card" id="{{.Anchor}}" data-index="{{.Index}}">
<button type="button" class="intro-card-trigger" data-toggle="{{.Index}}" aria-expanded="{{.Open}}" aria-controls="{{.Anchor}}-body">{{.Header}}</button>
<div class="intro-card-body" id="{{.Anchor}}-body" data-collapsible="true" data-open="{{.Open}}">
<div class="intro-card-content">
{{- range .Sentences}}<p>{{fragments .}}</p>{{end}}
{{- if .Bullets}}<ul>{{range .Bullets}}<li>{{fragments .}}</li>{{end}}</ul>{{end}}
</div>
</div>
</section>
{{- end}}
</div>`

// Renderer turns pages into sanitized HTML
type Renderer struct {
	tmpl   *template.Template
	policy *bluemonday.Policy
}

// NewRenderer creates a renderer with the card template and a policy that
// keeps only the markup the cards use
func NewRenderer() *Renderer {
	tmpl := template.Must(template.New("intro").Funcs(template.FuncMap{
		"fragments": renderFragments,
	}).Parse(pageTemplate))

	return &Renderer{
		tmpl:   tmpl,
		policy: cardPolicy(),
	}
}

// Render writes one intro as HTML cards
func (r *Renderer) Render(page Page) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, page); err != nil {
		return "", fmt.Errorf("failed to render intro: %w", err)
	}
	return r.policy.Sanitize(buf.String()), nil
}

// renderFragments escapes each fragment and wraps code spans
func renderFragments(fragments []content.Fragment) template.HTML {
	var sb strings.Builder
	for _, f := range fragments {
		if f.Code {
			sb.WriteString("<code>")
			sb.WriteString(template.HTMLEscapeString(f.Text))
			sb.WriteString("</code>")
			continue
		}
		sb.WriteString(template.HTMLEscapeString(f.Text))
	}
	return template.HTML(sb.String())
}

func cardPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("div", "section", "p", "ul", "li", "code", "h2", "nav")
	p.AllowAttrs("class", "id").Globally()
	p.AllowDataAttributes()
	p.AllowAttrs("type", "aria-expanded", "aria-controls").OnElements("button")
	p.AllowRelativeURLs(true)
	p.AllowAttrs("href").OnElements("a")
	return p
}
