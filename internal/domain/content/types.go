package content

const (
	// LeadHeaderLimit is the largest colon index a first paragraph may have
	// and still read as a short "Header:" label. Past it the paragraph is a
	// long sentence and becomes the lead.
	LeadHeaderLimit = 40

	// SectionHeaderLimit bounds the colon index of a section paragraph. The
	// index must fall in the open range (0, SectionHeaderLimit).
	SectionHeaderLimit = 100

	// ParagraphSeparator splits an intro into paragraphs.
	ParagraphSeparator = "\n\n"

	// BulletGlyph marks a list item line.
	BulletGlyph = "•"

	// CodeDelimiter wraps an inline code span.
	CodeDelimiter = "`"

	// HeaderDelimiter separates a section header from its content.
	HeaderDelimiter = ":"
)

// Section is one collapsible unit of an intro
type Section struct {
	Header    string   `json:"header"`
	Sentences []string `json:"sentences"`
	Bullets   []string `json:"bullets"`
}

// Document is the parsed form of an intro
type Document struct {
	Lead     string    `json:"lead,omitempty"`
	HasLead  bool      `json:"has_lead"`
	Sections []Section `json:"sections"`
	Dropped  int       `json:"dropped"` // paragraphs without a usable header
}

// Fragment is a piece of inline text, either plain or code
type Fragment struct {
	Text string `json:"text"`
	Code bool   `json:"code"`
}

// TOCEntry is a navigation anchor for one section
type TOCEntry struct {
	Index  int    `json:"index"`
	Anchor string `json:"anchor"`
	Header string `json:"header"`
}
