// Package content parses content files into pages.
//
// A content file is a JSON object, the Delimiter, and a body:
//
//	{"title": "Hello", "created": "2024-01-31", "tags": ["go"]}
//	ʕ •ᴥ•ʔ
//	Body text, converted to HTML when the file ends in .md.
package content

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the layout of date fields in front matter.
const DateLayout = "2006-01-02"

// DefaultCreated is used when front matter has no created field.
const DefaultCreated = "1970-01-01"

// Recognized front matter keys. Everything else passes through in Page.Meta.
const (
	KeyTitle      = "title"
	KeyCreated    = "created"
	KeyCategories = "categories"
	KeyTags       = "tags"
	KeyAuthor     = "author"
	KeyDesc       = "description"
)

// Page is one parsed content item.
type Page struct {
	// ID identifies this page within a load. Two pages with equal slugs have distinct IDs.
	ID uuid.UUID

	Path string
	Ext  string

	Meta       map[string]any
	Categories []string
	Tags       []string
	Created    time.Time
	// Updated mirrors Created; front matter carries no separate field.
	Updated time.Time
	// Author is nil for unattributed pages.
	Author *string

	Title string
	Slug  string
	Body  string

	Summary     string
	Fingerprint string

	// Related is filled in by the ranker.
	Related []RelatedEntry
}

// RelatedEntry summarizes another page that shares tags with the subject.
type RelatedEntry struct {
	Slug    string
	Title   string
	Created time.Time
	Score   int
}

// Description returns the front matter description when set, else the body summary.
func (p *Page) Description() string {
	if d, ok := p.Meta[KeyDesc].(string); ok && d != "" {
		return d
	}
	return p.Summary
}

// AuthorOr returns the page author, or fallback when unattributed.
func (p *Page) AuthorOr(fallback string) string {
	if p.Author == nil {
		return fallback
	}
	return *p.Author
}
