package corpus

import (
	"git.home.luguber.info/inful/gazette/internal/content"
	"git.home.luguber.info/inful/gazette/internal/util/sets"
)

// Aggregate attribute names, used as log and metric labels.
const (
	AttributeAuthors    = "authors"
	AttributeCategories = "categories"
	AttributeTags       = "tags"
)

// Aggregate collects the distinct authors, categories and tags of pages.
// Unattributed pages contribute no author.
func Aggregate(pages []*content.Page) Aggregates {
	authors := sets.New[string]()
	categories := sets.New[string]()
	tags := sets.New[string]()

	for _, p := range pages {
		if p.Author != nil {
			authors.Add(*p.Author)
		}
		for _, c := range p.Categories {
			categories.Add(c)
		}
		for _, t := range p.Tags {
			tags.Add(t)
		}
	}

	tagList := tags.Values()
	return Aggregates{
		Authors:    authors.Values(),
		Categories: categories.Values(),
		Tags:       tagList,
		TagSet:     sets.New(tagList...),
	}
}

// Counts returns the size of each aggregate keyed by attribute name.
func (a Aggregates) Counts() map[string]int {
	return map[string]int{
		AttributeAuthors:    len(a.Authors),
		AttributeCategories: len(a.Categories),
		AttributeTags:       len(a.Tags),
	}
}
