// Package corpus loads a directory of content files into an ordered set of
// pages, aggregates their metadata, and ranks related pages by shared tags.
package corpus

import (
	"errors"

	"git.home.luguber.info/inful/gazette/internal/content"
	"git.home.luguber.info/inful/gazette/internal/util/sets"
)

// Corpus is the in-memory page set of one site for one generation run.
// Pages are ordered newest first.
type Corpus struct {
	Pages []*content.Page
	Aggregates

	// LoadErrors holds per-file failures when loading with ContinueOnError.
	LoadErrors []error
}

// Err joins LoadErrors, or returns nil when every file loaded.
func (c *Corpus) Err() error {
	return errors.Join(c.LoadErrors...)
}

// Rank fills in Related for every page using the corpus tag set.
func (c *Corpus) Rank(opts RankOptions) {
	Rank(c.Pages, c.TagSet, opts)
}

// Aggregates are the deduplicated metadata values of a corpus. Slice order is unspecified.
type Aggregates struct {
	Authors    []string
	Categories []string
	Tags       []string
	TagSet     sets.Set[string]
}
