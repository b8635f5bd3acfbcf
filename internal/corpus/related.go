package corpus

import (
	"cmp"
	"fmt"
	"slices"

	"git.home.luguber.info/inful/gazette/internal/content"
	"git.home.luguber.info/inful/gazette/internal/util/sets"
)

// MaxRelated is the default number of related entries kept per page.
const MaxRelated = 5

// Scoring selects how a candidate page is scored.
type Scoring string

const (
	// ScoreGlobal counts the candidate's tags that appear anywhere in the corpus.
	// Every tag does, so the score is the candidate's distinct tag count.
	ScoreGlobal Scoring = "global"
	// ScorePairwise counts tags shared by the candidate and the subject page.
	ScorePairwise Scoring = "pairwise"
)

// ParseScoring validates a scoring name. The empty string selects ScoreGlobal.
func ParseScoring(s string) (Scoring, error) {
	switch Scoring(s) {
	case "", ScoreGlobal:
		return ScoreGlobal, nil
	case ScorePairwise:
		return ScorePairwise, nil
	default:
		return "", fmt.Errorf("unknown related scoring %q (want %s or %s)", s, ScoreGlobal, ScorePairwise)
	}
}

// RankOptions configures Rank. The zero value ranks with ScoreGlobal and MaxRelated.
type RankOptions struct {
	Scoring Scoring
	Limit   int
}

func (o RankOptions) limit() int {
	if o.Limit <= 0 {
		return MaxRelated
	}
	return o.Limit
}

// Rank assigns each page its related pages. Candidates are visited in corpus
// order, the subject page is skipped by ID, zero scores are dropped, and the
// rest are stable-sorted by score descending and truncated to the limit.
func Rank(pages []*content.Page, tagSet sets.Set[string], opts RankOptions) {
	for _, p := range pages {
		p.Related = related(p, pages, tagSet, opts)
	}
}

func related(subject *content.Page, pages []*content.Page, tagSet sets.Set[string], opts RankOptions) []content.RelatedEntry {
	against := tagSet
	if opts.Scoring == ScorePairwise {
		against = sets.New(subject.Tags...)
	}

	out := make([]content.RelatedEntry, 0)
	for _, q := range pages {
		if q.ID == subject.ID {
			continue
		}
		score := against.CountIn(q.Tags)
		if score == 0 {
			continue
		}
		out = append(out, content.RelatedEntry{
			Slug:    q.Slug,
			Title:   q.Title,
			Created: q.Created,
			Score:   score,
		})
	}

	slices.SortStableFunc(out, func(a, b content.RelatedEntry) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if n := opts.limit(); len(out) > n {
		out = out[:n]
	}
	return out
}
