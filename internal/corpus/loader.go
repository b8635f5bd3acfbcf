package corpus

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/gazette/internal/content"
	cerrors "git.home.luguber.info/inful/gazette/internal/content/errors"
	"git.home.luguber.info/inful/gazette/internal/logfields"
	"git.home.luguber.info/inful/gazette/internal/metrics"
)

// LoadOptions configures Load.
type LoadOptions struct {
	// ContinueOnError keeps loading after a bad file and records the failure
	// in Corpus.LoadErrors. By default the first bad file aborts the load.
	ContinueOnError bool

	Parse content.ParseOptions

	// Site labels log lines and metrics.
	Site     string
	Logger   *slog.Logger
	Recorder metrics.Recorder
}

// Load parses every regular file in dir, orders the pages by creation date
// (newest first, ties in directory order) and aggregates their metadata.
// Subdirectories and dot-files are ignored.
func Load(dir string, opts LoadOptions) (*Corpus, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := metrics.OrNoop(opts.Recorder)

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", cerrors.ErrPathNotFound, dir)
		}
		return nil, fmt.Errorf("stat pages path %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", cerrors.ErrPathNotFound, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read pages path %s: %w", dir, err)
	}

	c := &Corpus{Pages: make([]*content.Page, 0, len(entries))}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		page, perr := content.ParseFile(path, opts.Parse)
		if perr != nil {
			if !opts.ContinueOnError {
				return nil, perr
			}
			logger.Warn("Skipping content file", logfields.Site(opts.Site), logfields.Path(path), logfields.Error(perr))
			c.LoadErrors = append(c.LoadErrors, perr)
			continue
		}
		c.Pages = append(c.Pages, page)
	}

	SortByCreated(c.Pages)
	logger.Info("Files successfully loaded", logfields.Site(opts.Site), logfields.Count(len(c.Pages)))
	recorder.SetPagesLoaded(opts.Site, len(c.Pages))

	c.Aggregates = Aggregate(c.Pages)
	counts := c.Counts()
	for _, attr := range []string{AttributeAuthors, AttributeCategories, AttributeTags} {
		n := counts[attr]
		logger.Info("Aggregate values found", logfields.Site(opts.Site), logfields.Attribute(attr), logfields.Count(n))
		recorder.SetAggregateCount(opts.Site, attr, n)
	}

	return c, nil
}

// SortByCreated orders pages newest first. Pages with equal dates keep their relative order.
func SortByCreated(pages []*content.Page) {
	slices.SortStableFunc(pages, func(a, b *content.Page) int {
		return b.Created.Compare(a.Created)
	})
}
