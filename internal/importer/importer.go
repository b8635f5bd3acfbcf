// Package importer turns the episodes of a podcast feed into content files.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"git.home.luguber.info/inful/gazette/internal/config"
	"git.home.luguber.info/inful/gazette/internal/content"
	"git.home.luguber.info/inful/gazette/internal/feed"
	ferrors "git.home.luguber.info/inful/gazette/internal/foundation/errors"
	"git.home.luguber.info/inful/gazette/internal/logfields"
	"git.home.luguber.info/inful/gazette/internal/metrics"
	"git.home.luguber.info/inful/gazette/internal/slug"
)

// Meta keys written besides the ones content.Parse recognizes.
const (
	KeySlug  = "slug"
	KeyAudio = "audio"
)

// FileExt is the extension of imported content files.
const FileExt = ".json"

// Skip reasons.
const (
	ReasonNoTitle     = "empty title"
	ReasonNoPubDate   = "no pubDate"
	ReasonNoEnclosure = "no enclosure"
)

// Fetcher retrieves a podcast feed.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*feed.Podcast, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) (*feed.Podcast, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, url string) (*feed.Podcast, error) {
	return f(ctx, url)
}

// HTTPFetcher fetches feeds over HTTP. A nil client uses feed.NewHTTPClient.
func HTTPFetcher(client *http.Client) Fetcher {
	return FetcherFunc(func(ctx context.Context, url string) (*feed.Podcast, error) {
		return feed.Fetch(ctx, url, client)
	})
}

// SkippedEpisode records an episode that produced no file.
type SkippedEpisode struct {
	Title  string
	Reason string
}

// Result summarizes one Import call.
type Result struct {
	Site string
	// Written lists the new content files.
	Written []string
	// Existing lists files that were already present and left alone.
	Existing []string
	Skipped  []SkippedEpisode
}

// Options configures Import and ImportAll.
type Options struct {
	Logger   *slog.Logger
	Recorder metrics.Recorder
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Import fetches the podcast feed of cfg and writes one content file per new
// episode into paths.pages. Existing files are never overwritten.
func Import(ctx context.Context, cfg *config.Config, fetcher Fetcher, opts Options) (*Result, error) {
	if cfg == nil {
		return nil, ferrors.ConfigError("config required").Build()
	}
	if cfg.Paths.Pages == "" {
		return nil, ferrors.ConfigError("pages path is empty").WithContext("site", cfg.Name).Build()
	}
	if err := config.ValidateForImport(cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "cannot import").
			Fatal().WithContext("site", cfg.Name).Build()
	}
	if fetcher == nil {
		fetcher = HTTPFetcher(nil)
	}
	logger := opts.logger().With(logfields.Site(cfg.Name))
	recorder := metrics.OrNoop(opts.Recorder)

	url := cfg.Podcast.RSSURL
	podcast, err := fetcher.Fetch(ctx, url)
	recorder.IncFeedFetch(err == nil)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFeed, "feed fetch failed").
			WithContext("url", url).Build()
	}
	logger.Info("Feed fetched", logfields.URL(url), logfields.Count(len(podcast.Episodes)))

	res := &Result{Site: cfg.Name}
	for _, ep := range podcast.Episodes {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := importEpisode(cfg.Paths.Pages, ep, res, logger); err != nil {
			return res, ferrors.WrapError(err, ferrors.CategoryFileSystem, "write episode").
				WithContext("path", cfg.Paths.Pages).Build()
		}
	}

	recorder.AddEpisodesImported(cfg.Name, len(res.Written))
	logger.Info("Episodes imported",
		logfields.Count(len(res.Written)),
		slog.Int("existing", len(res.Existing)),
		slog.Int("skipped", len(res.Skipped)))
	return res, nil
}

func importEpisode(pages string, ep feed.Episode, res *Result, logger *slog.Logger) error {
	s := slug.Make(ep.Title)
	if s == "" {
		res.skip(ep, ReasonNoTitle, logger)
		return nil
	}
	name := s + FileExt
	if path := filepath.Join(pages, name); exists(path) {
		res.Existing = append(res.Existing, path)
		logger.Debug("Episode already imported", logfields.Path(path))
		return nil
	}
	if ep.Published == nil {
		res.skip(ep, ReasonNoPubDate, logger)
		return nil
	}
	if ep.Enclosure == nil || ep.Enclosure.URL == "" {
		res.skip(ep, ReasonNoEnclosure, logger)
		return nil
	}

	raw, err := content.Format(EpisodeMeta(ep, s), ep.Description)
	if err != nil {
		return err
	}
	path, err := writeNew(pages, name, raw)
	if errors.Is(err, ErrExists) {
		res.Existing = append(res.Existing, path)
		return nil
	}
	if err != nil {
		return err
	}
	res.Written = append(res.Written, path)
	logger.Info("Episode imported", logfields.Path(path), logfields.Slug(s))
	return nil
}

// EpisodeMeta is the front matter of an imported episode.
func EpisodeMeta(ep feed.Episode, s string) map[string]any {
	return map[string]any{
		content.KeyTitle:   ep.Title,
		KeySlug:            s,
		content.KeyCreated: ep.Published.Format(content.DateLayout),
		KeyAudio:           ep.Enclosure.URL,
		content.KeyTags:    []string{},
	}
}

func (r *Result) skip(ep feed.Episode, reason string, logger *slog.Logger) {
	r.Skipped = append(r.Skipped, SkippedEpisode{Title: ep.Title, Reason: reason})
	logger.Warn("Skipping episode", slog.String("title", ep.Title), slog.String("reason", reason))
}

// ImportAll imports every podcast configured in configDir. Other site types
// are skipped. A failing podcast does not stop the others; the returned
// error joins every failure.
func ImportAll(ctx context.Context, configDir string, fetcher Fetcher, opts Options) ([]*Result, error) {
	logger := opts.logger()
	paths, err := config.List(configDir)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNotFound, "config directory unreadable").
			Fatal().WithContext("path", configDir).Build()
	}

	var (
		results []*Result
		errs    []error
	)
	for _, path := range paths {
		logger.Info("Loading", logfields.Path(path))
		cfg, err := config.Load(path)
		if err != nil {
			logger.Error("Config rejected", logfields.Path(path), logfields.Error(err))
			errs = append(errs, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid configuration").
				Fatal().WithContext("path", path).Build())
			continue
		}
		if !cfg.IsPodcast() {
			logger.Info("Not a podcast", logfields.Site(cfg.Name))
			continue
		}
		res, err := Import(ctx, cfg, fetcher, opts)
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			logger.Error("Import failed", logfields.Site(cfg.Name), logfields.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
		}
	}
	return results, errors.Join(errs...)
}
