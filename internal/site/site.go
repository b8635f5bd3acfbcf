// Package site assembles a site from its configuration: it loads the corpus,
// ranks related pages, renders the output tree and writes the build manifest.
// All execution paths (CLI build, daemon jobs, tests) route through Generate.
package site

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/gazette/internal/config"
	"git.home.luguber.info/inful/gazette/internal/content"
	"git.home.luguber.info/inful/gazette/internal/corpus"
	ferrors "git.home.luguber.info/inful/gazette/internal/foundation/errors"
	"git.home.luguber.info/inful/gazette/internal/logfields"
	"git.home.luguber.info/inful/gazette/internal/manifest"
	"git.home.luguber.info/inful/gazette/internal/markdown"
	"git.home.luguber.info/inful/gazette/internal/metrics"
	"git.home.luguber.info/inful/gazette/internal/notify"
	"git.home.luguber.info/inful/gazette/internal/observability"
	"git.home.luguber.info/inful/gazette/internal/render"
	"git.home.luguber.info/inful/gazette/internal/version"
)

// Stage names used for logs and metrics.
const (
	StageLoad     = "load"
	StageRank     = "rank"
	StageRender   = "render"
	StageManifest = "manifest"
	StagePublish  = "publish"
)

// Site generates one configured site.
type Site struct {
	cfg           *config.Config
	logger        *slog.Logger
	recorder      metrics.Recorder
	publisher     notify.Publisher
	ownsPublisher bool
	markdown      *markdown.Converter
	now           func() time.Time
	skipUnchanged bool
}

// Option configures a Site.
type Option func(*Site)

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Site) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Site) { s.recorder = metrics.OrNoop(r) }
}

// WithPublisher sets the build event publisher. When unset, New connects to
// notify.nats_url if the config names one.
func WithPublisher(p notify.Publisher) Option {
	return func(s *Site) { s.publisher = p }
}

// WithClock replaces time.Now, for deterministic build times in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Site) { s.now = now }
}

// WithSkipIfUnchanged skips rendering when the previous manifest in the output
// directory matches the current content and config.
func WithSkipIfUnchanged(skip bool) Option {
	return func(s *Site) { s.skipUnchanged = skip }
}

// New validates cfg and prepares a Site.
func New(cfg *config.Config, opts ...Option) (*Site, error) {
	if cfg == nil {
		return nil, ferrors.ConfigError("config required").Build()
	}
	s := &Site{
		cfg:      cfg,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
		markdown: markdown.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.publisher == nil {
		p, err := notify.New(cfg.Notify.NATSURL, cfg.Notify.Subject)
		if err != nil {
			s.logger.Warn("Build events disabled", logfields.Site(cfg.Name), logfields.Error(err))
			p = notify.Noop{}
		}
		s.publisher = p
		s.ownsPublisher = true
	}
	return s, nil
}

// Config returns the site's configuration.
func (s *Site) Config() *config.Config { return s.cfg }

// Close releases the publisher connection New opened.
func (s *Site) Close() error {
	if s.ownsPublisher && s.publisher != nil {
		return s.publisher.Close()
	}
	return nil
}

// Generate runs load, rank, render and manifest for the site.
// The returned Report is non-nil even when err is set.
func (s *Site) Generate(ctx context.Context) (*Report, error) {
	start := s.now()
	buildID := uuid.NewString()
	ctx = observability.WithBuildID(observability.WithSite(ctx, s.cfg.Name), buildID)
	logger := observability.Logger(ctx, s.logger)

	report := &Report{
		ID:        buildID,
		Site:      s.cfg.Name,
		OutputDir: s.cfg.Paths.Output,
		StartTime: start,
	}

	if err := ctx.Err(); err != nil {
		return s.finish(report, StatusCancelled, err)
	}

	// Stage: load
	stageStart := time.Now()
	c, err := corpus.Load(s.cfg.Paths.Pages, corpus.LoadOptions{
		ContinueOnError: s.cfg.Loading.ContinueOnError,
		Parse:           content.ParseOptions{Markdown: s.markdown},
		Site:            s.cfg.Name,
		Logger:          logger,
		Recorder:        s.recorder,
	})
	s.stageDone(StageLoad, stageStart, err, logger)
	if err != nil {
		return s.finish(report, StatusFailed, Classify(err, StageLoad))
	}
	report.Pages = len(c.Pages)
	report.LoadErrors = c.LoadErrors

	// Stage: rank
	stageStart = time.Now()
	scoring, err := corpus.ParseScoring(s.cfg.Related.Scoring)
	if err != nil {
		s.stageDone(StageRank, stageStart, err, logger)
		return s.finish(report, StatusFailed, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid related scoring").
			Fatal().WithContext("site", s.cfg.Name).Build())
	}
	c.Rank(corpus.RankOptions{Scoring: scoring, Limit: s.cfg.Related.Limit})
	report.Collisions = slugCollisions(c.Pages)
	for _, slug := range report.Collisions {
		logger.Warn("Several pages share a slug; the last one rendered wins", logfields.Slug(slug))
	}
	s.stageDone(StageRank, stageStart, nil, logger)

	m := s.buildManifest(buildID, start, c)
	hash, err := m.Hash()
	if err != nil {
		return s.finish(report, StatusFailed, ferrors.WrapError(err, ferrors.CategoryInternal, "hash manifest").Build())
	}
	report.ContentHash = hash

	if err := ctx.Err(); err != nil {
		return s.finish(report, StatusCancelled, err)
	}

	// Stage: render
	if s.cfg.Paths.Output == "" {
		logger.Warn("Output path not set, skipping rendering")
		report.RenderSkipped = true
		s.recorder.IncStageResult(StageRender, metrics.ResultWarning)
		rep, err := s.finish(report, StatusSuccess, nil)
		s.publish(ctx, rep, logger)
		return rep, err
	}

	if s.skipUnchanged && s.cfg.Paths.Templates == "" && s.unchanged(hash, logger) {
		logger.Info("Content unchanged since last build, skipping rendering")
		report.Unchanged = true
		return s.finish(report, StatusSkipped, nil)
	}

	stageStart = time.Now()
	files, err := s.render(c)
	report.Files = files
	s.stageDone(StageRender, stageStart, err, logger)
	if err != nil {
		return s.finish(report, StatusFailed, Classify(err, StageRender))
	}

	// Stage: manifest
	stageStart = time.Now()
	path, err := s.writeManifest(m, files, start)
	s.stageDone(StageManifest, stageStart, err, logger)
	if err != nil {
		return s.finish(report, StatusFailed, ferrors.WrapError(err, ferrors.CategoryFileSystem, "write manifest").
			WithContext("path", s.cfg.Paths.Output).Build())
	}
	report.Manifest = path

	rep, err := s.finish(report, StatusSuccess, nil)
	s.publish(ctx, rep, logger)
	logger.Info("Site generated",
		logfields.Count(rep.Pages),
		slog.Int("files", len(rep.Files)),
		logfields.DurationMS(float64(rep.Duration.Microseconds())/1000))
	return rep, err
}

func (s *Site) render(c *corpus.Corpus) ([]string, error) {
	r, err := render.New(s.cfg.Paths.Templates)
	if err != nil {
		return nil, err
	}
	return r.WriteSite(s.cfg.Paths.Output, &render.Site{
		Config:     s.cfg,
		Generator:  version.Generator(),
		BuildTime:  s.now(),
		Pages:      c.Pages,
		Authors:    c.Authors,
		Categories: c.Categories,
		Tags:       c.Tags,
	})
}

func (s *Site) buildManifest(id string, start time.Time, c *corpus.Corpus) *manifest.BuildManifest {
	m := &manifest.BuildManifest{
		ID:         id,
		Site:       s.cfg.Name,
		Generator:  version.Generator(),
		Timestamp:  start,
		ConfigHash: configHash(s.cfg),
		Pages:      make([]manifest.Page, 0, len(c.Pages)),
		LoadErrors: len(c.LoadErrors),
	}
	for _, p := range c.Pages {
		related := make([]string, 0, len(p.Related))
		for _, r := range p.Related {
			related = append(related, r.Slug)
		}
		m.Pages = append(m.Pages, manifest.Page{
			Slug:        p.Slug,
			Title:       p.Title,
			Source:      filepath.Base(p.Path),
			Fingerprint: p.Fingerprint,
			Related:     related,
		})
	}
	return m
}

func (s *Site) writeManifest(m *manifest.BuildManifest, files []string, start time.Time) (string, error) {
	full := make([]string, len(files))
	for i, f := range files {
		full[i] = filepath.Join(s.cfg.Paths.Output, f)
	}
	if err := m.HashArtifacts(s.cfg.Paths.Output, full); err != nil {
		return "", err
	}
	m.Status = string(StatusSuccess)
	m.Duration = s.now().Sub(start).Milliseconds()
	return manifest.Write(s.cfg.Paths.Output, m)
}

// unchanged reports whether the manifest in the output directory has the given hash.
func (s *Site) unchanged(hash string, logger *slog.Logger) bool {
	prev, err := manifest.Read(s.cfg.Paths.Output)
	if err != nil {
		logger.Debug("Previous manifest unreadable", logfields.Error(err))
		return false
	}
	if prev == nil {
		return false
	}
	prevHash, err := prev.Hash()
	return err == nil && prevHash == hash
}

func (s *Site) stageDone(stage string, start time.Time, err error, logger *slog.Logger) {
	d := time.Since(start)
	s.recorder.ObserveStageDuration(stage, d)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultFatal
	}
	s.recorder.IncStageResult(stage, result)
	logger.Debug("Stage finished", logfields.Stage(stage), logfields.DurationMS(float64(d.Microseconds())/1000))
}

func (s *Site) finish(r *Report, status Status, err error) (*Report, error) {
	r.Status = status
	r.EndTime = s.now()
	r.Duration = r.EndTime.Sub(r.StartTime)

	s.recorder.ObserveBuildDuration(s.cfg.Name, r.Duration)
	switch status {
	case StatusSuccess:
		s.recorder.IncBuildOutcome(s.cfg.Name, metrics.BuildOutcomeSuccess)
	case StatusSkipped:
		s.recorder.IncBuildOutcome(s.cfg.Name, metrics.BuildOutcomeSkipped)
	default:
		s.recorder.IncBuildOutcome(s.cfg.Name, metrics.BuildOutcomeFailed)
	}
	return r, err
}

// publish sends the build event. Failures are logged; the build already succeeded.
func (s *Site) publish(ctx context.Context, r *Report, logger *slog.Logger) {
	start := time.Now()
	err := s.publisher.PublishBuilt(ctx, r.Event(s.cfg))
	if err != nil {
		logger.Warn("Failed to publish build event", logfields.Error(err))
		s.recorder.ObserveStageDuration(StagePublish, time.Since(start))
		s.recorder.IncStageResult(StagePublish, metrics.ResultWarning)
		return
	}
	s.stageDone(StagePublish, start, nil, logger)
}

func slugCollisions(pages []*content.Page) []string {
	seen := make(map[string]int, len(pages))
	var dups []string
	for _, p := range pages {
		seen[p.Slug]++
		if seen[p.Slug] == 2 {
			dups = append(dups, p.Slug)
		}
	}
	return dups
}

func configHash(cfg *config.Config) string {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
