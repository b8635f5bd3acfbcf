// Package daemon keeps sites up to date: it re-imports podcast feeds and
// regenerates every configured site on a schedule and, optionally, whenever
// a config or content file changes.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/gazette/internal/config"
	ferrors "git.home.luguber.info/inful/gazette/internal/foundation/errors"
	"git.home.luguber.info/inful/gazette/internal/importer"
	"git.home.luguber.info/inful/gazette/internal/logfields"
	"git.home.luguber.info/inful/gazette/internal/metrics"
	"git.home.luguber.info/inful/gazette/internal/observability"
	"git.home.luguber.info/inful/gazette/internal/site"
)

// Status is the lifecycle state of a Daemon.
type Status string

const (
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
	StatusStopped  Status = "stopped"
)

// Trigger names the cause of a run.
type Trigger string

const (
	TriggerStartup  Trigger = "startup"
	TriggerSchedule Trigger = "schedule"
	TriggerWatch    Trigger = "watch"
)

// Options configures a Daemon.
type Options struct {
	ConfigDir string
	// Every schedules runs at a fixed interval. Zero disables it.
	Every time.Duration
	// Cron schedules runs on a cron expression. Empty disables it.
	Cron string
	// Watch regenerates sites when config or content files change.
	Watch    bool
	Debounce time.Duration
	// Import fetches podcast feeds before scheduled runs.
	Import bool
	// MetricsAddr serves /metrics and /healthz when set.
	MetricsAddr string

	Logger   *slog.Logger
	Registry *prom.Registry
}

// RunFunc is one pipeline step over a config directory.
type RunFunc func(ctx context.Context, configDir string) error

// Daemon runs import and build passes. Passes never overlap.
type Daemon struct {
	opts     Options
	logger   *slog.Logger
	registry *prom.Registry
	recorder metrics.Recorder

	importFn RunFunc
	buildFn  RunFunc

	runMu sync.Mutex

	status    atomic.Value
	startTime time.Time
	runs      atomic.Int64
	failures  atomic.Int64
	lastRun   atomic.Pointer[RunSummary]

	httpServer *http.Server
}

// RunSummary describes the most recent pass.
type RunSummary struct {
	Trigger  Trigger       `json:"trigger"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// New validates opts and wires the default import and build steps.
func New(opts Options) (*Daemon, error) {
	if opts.ConfigDir == "" {
		return nil, ferrors.ValidationError("config directory is required").Build()
	}
	if info, err := os.Stat(opts.ConfigDir); err != nil || !info.IsDir() {
		return nil, ferrors.NotFoundError("config directory does not exist").
			WithContext("path", opts.ConfigDir).Build()
	}
	if opts.Every < 0 {
		return nil, ferrors.ValidationError("interval must not be negative").Build()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prom.NewRegistry()
	}
	recorder := metrics.NewPrometheusRecorder(reg)

	d := &Daemon{
		opts:      opts,
		logger:    logger,
		registry:  reg,
		recorder:  recorder,
		startTime: time.Now(),
	}
	d.status.Store(StatusStarting)
	d.importFn = func(ctx context.Context, dir string) error {
		_, err := importer.ImportAll(ctx, dir, importer.HTTPFetcher(nil), importer.Options{Logger: logger, Recorder: recorder})
		return err
	}
	d.buildFn = func(ctx context.Context, dir string) error {
		_, err := site.GenerateAll(ctx, dir,
			site.WithLogger(logger),
			site.WithRecorder(recorder),
			site.WithSkipIfUnchanged(true))
		return err
	}
	return d, nil
}

// GetStatus returns the lifecycle state.
func (d *Daemon) GetStatus() Status {
	return d.status.Load().(Status)
}

// Registry returns the Prometheus registry the daemon records into.
func (d *Daemon) Registry() *prom.Registry { return d.registry }

// RunOnce performs one pass. Import failures are logged and do not prevent
// the build. Concurrent calls wait for each other.
func (d *Daemon) RunOnce(ctx context.Context, trigger Trigger) error {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	start := time.Now()
	jobID := fmt.Sprintf("%s-%d", trigger, start.UnixNano())
	ctx = observability.WithJobID(ctx, jobID)
	logger := observability.Logger(ctx, d.logger)
	logger.Info("Run started", slog.String("trigger", string(trigger)))

	var errs []error
	if d.opts.Import && trigger != TriggerWatch {
		if err := d.importFn(ctx, d.opts.ConfigDir); err != nil {
			logger.Warn("Import finished with errors", logfields.Error(err))
			errs = append(errs, err)
		}
	}
	if err := d.buildFn(ctx, d.opts.ConfigDir); err != nil {
		errs = append(errs, err)
	}
	err := errors.Join(errs...)

	summary := &RunSummary{Trigger: trigger, Started: start, Duration: time.Since(start)}
	d.runs.Add(1)
	if err != nil {
		d.failures.Add(1)
		summary.Error = err.Error()
		logger.Error("Run failed", logfields.Error(err))
	} else {
		logger.Info("Run finished", logfields.DurationMS(float64(summary.Duration.Microseconds())/1000))
	}
	d.lastRun.Store(summary)
	return err
}

// Run performs a startup pass, then serves scheduled and watched passes
// until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if d.opts.Every == 0 && d.opts.Cron == "" && !d.opts.Watch {
		return ferrors.ValidationError("nothing to do: set an interval, a cron expression or watch").Build()
	}

	var (
		sched   *Scheduler
		watcher *Watcher
	)
	shutdown := func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		var errs []error
		if watcher != nil {
			errs = append(errs, watcher.Stop())
		}
		if sched != nil {
			errs = append(errs, sched.Stop(shutdownCtx))
		}
		if d.httpServer != nil {
			errs = append(errs, d.httpServer.Shutdown(shutdownCtx))
		}
		return errors.Join(errs...)
	}

	if d.opts.Every > 0 || d.opts.Cron != "" {
		s, err := d.newScheduler(ctx)
		if err != nil {
			return err
		}
		sched = s
	}

	if d.opts.MetricsAddr != "" {
		if err := d.startHTTP(); err != nil {
			_ = shutdown()
			return err
		}
	}

	_ = d.RunOnce(ctx, TriggerStartup)

	if sched != nil {
		sched.Start(ctx)
	}
	if d.opts.Watch {
		w, err := NewWatcher(d.WatchDirs(), d.opts.Debounce, func() { _ = d.RunOnce(ctx, TriggerWatch) })
		if err != nil {
			_ = shutdown()
			return ferrors.WrapError(err, ferrors.CategoryDaemon, "watcher").Build()
		}
		watcher = w
		if err := w.Start(ctx); err != nil {
			_ = shutdown()
			return ferrors.WrapError(err, ferrors.CategoryDaemon, "watcher").Build()
		}
	}

	d.status.Store(StatusRunning)
	d.logger.Info("Daemon running",
		slog.Duration("every", d.opts.Every),
		slog.String("cron", d.opts.Cron),
		slog.Bool("watch", d.opts.Watch))

	<-ctx.Done()
	d.status.Store(StatusStopping)
	err := shutdown()

	// An in-flight pass finishes before the daemon reports stopped.
	d.runMu.Lock()
	d.status.Store(StatusStopped)
	d.runMu.Unlock()

	d.logger.Info("Daemon stopped")
	return err
}

func (d *Daemon) newScheduler(ctx context.Context) (*Scheduler, error) {
	s, err := NewScheduler()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryDaemon, "scheduler").Build()
	}
	task := func() { _ = d.RunOnce(ctx, TriggerSchedule) }
	if d.opts.Every > 0 {
		if _, err := s.ScheduleEvery("generate-every", d.opts.Every, task); err != nil {
			_ = s.Stop(ctx)
			return nil, ferrors.WrapError(err, ferrors.CategoryDaemon, "schedule interval").Build()
		}
	}
	if d.opts.Cron != "" {
		if _, err := s.ScheduleCron("generate-cron", d.opts.Cron, task); err != nil {
			_ = s.Stop(ctx)
			return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "invalid cron expression").
				Fatal().WithContext("cron", d.opts.Cron).Build()
		}
	}
	return s, nil
}

// WatchDirs returns the config directory and the pages directory of every
// loadable config, without duplicates.
func (d *Daemon) WatchDirs() []string {
	dirs := []string{d.opts.ConfigDir}
	seen := map[string]bool{d.opts.ConfigDir: true}
	paths, err := config.List(d.opts.ConfigDir)
	if err != nil {
		return dirs
	}
	for _, p := range paths {
		cfg, err := config.Load(p)
		if err != nil {
			d.logger.Warn("Not watching site", logfields.Path(p), logfields.Error(err))
			continue
		}
		pages := cfg.Paths.Pages
		if pages == "" || seen[pages] {
			continue
		}
		if info, err := os.Stat(pages); err != nil || !info.IsDir() {
			continue
		}
		seen[pages] = true
		dirs = append(dirs, pages)
	}
	return dirs
}
