package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/gazette/internal/config"
	"git.home.luguber.info/inful/gazette/internal/logfields"
	"git.home.luguber.info/inful/gazette/internal/metrics"
	"git.home.luguber.info/inful/gazette/internal/site"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	ConfigDir   string           `name:"config-dir" help:"Directory holding site configs" default:"config" type:"path"`
	Verbose     bool             `short:"v" help:"Enable verbose logging"`
	MetricsFile string           `name:"metrics-file" help:"Write Prometheus metrics to this textfile after build or import" type:"path"`
	Version     kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Generate one site, or every site in the config directory"`
	Init    InitCmd    `cmd:"" help:"Write a new blog config"`
	Podcast PodcastCmd `cmd:"" help:"Write a new podcast config"`
	New     NewCmd     `cmd:"" help:"Write a new content file from the page template"`
	Import  ImportCmd  `cmd:"" help:"Import podcast episodes from the configured feed"`
	Daemon  DaemonCmd  `cmd:"" help:"Import and generate periodically, optionally on file changes"`
}

// stdout receives user-facing command output.
var stdout io.Writer = os.Stdout

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

func logger(g *Global) *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// recorder returns a registry backed recorder when --metrics-file is set.
func (c *CLI) recorder() (*prom.Registry, metrics.Recorder) {
	if c.MetricsFile == "" {
		return nil, metrics.NoopRecorder{}
	}
	reg := prom.NewRegistry()
	return reg, metrics.NewPrometheusRecorder(reg)
}

func (c *CLI) flushMetrics(g *Global, reg *prom.Registry) {
	if reg == nil {
		return
	}
	if err := metrics.WriteTextfile(c.MetricsFile, reg); err != nil {
		logger(g).Warn("Failed to write metrics file", logfields.Path(c.MetricsFile), logfields.Error(err))
	}
}

// loadTarget loads a single site config, classifying failures.
func loadTarget(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, site.Classify(err, "config")
	}
	return cfg, nil
}
