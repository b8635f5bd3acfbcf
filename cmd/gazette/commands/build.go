package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/gazette/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Target        string `short:"t" help:"Config file of the site to generate (default: every config in --config-dir)" type:"path"`
	SkipUnchanged bool   `name:"skip-unchanged" help:"Skip rendering when pages and config match the last manifest"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg, rec := root.recorder()
	defer root.flushMetrics(g, reg)

	opts := []site.Option{
		site.WithLogger(logger(g)),
		site.WithRecorder(rec),
		site.WithSkipIfUnchanged(b.SkipUnchanged),
	}

	if b.Target == "" {
		reports, err := site.GenerateAll(ctx, root.ConfigDir, opts...)
		for _, r := range reports {
			printReport(r)
		}
		return err
	}

	cfg, err := loadTarget(b.Target)
	if err != nil {
		return err
	}
	s, err := site.New(cfg, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	r, err := s.Generate(ctx)
	if r != nil {
		printReport(r)
	}
	return err
}

func printReport(r *site.Report) {
	switch {
	case r.Status == site.StatusSkipped:
		_, _ = fmt.Fprintf(stdout, "%s: unchanged, nothing rendered\n", r.Site)
	case r.RenderSkipped:
		_, _ = fmt.Fprintf(stdout, "%s: %d pages loaded, no output path configured\n", r.Site, r.Pages)
	case r.Status.IsSuccess():
		_, _ = fmt.Fprintf(stdout, "%s: %d pages, %d files written to %s\n", r.Site, r.Pages, len(r.Files), r.OutputDir)
	default:
		_, _ = fmt.Fprintf(stdout, "%s: %s\n", r.Site, r.Status)
	}
}
