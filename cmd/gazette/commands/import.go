package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/gazette/internal/importer"
)

// ImportCmd implements the 'import' command.
type ImportCmd struct {
	Target string `short:"t" help:"Config file of the podcast to import (default: every podcast in --config-dir)" type:"path"`
}

// fetcher is replaced in tests.
var fetcher importer.Fetcher = importer.HTTPFetcher(nil)

func (i *ImportCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg, rec := root.recorder()
	defer root.flushMetrics(g, reg)
	opts := importer.Options{Logger: logger(g), Recorder: rec}

	if i.Target == "" {
		results, err := importer.ImportAll(ctx, root.ConfigDir, fetcher, opts)
		for _, r := range results {
			printImport(r)
		}
		return err
	}

	cfg, err := loadTarget(i.Target)
	if err != nil {
		return err
	}
	r, err := importer.Import(ctx, cfg, fetcher, opts)
	if r != nil {
		printImport(r)
	}
	return err
}

func printImport(r *importer.Result) {
	_, _ = fmt.Fprintf(stdout, "%s: %d new, %d existing, %d skipped\n",
		r.Site, len(r.Written), len(r.Existing), len(r.Skipped))
}
