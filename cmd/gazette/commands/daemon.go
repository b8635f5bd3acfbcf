package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/gazette/internal/daemon"
	"git.home.luguber.info/inful/gazette/internal/logfields"
)

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct {
	Every       time.Duration `help:"Interval between runs (0 disables)" default:"1h"`
	Cron        string        `help:"Cron expression for runs, in addition to --every"`
	Watch       bool          `help:"Regenerate when config or content files change"`
	Debounce    time.Duration `help:"Quiet time after a file change before regenerating" default:"2s"`
	NoImport    bool          `name:"no-import" help:"Do not import podcast feeds before scheduled runs"`
	MetricsAddr string        `name:"metrics-addr" help:"Serve /metrics and /healthz on this address (e.g. :9090)"`
}

func (d *DaemonCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dm, err := daemon.New(d.options(g, root))
	if err != nil {
		return err
	}
	logger(g).Info("Starting daemon", logfields.Path(root.ConfigDir))
	return dm.Run(ctx)
}

func (d *DaemonCmd) options(g *Global, root *CLI) daemon.Options {
	return daemon.Options{
		ConfigDir:   root.ConfigDir,
		Every:       d.Every,
		Cron:        d.Cron,
		Watch:       d.Watch,
		Debounce:    d.Debounce,
		Import:      !d.NoImport,
		MetricsAddr: d.MetricsAddr,
		Logger:      logger(g),
	}
}
