package commands

import (
	"fmt"

	"git.home.luguber.info/inful/gazette/internal/config"
	"git.home.luguber.info/inful/gazette/internal/site"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Name string `arg:"" help:"Site name; the config is written to <config-dir>/<slug>.yaml"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	return runInit(root.ConfigDir, i.Name, config.InitSite)
}

// PodcastCmd implements the 'podcast' command.
type PodcastCmd struct {
	Name string `arg:"" help:"Podcast name; the config is written to <config-dir>/<slug>.yaml"`
}

func (p *PodcastCmd) Run(_ *Global, root *CLI) error {
	return runInit(root.ConfigDir, p.Name, config.InitPodcast)
}

func runInit(dir, name string, write func(dir, name string) (string, error)) error {
	path, err := write(dir, name)
	if err != nil {
		return site.Classify(err, "config")
	}
	_, _ = fmt.Fprintf(stdout, "Wrote %s\n", path)
	return nil
}
