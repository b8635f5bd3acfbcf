package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/gazette/cmd/gazette/commands"
	ferrors "git.home.luguber.info/inful/gazette/internal/foundation/errors"
	"git.home.luguber.info/inful/gazette/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("gazette"),
		kong.Description("Static blog and podcast site generator"),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	err := parser.Run(&commands.Global{Logger: slog.Default()}, cli)
	ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
