package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version     kong.VersionFlag `short:"v" help:"Show version"`
	Server      ServerCmd        `cmd:"" help:"Run the Quantum Mus server"`
	Simulate    SimulateCmd      `cmd:"" help:"Play built-in strategies against each other"`
	Bot         BotCmd           `cmd:"" help:"Connect a built-in strategy to a running server"`
	HandHistory HandHistoryCmd   `cmd:"hand-history" help:"Inspect recorded hand logs"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("quantummus"),
		kong.Description("Rules server for Quantum Mus, four-player mus with entangled cards"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
