package commands

import (
	"github.com/urfave/cli/v3"

	"github.com/SweetRetry/seedkit-ai/internal/config"
)

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "seedcanvas",
		Usage: "AI media generation engine for the SeedCanvas desktop app",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to settings file",
				Value:   config.SettingsPath(config.DataDir()),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			NewAppCommand(),
			NewMCPServeCommand(),
		},
	}
}
