package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/SweetRetry/seedkit-ai/internal/ark"
	"github.com/SweetRetry/seedkit-ai/internal/bridge"
	"github.com/SweetRetry/seedkit-ai/internal/config"
	seedmcp "github.com/SweetRetry/seedkit-ai/internal/mcp"
	"github.com/SweetRetry/seedkit-ai/internal/store"
	"github.com/SweetRetry/seedkit-ai/internal/tasks"
)

// NewMCPServeCommand returns the mcp-serve subcommand.
func NewMCPServeCommand() *cli.Command {
	return &cli.Command{
		Name:   "mcp-serve",
		Usage:  "Expose SeedCanvas tools as an MCP server (stdio)",
		Action: runMCPServe,
	}
}

func runMCPServe(_ context.Context, cmd *cli.Command) error {
	// Logging goes to stderr, stdout carries the MCP stdio transport.
	level := slog.LevelWarn
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	st, err := store.Open(config.DatabasePath(cfg.DataDir))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	// Headless queue, no event bus. Completion results reach the canvas
	// through the bridge relay instead.
	queue := tasks.NewQueue(st, ark.NewClient(cfg.BaseURL, cfg.APIKey), nil, config.ProjectsDir(cfg.DataDir))

	// The bridge socket only exists while the desktop app runs. Tools still
	// register without it and report the app as not running.
	client, err := bridge.Dial(config.SocketPath(cfg.DataDir))
	if err != nil {
		slog.Warn("mcp: desktop app not reachable, canvas tools disabled", "error", err)
		client = nil
	} else {
		defer client.Close()
		seedmcp.RegisterCompletionRelay(queue, client)
	}

	server := seedmcp.NewServer(queue, client)
	return seedmcp.Run(context.Background(), server)
}
