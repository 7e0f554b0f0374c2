package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/SweetRetry/seedkit-ai/internal/ark"
	"github.com/SweetRetry/seedkit-ai/internal/bridge"
	"github.com/SweetRetry/seedkit-ai/internal/config"
	"github.com/SweetRetry/seedkit-ai/internal/events"
	"github.com/SweetRetry/seedkit-ai/internal/gateway"
	"github.com/SweetRetry/seedkit-ai/internal/store"
	"github.com/SweetRetry/seedkit-ai/internal/tasks"
)

// NewAppCommand returns the app subcommand.
func NewAppCommand() *cli.Command {
	return &cli.Command{
		Name:  "app",
		Usage: "Run the SeedCanvas engine: task queue, MCP bridge, and gateway server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to listen on",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
			},
		},
		Action: runApp,
	}
}

func runApp(_ context.Context, cmd *cli.Command) error {
	if cmd.Bool("debug") {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if cmd.IsSet("host") {
		cfg.Gateway.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Gateway.Port = cmd.Int("port")
	}
	if cfg.APIKey == "" {
		slog.Warn("app: no ARK API key configured, generation requests will fail")
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	st, err := store.Open(config.DatabasePath(cfg.DataDir))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	bus := events.NewBus(cfg.Events.BufferSize)
	defer bus.Close()

	queue := tasks.NewQueue(st, ark.NewClient(cfg.BaseURL, cfg.APIKey), bus, config.ProjectsDir(cfg.DataDir))
	if err := queue.Resume(); err != nil {
		return fmt.Errorf("resume unfinished tasks: %w", err)
	}

	bridgeServer := bridge.NewServer(config.SocketPath(cfg.DataDir), bus)
	if err := bridgeServer.Start(); err != nil {
		return fmt.Errorf("start bridge: %w", err)
	}
	defer bridgeServer.Close()

	server := gateway.NewServer(bus, st, queue, cfg.Gateway.Host, cfg.Gateway.Port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		slog.Info("app: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
