package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/triage/adapter/cli"
	"github.com/felixgeelhaar/triage/adapter/cli/mcp"
	"github.com/felixgeelhaar/triage/internal/app"
	mcpinternal "github.com/felixgeelhaar/triage/internal/mcp"
	"github.com/felixgeelhaar/triage/pkg/config"
	"github.com/felixgeelhaar/triage/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()

	// Create context with cancellation
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli.SetLogger(logger)

	// The container is built after flags are parsed so --config applies.
	cli.SetBootstrap(func(ctx context.Context, configPath string) (*cli.App, func(), error) {
		var (
			cfg *config.Config
			err error
		)
		if configPath != "" {
			cfg, err = config.LoadFile(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return nil, nil, err
		}

		if cli.Verbose() {
			logCfg := observability.DefaultLogConfig()
			logCfg.Level = "debug"
			logger = observability.NewLogger(logCfg)
			cli.SetLogger(logger)
		}

		container, err := app.NewContainer(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return mcpinternal.NewCLIApp(container), container.Close, nil
	})

	// Register commands
	cli.AddCommand(mcp.Cmd)

	// Execute CLI
	cli.Execute(ctx)
}
