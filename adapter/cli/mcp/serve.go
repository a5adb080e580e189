package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/triage/adapter/cli"
	mcpinternal "github.com/felixgeelhaar/triage/internal/mcp"
	"github.com/felixgeelhaar/triage/pkg/config"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start an MCP server exposing ranking.analyze, ranking.suggest,
ranking.feedback and ranking.weights. Set MCP_AUTH_TOKEN to require
a bearer token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cliApp := cli.GetApp()
		if cliApp == nil {
			return errors.New("app not initialized")
		}

		cfg := cliApp.Config
		if cfg == nil {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
		}
		if serveAddr != "" {
			copied := *cfg
			copied.MCPAddr = serveAddr
			cfg = &copied
		}

		err := mcpinternal.Serve(cmd.Context(), cfg, cliApp, cli.Logger())
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from MCP_ADDR)")
}
