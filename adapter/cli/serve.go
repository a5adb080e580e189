package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/felixgeelhaar/triage/adapter/api"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API and block until interrupted.

Routes:
  POST /api/v1/tasks/analyze
  GET  /api/v1/tasks/suggest?strategy=&sample=&limit=
  POST /api/v1/feedback
  GET  /api/v1/weights
  GET  /health`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}

		serverCfg := api.DefaultServerConfig()
		if a.Config != nil && a.Config.HTTPAddr != "" {
			serverCfg.Addr = a.Config.HTTPAddr
		}
		if serveAddr != "" {
			serverCfg.Addr = serveAddr
		}

		handler := api.NewRankingHandler(api.RankingHandlerConfig{
			Analyze:         a.AnalyzeTasksHandler,
			Suggest:         a.SuggestTasksHandler,
			GetWeights:      a.GetWeightsHandler,
			Feedback:        a.SubmitFeedbackHandler,
			DefaultStrategy: a.DefaultStrategy(),
			Logger:          logger,
		})
		server := api.NewServer(serverCfg, handler, a.Health, logger)

		ctx := cmd.Context()
		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from TRIAGE_HTTP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
