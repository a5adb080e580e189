package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/felixgeelhaar/triage/pkg/observability"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	logger  *slog.Logger

	bootstrap Bootstrap
	cleanup   func()
)

// Bootstrap builds the application once flags are parsed. configPath is
// the value of --config and may be empty.
type Bootstrap func(ctx context.Context, configPath string) (*App, func(), error)

// skipAppAnnotation marks commands that run without the application.
const skipAppAnnotation = "triage/skip-app"

type commandContext struct {
	correlationID uuid.UUID
	startedAt     time.Time
}

type commandContextKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "triage",
	Short: "triage - feedback-tuned task ranking",
	Long: `triage ranks a batch of tasks by urgency, importance, effort and
how many other tasks they block.

Signal weights are kept per strategy and can be tuned with feedback;
every later ranking uses the tuned weights.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logger == nil {
			logger = slog.Default()
		}
		info := commandContext{
			correlationID: uuid.New(),
			startedAt:     time.Now(),
		}
		ctx := context.WithValue(cmd.Context(), commandContextKey{}, info)
		ctx = observability.WithCorrelationID(ctx, info.correlationID.String())
		cmd.SetContext(ctx)
		logger.DebugContext(ctx, "command start",
			"command", cmd.CommandPath(),
		)

		if cmd.Annotations[skipAppAnnotation] == "true" || app != nil || bootstrap == nil {
			return nil
		}
		a, done, err := bootstrap(ctx, cfgFile)
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}
		app = a
		cleanup = done
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		info, ok := cmd.Context().Value(commandContextKey{}).(commandContext)
		if !ok {
			return
		}
		logger.DebugContext(cmd.Context(), "command end",
			"command", cmd.CommandPath(),
			observability.DurationKey, time.Since(info.startedAt).Milliseconds(),
		)
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Commands stop when ctx is canceled.
func Execute(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	if cleanup != nil {
		cleanup()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to an env file with triage settings")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// Logger returns the CLI logger.
func Logger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// SetBootstrap sets the function that builds the application.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// ConfigFile returns the --config flag value.
func ConfigFile() string {
	return cfgFile
}

// Verbose reports whether --verbose was passed.
func Verbose() bool {
	return verbose
}

// Root returns the root command.
func Root() *cobra.Command {
	return rootCmd
}
