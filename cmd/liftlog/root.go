// ABOUTME: Root Cobra command for the liftlog CLI.
// ABOUTME: Loads config and opens storage, logging, and the workout service per run.
package main

import (
	"context"
	"fmt"

	"github.com/harperreed/liftlog/internal/config"
	"github.com/harperreed/liftlog/internal/extract"
	"github.com/harperreed/liftlog/internal/logging"
	"github.com/harperreed/liftlog/internal/storage"
	"github.com/harperreed/liftlog/internal/workout"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Annotation values telling the root command whether to build an extractor.
const (
	completionKey      = "completion"
	completionRequired = "required"
	completionOptional = "optional"
)

var (
	cfg     *config.Config
	logger  *zap.Logger
	repo    storage.Repository
	service *workout.Service

	verbose  bool
	userFlag string
)

var rootCmd = &cobra.Command{
	Use:   "liftlog",
	Short: "Strength training log with natural-language entry",
	Long: `liftlog records strength-training workouts. Describe a set in plain
language and it is turned into exercise, weight, reps, and sets, or asks for
whatever is missing.

QUICK START:

  $ liftlog parse "bench press 135 for 3 sets of 8"
  $ liftlog add squat 225 5 5
  $ liftlog list
  $ liftlog list --exercise squat
  $ liftlog progress "bench press"

DATA:

  $ liftlog export json -o backup.json
  $ liftlog import backup.json
  $ liftlog migrate --to sqlite
  $ liftlog sync now    # charm backend only

SERVERS:

  $ liftlog serve       # HTTP API: /parse-workout, /workouts, /metrics
  $ liftlog mcp         # MCP server on stdio

CONFIGURATION:

  Settings live in ~/.config/liftlog/config.json and can be overridden with
  environment variables:

  LIFTLOG_BACKEND             badger (default), sqlite, or charm
  LIFTLOG_DATA_DIR            data directory (default ~/.local/share/liftlog)
  LIFTLOG_HTTP_ADDRESS        listen address for serve (default :8080)
  LIFTLOG_LLM_PROVIDER        gemini (default) or openai
  LIFTLOG_LLM_MODEL           model name
  LIFTLOG_LLM_API_KEY         API key (or GEMINI_API_KEY / OPENAI_API_KEY)
  LIFTLOG_OPENAI_BASE_URL     OpenAI-compatible endpoint
  LIFTLOG_GEMINI_BASE_URL     Gemini API endpoint override
  LIFTLOG_COMPLETION_TIMEOUT  bound on one completion call (default 30s)`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err = logging.New(verbose)
		if err != nil {
			return err
		}

		repo, err = cfg.OpenStorage(logger)
		if err != nil {
			repo = nil
			return fmt.Errorf("failed to open storage: %w", err)
		}

		var ex workout.Extractor
		if mode := cmd.Annotations[completionKey]; mode != "" {
			built, err := newExtractor()
			switch {
			case err == nil:
				ex = built
			case mode == completionRequired:
				_ = closeRepo()
				return err
			default:
				logger.Warn("completion unavailable, parse requests will not extract", zap.Error(err))
			}
		}

		service = workout.NewService(repo, ex, logger)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logger != nil {
			_ = logger.Sync()
		}
		return closeRepo()
	},
}

// closeRepo releases the store opened by the root command, if any.
func closeRepo() error {
	if repo == nil {
		return nil
	}
	err := repo.Close()
	repo = nil
	return err
}

// newExtractor builds the LLM-backed extractor for the configured provider.
func newExtractor() (*extract.Extractor, error) {
	completer, err := cfg.OpenCompleter(context.Background(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize completion client: %w", err)
	}
	return extract.New(completer, logger, extract.WithTimeout(cfg.GetCompletionTimeout())), nil
}

// currentUser returns --user or the anonymous user.
func currentUser() string {
	if userFlag == "" {
		return workout.AnonymousUser
	}
	return userFlag
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "user id (default anonymous)")
}
