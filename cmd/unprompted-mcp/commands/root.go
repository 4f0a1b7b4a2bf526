package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"unprompted-mcp/internal/api"
	"unprompted-mcp/internal/config"
	"unprompted-mcp/internal/history"
	"unprompted-mcp/internal/logging"
	"unprompted-mcp/internal/mcp"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "unprompted-mcp",
	Short: "Unprompted-MCP models how often a chatbot sends unprompted messages",
	Long: `An MCP Server that computes exact statistics for a probabilistic message generator:
expected unprompted messages per time bin over a multi-day horizon, and the exact
binomial distribution of message counts for each daily period.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.InitConsole(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}

		if err := logging.Init(verbose, cfg.LogDir); err != nil {
			log.Warn().Err(err).Msg("File logging unavailable, logging to stderr only")
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("Unprompted-MCP starting")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		service, store := openService()
		var runs mcp.RunLister
		if store != nil {
			defer store.Close()
			runs = store
		}
		server, err := mcp.NewServer(service, runs, Version)
		if err != nil {
			return err
		}
		return server.Start(ctx)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// openService builds the calculation service from cfg. The returned store is
// nil when history is disabled or could not be opened.
func openService() (*api.Service, *history.Store) {
	if !cfg.HistoryEnabled {
		return api.NewService(cfg.Limits, cfg.RequestTimeout, nil), nil
	}

	store, err := history.OpenStore(cfg.HistoryPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.HistoryPath).Msg("Run history unavailable")
		return api.NewService(cfg.Limits, cfg.RequestTimeout, nil), nil
	}
	return api.NewService(cfg.Limits, cfg.RequestTimeout, store), store
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
