package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/centromex/food-rescue-bot/internal/config"
	"github.com/centromex/food-rescue-bot/internal/conversation"
	"github.com/centromex/food-rescue-bot/internal/db"
	"github.com/centromex/food-rescue-bot/internal/dedup"
	"github.com/centromex/food-rescue-bot/internal/logging"
	"github.com/centromex/food-rescue-bot/internal/matching"
)

var (
	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bot",
	Short: "Food rescue bot connecting donors, organizations, volunteers and people in need",
	Long: `Runs the food rescue conversation bot.

Without a subcommand the bot serves the transport selected by BOT_TRANSPORT
(telegram long polling or the HTTP bridge used by the WhatsApp gateway).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Parse()
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.LogLevel, cfg.LogDevelopment)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, seedCmd, stateCmd, simulateCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openDatabase() (*db.DB, error) {
	logger.Info("opening database", zap.String("path", cfg.DBPath))
	database, err := db.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return database, nil
}

func newEngine(database *db.DB) *conversation.Engine {
	return conversation.NewEngine(
		database,
		matching.New(database, logger.Named("matching")),
		dedup.New(database, logger.Named("dedup")),
		logger.Named("conversation"),
	)
}
