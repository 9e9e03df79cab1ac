package main

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/centromex/food-rescue-bot/internal/bot"
	"github.com/centromex/food-rescue-bot/internal/config"
	"github.com/centromex/food-rescue-bot/internal/maintenance"
	"github.com/centromex/food-rescue-bot/internal/messaging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the configured transport and the maintenance job",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()
	engine := newEngine(database)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	switch cfg.Transport {
	case config.TransportTelegram:
		tg, err := bot.New(bot.Config{
			Token:       cfg.TelegramToken,
			SendTimeout: cfg.SendTimeout,
			Debug:       cfg.LogDevelopment,
		}, engine, logger.Named("telegram"))
		if err != nil {
			return err
		}
		g.Go(func() error {
			defer cancel()
			return tg.Run(ctx)
		})

	case config.TransportBridge:
		sender := &messaging.BridgeSender{URL: cfg.NodeSendURL, Client: &http.Client{Timeout: cfg.SendTimeout}}
		dispatcher := messaging.NewDispatcher(sender, cfg.SendTimeout, logger.Named("outbound"))
		bridge := bot.NewBridge(engine, engine.States(), dispatcher, logger.Named("bridge"))
		g.Go(func() error {
			defer cancel()
			return bridge.Serve(ctx, cfg.BridgeAddr)
		})
	}

	g.Go(func() error {
		return maintenance.Run(ctx, database, cfg.PurgeInterval, cfg.ProcessedRetention, logger.Named("maintenance"))
	})

	logger.Info("bot is running", zap.String("transport", cfg.Transport))
	err = g.Wait()
	logger.Info("bot stopped")
	return err
}
