package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/centromex/food-rescue-bot/internal/conversation"
	"github.com/centromex/food-rescue-bot/internal/messaging"
	"github.com/centromex/food-rescue-bot/internal/seed"
)

var (
	seedFile  string
	seedForce bool
	simID     string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample organizations into the database",
	Long: `Upserts organizations (and optional active distributions) from a YAML file.
Without --file the embedded São Paulo sample set is used. A database that
already has organizations is left untouched unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

var stateCmd = &cobra.Command{
	Use:   "state <phone>",
	Short: "Print the stored conversation state of a phone",
	Args:  cobra.ExactArgs(1),
	RunE:  runState,
}

var simulateCmd = &cobra.Command{
	Use:   "simulate <phone> <text...>",
	Short: "Run one conversation turn locally and print the outcome",
	Long: `Feeds a message through the conversation engine against the configured
database without sending anything. Prints the reply, the notifications that
would go to other phones and the routing debug info.

Example:
  bot simulate 5511999990000 1`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSimulate,
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "seed YAML file (defaults to SEED_FILE or the embedded set)")
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "upsert even when organizations exist")
	simulateCmd.Flags().StringVar(&simID, "id", "", "transport message id used for dedup")
}

func runSeed(cmd *cobra.Command, args []string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	path := seedFile
	if path == "" {
		path = cfg.SeedFile
	}
	f, err := seed.Load(path)
	if err != nil {
		return err
	}

	res, err := seed.Apply(cmd.Context(), database, f, seedForce, time.Now().UTC(), logger.Named("seed"))
	if err != nil {
		return err
	}
	if res.Skipped {
		fmt.Fprintln(cmd.OutOrStdout(), "Database already has organizations, skipping seed (use --force).")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d organizations and %d distributions\n", res.Organizations, res.Distributions)
	return nil
}

func runState(cmd *cobra.Command, args []string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	st, ok, err := conversation.NewStateStore(database, logger).Peek(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no conversation state for %s", args[0])
	}
	return printJSON(cmd, st)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	phone := args[0]
	res := newEngine(database).Handle(cmd.Context(), conversation.Inbound{
		Phone:     phone,
		Text:      strings.Join(args[1:], " "),
		MessageID: simID,
	})

	reply, outbox := messaging.Split(phone, res.Messages)
	return printJSON(cmd, struct {
		Reply  string              `json:"reply"`
		Outbox []messaging.Message `json:"outbox"`
		Debug  conversation.Debug  `json:"debug"`
	}{reply, outbox, res.Debug})
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
