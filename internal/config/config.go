// Package config reads the bot settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	TransportTelegram = "telegram"
	TransportBridge   = "bridge"
)

type Config struct {
	Transport     string `env:"BOT_TRANSPORT"      envDefault:"telegram"`
	DBPath        string `env:"DB_PATH"            envDefault:"./data/food-rescue.db"`
	TelegramToken string `env:"TELEGRAM_BOT_TOKEN"`

	// BridgeAddr is where the HTTP bridge listens for inbound webhooks;
	// replies are POSTed to NodeSendURL.
	BridgeAddr  string        `env:"BRIDGE_ADDR"   envDefault:":8000"`
	NodeSendURL string        `env:"NODE_SEND_URL" envDefault:"http://localhost:3000/send"`
	SendTimeout time.Duration `env:"SEND_TIMEOUT"  envDefault:"5s"`

	LogLevel       string `env:"LOG_LEVEL"       envDefault:"info"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`

	PurgeInterval      time.Duration `env:"PURGE_INTERVAL"      envDefault:"1h"`
	ProcessedRetention time.Duration `env:"PROCESSED_RETENTION" envDefault:"168h"`

	// SeedFile overrides the embedded organization list used by `bot seed`.
	SeedFile string `env:"SEED_FILE"`
}

// Parse reads the environment without validating transport settings, for
// tools that only touch the database.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	cfg, err := Parse()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Transport {
	case TransportTelegram:
		if c.TelegramToken == "" {
			return errors.New("TELEGRAM_BOT_TOKEN is required for the telegram transport")
		}
	case TransportBridge:
		if c.NodeSendURL == "" {
			return errors.New("NODE_SEND_URL is required for the bridge transport")
		}
	default:
		return fmt.Errorf("unknown BOT_TRANSPORT %q (want telegram or bridge)", c.Transport)
	}
	if c.DBPath == "" {
		return errors.New("DB_PATH must not be empty")
	}
	if c.PurgeInterval <= 0 {
		return errors.New("PURGE_INTERVAL must be positive")
	}
	return nil
}
