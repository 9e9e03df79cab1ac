package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, TransportTelegram, cfg.Transport)
	assert.Equal(t, "./data/food-rescue.db", cfg.DBPath)
	assert.Equal(t, 5*time.Second, cfg.SendTimeout)
	assert.Equal(t, time.Hour, cfg.PurgeInterval)
	assert.Equal(t, 7*24*time.Hour, cfg.ProcessedRetention)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadBridge(t *testing.T) {
	t.Setenv("BOT_TRANSPORT", "bridge")
	t.Setenv("BRIDGE_ADDR", ":9000")
	t.Setenv("SEND_TIMEOUT", "2s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.BridgeAddr)
	assert.Equal(t, 2*time.Second, cfg.SendTimeout)
}

func TestValidate(t *testing.T) {
	t.Setenv("BOT_TRANSPORT", "telegram")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	_, err := Load()
	assert.ErrorContains(t, err, "TELEGRAM_BOT_TOKEN")

	t.Setenv("BOT_TRANSPORT", "whatsapp")
	_, err = Load()
	assert.ErrorContains(t, err, "unknown BOT_TRANSPORT")

	t.Setenv("BOT_TRANSPORT", "bridge")
	t.Setenv("SEND_TIMEOUT", "soon")
	_, err = Load()
	assert.ErrorContains(t, err, "parse env")
}

func TestParseSkipsValidation(t *testing.T) {
	t.Setenv("BOT_TRANSPORT", "telegram")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("DB_PATH", "/tmp/bot.db")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/bot.db", cfg.DBPath)
}
