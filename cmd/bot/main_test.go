package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		seedFile, seedForce, simID = "", false, ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSeedSimulateAndState(t *testing.T) {
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("LOG_LEVEL", "error")

	out, err := execute(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 5 organizations")

	out, err = execute(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "skipping seed")

	out, err = execute(t, "simulate", "5511988887777", "1", "--id", "cli-1")
	require.NoError(t, err)
	var turn struct {
		Reply string `json:"reply"`
		Debug struct {
			NextStep string `json:"next_step"`
		} `json:"debug"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &turn))
	assert.Contains(t, turn.Reply, "tipo de comida")
	assert.Equal(t, "DONATE_FOOD_TYPE", turn.Debug.NextStep)

	out, err = execute(t, "state", "5511988887777")
	require.NoError(t, err)
	assert.Contains(t, out, `"step": "DONATE_FOOD_TYPE"`)

	_, err = execute(t, "state", "5500000000000")
	assert.ErrorContains(t, err, "no conversation state")
}

func TestServeRejectsInvalidConfig(t *testing.T) {
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("BOT_TRANSPORT", "smoke-signals")

	_, err := execute(t, "serve")
	assert.ErrorContains(t, err, "unknown BOT_TRANSPORT")
}
