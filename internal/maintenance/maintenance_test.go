package maintenance

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/centromex/food-rescue-bot/internal/db"
	"github.com/centromex/food-rescue-bot/internal/models"
)

func TestSweep(t *testing.T) {
	ctx := context.Background()
	database, err := db.New(filepath.Join(t.TempDir(), "maint.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	now := time.Now().UTC()
	_, err = database.CreateDistribution(ctx, models.ActiveDistribution{
		VolunteerPhone: "5511", FoodType: "Pão", Qty: "10", Location: "Centro", ExpiresAt: now.Add(-time.Minute),
	})
	require.NoError(t, err)
	_, err = database.CreateDistribution(ctx, models.ActiveDistribution{
		VolunteerPhone: "5511", FoodType: "Sopa", Qty: "20", Location: "Lapa", ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, database.MarkProcessed(ctx, "wamid.1", "5511"))

	report := Sweep(ctx, database, 7*24*time.Hour, now, zaptest.NewLogger(t))
	assert.Equal(t, Report{ExpiredDistributions: 1}, report)

	report = Sweep(ctx, database, -time.Hour, now, zaptest.NewLogger(t))
	assert.Equal(t, int64(1), report.PurgedMessages, "negative retention purges everything")

	seen, err := database.IsProcessed(ctx, "wamid.1")
	require.NoError(t, err)
	assert.False(t, seen)
}

type failingStore struct{ calls atomic.Int32 }

func (f *failingStore) PurgeProcessedMessages(context.Context, time.Duration) (int64, error) {
	f.calls.Add(1)
	return 0, errors.New("locked")
}

func (f *failingStore) ExpireDistributions(context.Context, time.Time) (int64, error) {
	return 0, errors.New("locked")
}

func TestRunSweepsUntilCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := &failingStore{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, store, 5*time.Millisecond, time.Hour, zap.NewNop()) }()

	require.Eventually(t, func() bool { return store.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}
