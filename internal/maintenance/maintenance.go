// Package maintenance runs the periodic cleanup of dedup records and stale
// distributions.
package maintenance

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Store interface {
	PurgeProcessedMessages(ctx context.Context, olderThan time.Duration) (int64, error)
	ExpireDistributions(ctx context.Context, now time.Time) (int64, error)
}

// Report counts the rows touched by one sweep.
type Report struct {
	PurgedMessages       int64
	ExpiredDistributions int64
}

// Sweep deletes processed-message records older than retention and expires
// distributions past their deadline. Errors are logged; the sweep continues.
func Sweep(ctx context.Context, store Store, retention time.Duration, now time.Time, log *zap.Logger) Report {
	var r Report
	purged, err := store.PurgeProcessedMessages(ctx, retention)
	if err != nil {
		log.Error("error purging processed messages", zap.Error(err))
	} else {
		r.PurgedMessages = purged
	}

	expired, err := store.ExpireDistributions(ctx, now)
	if err != nil {
		log.Error("error expiring distributions", zap.Error(err))
	} else {
		r.ExpiredDistributions = expired
	}

	if r.PurgedMessages > 0 || r.ExpiredDistributions > 0 {
		log.Info("maintenance sweep",
			zap.Int64("purged_messages", r.PurgedMessages),
			zap.Int64("expired_distributions", r.ExpiredDistributions))
	}
	return r
}

// Run sweeps every interval until ctx is cancelled.
func Run(ctx context.Context, store Store, interval, retention time.Duration, log *zap.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			Sweep(ctx, store, retention, now.UTC(), log)
		}
	}
}
