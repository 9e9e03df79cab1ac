// Package dedup guards against handling the same inbound message twice.
//
// The check and the mark are separate calls around message handling, so two
// concurrent deliveries of one id can both pass the check. The unique key on
// the stored id is the only hard barrier.
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/centromex/food-rescue-bot/internal/textnorm"
)

// Store persists processed message ids.
type Store interface {
	IsProcessed(ctx context.Context, messageID string) (bool, error)
	MarkProcessed(ctx context.Context, messageID, phone string) error
}

type Guard struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

func New(store Store, log *zap.Logger) *Guard {
	return &Guard{store: store, log: log, now: time.Now}
}

// ID returns messageID, or a deterministic fallback derived from phone, the
// normalized text and the current minute when the transport supplied none.
func (g *Guard) ID(phone, text, messageID string) string {
	if messageID != "" {
		return messageID
	}
	return FallbackID(phone, text, g.now())
}

// FallbackID hashes phone, folded text and the UTC minute of at. Resending the
// same text within one minute yields the same id.
func FallbackID(phone, text string, at time.Time) string {
	minute := at.UTC().Truncate(time.Minute).Format(time.RFC3339)
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s", phone, textnorm.Fold(text), minute)))
	return hex.EncodeToString(sum[:])
}

// AlreadyProcessed reports whether messageID was handled before. Lookup
// errors are logged and treated as not processed.
func (g *Guard) AlreadyProcessed(ctx context.Context, messageID string) bool {
	done, err := g.store.IsProcessed(ctx, messageID)
	if err != nil {
		g.log.Warn("dedup lookup failed", zap.String("message_id", messageID), zap.Error(err))
		return false
	}
	if done {
		g.log.Info("dedup hit", zap.String("message_id", messageID))
	}
	return done
}

// MarkProcessed records messageID after successful handling. Failures are
// logged and swallowed.
func (g *Guard) MarkProcessed(ctx context.Context, messageID, phone string) {
	if err := g.store.MarkProcessed(ctx, messageID, phone); err != nil {
		g.log.Warn("could not store processed message", zap.String("message_id", messageID), zap.Error(err))
		return
	}
	g.log.Debug("dedup store", zap.String("message_id", messageID))
}
