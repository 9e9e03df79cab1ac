package dedup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type memStore struct {
	ids     map[string]string
	failGet bool
	failPut bool
}

func (m *memStore) IsProcessed(_ context.Context, id string) (bool, error) {
	if m.failGet {
		return false, errors.New("db down")
	}
	_, ok := m.ids[id]
	return ok, nil
}

func (m *memStore) MarkProcessed(_ context.Context, id, phone string) error {
	if m.failPut {
		return errors.New("db down")
	}
	if _, ok := m.ids[id]; ok {
		return errors.New("duplicate")
	}
	m.ids[id] = phone
	return nil
}

func TestFallbackIDWindow(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 15, 5, 0, time.UTC)

	same := FallbackID("5511", "Arroz", at)
	assert.Equal(t, same, FallbackID("5511", "  arroz ", at.Add(40*time.Second)), "same minute and normalized text")
	assert.NotEqual(t, same, FallbackID("5511", "Arroz", at.Add(time.Minute)), "next minute is a new message")
	assert.NotEqual(t, same, FallbackID("5512", "Arroz", at))
	assert.Len(t, same, 64)
}

func TestGuardPrefersTransportID(t *testing.T) {
	g := New(&memStore{ids: map[string]string{}}, zap.NewNop())
	assert.Equal(t, "wamid.X", g.ID("5511", "oi", "wamid.X"))
	assert.Len(t, g.ID("5511", "oi", ""), 64)
}

func TestGuardMarkThenHit(t *testing.T) {
	ctx := context.Background()
	store := &memStore{ids: map[string]string{}}
	g := New(store, zap.NewNop())

	assert.False(t, g.AlreadyProcessed(ctx, "m1"))
	g.MarkProcessed(ctx, "m1", "5511")
	assert.True(t, g.AlreadyProcessed(ctx, "m1"))

	// second mark hits the unique key and is only logged
	g.MarkProcessed(ctx, "m1", "5511")
}

func TestGuardSwallowsStoreErrors(t *testing.T) {
	ctx := context.Background()
	g := New(&memStore{ids: map[string]string{}, failGet: true, failPut: true}, zap.NewNop())

	assert.False(t, g.AlreadyProcessed(ctx, "m1"))
	g.MarkProcessed(ctx, "m1", "5511")
}
