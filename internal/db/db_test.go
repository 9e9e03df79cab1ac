package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centromex/food-rescue-bot/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestGetOrCreateStateIsUniquePerPhone(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)

	first, err := database.GetOrCreateState(ctx, "5511999990000")
	require.NoError(t, err)
	assert.Equal(t, "MENU", first.Step)
	assert.Equal(t, "MENU", first.Flow)
	assert.JSONEq(t, `{}`, string(first.Draft))

	first.Step = "DONATE_QTY"
	first.Flow = "DONATE"
	first.Draft = []byte(`{"flow":"DONATE"}`)
	require.NoError(t, database.SaveState(ctx, first))

	again, err := database.GetOrCreateState(ctx, "5511999990000")
	require.NoError(t, err)
	assert.Equal(t, "DONATE_QTY", again.Step)

	n, err := database.CountStates(ctx, "5511999990000")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGetStateNotFound(t *testing.T) {
	_, err := newTestDB(t).GetState(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkProcessedRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)

	done, err := database.IsProcessed(ctx, "wamid.1")
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, database.MarkProcessed(ctx, "wamid.1", "5511"))
	assert.Error(t, database.MarkProcessed(ctx, "wamid.1", "5511"))

	done, err = database.IsProcessed(ctx, "wamid.1")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestPurgeProcessedMessages(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	database.now = func() time.Time { return base }
	require.NoError(t, database.MarkProcessed(ctx, "old", "1"))

	database.now = func() time.Time { return base.Add(10 * 24 * time.Hour) }
	require.NoError(t, database.MarkProcessed(ctx, "new", "1"))

	purged, err := database.PurgeProcessedMessages(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	done, err := database.IsProcessed(ctx, "new")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestUpsertOrganizationKeepsPhoneUnique(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)

	org, err := database.UpsertOrganization(ctx, models.Organization{
		Name: "Cozinha X", Phone: "21999", CoverageArea: "Rocinha", CanPickup: true, Hours: "Seg a sex",
	})
	require.NoError(t, err)
	assert.True(t, org.Active)
	assert.True(t, org.CanPickup)

	again, err := database.UpsertOrganization(ctx, models.Organization{
		Name: "Cozinha X2", Phone: "21999", CoverageArea: "Vidigal",
	})
	require.NoError(t, err)
	assert.Equal(t, org.ID, again.ID)
	assert.Equal(t, "Cozinha X2", again.Name)
	assert.False(t, again.CanPickup)

	n, err := database.CountOrganizations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAcceptMatchUpdatesDonation(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)

	donation, err := database.CreateDonation(ctx, models.Donation{
		DonorPhone: "1", FoodType: "Arroz", Qty: "5kg", ExpiresAt: "hoje", Location: "Centro",
	})
	require.NoError(t, err)
	org, err := database.UpsertOrganization(ctx, models.Organization{Name: "A", Phone: "2", CoverageArea: "Centro"})
	require.NoError(t, err)

	match, err := database.CreateMatch(ctx, donation.ID, org.ID)
	require.NoError(t, err)

	latest, err := database.LatestSuggestedMatch(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, match.ID, latest.ID)

	require.NoError(t, database.AcceptMatch(ctx, match.ID))
	assert.Error(t, database.AcceptMatch(ctx, match.ID), "accepting twice must fail")

	got, err := database.GetDonation(ctx, donation.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DonationMatched, got.Status)

	_, err = database.LatestSuggestedMatch(ctx, "2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestActiveAndExpiredDistributions(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	now := time.Now().UTC()

	_, err := database.CreateDistribution(ctx, models.ActiveDistribution{
		VolunteerPhone: "1", FoodType: "Sopa", Qty: "20", Location: "Praça da Sé, Centro", ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)
	_, err = database.CreateDistribution(ctx, models.ActiveDistribution{
		VolunteerPhone: "2", FoodType: "Pão", Qty: "10", Location: "Centro", ExpiresAt: now.Add(-time.Hour),
	})
	require.NoError(t, err)

	active, err := database.ActiveDistributions(ctx, now)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Sopa", active[0].FoodType)

	expired, err := database.ExpireDistributions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)
}

func TestVolunteerRoster(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)

	_, err := database.AddVolunteer(ctx, models.Volunteer{Phone: "1", Region: "Centro", Availability: "18h-22h", HasTransport: true, Location: "Praça da Sé"})
	require.NoError(t, err)

	roster, err := database.ListVolunteers(ctx)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.True(t, roster[0].HasTransport)
}

func TestUserRoles(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)

	role, err := database.GetUserRole(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUnknown, role)

	require.NoError(t, database.SetUserRole(ctx, "1", models.RoleDonor))
	require.NoError(t, database.SetUserRole(ctx, "1", models.RoleVolunteer))

	role, err = database.GetUserRole(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleVolunteer, role)
}
