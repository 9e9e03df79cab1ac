package matching

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/centromex/food-rescue-bot/internal/db"
	"github.com/centromex/food-rescue-bot/internal/messaging"
	"github.com/centromex/food-rescue-bot/internal/models"
)

func setup(t *testing.T) (*db.DB, *Engine) {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "matching.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database, New(database, zaptest.NewLogger(t))
}

func addOrg(t *testing.T, database *db.DB, org models.Organization) *models.Organization {
	t.Helper()
	created, err := database.UpsertOrganization(context.Background(), org)
	require.NoError(t, err)
	return created
}

func addDonation(t *testing.T, database *db.DB, location string) *models.Donation {
	t.Helper()
	d, err := database.CreateDonation(context.Background(), models.Donation{
		DonorPhone: "donor", FoodType: "Arroz", Qty: "5kg", ExpiresAt: "hoje 18h", Location: location,
	})
	require.NoError(t, err)
	return d
}

func TestScore(t *testing.T) {
	donation := models.Donation{Location: "Centro, SP"}
	assert.Equal(t, 17, Score(models.Organization{CoverageArea: "Centro", CanPickup: true, Hours: "8h-18h"}, donation))
	assert.Equal(t, 10, Score(models.Organization{CoverageArea: "Sé, centro"}, donation))
	assert.Equal(t, 2, Score(models.Organization{CoverageArea: "Rocinha", Hours: "8h"}, donation))
	assert.Equal(t, 0, Score(models.Organization{CoverageArea: "Rocinha"}, donation))
}

func TestRankBreaksTiesByCreationOrder(t *testing.T) {
	orgs := []models.Organization{
		{ID: 1, Name: "first", CanPickup: true},
		{ID: 2, Name: "second", CoverageArea: "Centro"},
		{ID: 3, Name: "third", CanPickup: true},
	}
	ranked := Rank(orgs, models.Donation{Location: "Centro"}, nil)
	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"second", "first", "third"}, []string{ranked[0].Org.Name, ranked[1].Org.Name, ranked[2].Org.Name})

	ranked = Rank(orgs, models.Donation{Location: "Centro"}, map[int64]bool{2: true})
	assert.Equal(t, "first", ranked[0].Org.Name)
}

func TestMatchDonationPicksCoveringOrganization(t *testing.T) {
	ctx := context.Background()
	database, engine := setup(t)

	a := addOrg(t, database, models.Organization{Name: "A", Phone: "org-a", CoverageArea: "Centro", CanPickup: true})
	addOrg(t, database, models.Organization{Name: "B", Phone: "org-b", CoverageArea: "Rocinha", CanPickup: false})
	donation := addDonation(t, database, "Centro, SP")

	ranked := Rank([]models.Organization{*a}, *donation, nil)
	assert.GreaterOrEqual(t, ranked[0].Score, 15)

	var out messaging.Capture
	match, err := engine.MatchDonation(ctx, donation, &out)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, a.ID, match.OrgID)
	assert.Equal(t, models.MatchSuggested, match.Status)

	msgs := out.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "org-a", msgs[0].To)
	assert.Contains(t, msgs[0].Text, "ACEITAR")
}

func TestMatchDonationWithoutViableOrganization(t *testing.T) {
	ctx := context.Background()
	database, engine := setup(t)
	donation := addDonation(t, database, "Centro")

	var out messaging.Capture
	match, err := engine.MatchDonation(ctx, donation, &out)
	require.NoError(t, err)
	assert.Nil(t, match)

	addOrg(t, database, models.Organization{Name: "B", Phone: "org-b", CoverageArea: "Rocinha"})
	match, err = engine.MatchDonation(ctx, donation, &out)
	require.NoError(t, err)
	assert.Nil(t, match)
	assert.Zero(t, out.Len())
}

func TestFindBestRecipients(t *testing.T) {
	ctx := context.Background()
	database, engine := setup(t)

	addOrg(t, database, models.Organization{Name: "zero", Phone: "0", CoverageArea: "Rocinha"})
	addOrg(t, database, models.Organization{Name: "hours", Phone: "1", Hours: "8h"})
	addOrg(t, database, models.Organization{Name: "cover", Phone: "2", CoverageArea: "Centro"})
	addOrg(t, database, models.Organization{Name: "pickup", Phone: "3", CanPickup: true})
	donation := addDonation(t, database, "Centro")

	top, err := engine.FindBestRecipients(ctx, donation, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "cover", top[0].Name)
	assert.Equal(t, "pickup", top[1].Name)

	all, err := engine.FindBestRecipients(ctx, donation, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3, "zero-score organizations are never offered")

	matches, err := database.ListMatchesForDonation(ctx, donation.ID)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestProcessOrgResponseAccept(t *testing.T) {
	ctx := context.Background()
	database, engine := setup(t)

	addOrg(t, database, models.Organization{Name: "A", Phone: "org-a", CoverageArea: "Centro"})
	donation := addDonation(t, database, "Centro")

	var out messaging.Capture
	_, err := engine.MatchDonation(ctx, donation, &out)
	require.NoError(t, err)

	var reply messaging.Capture
	handled, err := engine.ProcessOrgResponse(ctx, "org-a", "Aceitar", &reply)
	require.NoError(t, err)
	assert.True(t, handled)

	got, err := database.GetDonation(ctx, donation.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DonationMatched, got.Status)

	matches, err := database.ListMatchesForDonation(ctx, donation.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, models.MatchAccepted, matches[0].Status)

	var toDonor bool
	for _, m := range reply.Messages() {
		if m.To == "donor" {
			toDonor = true
			assert.Contains(t, m.Text, "org-a")
		}
	}
	assert.True(t, toDonor, "donor must be told who collects")
}

func TestProcessOrgResponseRejectRematches(t *testing.T) {
	ctx := context.Background()
	database, engine := setup(t)

	first := addOrg(t, database, models.Organization{Name: "A", Phone: "org-a", CoverageArea: "Centro", CanPickup: true})
	second := addOrg(t, database, models.Organization{Name: "B", Phone: "org-b", CoverageArea: "Centro"})
	donation := addDonation(t, database, "Centro")

	var out messaging.Capture
	match, err := engine.MatchDonation(ctx, donation, &out)
	require.NoError(t, err)
	require.Equal(t, first.ID, match.OrgID)

	var reply messaging.Capture
	handled, err := engine.ProcessOrgResponse(ctx, "org-a", "recusar", &reply)
	require.NoError(t, err)
	assert.True(t, handled)

	matches, err := database.ListMatchesForDonation(ctx, donation.ID)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, models.MatchRejected, matches[0].Status)
	assert.Equal(t, second.ID, matches[1].OrgID)
	assert.Equal(t, models.MatchSuggested, matches[1].Status)

	var notifiedB bool
	for _, m := range reply.Messages() {
		if m.To == "org-b" {
			notifiedB = true
		}
	}
	assert.True(t, notifiedB)
}

func TestProcessOrgResponseIgnoresOtherText(t *testing.T) {
	ctx := context.Background()
	database, engine := setup(t)

	addOrg(t, database, models.Organization{Name: "A", Phone: "org-a", CoverageArea: "Centro"})
	donation := addDonation(t, database, "Centro")
	var out messaging.Capture
	_, err := engine.MatchDonation(ctx, donation, &out)
	require.NoError(t, err)

	handled, err := engine.ProcessOrgResponse(ctx, "org-a", "bom dia", &out)
	require.NoError(t, err)
	assert.False(t, handled)

	handled, err = engine.ProcessOrgResponse(ctx, "stranger", "aceitar", &out)
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestActiveDistributionsAndOrganizationsInArea(t *testing.T) {
	ctx := context.Background()
	database, engine := setup(t)

	now := time.Now().UTC()
	_, err := database.CreateDistribution(ctx, models.ActiveDistribution{
		VolunteerPhone: "v", FoodType: "Sopa", Qty: "30", Location: "Praça da Sé, Centro", ExpiresAt: now.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	_, err = database.CreateDistribution(ctx, models.ActiveDistribution{
		VolunteerPhone: "v", FoodType: "Pão", Qty: "10", Location: "Rocinha", ExpiresAt: now.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	addOrg(t, database, models.Organization{Name: "Esperança", Phone: "1", CoverageArea: "Rocinha, Vidigal"})

	dists, err := engine.ActiveDistributions(ctx, "centro")
	require.NoError(t, err)
	require.Len(t, dists, 1)
	assert.Equal(t, "Sopa", dists[0].FoodType)

	orgs, err := engine.OrganizationsInArea(ctx, "Vidigal")
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, "Esperança", orgs[0].Name)
}
