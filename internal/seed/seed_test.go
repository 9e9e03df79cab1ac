package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/centromex/food-rescue-bot/internal/db"
	"github.com/centromex/food-rescue-bot/internal/models"
)

func TestEmbeddedDefaults(t *testing.T) {
	f, err := Load("")
	require.NoError(t, err)
	require.Len(t, f.Organizations, 5)
	assert.Equal(t, "Banco de Alimentos São Paulo", f.Organizations[0].Name)
	assert.True(t, f.Organizations[0].CanPickup)
	assert.Empty(t, f.Distributions)
}

func TestParseRejectsBadEntries(t *testing.T) {
	_, err := Parse([]byte("organizations:\n  - name: Sem telefone\n"))
	assert.ErrorContains(t, err, "name and phone")

	_, err = Parse([]byte("distributions:\n  - location: Centro\n    expires_in: amanhã\n"))
	assert.ErrorContains(t, err, "expires_in")

	_, err = Parse([]byte("organizations: [unclosed"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	database, err := db.New(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	log := zaptest.NewLogger(t)

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
organizations:
  - name: Cozinha X
    phone: "(11) 91234-5678"
    coverage_area: Centro
    can_pickup: true
    hours: 8h-18h
distributions:
  - volunteer_phone: "11987654321"
    food_type: Marmitas
    qty: "30"
    location: Praça da Sé, Centro
    expires_in: 3h
`), 0o644))

	f, err := Load(path)
	require.NoError(t, err)

	now := time.Now().UTC()
	res, err := Apply(ctx, database, f, false, now, log)
	require.NoError(t, err)
	assert.Equal(t, Result{Organizations: 1, Distributions: 1}, res)

	org, err := database.GetOrganizationByPhone(ctx, "+5511912345678")
	require.NoError(t, err)
	assert.Equal(t, "Cozinha X", org.Name)

	role, err := database.GetUserRole(ctx, "+5511912345678")
	require.NoError(t, err)
	assert.Equal(t, models.RoleOrg, role)

	dists, err := database.ActiveDistributions(ctx, now)
	require.NoError(t, err)
	require.Len(t, dists, 1)
	assert.Equal(t, "+5511987654321", dists[0].VolunteerPhone)

	res, err = Apply(ctx, database, f, false, now, log)
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	res, err = Apply(ctx, database, f, true, now, log)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Organizations)
	n, err := database.CountOrganizations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "forced reseed upserts by phone")
}
