package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/centromex/food-rescue-bot/internal/models"
)

func TestPickupOptions(t *testing.T) {
	text := PickupOptions([]models.Organization{
		{Name: "Banco de Alimentos", Phone: "+5511999990001", CoverageArea: "Centro", CanPickup: true},
	})
	assert.Contains(t, text, "🏢 Banco de Alimentos")
	assert.Contains(t, text, "Retira no local")
	assert.Contains(t, text, "Horário não informado")

	assert.Contains(t, PickupOptions(nil), "Ainda não encontramos")
}

func TestSeekerOptionsLimitsAndFallsBack(t *testing.T) {
	orgs := make([]models.Organization, 5)
	for i := range orgs {
		orgs[i] = models.Organization{Name: "Org", Phone: "1"}
	}
	dists := []models.ActiveDistribution{{Location: "Centro", FoodType: "Sopa", Qty: "20", ExpiresAt: time.Date(2026, 1, 1, 19, 30, 0, 0, time.UTC)}}

	text := SeekerOptions(dists, orgs, nil, 3)
	assert.Equal(t, 3, strings.Count(text, "🏢 Org"))
	assert.Contains(t, text, "Até 19:30")

	defaults := []SeekerOption{{Name: "Cozinha Popular", Phone: "2", Coverage: "Zona Sul", Hours: "12h-18h"}}
	text = SeekerOptions(nil, nil, defaults, 3)
	assert.Contains(t, text, "Cozinha Popular")
	assert.Contains(t, text, "Não prometemos comida")
}

func TestOrgNotificationCarriesInstructions(t *testing.T) {
	text := OrgNotification(models.Donation{FoodType: "Arroz", Qty: "5kg", Location: "Centro"})
	assert.Contains(t, text, "ACEITAR")
	assert.Contains(t, text, "RECUSAR")
	assert.Contains(t, text, "Arroz")
}

func TestSummaries(t *testing.T) {
	assert.Contains(t, OrgSummary(OrgDraft{Name: "Cozinha X", CanPickup: true}), "🚗 Busca: Sim")
	assert.Contains(t, VolunteerSummary(VolunteerDraft{Region: "Centro"}), "🚗 Transporte: Não")
	assert.Contains(t, DonationSummary(DonationDraft{FoodType: "Pães"}), "Comida: Pães")
}
