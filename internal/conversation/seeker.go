package conversation

import (
	"go.uber.org/zap"

	"github.com/centromex/food-rescue-bot/internal/models"
	"github.com/centromex/food-rescue-bot/internal/render"
	"github.com/centromex/food-rescue-bot/internal/textnorm"
	"github.com/centromex/food-rescue-bot/internal/validate"
)

// defaultSeekerOptions are shown when nothing registered covers the area.
var defaultSeekerOptions = []render.SeekerOption{
	{Name: "Cozinha Solidária Rocinha", Phone: "+55 21 99999-1111", Coverage: "Rocinha", Hours: "Seg a Sex 11h-20h"},
	{Name: "ONG Esperança", Phone: "+55 21 98888-2222", Coverage: "Rocinha, Vidigal", Hours: "Diariamente 10h-19h"},
	{Name: "Cozinha Popular", Phone: "+55 21 97777-3333", Coverage: "Zona Sul", Hours: "Seg a Sáb 12h-18h"},
}

const seekCancelled = "❌ Busca cancelada."

func (e *Engine) seekItem(t *turn) (transition, error) {
	if validate.IsCancel(t.text) {
		return e.cancelFlow(t, seekCancelled), nil
	}
	return e.ask(t, validate.IsFieldValue(t.text, 2),
		SeekPatch(SeekDraft{Item: t.text}), StepSeekLocation,
		"📍 Em qual BAIRRO você está?",
		"Diga do que você precisa (ex: marmita, cesta básica)."), nil
}

// seekLocation answers with distributions and organizations near the
// neighborhood. It gives pointers only, never a promise of food.
func (e *Engine) seekLocation(t *turn) (transition, error) {
	if validate.IsCancel(t.text) {
		return e.cancelFlow(t, seekCancelled), nil
	}
	valid := validate.IsFieldValue(t.text, 3)
	t.input(valid)
	if !valid {
		t.reply("Informe seu bairro (ex: Centro, Rocinha).")
		return stay(StepSeekLocation), nil
	}

	neighborhood := textnorm.Neighborhood(t.text)
	dists, err := e.matcher.ActiveDistributions(t.ctx, neighborhood)
	if err != nil {
		t.log.Warn("distribution lookup failed", zap.String("neighborhood", neighborhood), zap.Error(err))
	}
	orgs, err := e.matcher.OrganizationsInArea(t.ctx, t.text)
	if err != nil {
		t.log.Warn("organization lookup failed", zap.String("neighborhood", neighborhood), zap.Error(err))
	}

	t.reply(render.SeekerOptions(dists, orgs, e.seekerDefaults, 3))
	e.setRole(t, models.RoleSeeker)
	return restart(StepSeekCompleted), nil
}
