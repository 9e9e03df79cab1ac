package conversation

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/centromex/food-rescue-bot/internal/models"
	"github.com/centromex/food-rescue-bot/internal/render"
	"github.com/centromex/food-rescue-bot/internal/validate"
)

const orgCancelled = "❌ Cadastro cancelado."

func (e *Engine) orgName(t *turn) (transition, error) {
	if validate.IsCancel(t.text) {
		return e.cancelFlow(t, orgCancelled), nil
	}
	return e.ask(t, validate.IsValidName(t.text),
		OrgPatch(OrgDraft{Name: t.text}), StepOrgCoverage,
		"🏙️ Em quais BAIRROS ou regiões vocês atuam?\n(separe por vírgula, ex: Centro, Lapa)",
		"Preciso do NOME da organização (mínimo 3 letras)."), nil
}

func (e *Engine) orgCoverage(t *turn) (transition, error) {
	if validate.IsCancel(t.text) {
		return e.cancelFlow(t, orgCancelled), nil
	}
	return e.ask(t, validate.IsFieldValue(t.text, 3),
		OrgPatch(OrgDraft{CoverageArea: t.text}), StepOrgPickup,
		"🚗 Vocês conseguem BUSCAR doações? Responda SIM ou NÃO.",
		"Informe os bairros de atuação (ex: Centro, Lapa)."), nil
}

func (e *Engine) orgPickup(t *turn) (transition, error) {
	if validate.IsCancel(t.text) {
		return e.cancelFlow(t, orgCancelled), nil
	}
	var canPickup bool
	switch {
	case validate.IsYes(t.text):
		canPickup = true
	case validate.IsNo(t.text):
		canPickup = false
	default:
		t.input(false)
		t.reply("Responda SIM ou NÃO: vocês conseguem buscar doações?")
		return stay(StepOrgPickup), nil
	}
	t.input(true)
	t.reply("🕐 Quais os HORÁRIOS de funcionamento?\n(ex: Seg a sex 8h-18h)")
	return advance(OrgPatch(OrgDraft{CanPickup: &canPickup}), StepOrgHours), nil
}

func (e *Engine) orgHours(t *turn) (transition, error) {
	if validate.IsCancel(t.text) {
		return e.cancelFlow(t, orgCancelled), nil
	}
	valid := validate.IsFieldValue(t.text, 3)
	t.input(valid)
	if !valid {
		t.reply("Informe os horários (ex: Seg a sex 8h-18h).")
		return stay(StepOrgHours), nil
	}

	patch := OrgPatch(OrgDraft{Hours: t.text})
	o := t.state.Draft.Merge(patch).AsOrg()
	t.reply(render.OrgSummary(render.OrgDraft{
		Name:         o.Name,
		CoverageArea: o.CoverageArea,
		CanPickup:    o.CanPickup != nil && *o.CanPickup,
		Hours:        o.Hours,
	}))
	return advance(patch, StepOrgConfirm), nil
}

func (e *Engine) orgConfirm(t *turn) (transition, error) {
	switch {
	case validate.IsCancel(t.text):
		return e.cancelFlow(t, orgCancelled), nil
	case validate.IsYes(t.text):
		return e.finishOrg(t)
	case validate.IsNo(t.text), validate.IsEdit(t.text):
		t.reply("✏️ Vamos refazer o cadastro.\n\n" + promptOrgName)
		return restart(StepOrgName), nil
	}
	t.input(false)
	t.reply("Responda SIM para confirmar, EDITAR para refazer ou CANCELAR para sair.")
	return stay(StepOrgConfirm), nil
}

func (e *Engine) finishOrg(t *turn) (transition, error) {
	o := t.state.Draft.AsOrg()
	if o.Name == "" || o.CoverageArea == "" || o.Hours == "" {
		t.log.Warn("organization draft incomplete at confirmation")
		t.reply("Não encontrei os dados do cadastro. Vamos recomeçar.\n\n" + promptOrgName)
		return restart(StepOrgName), nil
	}

	org, err := e.repo.UpsertOrganization(t.ctx, models.Organization{
		Name:         o.Name,
		Phone:        t.phone,
		CoverageArea: o.CoverageArea,
		CanPickup:    o.CanPickup != nil && *o.CanPickup,
		Hours:        o.Hours,
	})
	if err != nil {
		return transition{}, fmt.Errorf("register organization: %w", err)
	}
	e.setRole(t, models.RoleOrg)
	t.log.Info("organization registered", zap.Int64("org_id", org.ID))

	t.reply(render.OrgRegistered(*org))
	return restart(StepOrgCompleted), nil
}
