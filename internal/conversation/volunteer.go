package conversation

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/centromex/food-rescue-bot/internal/models"
	"github.com/centromex/food-rescue-bot/internal/render"
	"github.com/centromex/food-rescue-bot/internal/validate"
)

const volunteerCancelled = "❌ Cadastro de voluntário cancelado."

func (e *Engine) volunteerRegion(t *turn) (transition, error) {
	if validate.IsCancel(t.text) {
		return e.cancelFlow(t, volunteerCancelled), nil
	}
	return e.ask(t, validate.IsFieldValue(t.text, 3),
		VolunteerPatch(VolunteerDraft{Region: t.text}), StepVolunteerAvailability,
		"🕐 Qual sua DISPONIBILIDADE?\n(ex: agora, hoje à tarde, fins de semana)",
		"Informe a região onde pode atuar (ex: Centro)."), nil
}

func (e *Engine) volunteerAvailability(t *turn) (transition, error) {
	if validate.IsCancel(t.text) {
		return e.cancelFlow(t, volunteerCancelled), nil
	}
	return e.ask(t, validate.IsFieldValue(t.text, 3),
		VolunteerPatch(VolunteerDraft{Availability: t.text}), StepVolunteerTransport,
		"🚗 Você tem TRANSPORTE próprio? Responda SIM ou NÃO.",
		"Informe sua disponibilidade (ex: hoje à tarde)."), nil
}

func (e *Engine) volunteerTransport(t *turn) (transition, error) {
	if validate.IsCancel(t.text) {
		return e.cancelFlow(t, volunteerCancelled), nil
	}
	var hasTransport bool
	switch {
	case validate.IsYes(t.text):
		hasTransport = true
	case validate.IsNo(t.text):
		hasTransport = false
	default:
		t.input(false)
		t.reply("Responda SIM ou NÃO: você tem transporte próprio?")
		return stay(StepVolunteerTransport), nil
	}
	t.input(true)
	t.reply("📍 Qual um ponto de REFERÊNCIA onde você está?\n(ex: Praça da Sé)")
	return advance(VolunteerPatch(VolunteerDraft{HasTransport: &hasTransport}), StepVolunteerLocation), nil
}

func (e *Engine) volunteerLocation(t *turn) (transition, error) {
	if validate.IsCancel(t.text) {
		return e.cancelFlow(t, volunteerCancelled), nil
	}
	valid := validate.IsFieldValue(t.text, 3)
	t.input(valid)
	if !valid {
		t.reply("Informe um ponto de referência (ex: Praça da Sé).")
		return stay(StepVolunteerLocation), nil
	}

	patch := VolunteerPatch(VolunteerDraft{Location: t.text})
	t.reply(render.VolunteerSummary(volunteerView(t.state.Draft.Merge(patch).AsVolunteer())))
	return advance(patch, StepVolunteerConfirm), nil
}

func (e *Engine) volunteerConfirm(t *turn) (transition, error) {
	switch {
	case validate.IsCancel(t.text), validate.IsNo(t.text):
		return e.cancelFlow(t, volunteerCancelled), nil
	case validate.IsYes(t.text):
		return e.finishVolunteer(t)
	}
	t.input(false)
	t.reply("Não entendi. Responda SIM para confirmar ou CANCELAR para encerrar.")
	return stay(StepVolunteerConfirm), nil
}

func (e *Engine) finishVolunteer(t *turn) (transition, error) {
	v := t.state.Draft.AsVolunteer()
	if v.Region == "" || v.Availability == "" || v.Location == "" {
		t.log.Warn("volunteer draft incomplete at confirmation")
		t.reply("Não encontrei os dados do cadastro. Vamos recomeçar.\n\n" + promptVolunteerReg)
		return restart(StepVolunteerRegion), nil
	}

	saved, err := e.repo.AddVolunteer(t.ctx, models.Volunteer{
		Phone:        t.phone,
		Region:       v.Region,
		Availability: v.Availability,
		HasTransport: v.HasTransport != nil && *v.HasTransport,
		Location:     v.Location,
	})
	if err != nil {
		return transition{}, fmt.Errorf("register volunteer: %w", err)
	}
	e.setRole(t, models.RoleVolunteer)
	t.log.Info("volunteer registered", zap.Int64("volunteer_id", saved.ID))

	t.reply(render.VolunteerRegistered(volunteerView(v)))
	return restart(StepVolunteerCompleted), nil
}

func volunteerView(v VolunteerDraft) render.VolunteerDraft {
	return render.VolunteerDraft{
		Region:       v.Region,
		Availability: v.Availability,
		HasTransport: v.HasTransport != nil && *v.HasTransport,
		Location:     v.Location,
	}
}
