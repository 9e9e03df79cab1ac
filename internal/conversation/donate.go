package conversation

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/centromex/food-rescue-bot/internal/models"
	"github.com/centromex/food-rescue-bot/internal/render"
	"github.com/centromex/food-rescue-bot/internal/validate"
)

const donationCancelled = "❌ Doação cancelada."

func (e *Engine) donateFoodType(t *turn) (transition, error) {
	if validate.IsCancel(t.text) {
		return e.cancelFlow(t, donationCancelled), nil
	}
	return e.ask(t, validate.IsFieldValue(t.text, 2),
		DonationPatch(DonationDraft{FoodType: t.text}), StepDonateQty,
		"📦 Qual a QUANTIDADE?\n(ex: 5kg, 20 marmitas, 3 caixas)",
		"Informe o tipo de comida (ex: arroz, marmitas)."), nil
}

func (e *Engine) donateQty(t *turn) (transition, error) {
	if validate.IsCancel(t.text) {
		return e.cancelFlow(t, donationCancelled), nil
	}
	return e.ask(t, validate.IsFieldValue(t.text, 1),
		DonationPatch(DonationDraft{Qty: t.text}), StepDonateExpires,
		"⏰ Até quando a comida está boa para consumo?\n(ex: hoje 18h, amanhã)",
		"Informe a quantidade (ex: 5kg, 20 marmitas)."), nil
}

func (e *Engine) donateExpires(t *turn) (transition, error) {
	if validate.IsCancel(t.text) {
		return e.cancelFlow(t, donationCancelled), nil
	}
	return e.ask(t, validate.IsFieldValue(t.text, 2),
		DonationPatch(DonationDraft{ExpiresAt: t.text}), StepDonateLocation,
		"🏠 Onde a comida está? Informe o bairro ou endereço de retirada.",
		"Informe até quando a comida está boa (ex: hoje 18h)."), nil
}

func (e *Engine) donateLocation(t *turn) (transition, error) {
	if validate.IsCancel(t.text) {
		return e.cancelFlow(t, donationCancelled), nil
	}
	valid := validate.IsFieldValue(t.text, 3)
	t.input(valid)
	if !valid {
		t.reply("Informe o bairro ou endereço (ex: Centro, Rua X 123).")
		return stay(StepDonateLocation), nil
	}

	patch := DonationPatch(DonationDraft{Location: t.text})
	d := t.state.Draft.Merge(patch).AsDonation()
	t.reply(render.DonationSummary(render.DonationDraft{
		FoodType:  d.FoodType,
		Qty:       d.Qty,
		ExpiresAt: d.ExpiresAt,
		Location:  d.Location,
	}))
	return advance(patch, StepDonateConfirm), nil
}

func (e *Engine) donateConfirm(t *turn) (transition, error) {
	switch {
	case validate.IsCancel(t.text):
		return e.cancelFlow(t, donationCancelled), nil
	case validate.IsYes(t.text):
		return e.finishDonation(t)
	case validate.IsNo(t.text):
		return e.cancelFlow(t, donationCancelled), nil
	case validate.IsEdit(t.text):
		t.reply("✏️ Vamos refazer a doação.\n\n" + promptFoodType)
		return restart(StepDonateFoodType), nil
	}
	t.input(false)
	t.reply("Responda SIM para confirmar, NÃO para descartar ou EDITAR para refazer.")
	return stay(StepDonateConfirm), nil
}

// finishDonation persists the donation, triggers matching and lists pickup
// points for the donor.
func (e *Engine) finishDonation(t *turn) (transition, error) {
	d := t.state.Draft.AsDonation()
	if d.FoodType == "" || d.Qty == "" || d.ExpiresAt == "" || d.Location == "" {
		t.log.Warn("donation draft incomplete at confirmation")
		t.reply("Não encontrei os dados da doação. Vamos recomeçar.\n\n" + promptFoodType)
		return restart(StepDonateFoodType), nil
	}

	donation, err := e.repo.CreateDonation(t.ctx, models.Donation{
		DonorPhone: t.phone,
		FoodType:   d.FoodType,
		Qty:        d.Qty,
		ExpiresAt:  d.ExpiresAt,
		Location:   d.Location,
	})
	if err != nil {
		return transition{}, fmt.Errorf("create donation: %w", err)
	}
	e.setRole(t, models.RoleDonor)
	t.log.Info("donation created", zap.Int64("donation_id", donation.ID))

	match, err := e.matcher.MatchDonation(t.ctx, donation, t.out)
	if err != nil {
		t.log.Warn("matching failed", zap.Int64("donation_id", donation.ID), zap.Error(err))
	}
	recipients, err := e.matcher.FindBestRecipients(t.ctx, donation, 3)
	if err != nil {
		t.log.Warn("recipient lookup failed", zap.Int64("donation_id", donation.ID), zap.Error(err))
	}

	t.reply(render.DonationCreated(match != nil))
	t.reply(render.PickupOptions(recipients))
	return restart(StepDonatePostMatch), nil
}
