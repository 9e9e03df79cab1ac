package conversation

import (
	"context"

	"go.uber.org/zap"

	"github.com/centromex/food-rescue-bot/internal/messaging"
	"github.com/centromex/food-rescue-bot/internal/models"
	"github.com/centromex/food-rescue-bot/internal/render"
	"github.com/centromex/food-rescue-bot/internal/textnorm"
	"github.com/centromex/food-rescue-bot/internal/validate"
)

// turn carries one message through routing.
type turn struct {
	ctx       context.Context
	phone     string
	text      string
	state     State
	out       *messaging.Capture
	log       *zap.Logger
	intercept string
}

func (t *turn) reply(text string) { t.send(t.phone, text) }

func (t *turn) send(to, text string) {
	if err := t.out.Send(t.ctx, to, text); err != nil {
		t.log.Warn("failed to queue message", zap.String("to", to), zap.Error(err))
	}
}

// input logs whether the text was accepted for the current step.
func (t *turn) input(accepted bool) {
	t.log.Info("step input",
		zap.String("step", string(t.state.Step)),
		zap.String("input", t.text),
		zap.Bool("accepted", accepted))
}

type draftOp int

const (
	keepDraft draftOp = iota
	mergeDraft
	replaceDraft
)

// transition is what a handler asks the engine to persist.
type transition struct {
	next  Step
	op    draftOp
	draft Draft
}

// stay keeps the phone on step with its draft untouched.
func stay(step Step) transition { return transition{next: step, op: keepDraft} }

// advance merges patch into the draft and moves to next.
func advance(patch Draft, next Step) transition {
	return transition{next: next, op: mergeDraft, draft: patch}
}

// restart moves to next with an empty draft.
func restart(next Step) transition { return transition{next: next, op: replaceDraft} }

type stepFunc func(t *turn) (transition, error)

type route struct {
	flow Flow
	step Step
}

func (e *Engine) buildRoutes() map[route]stepFunc {
	r := map[route]stepFunc{}
	add := func(step Step, fn stepFunc) { r[route{flow: step.Flow(), step: step}] = fn }

	add(StepMenu, e.menuChoice)

	add(StepDonateFoodType, e.donateFoodType)
	add(StepDonateQty, e.donateQty)
	add(StepDonateExpires, e.donateExpires)
	add(StepDonateLocation, e.donateLocation)
	add(StepDonateConfirm, e.donateConfirm)
	add(StepDonatePostMatch, e.parked(StepDonatePostMatch))

	add(StepOrgName, e.orgName)
	add(StepOrgCoverage, e.orgCoverage)
	add(StepOrgPickup, e.orgPickup)
	add(StepOrgHours, e.orgHours)
	add(StepOrgConfirm, e.orgConfirm)
	add(StepOrgCompleted, e.parked(StepOrgCompleted))

	add(StepSeekItem, e.seekItem)
	add(StepSeekLocation, e.seekLocation)
	add(StepSeekCompleted, e.parked(StepSeekCompleted))

	add(StepVolunteerRegion, e.volunteerRegion)
	add(StepVolunteerAvailability, e.volunteerAvailability)
	add(StepVolunteerTransport, e.volunteerTransport)
	add(StepVolunteerLocation, e.volunteerLocation)
	add(StepVolunteerConfirm, e.volunteerConfirm)
	add(StepVolunteerCompleted, e.parked(StepVolunteerCompleted))
	return r
}

// showMenu sends the main menu and returns to it with an empty draft.
func (e *Engine) showMenu(t *turn) transition {
	t.reply(render.Menu)
	return restart(StepMenu)
}

// cancelFlow confirms the cancellation and shows the menu.
func (e *Engine) cancelFlow(t *turn, text string) transition {
	t.reply(text)
	return e.showMenu(t)
}

// parked handles a completed flow: menu words return to the menu, anything
// else is left unanswered so the engine falls back.
func (e *Engine) parked(step Step) stepFunc {
	return func(t *turn) (transition, error) {
		if validate.IsCancel(t.text) {
			return e.showMenu(t), nil
		}
		switch textnorm.Fold(t.text) {
		case "menu", "m", "reiniciar":
			return e.showMenu(t), nil
		}
		return stay(step), nil
	}
}

// ask validates a free-text field: on success the patch is merged and the
// next prompt sent, otherwise the retry prompt is repeated.
func (e *Engine) ask(t *turn, valid bool, patch Draft, next Step, prompt, retry string) transition {
	t.input(valid)
	if !valid {
		t.reply(retry)
		return stay(t.state.Step)
	}
	t.reply(prompt)
	return advance(patch, next)
}

func (e *Engine) setRole(t *turn, role models.UserRole) {
	if err := e.repo.SetUserRole(t.ctx, t.phone, role); err != nil {
		t.log.Warn("could not store user role", zap.String("role", string(role)), zap.Error(err))
	}
}

