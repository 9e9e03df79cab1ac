// Package conversation drives the per-phone dialogue: it loads the stored
// step, applies the global commands, dispatches to the flow handler for the
// step and persists the resulting transition.
package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/centromex/food-rescue-bot/internal/messaging"
	"github.com/centromex/food-rescue-bot/internal/models"
	"github.com/centromex/food-rescue-bot/internal/render"
	"github.com/centromex/food-rescue-bot/internal/textnorm"
	"github.com/centromex/food-rescue-bot/internal/validate"
)

// Repository is the persistence the flow handlers write terminal entities to.
type Repository interface {
	StateRepository
	CreateDonation(ctx context.Context, d models.Donation) (*models.Donation, error)
	UpsertOrganization(ctx context.Context, org models.Organization) (*models.Organization, error)
	AddVolunteer(ctx context.Context, v models.Volunteer) (*models.Volunteer, error)
	SetUserRole(ctx context.Context, phone string, role models.UserRole) error
}

// Matcher pairs donations with organizations and answers seekers.
type Matcher interface {
	MatchDonation(ctx context.Context, donation *models.Donation, out messaging.Sender) (*models.Match, error)
	FindBestRecipients(ctx context.Context, donation *models.Donation, limit int) ([]models.Organization, error)
	ProcessOrgResponse(ctx context.Context, orgPhone, text string, out messaging.Sender) (bool, error)
	ActiveDistributions(ctx context.Context, neighborhood string) ([]models.ActiveDistribution, error)
	OrganizationsInArea(ctx context.Context, neighborhood string) ([]models.Organization, error)
}

// Deduplicator decides whether an inbound message was already handled.
type Deduplicator interface {
	ID(phone, text, messageID string) string
	AlreadyProcessed(ctx context.Context, messageID string) bool
	MarkProcessed(ctx context.Context, messageID, phone string)
}

// Inbound is one user message as received from a transport.
type Inbound struct {
	Phone     string
	Text      string
	MessageID string
}

// Result is the outcome of one turn.
type Result struct {
	NextStep Step
	Messages []messaging.Message
	Debug    Debug
}

// Debug describes how a turn was routed.
type Debug struct {
	TurnID    string `json:"turn_id"`
	DedupID   string `json:"dedup_id"`
	DedupHit  bool   `json:"dedup_hit"`
	PrevStep  Step   `json:"prev_step,omitempty"`
	NextStep  Step   `json:"next_step,omitempty"`
	Intercept string `json:"intercept,omitempty"`
	Fallback  bool   `json:"fallback"`
	Error     string `json:"error,omitempty"`
}

// Engine handles inbound messages. It is safe for concurrent use; turns for
// the same phone are not serialized.
type Engine struct {
	repo    Repository
	states  *StateStore
	matcher Matcher
	dedup   Deduplicator
	log     *zap.Logger
	routes  map[route]stepFunc

	seekerDefaults []render.SeekerOption
}

func NewEngine(repo Repository, matcher Matcher, dedup Deduplicator, log *zap.Logger) *Engine {
	e := &Engine{
		repo:           repo,
		states:         NewStateStore(repo, log),
		matcher:        matcher,
		dedup:          dedup,
		log:            log,
		seekerDefaults: defaultSeekerOptions,
	}
	e.routes = e.buildRoutes()
	return e
}

// States exposes the store for inspection tools.
func (e *Engine) States() *StateStore { return e.states }

// Handle processes one inbound message and returns the messages to deliver.
// It never fails: internal faults become a generic reply to the sender.
func (e *Engine) Handle(ctx context.Context, in Inbound) (res Result) {
	text := strings.TrimSpace(in.Text)
	dedupID := e.dedup.ID(in.Phone, text, in.MessageID)
	res.Debug = Debug{TurnID: uuid.NewString(), DedupID: dedupID}
	log := e.log.With(zap.String("turn_id", res.Debug.TurnID), zap.String("phone", in.Phone))

	if e.dedup.AlreadyProcessed(ctx, dedupID) {
		res.Debug.DedupHit = true
		if st, ok, err := e.states.Peek(ctx, in.Phone); err == nil && ok {
			res.NextStep = st.Step
			res.Debug.NextStep = st.Step
		}
		return res
	}

	out := &messaging.Capture{}
	t := &turn{ctx: ctx, phone: in.Phone, text: text, out: out, log: log}

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while handling message", zap.Any("panic", r), zap.Stack("stack"))
			res = e.failed(res, t, fmt.Errorf("panic: %v", r))
		}
	}()

	next, err := e.route(t)
	res.Debug.PrevStep = t.state.Step
	res.Debug.Intercept = t.intercept
	if err != nil {
		log.Error("failed to handle message", zap.String("step", string(t.state.Step)), zap.Error(err))
		return e.failed(res, t, err)
	}

	if out.Len() == 0 {
		t.reply(render.Fallback)
		res.Debug.Fallback = true
	}
	e.dedup.MarkProcessed(ctx, dedupID, in.Phone)

	res.NextStep = next
	res.Debug.NextStep = next
	res.Messages = out.Messages()
	log.Info("turn handled",
		zap.String("prev_step", string(res.Debug.PrevStep)),
		zap.String("next_step", string(next)),
		zap.String("intercept", res.Debug.Intercept),
		zap.Int("messages", len(res.Messages)))
	return res
}

// failed keeps notifications already addressed to third parties and replaces
// anything meant for the sender with the generic error text. The message is
// not marked processed.
func (e *Engine) failed(res Result, t *turn, err error) Result {
	var msgs []messaging.Message
	for _, m := range t.out.Messages() {
		if m.To != t.phone {
			msgs = append(msgs, m)
		}
	}
	res.Messages = append([]messaging.Message{{To: t.phone, Text: render.InternalError}}, msgs...)
	res.NextStep = t.state.Step
	res.Debug.NextStep = t.state.Step
	res.Debug.Error = err.Error()
	return res
}

var (
	fastlaneWords = map[string]bool{"oi": true, "ola": true, "menu": true, "reiniciar": true, "m": true}
	cancelWords   = map[string]bool{"cancelar": true, "c": true, "cancel": true}
)

// route applies the global commands in precedence order and otherwise hands
// the message to the handler registered for the current step.
func (e *Engine) route(t *turn) (Step, error) {
	st, err := e.states.Load(t.ctx, t.phone)
	if err != nil {
		return "", fmt.Errorf("load state: %w", err)
	}
	t.state = st
	flow := st.Step.Flow()
	folded := textnorm.Fold(t.text)

	switch {
	case folded == "menu":
		t.intercept = "menu"
		return e.apply(t, e.showMenu(t))
	case fastlaneWords[folded] && !flow.collectsRegistration():
		t.intercept = "fastlane"
		return e.apply(t, e.showMenu(t))
	case cancelWords[folded]:
		t.intercept = "cancel"
		t.reply("❌ Operação cancelada.")
		return e.apply(t, e.showMenu(t))
	case folded == "reiniciar":
		t.intercept = "restart"
		t.reply(render.Restarting)
		return e.apply(t, e.showMenu(t))
	}

	if flow != FlowMenu && validate.IsMenuOption(t.text) {
		t.intercept = "blocked_menu_number"
		t.reply(blockedOptionText(flow))
		return st.Step, nil
	}

	handled, err := e.matcher.ProcessOrgResponse(t.ctx, t.phone, t.text, t.out)
	if err != nil {
		t.log.Warn("org response failed", zap.Error(err))
	}
	if handled {
		t.intercept = "org_response"
		return st.Step, nil
	}

	fn, ok := e.routes[route{flow: flow, step: st.Step}]
	if !ok {
		t.intercept = "unknown_step"
		t.log.Warn("no handler for step", zap.String("step", string(st.Step)))
		return e.apply(t, e.showMenu(t))
	}

	tr, err := fn(t)
	if err != nil {
		return "", err
	}
	return e.apply(t, tr)
}

// apply persists a transition through the state store.
func (e *Engine) apply(t *turn, tr transition) (Step, error) {
	var err error
	switch tr.op {
	case keepDraft:
		_, err = e.states.SetState(t.ctx, t.phone, tr.next)
	case mergeDraft:
		_, err = e.states.MergeDraftAndAdvance(t.ctx, t.phone, tr.draft, tr.next)
	case replaceDraft:
		_, err = e.states.SetStateAndDraft(t.ctx, t.phone, tr.next, tr.draft)
	}
	if err != nil {
		return "", fmt.Errorf("save state %s: %w", tr.next, err)
	}
	return tr.next, nil
}

func blockedOptionText(flow Flow) string {
	switch flow {
	case FlowDonate:
		return "Você está no meio de uma doação. Responda à pergunta anterior.\nPara sair digite CANCELAR ou MENU."
	case FlowOrg:
		return "Você está cadastrando uma organização. Responda à pergunta anterior.\nPara sair digite CANCELAR ou MENU."
	case FlowSeek:
		return "Você está buscando comida. Responda à pergunta anterior.\nPara sair digite CANCELAR ou MENU."
	default:
		return "Você está no cadastro de voluntário. Responda à pergunta anterior.\nPara sair digite CANCELAR ou MENU."
	}
}
