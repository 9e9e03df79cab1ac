package conversation

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/centromex/food-rescue-bot/internal/db"
	"github.com/centromex/food-rescue-bot/internal/models"
)

// StateRepository persists conversation rows.
type StateRepository interface {
	GetOrCreateState(ctx context.Context, phone string) (*models.ConversationState, error)
	GetState(ctx context.Context, phone string) (*models.ConversationState, error)
	SaveState(ctx context.Context, st *models.ConversationState) error
}

// State is the decoded conversation position of a phone.
type State struct {
	Phone     string    `json:"phone"`
	Step      Step      `json:"step"`
	Flow      Flow      `json:"flow"`
	Draft     Draft     `json:"draft"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StateStore is the only writer of conversation state. Every write re-derives
// the flow from the step and drops the draft when the step is in the menu or
// the draft belongs to another flow.
type StateStore struct {
	repo StateRepository
	log  *zap.Logger
}

func NewStateStore(repo StateRepository, log *zap.Logger) *StateStore {
	return &StateStore{repo: repo, log: log}
}

// Load returns the state of phone, creating a MENU state on first contact.
func (s *StateStore) Load(ctx context.Context, phone string) (State, error) {
	row, err := s.repo.GetOrCreateState(ctx, phone)
	if err != nil {
		return State{}, err
	}
	return s.decode(row), nil
}

// Peek returns the state without creating one.
func (s *StateStore) Peek(ctx context.Context, phone string) (State, bool, error) {
	row, err := s.repo.GetState(ctx, phone)
	if errors.Is(err, db.ErrNotFound) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, err
	}
	return s.decode(row), true, nil
}

// SetState moves phone to step and keeps the draft.
func (s *StateStore) SetState(ctx context.Context, phone string, step Step) (State, error) {
	cur, err := s.Load(ctx, phone)
	if err != nil {
		return State{}, err
	}
	return s.save(ctx, phone, step, cur.Draft)
}

// SetStateAndDraft moves phone to step and replaces the draft. Pass an empty
// Draft to clear it.
func (s *StateStore) SetStateAndDraft(ctx context.Context, phone string, step Step, draft Draft) (State, error) {
	if _, err := s.repo.GetOrCreateState(ctx, phone); err != nil {
		return State{}, err
	}
	return s.save(ctx, phone, step, draft)
}

// MergeDraftAndAdvance merges patch into the current draft and moves to next.
func (s *StateStore) MergeDraftAndAdvance(ctx context.Context, phone string, patch Draft, next Step) (State, error) {
	cur, err := s.Load(ctx, phone)
	if err != nil {
		return State{}, err
	}
	return s.save(ctx, phone, next, cur.Draft.Merge(patch))
}

// Reset returns phone to the menu with an empty draft.
func (s *StateStore) Reset(ctx context.Context, phone string) (State, error) {
	return s.SetStateAndDraft(ctx, phone, StepMenu, Draft{})
}

func (s *StateStore) save(ctx context.Context, phone string, step Step, draft Draft) (State, error) {
	flow := step.Flow()
	if flow == FlowMenu || (!draft.IsEmpty() && draft.Flow != flow) {
		draft = Draft{}
	}
	encoded, err := draft.Encode()
	if err != nil {
		return State{}, err
	}

	row := &models.ConversationState{
		Phone: phone,
		Step:  string(step),
		Flow:  string(flow),
		Draft: encoded,
	}
	if err := s.repo.SaveState(ctx, row); err != nil {
		return State{}, err
	}
	return State{Phone: phone, Step: step, Flow: flow, Draft: draft, UpdatedAt: row.UpdatedAt}, nil
}

func (s *StateStore) decode(row *models.ConversationState) State {
	draft, err := DecodeDraft(row.Draft)
	if err != nil {
		s.log.Warn("discarding unreadable draft", zap.String("phone", row.Phone), zap.Error(err))
		draft = Draft{}
	}
	step := Step(row.Step)
	return State{
		Phone:     row.Phone,
		Step:      step,
		Flow:      step.Flow(),
		Draft:     draft,
		UpdatedAt: row.UpdatedAt,
	}
}
