// Package matching pairs confirmed donations with organizations and runs the
// accept/reject lifecycle of the resulting matches.
package matching

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/centromex/food-rescue-bot/internal/db"
	"github.com/centromex/food-rescue-bot/internal/messaging"
	"github.com/centromex/food-rescue-bot/internal/models"
	"github.com/centromex/food-rescue-bot/internal/render"
	"github.com/centromex/food-rescue-bot/internal/textnorm"
)

const (
	scoreCoverage = 10
	scorePickup   = 5
	scoreHours    = 2
)

// Store is the persistence the engine needs.
type Store interface {
	ActiveOrganizations(ctx context.Context) ([]models.Organization, error)
	GetOrganization(ctx context.Context, id int64) (*models.Organization, error)
	GetDonation(ctx context.Context, id int64) (*models.Donation, error)
	CreateMatch(ctx context.Context, donationID, orgID int64) (*models.Match, error)
	LatestSuggestedMatch(ctx context.Context, orgPhone string) (*models.Match, error)
	AcceptMatch(ctx context.Context, matchID int64) error
	UpdateMatchStatus(ctx context.Context, matchID int64, status models.MatchStatus) error
	RejectedOrganizationIDs(ctx context.Context, donationID int64) ([]int64, error)
	ActiveDistributions(ctx context.Context, now time.Time) ([]models.ActiveDistribution, error)
}

type Engine struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

func New(store Store, log *zap.Logger) *Engine {
	return &Engine{store: store, log: log, now: time.Now}
}

// Candidate is a scored organization.
type Candidate struct {
	Org   models.Organization
	Score int
}

// Score rates how well org fits the donation: coverage of the pickup
// neighborhood, pickup capability and declared hours.
func Score(org models.Organization, donation models.Donation) int {
	score := 0
	if textnorm.Covers(org.CoverageArea, donation.Location) {
		score += scoreCoverage
	}
	if org.CanPickup {
		score += scorePickup
	}
	if strings.TrimSpace(org.Hours) != "" {
		score += scoreHours
	}
	return score
}

// Rank scores orgs and orders them by score, highest first. Orgs arrive in
// creation order and the sort is stable, so ties go to the earliest
// registration. Orgs in exclude are skipped.
func Rank(orgs []models.Organization, donation models.Donation, exclude map[int64]bool) []Candidate {
	candidates := make([]Candidate, 0, len(orgs))
	for _, org := range orgs {
		if exclude[org.ID] {
			continue
		}
		candidates = append(candidates, Candidate{Org: org, Score: Score(org, donation)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

// MatchDonation suggests the donation to the best scoring organization and
// notifies it through out. It returns nil when no organization scores above
// zero. Organizations that already rejected the donation are not considered.
func (e *Engine) MatchDonation(ctx context.Context, donation *models.Donation, out messaging.Sender) (*models.Match, error) {
	orgs, err := e.store.ActiveOrganizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load organizations: %w", err)
	}
	if len(orgs) == 0 {
		e.log.Info("no active organizations found for matching", zap.Int64("donation_id", donation.ID))
		return nil, nil
	}

	rejected, err := e.store.RejectedOrganizationIDs(ctx, donation.ID)
	if err != nil {
		return nil, fmt.Errorf("load rejections: %w", err)
	}
	exclude := make(map[int64]bool, len(rejected))
	for _, id := range rejected {
		exclude[id] = true
	}

	ranked := Rank(orgs, *donation, exclude)
	if len(ranked) == 0 || ranked[0].Score <= 0 {
		e.log.Info("no suitable match found", zap.Int64("donation_id", donation.ID))
		return nil, nil
	}

	best := ranked[0]
	match, err := e.store.CreateMatch(ctx, donation.ID, best.Org.ID)
	if err != nil {
		return nil, err
	}

	if err := out.Send(ctx, best.Org.Phone, render.OrgNotification(*donation)); err != nil {
		e.log.Warn("notify organization failed", zap.String("org_phone", best.Org.Phone), zap.Error(err))
	}

	e.log.Info("created match",
		zap.Int64("match_id", match.ID),
		zap.Int64("donation_id", donation.ID),
		zap.Int64("org_id", best.Org.ID),
		zap.Int("score", best.Score))
	return match, nil
}

// FindBestRecipients scores like MatchDonation without persisting anything and
// returns up to limit organizations with a positive score.
func (e *Engine) FindBestRecipients(ctx context.Context, donation *models.Donation, limit int) ([]models.Organization, error) {
	orgs, err := e.store.ActiveOrganizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load organizations: %w", err)
	}

	var top []models.Organization
	for _, c := range Rank(orgs, *donation, nil) {
		if c.Score <= 0 || len(top) == limit {
			break
		}
		top = append(top, c.Org)
	}
	return top, nil
}

// ProcessOrgResponse consumes an accept or reject reply from an organization
// with a pending suggestion. It returns false when the phone has no pending
// suggestion or the text is neither token, so normal routing continues.
func (e *Engine) ProcessOrgResponse(ctx context.Context, orgPhone, text string, out messaging.Sender) (bool, error) {
	accept, reject := isAccept(text), isReject(text)
	if !accept && !reject {
		return false, nil
	}

	match, err := e.store.LatestSuggestedMatch(ctx, orgPhone)
	if errors.Is(err, db.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	donation, err := e.store.GetDonation(ctx, match.DonationID)
	if err != nil {
		return false, fmt.Errorf("load donation of match %d: %w", match.ID, err)
	}

	if accept {
		if err := e.store.AcceptMatch(ctx, match.ID); err != nil {
			return false, err
		}
		org, err := e.store.GetOrganization(ctx, match.OrgID)
		if err != nil {
			return false, err
		}
		e.send(ctx, out, orgPhone, render.OrgAcceptConfirmed(*donation))
		e.send(ctx, out, donation.DonorPhone, render.DonorAccepted(*org, *donation))
		e.log.Info("match accepted", zap.Int64("match_id", match.ID), zap.Int64("donation_id", donation.ID))
		return true, nil
	}

	if err := e.store.UpdateMatchStatus(ctx, match.ID, models.MatchRejected); err != nil {
		return false, err
	}
	e.send(ctx, out, orgPhone, render.OrgRejectConfirmed)
	e.log.Info("match rejected", zap.Int64("match_id", match.ID), zap.Int64("donation_id", donation.ID))

	if _, err := e.MatchDonation(ctx, donation, out); err != nil {
		e.log.Warn("rematch after rejection failed", zap.Int64("donation_id", donation.ID), zap.Error(err))
	}
	return true, nil
}

// ActiveDistributions returns live distributions whose location mentions the
// neighborhood. An empty neighborhood returns all of them.
func (e *Engine) ActiveDistributions(ctx context.Context, neighborhood string) ([]models.ActiveDistribution, error) {
	dists, err := e.store.ActiveDistributions(ctx, e.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("load distributions: %w", err)
	}
	want := textnorm.Neighborhood(neighborhood)
	if want == "" {
		return dists, nil
	}

	var out []models.ActiveDistribution
	for _, d := range dists {
		if strings.Contains(textnorm.Neighborhood(d.Location), want) {
			out = append(out, d)
		}
	}
	return out, nil
}

// OrganizationsInArea returns active organizations covering the neighborhood.
func (e *Engine) OrganizationsInArea(ctx context.Context, neighborhood string) ([]models.Organization, error) {
	orgs, err := e.store.ActiveOrganizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load organizations: %w", err)
	}

	var out []models.Organization
	for _, org := range orgs {
		if textnorm.Covers(org.CoverageArea, neighborhood) {
			out = append(out, org)
		}
	}
	return out, nil
}

func (e *Engine) send(ctx context.Context, out messaging.Sender, to, text string) {
	if err := out.Send(ctx, to, text); err != nil {
		e.log.Warn("send failed", zap.String("to", to), zap.Error(err))
	}
}

func isAccept(text string) bool {
	return strings.Contains(textnorm.Fold(text), "aceitar") || strings.Contains(text, "✅")
}

func isReject(text string) bool {
	return strings.Contains(textnorm.Fold(text), "recusar") || strings.Contains(text, "❌")
}
