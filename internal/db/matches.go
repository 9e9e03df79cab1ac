package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/centromex/food-rescue-bot/internal/models"
)

// CreateMatch records a suggested pairing of donation and organization.
func (db *DB) CreateMatch(ctx context.Context, donationID, orgID int64) (*models.Match, error) {
	now := db.now()
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO matches (donation_id, org_id, status, created_at) VALUES (?, ?, ?, ?)`,
		donationID, orgID, models.MatchSuggested, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &models.Match{
		ID:         id,
		DonationID: donationID,
		OrgID:      orgID,
		Status:     models.MatchSuggested,
		CreatedAt:  now,
	}, nil
}

// LatestSuggestedMatch returns the most recent suggested match addressed to the
// organization registered under orgPhone.
func (db *DB) LatestSuggestedMatch(ctx context.Context, orgPhone string) (*models.Match, error) {
	var m models.Match
	err := db.conn.QueryRowContext(ctx,
		`SELECT m.id, m.donation_id, m.org_id, m.status, m.created_at
		 FROM matches m JOIN organizations o ON o.id = m.org_id
		 WHERE o.phone = ? AND m.status = ?
		 ORDER BY m.id DESC LIMIT 1`,
		orgPhone, models.MatchSuggested,
	).Scan(&m.ID, &m.DonationID, &m.OrgID, &m.Status, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest suggested match: %w", err)
	}
	return &m, nil
}

// AcceptMatch marks the match accepted and its donation matched
func (db *DB) AcceptMatch(ctx context.Context, matchID int64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var donationID int64
	var status models.MatchStatus
	err = tx.QueryRowContext(ctx, `SELECT donation_id, status FROM matches WHERE id = ?`, matchID).Scan(&donationID, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("match %d: %w", matchID, ErrNotFound)
	}
	if err != nil {
		return err
	}
	if status != models.MatchSuggested {
		return fmt.Errorf("match %d is %s, not suggested", matchID, status)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE matches SET status = ? WHERE id = ?`, models.MatchAccepted, matchID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE donations SET status = ? WHERE id = ?`, models.DonationMatched, donationID); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateMatchStatus sets the match lifecycle status.
func (db *DB) UpdateMatchStatus(ctx context.Context, matchID int64, status models.MatchStatus) error {
	result, err := db.conn.ExecContext(ctx, `UPDATE matches SET status = ? WHERE id = ?`, status, matchID)
	if err != nil {
		return fmt.Errorf("update match status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("match %d: %w", matchID, ErrNotFound)
	}
	return nil
}

// RejectedOrganizationIDs lists organizations that already declined the donation.
func (db *DB) RejectedOrganizationIDs(ctx context.Context, donationID int64) ([]int64, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT org_id FROM matches WHERE donation_id = ? AND status = ?`,
		donationID, models.MatchRejected,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListMatchesForDonation returns every match of a donation, oldest first.
func (db *DB) ListMatchesForDonation(ctx context.Context, donationID int64) ([]models.Match, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, donation_id, org_id, status, created_at FROM matches WHERE donation_id = ? ORDER BY id ASC`,
		donationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		var m models.Match
		if err := rows.Scan(&m.ID, &m.DonationID, &m.OrgID, &m.Status, &m.CreatedAt); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
