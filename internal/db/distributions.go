package db

import (
	"context"
	"fmt"
	"time"

	"github.com/centromex/food-rescue-bot/internal/models"
)

// CreateDistribution registers a volunteer distribution. The conversation core
// only reads distributions; this is used by seeding and tests.
func (db *DB) CreateDistribution(ctx context.Context, d models.ActiveDistribution) (*models.ActiveDistribution, error) {
	if d.Status == "" {
		d.Status = models.DistributionActive
	}
	d.CreatedAt = db.now()
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO active_distributions (volunteer_phone, food_type, qty, location, expires_at, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.VolunteerPhone, d.FoodType, d.Qty, d.Location, d.ExpiresAt.UTC(), d.Status, d.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create distribution: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	d.ID = id
	return &d, nil
}

// ActiveDistributions returns distributions with status active that have not
// expired at now, in creation order.
func (db *DB) ActiveDistributions(ctx context.Context, now time.Time) ([]models.ActiveDistribution, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, volunteer_phone, food_type, qty, location, expires_at, status, created_at
		 FROM active_distributions WHERE status = ? ORDER BY id ASC`,
		models.DistributionActive,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dists []models.ActiveDistribution
	for rows.Next() {
		var d models.ActiveDistribution
		if err := rows.Scan(&d.ID, &d.VolunteerPhone, &d.FoodType, &d.Qty, &d.Location, &d.ExpiresAt, &d.Status, &d.CreatedAt); err != nil {
			return nil, err
		}
		if !d.ExpiresAt.After(now) {
			continue
		}
		dists = append(dists, d)
	}
	return dists, rows.Err()
}

// ExpireDistributions flips active distributions past their expiry to expired.
func (db *DB) ExpireDistributions(ctx context.Context, now time.Time) (int64, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, expires_at FROM active_distributions WHERE status = ?`, models.DistributionActive)
	if err != nil {
		return 0, err
	}

	var expired []int64
	for rows.Next() {
		var id int64
		var expiresAt time.Time
		if err := rows.Scan(&id, &expiresAt); err != nil {
			rows.Close()
			return 0, err
		}
		if !expiresAt.After(now) {
			expired = append(expired, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, id := range expired {
		if _, err := db.conn.ExecContext(ctx,
			`UPDATE active_distributions SET status = ? WHERE id = ?`, models.DistributionExpired, id); err != nil {
			return 0, fmt.Errorf("expire distribution %d: %w", id, err)
		}
	}
	return int64(len(expired)), nil
}
