package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/centromex/food-rescue-bot/internal/models"
)

const orgColumns = `id, name, phone, coverage_area, can_pickup, hours, active, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrganization(row rowScanner) (*models.Organization, error) {
	var org models.Organization
	err := row.Scan(&org.ID, &org.Name, &org.Phone, &org.CoverageArea, &org.CanPickup, &org.Hours, &org.Active, &org.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// UpsertOrganization registers an organization, or refreshes the one already
// registered under the same phone and reactivates it.
func (db *DB) UpsertOrganization(ctx context.Context, org models.Organization) (*models.Organization, error) {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO organizations (name, phone, coverage_area, can_pickup, hours, active, created_at)
		 VALUES (?, ?, ?, ?, ?, 1, ?)
		 ON CONFLICT(phone) DO UPDATE SET
			name = excluded.name,
			coverage_area = excluded.coverage_area,
			can_pickup = excluded.can_pickup,
			hours = excluded.hours,
			active = 1`,
		org.Name, org.Phone, org.CoverageArea, boolToInt(org.CanPickup), org.Hours, db.now(),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert organization: %w", err)
	}
	return db.GetOrganizationByPhone(ctx, org.Phone)
}

// GetOrganization retrieves an organization by ID
func (db *DB) GetOrganization(ctx context.Context, id int64) (*models.Organization, error) {
	org, err := scanOrganization(db.conn.QueryRowContext(ctx,
		`SELECT `+orgColumns+` FROM organizations WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get organization %d: %w", id, err)
	}
	return org, nil
}

// GetOrganizationByPhone retrieves an organization by its contact phone
func (db *DB) GetOrganizationByPhone(ctx context.Context, phone string) (*models.Organization, error) {
	org, err := scanOrganization(db.conn.QueryRowContext(ctx,
		`SELECT `+orgColumns+` FROM organizations WHERE phone = ?`, phone))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get organization by phone: %w", err)
	}
	return org, nil
}

// ActiveOrganizations returns active organizations in creation order.
func (db *DB) ActiveOrganizations(ctx context.Context) ([]models.Organization, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+orgColumns+` FROM organizations WHERE active = 1 ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []models.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, *org)
	}
	return orgs, rows.Err()
}

// CountOrganizations returns the number of registered organizations.
func (db *DB) CountOrganizations(ctx context.Context) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM organizations`).Scan(&n)
	return n, err
}
