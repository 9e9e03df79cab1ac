package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/centromex/food-rescue-bot/internal/models"
)

// CreateDonation persists a confirmed donation with status pending.
func (db *DB) CreateDonation(ctx context.Context, d models.Donation) (*models.Donation, error) {
	now := db.now()
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO donations (donor_phone, food_type, qty, expires_at, location, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.DonorPhone, d.FoodType, d.Qty, d.ExpiresAt, d.Location, models.DonationPending, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create donation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	d.ID = id
	d.Status = models.DonationPending
	d.CreatedAt = now
	return &d, nil
}

// GetDonation retrieves a donation by ID
func (db *DB) GetDonation(ctx context.Context, id int64) (*models.Donation, error) {
	var d models.Donation
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, donor_phone, food_type, qty, expires_at, location, status, created_at
		 FROM donations WHERE id = ?`, id,
	).Scan(&d.ID, &d.DonorPhone, &d.FoodType, &d.Qty, &d.ExpiresAt, &d.Location, &d.Status, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get donation %d: %w", id, err)
	}
	return &d, nil
}

// ListDonationsByDonor returns a donor's donations, oldest first.
func (db *DB) ListDonationsByDonor(ctx context.Context, phone string) ([]models.Donation, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, donor_phone, food_type, qty, expires_at, location, status, created_at
		 FROM donations WHERE donor_phone = ? ORDER BY id ASC`, phone,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var donations []models.Donation
	for rows.Next() {
		var d models.Donation
		if err := rows.Scan(&d.ID, &d.DonorPhone, &d.FoodType, &d.Qty, &d.ExpiresAt, &d.Location, &d.Status, &d.CreatedAt); err != nil {
			return nil, err
		}
		donations = append(donations, d)
	}
	return donations, rows.Err()
}

// UpdateDonationStatus sets the donation lifecycle status.
func (db *DB) UpdateDonationStatus(ctx context.Context, id int64, status models.DonationStatus) error {
	result, err := db.conn.ExecContext(ctx, `UPDATE donations SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update donation status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("donation %d: %w", id, ErrNotFound)
	}
	return nil
}
