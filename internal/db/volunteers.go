package db

import (
	"context"
	"fmt"

	"github.com/centromex/food-rescue-bot/internal/models"
)

// AddVolunteer appends an entry to the volunteer roster
func (db *DB) AddVolunteer(ctx context.Context, v models.Volunteer) (*models.Volunteer, error) {
	v.CreatedAt = db.now()
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO volunteers (phone, region, availability, has_transport, location, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		v.Phone, v.Region, v.Availability, boolToInt(v.HasTransport), v.Location, v.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("add volunteer: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	v.ID = id
	return &v, nil
}

// ListVolunteers returns the roster in registration order
func (db *DB) ListVolunteers(ctx context.Context) ([]models.Volunteer, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, phone, region, availability, has_transport, location, created_at
		 FROM volunteers ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roster []models.Volunteer
	for rows.Next() {
		var v models.Volunteer
		if err := rows.Scan(&v.ID, &v.Phone, &v.Region, &v.Availability, &v.HasTransport, &v.Location, &v.CreatedAt); err != nil {
			return nil, err
		}
		roster = append(roster, v)
	}
	return roster, rows.Err()
}
