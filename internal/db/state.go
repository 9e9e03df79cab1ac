package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/centromex/food-rescue-bot/internal/models"
)

// GetOrCreateState returns the conversation row for phone, creating a MENU row
// on first contact.
func (db *DB) GetOrCreateState(ctx context.Context, phone string) (*models.ConversationState, error) {
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO conversation_state (phone, step, flow, draft, updated_at) VALUES (?, 'MENU', 'MENU', '{}', ?)`,
		phone, db.now(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert conversation state: %w", err)
	}
	return db.GetState(ctx, phone)
}

// GetState returns ErrNotFound when the phone never talked to the bot.
func (db *DB) GetState(ctx context.Context, phone string) (*models.ConversationState, error) {
	var st models.ConversationState
	var draft string
	err := db.conn.QueryRowContext(ctx,
		`SELECT phone, step, flow, draft, updated_at FROM conversation_state WHERE phone = ?`, phone,
	).Scan(&st.Phone, &st.Step, &st.Flow, &draft, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation state: %w", err)
	}
	st.Draft = []byte(draft)
	return &st, nil
}

// SaveState overwrites step, flow and draft of an existing row.
func (db *DB) SaveState(ctx context.Context, st *models.ConversationState) error {
	draft := string(st.Draft)
	if draft == "" {
		draft = "{}"
	}
	st.UpdatedAt = db.now()
	result, err := db.conn.ExecContext(ctx,
		`UPDATE conversation_state SET step = ?, flow = ?, draft = ?, updated_at = ? WHERE phone = ?`,
		st.Step, st.Flow, draft, st.UpdatedAt, st.Phone,
	)
	if err != nil {
		return fmt.Errorf("save conversation state: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("save conversation state %s: %w", st.Phone, ErrNotFound)
	}
	return nil
}

// CountStates is used by diagnostics and tests.
func (db *DB) CountStates(ctx context.Context, phone string) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversation_state WHERE phone = ?`, phone).Scan(&n)
	return n, err
}

// SetUserRole records the last role a phone took in the conversation.
func (db *DB) SetUserRole(ctx context.Context, phone string, role models.UserRole) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (phone, role, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(phone) DO UPDATE SET role = excluded.role`,
		phone, role, db.now(),
	)
	if err != nil {
		return fmt.Errorf("set user role: %w", err)
	}
	return nil
}

// GetUserRole returns RoleUnknown for phones without a users row.
func (db *DB) GetUserRole(ctx context.Context, phone string) (models.UserRole, error) {
	var role models.UserRole
	err := db.conn.QueryRowContext(ctx, `SELECT role FROM users WHERE phone = ?`, phone).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RoleUnknown, nil
	}
	return role, err
}
