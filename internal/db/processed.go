package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// IsProcessed reports whether messageID was already handled.
func (db *DB) IsProcessed(ctx context.Context, messageID string) (bool, error) {
	var one int
	err := db.conn.QueryRowContext(ctx,
		`SELECT 1 FROM processed_messages WHERE message_id = ?`, messageID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check processed message: %w", err)
	}
	return true, nil
}

// MarkProcessed stores messageID. A second insert of the same id fails on the
// primary key.
func (db *DB) MarkProcessed(ctx context.Context, messageID, phone string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO processed_messages (message_id, phone, created_at) VALUES (?, ?, ?)`,
		messageID, phone, db.now(),
	)
	if err != nil {
		return fmt.Errorf("mark processed message: %w", err)
	}
	return nil
}

// PurgeProcessedMessages deletes dedup records older than the specified duration
func (db *DB) PurgeProcessedMessages(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := db.now().Add(-olderThan)
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM processed_messages WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
