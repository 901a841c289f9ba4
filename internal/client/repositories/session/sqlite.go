package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ashiqsultan/inbox-memory-ai/internal/dbx"
)

// slotName is the fixed well-known key of the single session slot.
const slotName = "access_token"

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context) (string, error) {
	var token string
	err := r.db.QueryRowContext(ctx, `SELECT token FROM session WHERE slot = ?`, slotName).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session: %w", err)
	}
	return token, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session (slot, token) VALUES (?, ?)
		ON CONFLICT(slot) DO UPDATE SET token = excluded.token
	`, slotName, token)
	if err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM session WHERE slot = ?`, slotName)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
