package repository

import (
	"context"
	"database/sql"
	"errors"
)

// TokenRepository persists the per-user active token list in the
// auth_tokens side table. Row insertion order is issuance order.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Insert records a newly issued token for a user.
func (r *TokenRepository) Insert(ctx context.Context, userID, token string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO auth_tokens (user_id, token) VALUES (?, ?)`, userID, token)
	return err
}

// Exists reports whether the exact token string is active for the user.
func (r *TokenRepository) Exists(ctx context.Context, userID, token string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM auth_tokens WHERE user_id = ? AND token = ?`, userID, token).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// DeleteOne revokes exactly the matching token for the user.
func (r *TokenRepository) DeleteOne(ctx context.Context, userID, token string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM auth_tokens WHERE user_id = ? AND token = ?`, userID, token)
	return err
}

// DeleteAll revokes every token for the user.
func (r *TokenRepository) DeleteAll(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE user_id = ?`, userID)
	return err
}
