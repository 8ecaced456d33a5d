package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shareit-housing/apiserver/types"
)

// VerificationTokenRepository persists issued email verification tokens.
type VerificationTokenRepository struct {
	db *sql.DB
}

func NewVerificationTokenRepository(db *sql.DB) *VerificationTokenRepository {
	return &VerificationTokenRepository{db: db}
}

func (r *VerificationTokenRepository) Create(ctx context.Context, tok types.VerificationToken) (types.VerificationToken, error) {
	tok.CreatedAt = time.Now()

	const query = `
		INSERT INTO verification_tokens (user_id, token, expires, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		tok.UserID,
		tok.Token,
		tok.Expires,
		tok.CreatedAt,
	).Scan(&tok.ID); err != nil {
		return types.VerificationToken{}, err
	}
	return tok, nil
}

func (r *VerificationTokenRepository) GetByToken(ctx context.Context, raw string) (types.VerificationToken, error) {
	const query = `
		SELECT id, user_id, token, expires, created_at
		FROM verification_tokens
		WHERE token = $1`
	var tok types.VerificationToken
	err := r.db.QueryRowContext(ctx, query, raw).Scan(
		&tok.ID,
		&tok.UserID,
		&tok.Token,
		&tok.Expires,
		&tok.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.VerificationToken{}, ErrNotFound
		}
		return types.VerificationToken{}, err
	}
	return tok, nil
}

// DeleteByUserID removes all verification tokens issued for a user.
func (r *VerificationTokenRepository) DeleteByUserID(ctx context.Context, userID int) error {
	const query = `DELETE FROM verification_tokens WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}
