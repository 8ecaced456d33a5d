package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shareit-housing/apiserver/types"
)

// ContactInfoRepository handles persistence for contact details.
type ContactInfoRepository struct {
	db *sql.DB
}

func NewContactInfoRepository(db *sql.DB) *ContactInfoRepository {
	return &ContactInfoRepository{db: db}
}

func (r *ContactInfoRepository) GetByUserID(ctx context.Context, userID int) (types.ContactInfo, error) {
	const query = `
		SELECT id, user_id, phone, email, preferred_contact, created_at, updated_at
		FROM contact_infos
		WHERE user_id = $1`
	var info types.ContactInfo
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&info.ID,
		&info.UserID,
		&info.Phone,
		&info.Email,
		&info.PreferredContact,
		&info.CreatedAt,
		&info.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.ContactInfo{}, ErrNotFound
		}
		return types.ContactInfo{}, err
	}
	return info, nil
}

// Upsert creates or replaces the user's contact info atomically.
func (r *ContactInfoRepository) Upsert(ctx context.Context, info types.ContactInfo) (types.ContactInfo, error) {
	now := time.Now()
	info.UpdatedAt = now

	const query = `
		INSERT INTO contact_infos (user_id, phone, email, preferred_contact, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			preferred_contact = EXCLUDED.preferred_contact,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		info.UserID,
		info.Phone,
		info.Email,
		info.PreferredContact,
		now,
	).Scan(&info.ID, &info.CreatedAt); err != nil {
		return types.ContactInfo{}, err
	}
	return info, nil
}
