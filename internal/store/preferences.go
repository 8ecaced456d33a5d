package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/shareit-housing/apiserver/types"
)

// PreferencesRepository handles persistence for roommate preferences.
type PreferencesRepository struct {
	db *sql.DB
}

func NewPreferencesRepository(db *sql.DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

func (r *PreferencesRepository) GetByUserID(ctx context.Context, userID int) (types.Preferences, error) {
	const query = `
		SELECT id, user_id, roommate, guest_preference, additional_preference, created_at, updated_at
		FROM preferences
		WHERE user_id = $1`
	var prefs types.Preferences
	var roommateJSON []byte
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&prefs.ID,
		&prefs.UserID,
		&roommateJSON,
		&prefs.GuestPreference,
		&prefs.AdditionalPreference,
		&prefs.CreatedAt,
		&prefs.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Preferences{}, ErrNotFound
		}
		return types.Preferences{}, err
	}

	if err := json.Unmarshal(roommateJSON, &prefs.Roommate); err != nil {
		return types.Preferences{}, err
	}
	return prefs, nil
}

// Upsert creates or replaces the user's preferences atomically.
func (r *PreferencesRepository) Upsert(ctx context.Context, prefs types.Preferences) (types.Preferences, error) {
	now := time.Now()
	prefs.UpdatedAt = now

	roommateJSON, err := json.Marshal(prefs.Roommate)
	if err != nil {
		return types.Preferences{}, err
	}

	const query = `
		INSERT INTO preferences (user_id, roommate, guest_preference, additional_preference, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET roommate = EXCLUDED.roommate,
			guest_preference = EXCLUDED.guest_preference,
			additional_preference = EXCLUDED.additional_preference,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		prefs.UserID,
		roommateJSON,
		prefs.GuestPreference,
		prefs.AdditionalPreference,
		now,
	).Scan(&prefs.ID, &prefs.CreatedAt); err != nil {
		return types.Preferences{}, err
	}
	return prefs, nil
}
