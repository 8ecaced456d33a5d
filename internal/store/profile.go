package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/shareit-housing/apiserver/types"
)

// ProfileRepository handles persistence for roommate profiles.
type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int) (types.Profile, error) {
	const query = `
		SELECT id, user_id, user_type, academic_level, gender, age_group, study_schedule,
			socializing_preference, tidiness, drinking_preference, smoking_preference,
			hobbies, created_at, updated_at
		FROM profiles
		WHERE user_id = $1`
	var profile types.Profile
	var hobbiesJSON []byte
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.UserType,
		&profile.AcademicLevel,
		&profile.Gender,
		&profile.AgeGroup,
		&profile.StudySchedule,
		&profile.SocializingPreference,
		&profile.Tidiness,
		&profile.DrinkingPreference,
		&profile.SmokingPreference,
		&hobbiesJSON,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Profile{}, ErrNotFound
		}
		return types.Profile{}, err
	}

	if err := json.Unmarshal(hobbiesJSON, &profile.Hobbies); err != nil {
		return types.Profile{}, err
	}
	return profile, nil
}

// Upsert creates or replaces the user's profile in one atomic statement
// keyed on user_id.
func (r *ProfileRepository) Upsert(ctx context.Context, profile types.Profile) (types.Profile, error) {
	now := time.Now()
	profile.UpdatedAt = now

	hobbiesJSON, err := json.Marshal(profile.Hobbies)
	if err != nil {
		return types.Profile{}, err
	}

	const query = `
		INSERT INTO profiles (user_id, user_type, academic_level, gender, age_group, study_schedule,
			socializing_preference, tidiness, drinking_preference, smoking_preference, hobbies,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		ON CONFLICT (user_id) DO UPDATE
		SET user_type = EXCLUDED.user_type,
			academic_level = EXCLUDED.academic_level,
			gender = EXCLUDED.gender,
			age_group = EXCLUDED.age_group,
			study_schedule = EXCLUDED.study_schedule,
			socializing_preference = EXCLUDED.socializing_preference,
			tidiness = EXCLUDED.tidiness,
			drinking_preference = EXCLUDED.drinking_preference,
			smoking_preference = EXCLUDED.smoking_preference,
			hobbies = EXCLUDED.hobbies,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		profile.UserID,
		profile.UserType,
		profile.AcademicLevel,
		profile.Gender,
		profile.AgeGroup,
		profile.StudySchedule,
		profile.SocializingPreference,
		profile.Tidiness,
		profile.DrinkingPreference,
		profile.SmokingPreference,
		hobbiesJSON,
		now,
	).Scan(&profile.ID, &profile.CreatedAt); err != nil {
		return types.Profile{}, err
	}
	return profile, nil
}
