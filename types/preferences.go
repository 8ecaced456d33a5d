package types

import "time"

// Preferences holds a user's roommate preferences, one record per user.
type Preferences struct {
	ID     int `json:"id" db:"id"`
	UserID int `json:"user_id" db:"user_id"`

	// Roommate is a set of free-text roommate-preference statements.
	Roommate []string `json:"roommate" db:"roommate"`

	// GuestPreference rates comfort with guests from 1 to 5.
	GuestPreference int `json:"guest_preference" db:"guest_preference"`

	AdditionalPreference string `json:"additional_preference" db:"additional_preference"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
