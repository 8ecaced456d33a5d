package types

import "time"

// ContactMethod is the preferred way to reach a listing owner.
type ContactMethod string

const (
	ContactByEmail ContactMethod = "Email"
	ContactByPhone ContactMethod = "Phone No."
)

func (v ContactMethod) Valid() bool {
	return v == ContactByEmail || v == ContactByPhone
}

// ContactInfo holds a user's contact details, one record per user.
type ContactInfo struct {
	ID     int `json:"id" db:"id"`
	UserID int `json:"user_id" db:"user_id"`

	Phone            string        `json:"phone" db:"phone"`
	Email            string        `json:"email" db:"email"`
	PreferredContact ContactMethod `json:"preferred_contact" db:"preferred_contact"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
