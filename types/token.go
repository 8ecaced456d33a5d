package types

import "time"

// VerificationToken mirrors an issued email verification token. The
// expiry stored here is enforced in addition to the expiry embedded in
// the signed token itself.
type VerificationToken struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	Expires   time.Time `json:"expires" db:"expires"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
