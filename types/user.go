package types

import "time"

// User represents an account in the system.
// It contains identity, verification state, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// FirstName is the user's given name.
	FirstName string `json:"first_name" db:"first_name"`

	// LastName is the user's family name.
	LastName string `json:"last_name" db:"last_name"`

	// Email is the user's university email address. It is stored
	// lowercased and is unique case-insensitively.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// EmailVerified reports whether the user has redeemed an email
	// verification token. It flips to true exactly once.
	EmailVerified bool `json:"email_verified" db:"email_verified"`

	// ResetToken holds the most recently issued password reset token.
	// Issuing a new token overwrites it; a successful reset clears it.
	ResetToken *string `json:"-" db:"reset_token"`

	// ResetTokenExpiry is the stored expiry of ResetToken. It is checked
	// in addition to the expiry embedded in the token itself.
	ResetTokenExpiry *time.Time `json:"-" db:"reset_token_expiry"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
