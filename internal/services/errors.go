package services

import (
	"errors"
	"fmt"
)

// Service-level error taxonomy. Store and driver errors are translated
// into these at the operation boundary; raw storage errors never reach
// handlers.
var (
	// ErrDuplicateAccount is returned when the email is already taken
	// (case-insensitively).
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrInvalidCredentials covers both unknown email and wrong
	// password, deliberately without distinguishing them.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailNotVerified is returned on login before the verification
	// link has been redeemed.
	ErrEmailNotVerified = errors.New("email not verified")

	// ErrWeakPassword is returned for passwords shorter than 6 characters.
	ErrWeakPassword = errors.New("password must be at least 6 characters long")

	// ErrInvalidOrExpiredToken covers bad signature, wrong purpose,
	// elapsed expiry, and stored-token mismatch uniformly, so callers
	// cannot learn which check failed.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")

	// ErrEmailDispatchFailed is returned when the outbound email could
	// not be sent; any dependent state has been rolled back.
	ErrEmailDispatchFailed = errors.New("failed to send email")

	// ErrForbidden is returned when the caller is authenticated but not
	// allowed to touch the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrNoDraftListing is returned by listing steps that require the
	// caller to have started a listing.
	ErrNoDraftListing = errors.New("no listing to operate on")

	// ErrValidation is returned for enum or range violations on wizard
	// input. Use errors.Is to test for it.
	ErrValidation = errors.New("validation failed")
)

func validationError(field string) error {
	return fmt.Errorf("%w: invalid %s", ErrValidation, field)
}
