package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shareit-housing/apiserver/internal/store"
	"github.com/shareit-housing/apiserver/internal/token"
	"github.com/shareit-housing/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength     = 6
	bcryptCost            = 12
	verificationTokenTTL  = 24 * time.Hour
	passwordResetTokenTTL = time.Hour
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	MarkEmailVerified(ctx context.Context, id int) error
	SetResetToken(ctx context.Context, id int, tok string, expiry time.Time) error
	RedeemResetToken(ctx context.Context, id int, tok, passwordHash string) error
	Delete(ctx context.Context, id int) error
}

// VerificationTokenRepository defines persistence for issued
// verification tokens.
type VerificationTokenRepository interface {
	Create(ctx context.Context, tok types.VerificationToken) (types.VerificationToken, error)
	GetByToken(ctx context.Context, raw string) (types.VerificationToken, error)
	DeleteByUserID(ctx context.Context, userID int) error
}

// EmailSender dispatches transactional email. Any non-nil error is a
// hard failure for the calling operation.
type EmailSender interface {
	SendVerificationEmail(ctx context.Context, to, link string) error
	SendPasswordResetEmail(ctx context.Context, to, link string) error
}

// AccountService encapsulates account lifecycle and authentication
// checks: signup with email verification, login gating, and the
// password reset flow.
type AccountService struct {
	users  UserRepository
	tokens VerificationTokenRepository
	mail   EmailSender
	secret []byte
	appURL string
	logger zerolog.Logger

	// now is swapped out in tests to control token expiries.
	now func() time.Time
}

func NewAccountService(
	users UserRepository,
	tokens VerificationTokenRepository,
	mail EmailSender,
	secret []byte,
	appURL string,
	logger zerolog.Logger,
) *AccountService {
	return &AccountService{
		users:  users,
		tokens: tokens,
		mail:   mail,
		secret: secret,
		appURL: strings.TrimRight(appURL, "/"),
		logger: logger,
		now:    time.Now,
	}
}

// RegisterInput carries the signup form fields.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Register creates an unverified account, persists a 24h verification
// token, and emails the verification link. If the email cannot be
// dispatched the user and token are deleted again; a failed signup
// leaves no partial state behind.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (types.User, error) {
	if len(input.Password) < minPasswordLength {
		return types.User{}, ErrWeakPassword
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.users.Create(ctx, types.User{
		FirstName:     strings.TrimSpace(input.FirstName),
		LastName:      strings.TrimSpace(input.LastName),
		Email:         email,
		PasswordHash:  string(hashed),
		EmailVerified: false,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, ErrDuplicateAccount
		}
		return types.User{}, err
	}

	now := s.now()
	claims := token.NewClaims(user.ID, token.PurposeEmailVerification, verificationTokenTTL, now)
	signed, err := token.Sign(claims, s.secret)
	if err != nil {
		_ = s.users.Delete(ctx, user.ID)
		return types.User{}, err
	}

	if _, err := s.tokens.Create(ctx, types.VerificationToken{
		UserID:  user.ID,
		Token:   signed,
		Expires: now.Add(verificationTokenTTL),
	}); err != nil {
		_ = s.users.Delete(ctx, user.ID)
		return types.User{}, err
	}

	link := s.appURL + "/auth/verify?token=" + url.QueryEscape(signed)
	if err := s.mail.SendVerificationEmail(ctx, user.Email, link); err != nil {
		s.logger.Error().Err(err).Int("user_id", user.ID).Msg("rolling back signup after email failure")
		_ = s.tokens.DeleteByUserID(ctx, user.ID)
		_ = s.users.Delete(ctx, user.ID)
		return types.User{}, ErrEmailDispatchFailed
	}

	return user, nil
}

// Login verifies credentials. Unknown email and wrong password produce
// the same error; unverified accounts are rejected after the password
// check so the error does not leak whether the password was right.
func (s *AccountService) Login(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return types.User{}, ErrEmailNotVerified
	}

	return user, nil
}

// GetByID fetches a user by primary key.
func (s *AccountService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.users.GetByID(ctx, id)
}

// VerifyEmail redeems a verification link token. The embedded expiry
// and the stored record's expiry are both enforced. Redeeming an
// already-verified account reports alreadyVerified without error and
// without touching state.
func (s *AccountService) VerifyEmail(ctx context.Context, raw string) (user types.User, alreadyVerified bool, err error) {
	normalized := token.Normalize(raw)

	claims, err := token.Verify(normalized, s.secret)
	if err != nil {
		return types.User{}, false, ErrInvalidOrExpiredToken
	}
	if claims.Purpose != token.PurposeEmailVerification {
		return types.User{}, false, ErrInvalidOrExpiredToken
	}

	now := s.now()
	if claims.Expired(now) {
		return types.User{}, false, ErrInvalidOrExpiredToken
	}

	userID, err := claims.Subject()
	if err != nil {
		return types.User{}, false, ErrInvalidOrExpiredToken
	}

	user, err = s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, false, ErrInvalidOrExpiredToken
		}
		return types.User{}, false, err
	}

	// Redemption cleans up the stored record, so the verified check must
	// come before the stored-token lookup: presenting the same valid
	// link again stays idempotent after cleanup.
	if user.EmailVerified {
		return user, true, nil
	}

	stored, err := s.tokens.GetByToken(ctx, normalized)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, false, ErrInvalidOrExpiredToken
		}
		return types.User{}, false, err
	}
	if stored.Expires.Before(now) {
		return types.User{}, false, ErrInvalidOrExpiredToken
	}
	if stored.UserID != userID {
		return types.User{}, false, ErrInvalidOrExpiredToken
	}

	if err := s.users.MarkEmailVerified(ctx, user.ID); err != nil {
		return types.User{}, false, err
	}
	if err := s.tokens.DeleteByUserID(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int("user_id", user.ID).Msg("failed to clean up verification tokens")
	}

	user.EmailVerified = true
	return user, false, nil
}

// RequestPasswordReset issues a 1h reset token, stores it on the user
// row (overwriting any previous token), and emails the reset link. An
// unknown email reports success without doing anything, so the endpoint
// cannot be used to enumerate accounts.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Debug().Msg("password reset requested for unknown email")
			return nil
		}
		return err
	}

	now := s.now()
	claims := token.NewClaims(user.ID, token.PurposePasswordReset, passwordResetTokenTTL, now)
	signed, err := token.Sign(claims, s.secret)
	if err != nil {
		return err
	}

	if err := s.users.SetResetToken(ctx, user.ID, signed, now.Add(passwordResetTokenTTL)); err != nil {
		return err
	}

	link := s.appURL + "/reset-password?token=" + url.QueryEscape(signed)
	if err := s.mail.SendPasswordResetEmail(ctx, user.Email, link); err != nil {
		return ErrEmailDispatchFailed
	}
	return nil
}

// ResetPassword redeems a reset token. Beyond signature, purpose, and
// embedded expiry, the presented token must equal the token stored on
// the user row exactly: requesting a second reset overwrites the stored
// value and invalidates the first token even though its signature is
// still good. The match-and-clear is a single atomic update.
func (s *AccountService) ResetPassword(ctx context.Context, raw, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	normalized := token.Normalize(raw)

	claims, err := token.Verify(normalized, s.secret)
	if err != nil {
		return ErrInvalidOrExpiredToken
	}
	if claims.Purpose != token.PurposePasswordReset {
		return ErrInvalidOrExpiredToken
	}
	if claims.Expired(s.now()) {
		return ErrInvalidOrExpiredToken
	}

	userID, err := claims.Subject()
	if err != nil {
		return ErrInvalidOrExpiredToken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return err
	}

	if err := s.users.RedeemResetToken(ctx, userID, normalized, string(hashed)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return err
	}
	return nil
}
