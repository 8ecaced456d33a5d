package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shareit-housing/apiserver/internal/token"
	"github.com/shareit-housing/apiserver/types"
)

const testAppURL = "http://localhost:8080"

var testSecret = []byte("account-test-secret")

func newTestAccountService() (*AccountService, *fakeUserRepo, *fakeTokenRepo, *fakeMailer) {
	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	mail := newFakeMailer()
	svc := NewAccountService(users, tokens, mail, testSecret, testAppURL, zerolog.Nop())
	return svc, users, tokens, mail
}

func registerTestUser(t *testing.T, svc *AccountService, email string) types.User {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  "hunter22",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return user
}

func linkToken(t *testing.T, link string) string {
	t.Helper()
	parsed, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse link %q: %v", link, err)
	}
	raw := parsed.Query().Get("token")
	if raw == "" {
		t.Fatalf("link %q has no token", link)
	}
	return raw
}

func TestRegisterVerifyLogin(t *testing.T) {
	svc, _, _, mail := newTestAccountService()
	ctx := context.Background()

	user := registerTestUser(t, svc, "ada@uni.edu")
	if user.EmailVerified {
		t.Fatalf("new account must start unverified")
	}

	if _, err := svc.Login(ctx, "ada@uni.edu", "hunter22"); !errors.Is(err, ErrEmailNotVerified) {
		t.Fatalf("login before verification: got %v, want ErrEmailNotVerified", err)
	}

	link, ok := mail.verificationLinks["ada@uni.edu"]
	if !ok {
		t.Fatalf("no verification email sent")
	}

	verified, already, err := svc.VerifyEmail(ctx, linkToken(t, link))
	if err != nil {
		t.Fatalf("verify email: %v", err)
	}
	if already {
		t.Fatalf("first verification reported alreadyVerified")
	}
	if !verified.EmailVerified {
		t.Fatalf("user not marked verified")
	}

	loggedIn, err := svc.Login(ctx, "ada@uni.edu", "hunter22")
	if err != nil {
		t.Fatalf("login after verification: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Fatalf("logged in as user %d, want %d", loggedIn.ID, user.ID)
	}
}

func TestRegisterDuplicateEmailIsCaseInsensitive(t *testing.T) {
	svc, _, _, _ := newTestAccountService()
	registerTestUser(t, svc, "ada@uni.edu")

	_, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ADA@UNI.EDU",
		Password:  "hunter22",
	})
	if !errors.Is(err, ErrDuplicateAccount) {
		t.Fatalf("got %v, want ErrDuplicateAccount", err)
	}
}

func TestRegisterWeakPassword(t *testing.T) {
	svc, users, _, _ := newTestAccountService()

	_, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@uni.edu",
		Password:  "short",
	})
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("got %v, want ErrWeakPassword", err)
	}
	if len(users.users) != 0 {
		t.Fatalf("weak password must not create a user")
	}
}

func TestRegisterRollsBackWhenEmailFails(t *testing.T) {
	svc, users, tokens, mail := newTestAccountService()
	mail.fail = true

	_, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@uni.edu",
		Password:  "hunter22",
	})
	if !errors.Is(err, ErrEmailDispatchFailed) {
		t.Fatalf("got %v, want ErrEmailDispatchFailed", err)
	}
	if len(users.users) != 0 {
		t.Fatalf("failed signup left a user behind")
	}
	if len(tokens.tokens) != 0 {
		t.Fatalf("failed signup left a verification token behind")
	}
}

func TestVerifyEmailIsIdempotent(t *testing.T) {
	svc, _, tokens, mail := newTestAccountService()
	ctx := context.Background()

	registerTestUser(t, svc, "ada@uni.edu")
	raw := linkToken(t, mail.verificationLinks["ada@uni.edu"])

	if _, already, err := svc.VerifyEmail(ctx, raw); err != nil || already {
		t.Fatalf("first verify: already=%v err=%v", already, err)
	}

	// The first redemption cleans up the stored record; presenting the
	// same link again must still report already-verified, not an error.
	if len(tokens.tokens) != 0 {
		t.Fatalf("stored token not cleaned up after redemption")
	}
	if _, already, err := svc.VerifyEmail(ctx, raw); err != nil || !already {
		t.Fatalf("second verify: already=%v err=%v, want already=true", already, err)
	}
}

func TestVerifyEmailRejectsResetToken(t *testing.T) {
	svc, _, _, _ := newTestAccountService()
	user := registerTestUser(t, svc, "ada@uni.edu")

	claims := token.NewClaims(user.ID, token.PurposePasswordReset, time.Hour, time.Now())
	signed, err := token.Sign(claims, testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, _, err := svc.VerifyEmail(context.Background(), signed); !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Fatalf("got %v, want ErrInvalidOrExpiredToken", err)
	}
}

func TestVerifyEmailRejectsUnknownToken(t *testing.T) {
	svc, _, _, _ := newTestAccountService()
	user := registerTestUser(t, svc, "ada@uni.edu")

	// Well signed but never persisted, as if issued by a previous signup.
	claims := token.NewClaims(user.ID, token.PurposeEmailVerification, time.Hour, time.Now())
	signed, err := token.Sign(claims, testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, _, err := svc.VerifyEmail(context.Background(), signed); !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Fatalf("got %v, want ErrInvalidOrExpiredToken", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _, _, mail := newTestAccountService()
	ctx := context.Background()

	registerTestUser(t, svc, "ada@uni.edu")
	if _, _, err := svc.VerifyEmail(ctx, linkToken(t, mail.verificationLinks["ada@uni.edu"])); err != nil {
		t.Fatalf("verify: %v", err)
	}

	if err := svc.RequestPasswordReset(ctx, "ada@uni.edu"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	raw := linkToken(t, mail.resetLinks["ada@uni.edu"])

	if err := svc.ResetPassword(ctx, raw, "newpassword"); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	if _, err := svc.Login(ctx, "ada@uni.edu", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password still accepted: %v", err)
	}
	if _, err := svc.Login(ctx, "ada@uni.edu", "newpassword"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	// A redeemed token cannot be replayed.
	if err := svc.ResetPassword(ctx, raw, "anotherpassword"); !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Fatalf("replayed token: got %v, want ErrInvalidOrExpiredToken", err)
	}
}

func TestNewResetRequestInvalidatesOldToken(t *testing.T) {
	svc, _, _, mail := newTestAccountService()
	ctx := context.Background()

	registerTestUser(t, svc, "ada@uni.edu")

	base := time.Now()
	svc.now = func() time.Time { return base }
	if err := svc.RequestPasswordReset(ctx, "ada@uni.edu"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	first := linkToken(t, mail.resetLinks["ada@uni.edu"])

	// The second issued token overwrites the stored one even though the
	// first token's signature is still valid. A later clock gives the
	// second token a distinct expiry.
	svc.now = func() time.Time { return base.Add(2 * time.Second) }
	if err := svc.RequestPasswordReset(ctx, "ada@uni.edu"); err != nil {
		t.Fatalf("second request: %v", err)
	}
	second := linkToken(t, mail.resetLinks["ada@uni.edu"])
	if first == second {
		t.Fatalf("expected a fresh token on the second request")
	}

	if err := svc.ResetPassword(ctx, first, "newpassword"); !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Fatalf("stale token: got %v, want ErrInvalidOrExpiredToken", err)
	}
	if err := svc.ResetPassword(ctx, second, "newpassword"); err != nil {
		t.Fatalf("current token: %v", err)
	}
}

func TestRequestPasswordResetUnknownEmail(t *testing.T) {
	svc, _, _, mail := newTestAccountService()

	if err := svc.RequestPasswordReset(context.Background(), "nobody@uni.edu"); err != nil {
		t.Fatalf("unknown email must not error: %v", err)
	}
	if len(mail.resetLinks) != 0 {
		t.Fatalf("no email should be sent for an unknown address")
	}
}

func TestResetPasswordWeakPassword(t *testing.T) {
	svc, _, _, mail := newTestAccountService()
	ctx := context.Background()

	registerTestUser(t, svc, "ada@uni.edu")
	if err := svc.RequestPasswordReset(ctx, "ada@uni.edu"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	raw := linkToken(t, mail.resetLinks["ada@uni.edu"])

	if err := svc.ResetPassword(ctx, raw, "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("got %v, want ErrWeakPassword", err)
	}
}

func TestVerifyEmailAcceptsSpaceMangledToken(t *testing.T) {
	svc, _, _, mail := newTestAccountService()
	ctx := context.Background()

	registerTestUser(t, svc, "ada@uni.edu")
	raw := linkToken(t, mail.verificationLinks["ada@uni.edu"])

	// Some mail clients decode the URL-encoded plus back into a space.
	mangled := strings.ReplaceAll(raw, "+", " ")
	if _, _, err := svc.VerifyEmail(ctx, mangled); err != nil {
		t.Fatalf("verify with mangled token: %v", err)
	}
}
