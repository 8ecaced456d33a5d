// Package token implements the compact signed tokens used for email
// verification and password reset links.
//
// The wire format is three standard-base64 segments joined by dots:
//
//	b64(header) "." b64(payload) "." b64(hmacSHA256(secret, b64(header) + "." + b64(payload)))
//
// The header is the constant {"alg":"HS256","typ":"JWT"}. Standard
// (padded) base64 is used for every segment so tokens stay
// byte-compatible with links already issued; tokens carried through a
// URL query parameter may come back with "+" decoded to a space, which
// Normalize undoes before verification.
//
// Verify checks the signature only. Expiry is deliberately a caller
// concern: an expired token is still a *validly signed* token, and the
// caller must classify it separately via Claims.Expired.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidToken is returned for any token that fails structural or
// signature checks. The cause is intentionally not distinguished.
var ErrInvalidToken = errors.New("invalid token")

// Purpose limits which flow may consume a token.
type Purpose string

const (
	PurposeEmailVerification Purpose = "email_verification"
	PurposePasswordReset     Purpose = "password_reset"
)

func (p Purpose) Valid() bool {
	return p == PurposeEmailVerification || p == PurposePasswordReset
}

// Claims is the payload carried by a signed token.
type Claims struct {
	// UserID is the subject, the decimal id of the user the token was
	// issued for.
	UserID string `json:"userId"`

	// Purpose discriminates verification tokens from reset tokens.
	Purpose Purpose `json:"type"`

	// ExpiresAt is the expiry as epoch seconds. Verify does not enforce
	// it; use Expired.
	ExpiresAt int64 `json:"exp"`
}

// NewClaims builds claims for the given user id expiring after ttl.
func NewClaims(userID int, purpose Purpose, ttl time.Duration, now time.Time) Claims {
	return Claims{
		UserID:    strconv.Itoa(userID),
		Purpose:   purpose,
		ExpiresAt: now.Add(ttl).Unix(),
	}
}

// Subject parses the user id the claims were issued for.
func (c Claims) Subject() (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(c.UserID))
	if err != nil || id < 1 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// Expired reports whether the embedded expiry has passed.
func (c Claims) Expired(now time.Time) bool {
	return c.ExpiresAt < now.Unix()
}

var encodedHeader = base64.StdEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))

// Sign encodes the claims and signs them with the given secret.
func Sign(claims Claims, secret []byte) (string, error) {
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	encodedPayload := base64.StdEncoding.EncodeToString(payload)

	signingInput := encodedHeader + "." + encodedPayload
	return signingInput + "." + sign(signingInput, secret), nil
}

// Verify checks the token's structure and signature and returns the
// decoded claims. It never enforces expiry.
func Verify(raw string, secret []byte) (Claims, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return Claims{}, ErrInvalidToken
	}
	for _, part := range parts {
		if part == "" {
			return Claims{}, ErrInvalidToken
		}
	}

	expected := sign(parts[0]+"."+parts[1], secret)
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return Claims{}, ErrInvalidToken
	}

	payload, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// Normalize restores "+" characters that intermediate URL decoding may
// have turned into spaces. Apply it to any token received via a query
// parameter before calling Verify.
func Normalize(raw string) string {
	return strings.ReplaceAll(strings.TrimSpace(raw), " ", "+")
}

func sign(input string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(input))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
