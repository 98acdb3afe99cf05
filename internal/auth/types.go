package auth

import (
	"context"
	"crypto/rand"
	"time"
)

// Authentication providers tracked on user accounts.
const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
	ProviderGithub = "github"
)

// User represents an identity record. PasswordHash is empty for accounts
// created through magic link or OAuth. AuthKeyHash/AuthKeyExpire hold the
// one-time login code between issuance and first successful verification.
type User struct {
	ID            string
	Email         string
	Username      string
	PasswordHash  []byte
	AuthProvider  string
	ProviderID    string
	AuthKeyHash   string
	AuthKeyExpire time.Time
	ReferralCode  string
	ReferredBy    string
	ReferralCount int
	CreatedAt     time.Time
}

// Referral is the immutable edge recorded when a registration carries a
// valid referral code.
type Referral struct {
	Referrer  string
	Referred  string
	Status    string
	CreatedAt time.Time
}

// ReferralStatusCompleted marks a referral counted at registration time.
const ReferralStatusCompleted = "completed"

// ResetToken is the ephemeral password-reset record. TokenHash stores the
// SHA-256 of the raw emailed token, never the raw value. The collection
// carries a TTL index on ExpiresAt.
type ResetToken struct {
	UserID    string
	TokenHash string
	Type      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// TypePasswordReset is the only token type currently issued.
const TypePasswordReset = "password_reset"

// UserStore is the credential store shared by the auth services. Create
// operations map database unique-index violations to ErrEmailTaken /
// ErrUsernameTaken.
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByProvider(ctx context.Context, provider, providerID string) (*User, error)
	GetUserByReferralCode(ctx context.Context, code string) (*User, error)

	UpdatePasswordHash(ctx context.Context, userID string, hash []byte) error

	// SetMagicCode stores the hashed one-time code and its expiry,
	// replacing any previous one.
	SetMagicCode(ctx context.Context, userID, codeHash string, expiresAt time.Time) error
	// ConsumeMagicCode atomically finds the user whose stored code hash
	// matches and whose expiry is after now, and clears both fields.
	// Returns ErrUserNotFound when no live code matches.
	ConsumeMagicCode(ctx context.Context, codeHash string, now time.Time) (*User, error)

	CreateReferral(ctx context.Context, referral *Referral) error
	IncrementReferralCount(ctx context.Context, userID string) error
}

// ResetTokenStore persists password-reset tokens.
type ResetTokenStore interface {
	CreateResetToken(ctx context.Context, token *ResetToken) error
	// ConsumeResetToken atomically finds a non-expired token by hash and
	// type and deletes it. Returns ErrTokenNotFound when nothing matches.
	ConsumeResetToken(ctx context.Context, tokenHash, tokenType string, now time.Time) (*ResetToken, error)
}

const referralCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewReferralCode generates an 8-character share code. The alphabet skips
// easily confused characters (0/O, 1/I).
func NewReferralCode() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = referralCodeAlphabet[int(b[i])%len(referralCodeAlphabet)]
	}
	return string(b)
}
