package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vrakshhq/vraksh/pkg/email"
	"github.com/vrakshhq/vraksh/pkg/logger"
	"github.com/vrakshhq/vraksh/pkg/sanitizer"
	"github.com/vrakshhq/vraksh/pkg/validator"
)

// PasswordService handles password login and the reset flow.
type PasswordService struct {
	storage    UserStore
	tokens     ResetTokenStore
	mailer     email.EmailSender
	clientURL  string
	logger     *slog.Logger
	bcryptCost int
	resetTTL   time.Duration
}

type PasswordOption func(*PasswordService)

// WithPasswordLogger sets a custom logger for the service.
func WithPasswordLogger(l *slog.Logger) PasswordOption {
	return func(s *PasswordService) { s.logger = l }
}

// WithBcryptCost sets the bcrypt cost for password hashing.
func WithBcryptCost(cost int) PasswordOption {
	return func(s *PasswordService) { s.bcryptCost = cost }
}

// WithResetTokenTTL sets the lifetime of password reset tokens.
func WithResetTokenTTL(ttl time.Duration) PasswordOption {
	return func(s *PasswordService) { s.resetTTL = ttl }
}

// NewPasswordService creates a password authentication service. clientURL is
// the public frontend origin used to build reset links.
func NewPasswordService(storage UserStore, tokens ResetTokenStore, mailer email.EmailSender, clientURL string, opts ...PasswordOption) *PasswordService {
	s := &PasswordService{
		storage:    storage,
		tokens:     tokens,
		mailer:     mailer,
		clientURL:  clientURL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		bcryptCost: bcrypt.DefaultCost,
		resetTTL:   10 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authenticate verifies email and password. Every failure maps to
// ErrInvalidCredentials so responses do not reveal which part was wrong.
// Accounts without a password hash (magic-link or OAuth only) always fail.
func (s *PasswordService) Authenticate(ctx context.Context, emailAddr, password string) (*User, error) {
	emailAddr = sanitizer.NormalizeEmail(emailAddr)

	user, err := s.storage.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if len(user.PasswordHash) == 0 {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// ForgotPassword issues a reset token for the given email and mails the raw
// value. Only the SHA-256 of the token is persisted. Returns ErrUserNotFound
// for unknown addresses; the handler decides how much of that to reveal.
func (s *PasswordService) ForgotPassword(ctx context.Context, emailAddr string) error {
	emailAddr = sanitizer.NormalizeEmail(emailAddr)
	if err := validator.Apply(validator.ValidEmail("email", emailAddr)); err != nil {
		return err
	}

	user, err := s.storage.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}

	raw, err := newResetTokenValue()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	token := &ResetToken{
		UserID:    user.ID,
		TokenHash: HashToken(raw),
		Type:      TypePasswordReset,
		ExpiresAt: time.Now().Add(s.resetTTL),
		CreatedAt: time.Now(),
	}
	if err := s.tokens.CreateResetToken(ctx, token); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password/%s", s.clientURL, raw)
	msg, err := email.PasswordResetEmail(user.Email, link, formatTTL(s.resetTTL))
	if err != nil {
		return fmt.Errorf("failed to build reset email: %w", err)
	}
	if err := s.mailer.SendEmail(ctx, msg); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	return nil
}

// ResetPassword consumes a raw reset token and sets the new password. The
// token record is deleted on success, so a second confirm with the same
// token fails with ErrTokenInvalid.
func (s *PasswordService) ResetPassword(ctx context.Context, rawToken, newPassword string) (*User, error) {
	if err := validator.Apply(validator.StrongPassword("password", newPassword)); err != nil {
		return nil, err
	}

	token, err := s.tokens.ConsumeResetToken(ctx, HashToken(rawToken), TypePasswordReset, time.Now())
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to consume reset token: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.storage.UpdatePasswordHash(ctx, token.UserID, hash); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	user, err := s.storage.GetUserByID(ctx, token.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if msg, err := email.PasswordChangedEmail(user.Email); err == nil {
		if err := s.mailer.SendEmail(ctx, msg); err != nil {
			s.logger.Error("failed to send password changed email",
				logger.UserID(user.ID),
				logger.Error(err),
				logger.Component("password"),
			)
		}
	}

	return user, nil
}

// HashToken returns the hex SHA-256 of a raw token value. Stored token
// records only ever hold this form.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func newResetTokenValue() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func formatTTL(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes <= 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}
