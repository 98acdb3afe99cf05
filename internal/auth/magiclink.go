package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"time"

	"github.com/vrakshhq/vraksh/pkg/email"
	"github.com/vrakshhq/vraksh/pkg/logger"
	"github.com/vrakshhq/vraksh/pkg/sanitizer"
	"github.com/vrakshhq/vraksh/pkg/validator"
)

// MagicLinkService handles passwordless authentication via one-time numeric
// codes delivered by email.
type MagicLinkService struct {
	storage   UserStore
	mailer    email.EmailSender
	clientURL string
	logger    *slog.Logger
	codeTTL   time.Duration
}

type MagicLinkOption func(*MagicLinkService)

// WithMagicLinkLogger sets a custom logger for the service.
func WithMagicLinkLogger(l *slog.Logger) MagicLinkOption {
	return func(s *MagicLinkService) { s.logger = l }
}

// WithMagicLinkTTL sets the lifetime of one-time codes.
func WithMagicLinkTTL(ttl time.Duration) MagicLinkOption {
	return func(s *MagicLinkService) { s.codeTTL = ttl }
}

// NewMagicLinkService creates a magic link authentication service.
func NewMagicLinkService(storage UserStore, mailer email.EmailSender, clientURL string, opts ...MagicLinkOption) *MagicLinkService {
	s := &MagicLinkService{
		storage:   storage,
		mailer:    mailer,
		clientURL: clientURL,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		codeTTL:   10 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Request issues a one-time code for the given email. Unknown addresses get
// an account created on the spot with a username derived from the email
// local part, so the onboarding flow is a single step. Only the code's hash
// is stored; the raw code goes out by email together with a deep link.
func (s *MagicLinkService) Request(ctx context.Context, emailAddr string) error {
	emailAddr = sanitizer.NormalizeEmail(emailAddr)
	if err := validator.Apply(validator.ValidEmail("email", emailAddr)); err != nil {
		return err
	}

	user, err := s.storage.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return fmt.Errorf("failed to check user: %w", err)
		}
		user, err = s.createUserForEmail(ctx, emailAddr)
		if err != nil {
			return err
		}
	}

	code, err := newLoginCode()
	if err != nil {
		return fmt.Errorf("failed to generate login code: %w", err)
	}

	expiresAt := time.Now().Add(s.codeTTL)
	if err := s.storage.SetMagicCode(ctx, user.ID, HashToken(code), expiresAt); err != nil {
		return fmt.Errorf("failed to store login code: %w", err)
	}

	link := fmt.Sprintf("%s/verify-magic-link?code=%s", s.clientURL, code)
	msg, err := email.MagicLinkEmail(user.Email, code, link, formatTTL(s.codeTTL))
	if err != nil {
		return fmt.Errorf("failed to build login email: %w", err)
	}
	if err := s.mailer.SendEmail(ctx, msg); err != nil {
		return fmt.Errorf("failed to send login email: %w", err)
	}

	return nil
}

// Verify consumes a one-time code and returns the authenticated user. The
// stored hash and expiry are cleared atomically with the lookup, so a code
// verifies at most once; expired or unknown codes fail with ErrCodeInvalid
// and leave the user record untouched.
func (s *MagicLinkService) Verify(ctx context.Context, code string) (*User, error) {
	if code == "" {
		return nil, ErrCodeInvalid
	}

	user, err := s.storage.ConsumeMagicCode(ctx, HashToken(code), time.Now())
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrCodeInvalid
		}
		return nil, fmt.Errorf("failed to consume login code: %w", err)
	}

	return user, nil
}

// createUserForEmail registers a bare account for a first-time magic link
// request. Username collisions get a numeric suffix.
func (s *MagicLinkService) createUserForEmail(ctx context.Context, emailAddr string) (*User, error) {
	base := sanitizer.UsernameFromEmail(emailAddr)
	if len(base) < 3 {
		base = "user"
	}

	username := base
	for attempt := 0; ; attempt++ {
		user := &User{
			Email:        emailAddr,
			Username:     username,
			AuthProvider: ProviderEmail,
			ReferralCode: NewReferralCode(),
			CreatedAt:    time.Now(),
		}
		err := s.storage.CreateUser(ctx, user)
		if err == nil {
			s.logger.Info("created user from magic link request",
				logger.UserID(user.ID),
				logger.Email(user.Email),
				logger.Component("magic_link"),
			)
			return user, nil
		}
		if !errors.Is(err, ErrUsernameTaken) || attempt >= 4 {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		suffix, randErr := rand.Int(rand.Reader, big.NewInt(10000))
		if randErr != nil {
			return nil, fmt.Errorf("failed to generate username suffix: %w", randErr)
		}
		username = fmt.Sprintf("%s%04d", base, suffix.Int64())
	}
}

// newLoginCode returns a 6-digit numeric code with leading zeros preserved.
func newLoginCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
