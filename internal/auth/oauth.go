package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vrakshhq/vraksh/pkg/logger"
	"github.com/vrakshhq/vraksh/pkg/sanitizer"
)

// OAuthProfile is the normalized identity returned by a provider after the
// code exchange.
type OAuthProfile struct {
	ProviderID string
	Email      string
	Name       string
}

// ProviderAdapter abstracts a single OAuth provider. Implementations wrap
// the provider's authorization endpoints and user info API.
type ProviderAdapter interface {
	// Name returns the provider identifier stored on the user record.
	Name() string
	// AuthURL builds the provider consent URL carrying the given state.
	AuthURL(state string) string
	// Exchange trades an authorization code for a verified profile.
	Exchange(ctx context.Context, code string) (*OAuthProfile, error)
}

// StateStore persists CSRF state tokens between the redirect to the
// provider and the callback. Consume removes the state so it verifies at
// most once.
type StateStore interface {
	SaveState(ctx context.Context, state string, ttl time.Duration) error
	ConsumeState(ctx context.Context, state string) error
}

// OAuthService drives the authorization code flow for all configured
// providers.
type OAuthService struct {
	storage   UserStore
	states    StateStore
	providers map[string]ProviderAdapter
	logger    *slog.Logger
	stateTTL  time.Duration
}

type OAuthOption func(*OAuthService)

// WithOAuthLogger sets a custom logger for the service.
func WithOAuthLogger(l *slog.Logger) OAuthOption {
	return func(s *OAuthService) { s.logger = l }
}

// WithStateTTL sets how long a pending state token stays valid.
func WithStateTTL(ttl time.Duration) OAuthOption {
	return func(s *OAuthService) { s.stateTTL = ttl }
}

// NewOAuthService creates an OAuth service over the given providers.
func NewOAuthService(storage UserStore, states StateStore, providers []ProviderAdapter, opts ...OAuthOption) *OAuthService {
	s := &OAuthService{
		storage:   storage,
		states:    states,
		providers: make(map[string]ProviderAdapter, len(providers)),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		stateTTL:  15 * time.Minute,
	}
	for _, p := range providers {
		s.providers[p.Name()] = p
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ErrUnknownProvider is returned when a request names a provider that was
// not configured.
var ErrUnknownProvider = errors.New("unknown oauth provider")

// BeginFlow generates a state token, persists it, and returns the provider
// consent URL to redirect the user to.
func (s *OAuthService) BeginFlow(ctx context.Context, provider string) (string, error) {
	adapter, ok := s.providers[provider]
	if !ok {
		return "", ErrUnknownProvider
	}

	state, err := newStateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	if err := s.states.SaveState(ctx, state, s.stateTTL); err != nil {
		return "", fmt.Errorf("failed to save state: %w", err)
	}

	return adapter.AuthURL(state), nil
}

// CompleteFlow validates the callback state, exchanges the code, and
// resolves the profile to a local user. First-time identities get an
// account created; an email already registered under a different provider
// is rejected with ErrEmailInUse rather than silently linked.
func (s *OAuthService) CompleteFlow(ctx context.Context, provider, state, code string) (*User, error) {
	adapter, ok := s.providers[provider]
	if !ok {
		return nil, ErrUnknownProvider
	}
	if state == "" {
		return nil, ErrInvalidState
	}
	if err := s.states.ConsumeState(ctx, state); err != nil {
		if errors.Is(err, ErrStateNotFound) {
			return nil, ErrInvalidState
		}
		return nil, fmt.Errorf("failed to consume state: %w", err)
	}
	if code == "" {
		return nil, ErrInvalidCode
	}

	profile, err := adapter.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	profile.Email = sanitizer.NormalizeEmail(profile.Email)

	user, err := s.storage.GetUserByProvider(ctx, provider, profile.ProviderID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up provider identity: %w", err)
	}

	// The provider identity is new. An existing account with the same email
	// belongs to another auth method and must not be taken over.
	if _, err := s.storage.GetUserByEmail(ctx, profile.Email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	user, err = s.createUserForProfile(ctx, provider, profile)
	if err != nil {
		return nil, err
	}

	s.logger.Info("created user from oauth login",
		logger.UserID(user.ID),
		logger.Email(user.Email),
		logger.Component("oauth"),
		slog.String("provider", provider),
	)
	return user, nil
}

func (s *OAuthService) createUserForProfile(ctx context.Context, provider string, profile *OAuthProfile) (*User, error) {
	base := sanitizer.UsernameFromEmail(profile.Email)
	if len(base) < 3 {
		base = "user"
	}

	username := base
	for attempt := 0; ; attempt++ {
		user := &User{
			Email:        profile.Email,
			Username:     username,
			AuthProvider: provider,
			ProviderID:   profile.ProviderID,
			ReferralCode: NewReferralCode(),
			CreatedAt:    time.Now(),
		}
		err := s.storage.CreateUser(ctx, user)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, ErrUsernameTaken) || attempt >= 4 {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		username = fmt.Sprintf("%s%d", base, attempt+2)
	}
}

func newStateToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
