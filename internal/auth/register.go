package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vrakshhq/vraksh/pkg/logger"
	"github.com/vrakshhq/vraksh/pkg/sanitizer"
	"github.com/vrakshhq/vraksh/pkg/validator"
)

// BranchNameChecker reports whether a branch already claims a public name.
// Username availability is checked against branch names because the branch
// name is the public URL segment.
type BranchNameChecker interface {
	BranchNameExists(ctx context.Context, name string) (bool, error)
}

// RegisterParams describes an explicit registration request.
type RegisterParams struct {
	Email        string
	Username     string
	Password     string // optional; empty for magic-link-first accounts
	ReferralCode string // optional
}

// RegisterService creates accounts and answers username availability checks.
type RegisterService struct {
	storage    UserStore
	branches   BranchNameChecker
	logger     *slog.Logger
	bcryptCost int
}

type RegisterOption func(*RegisterService)

// WithRegisterLogger sets a custom logger for the service.
func WithRegisterLogger(l *slog.Logger) RegisterOption {
	return func(s *RegisterService) { s.logger = l }
}

// WithRegisterBcryptCost sets the bcrypt cost for password hashing.
func WithRegisterBcryptCost(cost int) RegisterOption {
	return func(s *RegisterService) { s.bcryptCost = cost }
}

// NewRegisterService creates a registration service.
func NewRegisterService(storage UserStore, branches BranchNameChecker, opts ...RegisterOption) *RegisterService {
	s := &RegisterService{
		storage:    storage,
		branches:   branches,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a user record. A supplied referral code must resolve to an
// existing user; an unknown code fails the whole registration with no records
// created. On success the referrer's counter goes up by exactly one and an
// immutable referral edge is written.
func (s *RegisterService) Register(ctx context.Context, params RegisterParams) (*User, error) {
	email := sanitizer.NormalizeEmail(params.Email)
	username := sanitizer.NormalizeUsername(params.Username)

	rules := []validator.Rule{
		validator.ValidEmail("email", email),
		validator.ValidUsername("username", username),
	}
	if params.Password != "" {
		rules = append(rules, validator.StrongPassword("password", params.Password))
	}
	if err := validator.Apply(rules...); err != nil {
		return nil, err
	}

	// Resolve the referrer before creating anything so an unknown code
	// leaves no partial state behind.
	var referrer *User
	if params.ReferralCode != "" {
		var err error
		referrer, err = s.storage.GetUserByReferralCode(ctx, params.ReferralCode)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return nil, ErrReferralCodeInvalid
			}
			return nil, fmt.Errorf("failed to resolve referral code: %w", err)
		}
	}

	user := &User{
		Email:        email,
		Username:     username,
		AuthProvider: ProviderEmail,
		ReferralCode: NewReferralCode(),
		CreatedAt:    time.Now(),
	}
	if referrer != nil {
		user.ReferredBy = referrer.ID
	}
	if params.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	// Unique indexes on email and username turn concurrent duplicates into
	// typed errors here instead of a find-then-insert race.
	if err := s.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if referrer != nil {
		referral := &Referral{
			Referrer:  referrer.ID,
			Referred:  user.ID,
			Status:    ReferralStatusCompleted,
			CreatedAt: time.Now(),
		}
		if err := s.storage.CreateReferral(ctx, referral); err != nil {
			s.logger.Error("failed to record referral",
				logger.UserID(user.ID),
				logger.Error(err),
				logger.Component("register"),
			)
		} else if err := s.storage.IncrementReferralCount(ctx, referrer.ID); err != nil {
			s.logger.Error("failed to increment referral count",
				logger.UserID(referrer.ID),
				logger.Error(err),
				logger.Component("register"),
			)
		}
	}

	return user, nil
}

// CheckUsername reports whether the candidate name is already claimed by a
// branch.
func (s *RegisterService) CheckUsername(ctx context.Context, username string) (bool, error) {
	username = sanitizer.NormalizeUsername(username)
	if err := validator.Apply(validator.ValidUsername("username", username)); err != nil {
		return false, err
	}
	exists, err := s.branches.BranchNameExists(ctx, username)
	if err != nil {
		return false, fmt.Errorf("failed to check branch name: %w", err)
	}
	return exists, nil
}
