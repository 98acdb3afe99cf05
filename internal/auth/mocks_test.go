package auth_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/vrakshhq/vraksh/internal/auth"
	"github.com/vrakshhq/vraksh/pkg/email"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) CreateUser(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserStore) GetUserByID(ctx context.Context, id string) (*auth.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) GetUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	args := m.Called(ctx, username)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) GetUserByProvider(ctx context.Context, provider, providerID string) (*auth.User, error) {
	args := m.Called(ctx, provider, providerID)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) GetUserByReferralCode(ctx context.Context, code string) (*auth.User, error) {
	args := m.Called(ctx, code)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) UpdatePasswordHash(ctx context.Context, userID string, hash []byte) error {
	args := m.Called(ctx, userID, hash)
	return args.Error(0)
}

func (m *mockUserStore) SetMagicCode(ctx context.Context, userID, codeHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, codeHash, expiresAt)
	return args.Error(0)
}

func (m *mockUserStore) ConsumeMagicCode(ctx context.Context, codeHash string, now time.Time) (*auth.User, error) {
	args := m.Called(ctx, codeHash, now)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) CreateReferral(ctx context.Context, referral *auth.Referral) error {
	args := m.Called(ctx, referral)
	return args.Error(0)
}

func (m *mockUserStore) IncrementReferralCount(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type mockResetTokenStore struct {
	mock.Mock
}

func (m *mockResetTokenStore) CreateResetToken(ctx context.Context, token *auth.ResetToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockResetTokenStore) ConsumeResetToken(ctx context.Context, tokenHash, tokenType string, now time.Time) (*auth.ResetToken, error) {
	args := m.Called(ctx, tokenHash, tokenType, now)
	if t := args.Get(0); t != nil {
		return t.(*auth.ResetToken), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockEmailSender struct {
	mock.Mock
}

func (m *mockEmailSender) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

type mockBranchNameChecker struct {
	mock.Mock
}

func (m *mockBranchNameChecker) BranchNameExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

type mockStateStore struct {
	mock.Mock
}

func (m *mockStateStore) SaveState(ctx context.Context, state string, ttl time.Duration) error {
	args := m.Called(ctx, state, ttl)
	return args.Error(0)
}

func (m *mockStateStore) ConsumeState(ctx context.Context, state string) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

type mockProvider struct {
	mock.Mock
	name string
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) AuthURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *mockProvider) Exchange(ctx context.Context, code string) (*auth.OAuthProfile, error) {
	args := m.Called(ctx, code)
	if p := args.Get(0); p != nil {
		return p.(*auth.OAuthProfile), args.Error(1)
	}
	return nil, args.Error(1)
}
