package auth_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vrakshhq/vraksh/internal/auth"
	"github.com/vrakshhq/vraksh/pkg/email"
)

func TestPasswordService_Authenticate(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("Sup3rSecret"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &auth.User{ID: "user-1", Email: "alice@example.com", PasswordHash: hash}

	t.Run("correct password succeeds", func(t *testing.T) {
		t.Parallel()

		store := new(mockUserStore)
		store.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(user, nil).Once()

		svc := auth.NewPasswordService(store, new(mockResetTokenStore), new(mockEmailSender), "https://app.test")

		got, err := svc.Authenticate(context.Background(), "Alice@Example.com", "Sup3rSecret")
		require.NoError(t, err)
		assert.Equal(t, "user-1", got.ID)
	})

	t.Run("wrong password fails", func(t *testing.T) {
		t.Parallel()

		store := new(mockUserStore)
		store.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(user, nil).Once()

		svc := auth.NewPasswordService(store, new(mockResetTokenStore), new(mockEmailSender), "https://app.test")

		_, err := svc.Authenticate(context.Background(), "alice@example.com", "wrong")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown email fails with the same error", func(t *testing.T) {
		t.Parallel()

		store := new(mockUserStore)
		store.On("GetUserByEmail", mock.Anything, "ghost@example.com").
			Return(nil, auth.ErrUserNotFound).Once()

		svc := auth.NewPasswordService(store, new(mockResetTokenStore), new(mockEmailSender), "https://app.test")

		_, err := svc.Authenticate(context.Background(), "ghost@example.com", "whatever")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("passwordless account never authenticates by password", func(t *testing.T) {
		t.Parallel()

		store := new(mockUserStore)
		store.On("GetUserByEmail", mock.Anything, "magic@example.com").
			Return(&auth.User{ID: "user-2", Email: "magic@example.com"}, nil).Once()

		svc := auth.NewPasswordService(store, new(mockResetTokenStore), new(mockEmailSender), "https://app.test")

		_, err := svc.Authenticate(context.Background(), "magic@example.com", "")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestPasswordService_ResetFlow(t *testing.T) {
	t.Parallel()

	t.Run("forgot password stores hash and mails raw token", func(t *testing.T) {
		t.Parallel()

		user := &auth.User{ID: "user-1", Email: "alice@example.com"}

		var storedHash string
		tokens := new(mockResetTokenStore)
		tokens.On("CreateResetToken", mock.Anything, mock.MatchedBy(func(tok *auth.ResetToken) bool {
			storedHash = tok.TokenHash
			return tok.UserID == "user-1" &&
				tok.Type == auth.TypePasswordReset &&
				tok.ExpiresAt.After(time.Now())
		})).Return(nil).Once()

		var mailedLink string
		mailer := new(mockEmailSender)
		mailer.On("SendEmail", mock.Anything, mock.MatchedBy(func(p email.SendEmailParams) bool {
			mailedLink = p.BodyHTML
			return p.SendTo == "alice@example.com"
		})).Return(nil).Once()

		store := new(mockUserStore)
		store.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(user, nil).Once()

		svc := auth.NewPasswordService(store, tokens, mailer, "https://app.test")

		require.NoError(t, svc.ForgotPassword(context.Background(), "alice@example.com"))

		// The stored value is the hash of the mailed token, not the token.
		start := strings.Index(mailedLink, "/reset-password/")
		require.GreaterOrEqual(t, start, 0)
		raw := mailedLink[start+len("/reset-password/"):]
		if end := strings.IndexAny(raw, "\"<"); end >= 0 {
			raw = raw[:end]
		}
		assert.NotEqual(t, raw, storedHash)
		assert.Equal(t, auth.HashToken(raw), storedHash)
	})

	t.Run("reset password consumes token and updates hash", func(t *testing.T) {
		t.Parallel()

		raw := "raw-reset-token"
		tokens := new(mockResetTokenStore)
		tokens.On("ConsumeResetToken", mock.Anything, auth.HashToken(raw), auth.TypePasswordReset, mock.Anything).
			Return(&auth.ResetToken{UserID: "user-1", TokenHash: auth.HashToken(raw)}, nil).Once()

		store := new(mockUserStore)
		store.On("UpdatePasswordHash", mock.Anything, "user-1", mock.MatchedBy(func(h []byte) bool {
			return bcrypt.CompareHashAndPassword(h, []byte("N3wPassword")) == nil
		})).Return(nil).Once()
		store.On("GetUserByID", mock.Anything, "user-1").
			Return(&auth.User{ID: "user-1", Email: "alice@example.com"}, nil).Once()

		mailer := new(mockEmailSender)
		mailer.On("SendEmail", mock.Anything, mock.Anything).Return(nil).Once()

		svc := auth.NewPasswordService(store, tokens, mailer, "https://app.test",
			auth.WithBcryptCost(bcrypt.MinCost))

		user, err := svc.ResetPassword(context.Background(), raw, "N3wPassword")
		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
		store.AssertExpectations(t)
		tokens.AssertExpectations(t)
	})

	t.Run("consumed or expired token is invalid", func(t *testing.T) {
		t.Parallel()

		tokens := new(mockResetTokenStore)
		tokens.On("ConsumeResetToken", mock.Anything, mock.Anything, auth.TypePasswordReset, mock.Anything).
			Return(nil, auth.ErrTokenNotFound).Once()

		svc := auth.NewPasswordService(new(mockUserStore), tokens, new(mockEmailSender), "https://app.test")

		_, err := svc.ResetPassword(context.Background(), "stale", "N3wPassword")
		require.ErrorIs(t, err, auth.ErrTokenInvalid)
	})

	t.Run("weak replacement password is rejected before token lookup", func(t *testing.T) {
		t.Parallel()

		tokens := new(mockResetTokenStore)
		svc := auth.NewPasswordService(new(mockUserStore), tokens, new(mockEmailSender), "https://app.test")

		_, err := svc.ResetPassword(context.Background(), "whatever", "short")
		require.Error(t, err)
		tokens.AssertNotCalled(t, "ConsumeResetToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
