package email_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrakshhq/vraksh/pkg/email"
)

func TestSendEmailParamsValidate(t *testing.T) {
	t.Parallel()

	valid := email.SendEmailParams{
		SendTo:   "user@example.com",
		Subject:  "Hello",
		BodyHTML: "<p>hi</p>",
	}
	assert.NoError(t, valid.Validate())

	for name, mutate := range map[string]func(*email.SendEmailParams){
		"empty recipient":   func(p *email.SendEmailParams) { p.SendTo = "" },
		"invalid recipient": func(p *email.SendEmailParams) { p.SendTo = "not-an-email" },
		"empty subject":     func(p *email.SendEmailParams) { p.Subject = "" },
		"empty body":        func(p *email.SendEmailParams) { p.BodyHTML = "" },
	} {
		t.Run(name, func(t *testing.T) {
			p := valid
			mutate(&p)
			assert.ErrorIs(t, p.Validate(), email.ErrInvalidParams)
		})
	}
}

func TestNewPostmarkSender(t *testing.T) {
	t.Parallel()

	cfg := email.Config{
		PostmarkServerToken:  "server-token",
		PostmarkAccountToken: "account-token",
		SenderEmail:          "no-reply@vraksh.app",
		SupportEmail:         "support@vraksh.app",
	}

	t.Run("valid config", func(t *testing.T) {
		sender, err := email.NewPostmarkSender(cfg)
		require.NoError(t, err)
		assert.NotNil(t, sender)
	})

	t.Run("missing server token", func(t *testing.T) {
		bad := cfg
		bad.PostmarkServerToken = ""
		_, err := email.NewPostmarkSender(bad)
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})

	t.Run("invalid sender email", func(t *testing.T) {
		bad := cfg
		bad.SenderEmail = "nope"
		_, err := email.NewPostmarkSender(bad)
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})
}

func TestDevSender(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sender := email.NewDevSender(dir)

	params, err := email.MagicLinkEmail("user@example.com", "123456", "https://vraksh.app/verify?code=123456", "10 minutes")
	require.NoError(t, err)

	require.NoError(t, sender.SendEmail(context.Background(), params))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2) // html + json

	var htmlFile string
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".html" {
			htmlFile = filepath.Join(dir, e.Name())
		}
	}
	require.NotEmpty(t, htmlFile)

	body, err := os.ReadFile(htmlFile)
	require.NoError(t, err)
	assert.Contains(t, string(body), "123456")
	assert.Contains(t, string(body), "https://vraksh.app/verify?code=123456")
}

func TestMessageBuilders(t *testing.T) {
	t.Parallel()

	t.Run("password reset", func(t *testing.T) {
		t.Parallel()

		params, err := email.PasswordResetEmail("user@example.com", "https://vraksh.app/reset/abc", "10 minutes")
		require.NoError(t, err)
		assert.Equal(t, "password-reset", params.Tag)
		assert.Contains(t, params.BodyHTML, "https://vraksh.app/reset/abc")
		assert.NoError(t, params.Validate())
	})

	t.Run("password changed", func(t *testing.T) {
		t.Parallel()

		params, err := email.PasswordChangedEmail("user@example.com")
		require.NoError(t, err)
		assert.Equal(t, "password-changed", params.Tag)
		assert.NoError(t, params.Validate())
	})

	t.Run("magic link escapes html", func(t *testing.T) {
		t.Parallel()

		params, err := email.MagicLinkEmail("user@example.com", "<b>1</b>", "https://vraksh.app", "10 minutes")
		require.NoError(t, err)
		assert.False(t, strings.Contains(params.BodyHTML, "<b>1</b>"))
	})
}
