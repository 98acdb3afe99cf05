package email

import (
	"fmt"
	"html/template"
	"strings"
)

// Transactional message builders for the authentication flows. Bodies are
// deliberately plain: a heading, one line of context, and the code or link.

var magicLinkTmpl = template.Must(template.New("magic_link").Parse(`<html><body>
<h2>Sign in to Vraksh</h2>
<p>Your one-time login code is:</p>
<p style="font-size:28px;letter-spacing:4px;font-weight:bold">{{.Code}}</p>
<p>Or click the link below to sign in directly:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>The code expires in {{.ExpiresIn}}. If you did not request it, ignore this email.</p>
</body></html>`))

var passwordResetTmpl = template.Must(template.New("password_reset").Parse(`<html><body>
<h2>Reset your Vraksh password</h2>
<p>Click the link below to choose a new password:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>The link expires in {{.ExpiresIn}}. If you did not request a reset, ignore this email.</p>
</body></html>`))

var passwordChangedTmpl = template.Must(template.New("password_changed").Parse(`<html><body>
<h2>Your Vraksh password was changed</h2>
<p>If this was you, no action is needed. If not, contact support immediately.</p>
</body></html>`))

// MagicLinkEmail builds the one-time code message.
func MagicLinkEmail(to, code, link, expiresIn string) (SendEmailParams, error) {
	body, err := render(magicLinkTmpl, map[string]string{"Code": code, "Link": link, "ExpiresIn": expiresIn})
	if err != nil {
		return SendEmailParams{}, err
	}
	return SendEmailParams{
		SendTo:   to,
		Subject:  "Your Vraksh login code",
		BodyHTML: body,
		Tag:      "magic-link",
	}, nil
}

// PasswordResetEmail builds the reset link message.
func PasswordResetEmail(to, link, expiresIn string) (SendEmailParams, error) {
	body, err := render(passwordResetTmpl, map[string]string{"Link": link, "ExpiresIn": expiresIn})
	if err != nil {
		return SendEmailParams{}, err
	}
	return SendEmailParams{
		SendTo:   to,
		Subject:  "Reset your Vraksh password",
		BodyHTML: body,
		Tag:      "password-reset",
	}, nil
}

// PasswordChangedEmail builds the reset confirmation message.
func PasswordChangedEmail(to string) (SendEmailParams, error) {
	body, err := render(passwordChangedTmpl, nil)
	if err != nil {
		return SendEmailParams{}, err
	}
	return SendEmailParams{
		SendTo:   to,
		Subject:  "Your Vraksh password was changed",
		BodyHTML: body,
		Tag:      "password-changed",
	}, nil
}

func render(tmpl *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return sb.String(), nil
}
