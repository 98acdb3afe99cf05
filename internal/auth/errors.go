package auth

import "errors"

// General authentication errors.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Magic-link errors. Invalid and expired codes share one client-visible
// outcome to avoid leaking which case occurred.
var (
	ErrCodeInvalid = errors.New("invalid or expired login code")
)

// Password-reset errors.
var (
	ErrTokenNotFound = errors.New("reset token not found")
	ErrTokenInvalid  = errors.New("invalid or expired reset token")
)

// Referral errors.
var (
	ErrReferralCodeInvalid = errors.New("unknown referral code")
)

// OAuth errors.
var (
	ErrInvalidState    = errors.New("oauth: invalid or expired state")
	ErrStateNotFound   = errors.New("oauth: state not found")
	ErrInvalidCode     = errors.New("oauth: invalid authorization code")
	ErrUnverifiedEmail = errors.New("oauth: provider email is not verified")
	ErrEmailInUse      = errors.New("oauth: email already registered with a different method")
	ErrNoPrimaryEmail  = errors.New("oauth: no primary email from provider")
)
