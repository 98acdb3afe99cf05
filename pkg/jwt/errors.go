package jwt

import "errors"

var (
	ErrInvalidToken   = errors.New("jwt: invalid token")
	ErrExpiredToken   = errors.New("jwt: token is expired")
	ErrMissingSecret  = errors.New("jwt: missing signing secret")
	ErrMissingSubject = errors.New("jwt: missing subject")
)
