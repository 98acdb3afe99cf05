package jwt

import (
	"net/http"
	"strings"
)

// AccessTokenCookie is the cookie name the browser client stores tokens in.
const AccessTokenCookie = "access_token"

// TokenExtractorFunc extracts a token string from an HTTP request.
type TokenExtractorFunc func(r *http.Request) (string, error)

// BearerTokenExtractor extracts tokens from "Authorization: Bearer <token>".
func BearerTokenExtractor(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrInvalidToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidToken
	}
	return parts[1], nil
}

// CookieTokenExtractor creates an extractor for cookie-based transport.
func CookieTokenExtractor(name string) TokenExtractorFunc {
	return func(r *http.Request) (string, error) {
		cookie, err := r.Cookie(name)
		if err != nil || cookie.Value == "" {
			return "", ErrInvalidToken
		}
		return cookie.Value, nil
	}
}

// FirstTokenExtractor tries extractors in order and returns the first hit.
func FirstTokenExtractor(extractors ...TokenExtractorFunc) TokenExtractorFunc {
	return func(r *http.Request) (string, error) {
		for _, extract := range extractors {
			if token, err := extract(r); err == nil {
				return token, nil
			}
		}
		return "", ErrInvalidToken
	}
}

// Middleware validates the request token and injects the user id into the
// request context. Both the Authorization header and the access_token cookie
// are accepted. Requests without a valid token get a 401 JSON error envelope.
func Middleware(issuer *Issuer) func(next http.Handler) http.Handler {
	extract := FirstTokenExtractor(
		BearerTokenExtractor,
		CookieTokenExtractor(AccessTokenCookie),
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := extract(r)
			if err != nil {
				writeUnauthorized(w)
				return
			}

			userID, err := issuer.Verify(tokenString)
			if err != nil {
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(SetUserID(r.Context(), userID)))
		})
	}
}

// writeUnauthorized renders the same error envelope the API handlers use so
// 401s stay machine-readable.
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"unauthorized","message":"authentication required"}}` + "\n"))
}
