package server

import (
	"errors"
	"net/http"

	"github.com/vrakshhq/vraksh/internal/auth"
	"github.com/vrakshhq/vraksh/internal/branch"
	"github.com/vrakshhq/vraksh/pkg/validator"
)

// HTTPError carries an HTTP status and a stable machine-readable code.
// Message is safe to show to clients.
type HTTPError struct {
	Status  int
	Code    string
	Message string
}

func (e HTTPError) Error() string { return e.Code }

// NewHTTPError creates an HTTP error with the given status and code.
func NewHTTPError(status int, code, message string) HTTPError {
	return HTTPError{Status: status, Code: code, Message: message}
}

var (
	errBadRequest   = HTTPError{Status: http.StatusBadRequest, Code: "bad_request", Message: "invalid request"}
	errUnauthorized = HTTPError{Status: http.StatusUnauthorized, Code: "unauthorized", Message: "authentication required"}
	errNotFound     = HTTPError{Status: http.StatusNotFound, Code: "not_found", Message: "resource not found"}
	errInternal     = HTTPError{Status: http.StatusInternalServerError, Code: "internal_error", Message: "something went wrong"}
)

// mapError translates service errors into the HTTP taxonomy. Unknown
// errors become a generic 500; the original is logged by the responder,
// never leaked to the client.
func mapError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	if validator.IsValidationError(err) {
		return HTTPError{Status: http.StatusBadRequest, Code: "validation_error", Message: "validation failed"}
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return HTTPError{Status: http.StatusUnauthorized, Code: "invalid_credentials", Message: "invalid email or password"}
	case errors.Is(err, auth.ErrEmailTaken):
		return HTTPError{Status: http.StatusBadRequest, Code: "duplicate_email", Message: "email already registered"}
	case errors.Is(err, auth.ErrUsernameTaken):
		return HTTPError{Status: http.StatusBadRequest, Code: "duplicate_username", Message: "username already taken"}
	case errors.Is(err, auth.ErrReferralCodeInvalid):
		return HTTPError{Status: http.StatusBadRequest, Code: "invalid_referral_code", Message: "referral code not recognized"}
	case errors.Is(err, auth.ErrCodeInvalid), errors.Is(err, auth.ErrTokenInvalid):
		return HTTPError{Status: http.StatusBadRequest, Code: "invalid_or_expired_token", Message: "token is invalid or expired"}
	case errors.Is(err, auth.ErrUserNotFound):
		return HTTPError{Status: http.StatusNotFound, Code: "not_found", Message: "user not found"}
	case errors.Is(err, auth.ErrEmailInUse):
		return HTTPError{Status: http.StatusBadRequest, Code: "email_in_use", Message: "email already registered with another sign-in method"}
	case errors.Is(err, auth.ErrUnverifiedEmail):
		return HTTPError{Status: http.StatusBadRequest, Code: "unverified_email", Message: "provider email is not verified"}
	case errors.Is(err, auth.ErrInvalidState), errors.Is(err, auth.ErrInvalidCode):
		return HTTPError{Status: http.StatusBadRequest, Code: "oauth_failed", Message: "sign-in could not be completed"}
	case errors.Is(err, auth.ErrUnknownProvider):
		return HTTPError{Status: http.StatusNotFound, Code: "not_found", Message: "unknown provider"}
	case errors.Is(err, branch.ErrBranchNotFound), errors.Is(err, branch.ErrItemNotFound):
		return HTTPError{Status: http.StatusNotFound, Code: "not_found", Message: "resource not found"}
	case errors.Is(err, branch.ErrNotOwner):
		return HTTPError{Status: http.StatusForbidden, Code: "forbidden", Message: "branch belongs to another user"}
	case errors.Is(err, branch.ErrNameTaken):
		return HTTPError{Status: http.StatusBadRequest, Code: "duplicate_name", Message: "branch name already taken"}
	case errors.Is(err, branch.ErrInvalidOrder):
		return HTTPError{Status: http.StatusBadRequest, Code: "invalid_order", Message: "order must contain exactly the branch's items"}
	default:
		return errInternal
	}
}
