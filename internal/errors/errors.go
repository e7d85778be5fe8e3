// Package errors maps domain errors onto the stable status codes reported to clients.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-tenant-auth/auth"
	"github.com/jrsteele09/go-tenant-auth/token"
	"github.com/jrsteele09/go-tenant-auth/token/refresh"
	"github.com/jrsteele09/go-tenant-auth/users"
)

// StatusCode is what a client sees for a failed request
type StatusCode struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
}

func (s StatusCode) Error() string {
	return fmt.Sprintf("%s: %s", s.Code, s.Message)
}

var (
	InvalidToken         = StatusCode{"INVALID_TOKEN", "the token is not valid", http.StatusUnauthorized}
	ExpiredToken         = StatusCode{"EXPIRED_TOKEN", "the token has expired", http.StatusUnauthorized}
	UnsupportedToken     = StatusCode{"UNSUPPORTED_JWT", "the token format is not supported", http.StatusUnauthorized}
	EmptyToken           = StatusCode{"EMPTY_JWT", "no token was presented", http.StatusUnauthorized}
	ClaimsEmpty          = StatusCode{"JWT_CLAIMS_EMPTY", "the token carries no claims", http.StatusUnauthorized}
	InvalidCredentials   = StatusCode{"INVALID_CREDENTIALS", "username or password does not match", http.StatusBadRequest}
	AlreadyLoggedOut     = StatusCode{"ALREADY_LOGGED_OUT_USER", "the user is already logged out", http.StatusBadRequest}
	AuthenticationFailed = StatusCode{"AUTHENTICATION_FAILED", "authentication failed", http.StatusUnauthorized}
	PermissionDenied     = StatusCode{"PERMISSION_DENIED", "access denied", http.StatusForbidden}
	BadRequest           = StatusCode{"BAD_REQUEST", "the request could not be parsed", http.StatusBadRequest}
	Internal             = StatusCode{"INTERNAL_ERROR", "internal server error", http.StatusInternalServerError}
)

// Resolve returns the status code for err. Unknown errors resolve to Internal.
// Order matters: a refresh failure wraps its cause, and the outer kind wins.
func Resolve(err error) StatusCode {
	var sc StatusCode
	switch {
	case err == nil:
		return StatusCode{}
	case errors.As(err, &sc):
		return sc
	case errors.Is(err, token.ErrEmptyToken):
		return EmptyToken
	case errors.Is(err, token.ErrUnsupportedToken):
		return UnsupportedToken
	case errors.Is(err, token.ErrExpiredToken):
		return ExpiredToken
	case errors.Is(err, token.ErrInvalidToken):
		return InvalidToken
	case errors.Is(err, token.ErrClaimsEmpty):
		return ClaimsEmpty
	case errors.Is(err, refresh.ErrNotFound):
		return AlreadyLoggedOut
	case errors.Is(err, users.ErrInvalidCredentials):
		return InvalidCredentials
	case errors.Is(err, users.ErrUserNotFound):
		return AuthenticationFailed
	case errors.Is(err, users.ErrUnknownRole):
		return PermissionDenied
	case errors.Is(err, auth.ErrInvalidLoginRequest):
		return BadRequest
	default:
		return Internal
	}
}
