package errors_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-tenant-auth/auth"
	apperrors "github.com/jrsteele09/go-tenant-auth/internal/errors"
	"github.com/jrsteele09/go-tenant-auth/token"
	"github.com/jrsteele09/go-tenant-auth/token/refresh"
	"github.com/jrsteele09/go-tenant-auth/users"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"empty", token.ErrEmptyToken, "EMPTY_JWT", http.StatusUnauthorized},
		{"invalid", errors.Wrap(token.ErrInvalidToken, "signature"), "INVALID_TOKEN", http.StatusUnauthorized},
		{"expired", fmt.Errorf("%w: at noon", token.ErrExpiredToken), "EXPIRED_TOKEN", http.StatusUnauthorized},
		{"unsupported", token.ErrUnsupportedToken, "UNSUPPORTED_JWT", http.StatusUnauthorized},
		{"claims empty", token.ErrClaimsEmpty, "JWT_CLAIMS_EMPTY", http.StatusUnauthorized},
		{"logged out", errors.Wrap(refresh.ErrNotFound, "logout"), "ALREADY_LOGGED_OUT_USER", http.StatusBadRequest},
		{"credentials", users.ErrInvalidCredentials, "INVALID_CREDENTIALS", http.StatusBadRequest},
		{"user gone", users.ErrUserNotFound, "AUTHENTICATION_FAILED", http.StatusUnauthorized},
		{"bad login", errors.Wrap(auth.ErrInvalidLoginRequest, "username is required"), "BAD_REQUEST", http.StatusBadRequest},
		{"unknown role", errors.Wrap(users.ErrUnknownRole, "ROLE_ROOT"), "PERMISSION_DENIED", http.StatusForbidden},
		{"explicit", errors.Wrap(apperrors.PermissionDenied, "tenant"), "PERMISSION_DENIED", http.StatusForbidden},
		{"unknown", errors.New("disk full"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := apperrors.Resolve(tt.err)
			require.Equal(t, tt.code, sc.Code)
			require.Equal(t, tt.status, sc.HTTPStatus)
		})
	}
}

func TestResolve_UnsupportedWinsOverInvalid(t *testing.T) {
	err := fmt.Errorf("%w: %w", token.ErrUnsupportedToken, token.ErrInvalidToken)
	require.Equal(t, apperrors.UnsupportedToken, apperrors.Resolve(err))
}
