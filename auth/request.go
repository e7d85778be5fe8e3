package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-tenant-auth/token"
	"github.com/pkg/errors"
)

const (
	RefreshCookieName = "refreshToken"
	RefreshCookiePath = "/auth"

	bearerPrefix = "Bearer "
)

// BearerToken returns the token from the Authorization header.
// A missing header or one without the Bearer scheme is token.ErrEmptyToken.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", token.ErrEmptyToken
	}
	t := strings.TrimSpace(header[len(bearerPrefix):])
	if t == "" {
		return "", token.ErrEmptyToken
	}
	return t, nil
}

// RefreshTokenFromRequest returns the refresh token cookie. Unlike a missing
// bearer token, a missing cookie is token.ErrInvalidToken.
func RefreshTokenFromRequest(r *http.Request) (string, error) {
	c, err := r.Cookie(RefreshCookieName)
	if err != nil || c.Value == "" {
		return "", errors.Wrap(token.ErrInvalidToken, "refresh token cookie missing")
	}
	return c.Value, nil
}

// RefreshCookie carries the refresh token back to the browser.
func RefreshCookie(refreshToken string, expires time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    refreshToken,
		Path:     RefreshCookiePath,
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// ClearRefreshCookie tells the browser to drop the refresh token.
func ClearRefreshCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     RefreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}
