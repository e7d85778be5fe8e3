package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-tenant-auth/auth"
	apperrors "github.com/jrsteele09/go-tenant-auth/internal/errors"
	"github.com/jrsteele09/go-tenant-auth/tenants"
	"github.com/jrsteele09/go-tenant-auth/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/hlog"
)

const maxRequestBodySize = 1 << 16

// TokenResponse is returned by login and refresh. The refresh token travels
// in an HttpOnly cookie, never in the body.
type TokenResponse struct {
	AccessToken string          `json:"accessToken"`
	TokenType   string          `json:"tokenType"`
	ExpiresIn   int64           `json:"expiresIn"` // Seconds
	User        users.Principal `json:"user"`
}

type MeResponse struct {
	User     users.Principal `json:"user"`
	TenantID tenants.ID      `json:"tenantId"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// LoginHandler checks credentials against the directory and starts a session
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginRequest
		body := http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			s.writeError(w, r, errors.Wrap(auth.ErrInvalidLoginRequest, err.Error()))
			return
		}
		if err := req.Validate(); err != nil {
			s.writeError(w, r, err)
			return
		}

		p, err := s.directory.Authenticate(r.Context(), req.Username, req.Password)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		pair, err := s.tokens.Login(r.Context(), *p)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeTokens(w, pair)
	}
}

// RefreshHandler redeems the refresh token cookie for a new pair
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rt, err := auth.RefreshTokenFromRequest(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		pair, err := s.tokens.Refresh(r.Context(), rt, s.directory)
		if err != nil {
			if apperrors.Resolve(err) == apperrors.InvalidToken {
				http.SetCookie(w, auth.ClearRefreshCookie(s.config.GetSecureCookies()))
			}
			s.writeError(w, r, err)
			return
		}
		s.writeTokens(w, pair)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFrom(r.Context())
		if !ok {
			s.writeError(w, r, apperrors.AuthenticationFailed)
			return
		}

		// the presented access token is revoked even when no refresh token is left
		s.tokens.RevokeAccessToken(claims)
		if err := s.tokens.Logout(r.Context(), claims.Subject); err != nil {
			s.writeError(w, r, err)
			return
		}
		http.SetCookie(w, auth.ClearRefreshCookie(s.config.GetSecureCookies()))
		writeJSON(w, http.StatusOK, messageResponse{Message: "logged out"})
	}
}

// MeHandler echoes the principal of the presented access token
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFrom(r.Context())
		if !ok {
			s.writeError(w, r, apperrors.AuthenticationFailed)
			return
		}
		writeJSON(w, http.StatusOK, MeResponse{
			User:     auth.PrincipalFromClaims(claims),
			TenantID: tenants.MustTenantID(r.Context()),
		})
	}
}

func (s *Server) writeTokens(w http.ResponseWriter, pair *auth.TokenPair) {
	http.SetCookie(w, auth.RefreshCookie(pair.RefreshToken, pair.RefreshExpiresAt, s.config.GetSecureCookies()))
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, TokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokens.AccessTokenExpiry().Seconds()),
		User:        pair.Principal,
	})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.Resolve(err)
	event := hlog.FromRequest(r).Debug()
	if status.HTTPStatus >= http.StatusInternalServerError {
		event = hlog.FromRequest(r).Error()
	}
	event.Err(err).Str("code", status.Code).Msg("request failed")
	writeJSON(w, status.HTTPStatus, status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
