package auth

import (
	"context"
	"time"

	"github.com/jrsteele09/go-tenant-auth/internal/metrics"
	"github.com/jrsteele09/go-tenant-auth/internal/utils"
	"github.com/jrsteele09/go-tenant-auth/tenants"
	"github.com/jrsteele09/go-tenant-auth/token"
	"github.com/jrsteele09/go-tenant-auth/token/refresh"
	"github.com/jrsteele09/go-tenant-auth/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultAccessTokenExpiry  = 15 * time.Minute
	DefaultRefreshTokenExpiry = 14 * 24 * time.Hour
)

// TokenPair is what a client receives after login or refresh
type TokenPair struct {
	AccessToken      string          `json:"accessToken"`
	RefreshToken     string          `json:"refreshToken"`
	RefreshExpiresAt time.Time       `json:"refreshExpiresAt"`
	Principal        users.Principal `json:"user"` // Who the pair was issued for
}

// PrincipalSource reloads a principal by username during a silent refresh,
// so role or tenant changes since login are picked up.
type PrincipalSource interface {
	GetByUsername(ctx context.Context, username string) (*users.Principal, error)
}

// TokenService issues, rotates, validates and revokes the tokens of a session.
type TokenService struct {
	codec              *token.Codec
	store              *refresh.Store
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	logger             zerolog.Logger
	metrics            *metrics.Recorder
	revoked            token.RevokedTokens // nil disables access token revocation
}

type TokenServiceOption func(*TokenService)

func WithTokenExpiry(accessTokenExpiry, refreshTokenExpiry time.Duration) TokenServiceOption {
	return func(s *TokenService) {
		s.accessTokenExpiry = accessTokenExpiry
		s.refreshTokenExpiry = refreshTokenExpiry
	}
}

func WithLogger(logger zerolog.Logger) TokenServiceOption {
	return func(s *TokenService) {
		s.logger = logger
	}
}

func WithMetrics(recorder *metrics.Recorder) TokenServiceOption {
	return func(s *TokenService) {
		s.metrics = recorder
	}
}

// WithRevokedTokens lets RevokeAccessToken cut an access token short
func WithRevokedTokens(revoked token.RevokedTokens) TokenServiceOption {
	return func(s *TokenService) {
		s.revoked = revoked
	}
}

func NewTokenService(codec *token.Codec, store *refresh.Store, options ...TokenServiceOption) (*TokenService, error) {
	if codec == nil {
		return nil, errors.New("[NewTokenService] codec is required")
	}
	if store == nil {
		return nil, errors.New("[NewTokenService] refresh store is required")
	}

	s := &TokenService{
		codec:              codec,
		store:              store,
		accessTokenExpiry:  DefaultAccessTokenExpiry,
		refreshTokenExpiry: DefaultRefreshTokenExpiry,
		logger:             log.Logger,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// AccessTokenExpiry is the lifetime of issued access tokens
func (s *TokenService) AccessTokenExpiry() time.Duration {
	return s.accessTokenExpiry
}

// IssueAccessToken mints a short-lived token carrying the principal's identity claims.
func (s *TokenService) IssueAccessToken(p users.Principal) (string, error) {
	t, err := s.codec.Encode(p, s.accessTokenExpiry, true)
	if err != nil {
		return "", errors.Wrap(err, "[TokenService.IssueAccessToken]")
	}
	s.metrics.TokenIssued(metrics.KindAccess)
	return t, nil
}

// IssueRefreshToken mints a refresh token without storing it. Only a token
// stored by RotateRefreshToken can be redeemed.
func (s *TokenService) IssueRefreshToken(p users.Principal) (string, error) {
	t, _, err := s.issueRefreshToken(p)
	return t, err
}

func (s *TokenService) issueRefreshToken(p users.Principal) (string, time.Time, error) {
	t, expiresAt, err := s.codec.EncodeWithExpiry(p, s.refreshTokenExpiry, false)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "[TokenService.IssueRefreshToken]")
	}
	s.metrics.TokenIssued(metrics.KindRefresh)
	return t, expiresAt, nil
}

// RotateRefreshToken issues a refresh token and makes it the user's only
// redeemable one. Any previously stored token stops working immediately.
func (s *TokenService) RotateRefreshToken(ctx context.Context, p users.Principal) (string, error) {
	t, _, err := s.rotate(ctx, p)
	return t, err
}

func (s *TokenService) rotate(ctx context.Context, p users.Principal) (string, time.Time, error) {
	t, expiresAt, err := s.issueRefreshToken(p)
	if err != nil {
		return "", time.Time{}, err
	}
	if err := s.store.Upsert(ctx, p.Username, t, expiresAt); err != nil {
		return "", time.Time{}, errors.Wrap(err, "[TokenService.RotateRefreshToken]")
	}
	s.metrics.RefreshRotated()
	s.log(ctx).Debug().Str("username", p.Username).Time("expires_at", expiresAt).Msg("refresh token rotated")
	return t, expiresAt, nil
}

// ValidateAccessToken reports whether the token belongs to expectedUsername.
// Decode failures (expired, invalid, ...) are returned as errors.
func (s *TokenService) ValidateAccessToken(rawToken, expectedUsername string) (bool, error) {
	claims, err := s.codec.Decode(rawToken)
	if err != nil {
		s.metrics.TokenValidated(metrics.KindAccess, outcome(err))
		return false, err
	}
	if s.isRevoked(claims) {
		s.metrics.TokenValidated(metrics.KindAccess, "revoked")
		return false, errors.Wrap(token.ErrInvalidToken, "access token revoked")
	}
	ok := claims.Subject == expectedUsername
	if ok {
		s.metrics.TokenValidated(metrics.KindAccess, token.StatusAuthenticated.String())
	} else {
		s.metrics.TokenValidated(metrics.KindAccess, "subject_mismatch")
	}
	return ok, nil
}

// ValidateRefreshToken requires both an intact, unexpired signature and a match
// with the stored token. A superseded token still has a valid signature, so the
// store check is what revokes it. Every failure is token.ErrInvalidToken.
func (s *TokenService) ValidateRefreshToken(ctx context.Context, rawToken string) (*token.Claims, error) {
	claims, err := s.codec.Decode(rawToken)
	if err != nil {
		s.metrics.TokenValidated(metrics.KindRefresh, outcome(err))
		return nil, errors.Wrapf(token.ErrInvalidToken, "refresh token rejected: %v", err)
	}
	if !s.store.IsValid(ctx, claims.Subject, rawToken) {
		s.metrics.TokenValidated(metrics.KindRefresh, "not_stored")
		return nil, errors.Wrap(token.ErrInvalidToken, "refresh token superseded or revoked")
	}
	s.metrics.TokenValidated(metrics.KindRefresh, token.StatusAuthenticated.String())
	return claims, nil
}

// Logout revokes the user's refresh token. A user with nothing stored gets
// refresh.ErrNotFound rather than a silent success.
func (s *TokenService) Logout(ctx context.Context, username string) error {
	if err := s.store.Remove(ctx, username); err != nil {
		if errors.Is(err, refresh.ErrNotFound) {
			s.metrics.Logout("not_found")
			return errors.Wrapf(err, "[TokenService.Logout] %s", username)
		}
		s.metrics.Logout("error")
		return errors.Wrap(err, "[TokenService.Logout]")
	}
	s.metrics.Logout("ok")
	s.log(ctx).Info().Str("username", username).Msg("logged out")
	return nil
}

// Login issues a token pair for a principal the caller has already authenticated.
func (s *TokenService) Login(ctx context.Context, p users.Principal) (*TokenPair, error) {
	access, err := s.IssueAccessToken(p)
	if err != nil {
		return nil, err
	}
	refreshToken, expiresAt, err := s.rotate(ctx, p)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: expiresAt,
		Principal:        p,
	}, nil
}

// Refresh redeems a refresh token for a new pair, rotating the stored token.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string, principals PrincipalSource) (*TokenPair, error) {
	if principals == nil {
		return nil, errors.New("[TokenService.Refresh] principal source is required")
	}
	claims, err := s.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	p, err := principals.GetByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, errors.Wrapf(err, "[TokenService.Refresh] failed to load %s", claims.Subject)
	}
	return s.Login(ctx, *p)
}

// Authenticate validates an access token and returns ctx bound to the token's tenant.
// Tokens without identity claims, such as refresh tokens, yield token.ErrClaimsEmpty;
// a role outside the known set yields users.ErrUnknownRole.
func (s *TokenService) Authenticate(ctx context.Context, accessToken string) (context.Context, *token.Claims, error) {
	claims, err := s.codec.Decode(accessToken)
	if err != nil {
		s.metrics.TokenValidated(metrics.KindAccess, outcome(err))
		return ctx, nil, err
	}
	if claims.TenantID == nil || claims.UserID == nil {
		s.metrics.TokenValidated(metrics.KindAccess, "claims_empty")
		return ctx, nil, errors.Wrap(token.ErrClaimsEmpty, "access token has no identity claims")
	}
	if role := users.Role(claims.Role); !role.Valid() {
		s.metrics.TokenValidated(metrics.KindAccess, "unknown_role")
		return ctx, nil, errors.Wrapf(users.ErrUnknownRole, "access token role %q", claims.Role)
	}
	if s.isRevoked(claims) {
		s.metrics.TokenValidated(metrics.KindAccess, "revoked")
		return ctx, nil, errors.Wrap(token.ErrInvalidToken, "access token revoked")
	}
	s.metrics.TokenValidated(metrics.KindAccess, token.StatusAuthenticated.String())
	return tenants.WithTenantID(ctx, tenants.ID(*claims.TenantID)), claims, nil
}

// RevokeAccessToken stops an access token from authenticating before it expires.
// It does nothing unless the service was built WithRevokedTokens.
func (s *TokenService) RevokeAccessToken(claims *token.Claims) {
	if s.revoked == nil || claims == nil || claims.ExpiresAt == nil {
		return
	}
	s.revoked.Revoke(claims.ID, claims.ExpiresAt.Time)
}

func (s *TokenService) isRevoked(claims *token.Claims) bool {
	return s.revoked != nil && s.revoked.IsRevoked(claims.ID)
}

// PrincipalFromClaims rebuilds the principal an access token was issued for.
func PrincipalFromClaims(claims *token.Claims) users.Principal {
	return users.Principal{
		ID:       utils.Value(claims.UserID),
		Username: claims.Subject,
		Role:     users.Role(claims.Role),
		TenantID: utils.Value(claims.TenantID),
	}
}

func (s *TokenService) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return tenants.Logger(ctx)
	}
	return &s.logger
}

func outcome(err error) string {
	switch {
	case errors.Is(err, token.ErrEmptyToken):
		return token.StatusEmpty.String()
	case errors.Is(err, token.ErrUnsupportedToken):
		return token.StatusUnsupported.String()
	case errors.Is(err, token.ErrExpiredToken):
		return token.StatusExpired.String()
	default:
		return token.StatusInvalid.String()
	}
}
