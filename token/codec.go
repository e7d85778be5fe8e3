package token

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-tenant-auth/internal/utils"
	"github.com/jrsteele09/go-tenant-auth/users"
	"github.com/pkg/errors"
)

// Status is the outcome of checking a token without extracting anything from it
type Status int

const (
	StatusAuthenticated Status = iota
	StatusExpired
	StatusInvalid
	StatusUnsupported
	StatusEmpty
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusExpired:
		return "expired"
	case StatusUnsupported:
		return "unsupported"
	case StatusEmpty:
		return "empty"
	default:
		return "invalid"
	}
}

// Claims carried by our tokens. Access tokens fill UserID, Role and TenantID;
// refresh tokens only carry the registered claims (sub, iat, exp, jti).
type Claims struct {
	UserID   *int64 `json:"id,omitempty"`       // Principal ID
	Role     string `json:"role,omitempty"`     // Principal authority
	TenantID *int64 `json:"tenantId,omitempty"` // School the principal belongs to
	jwt.RegisteredClaims
}

// HasIdentity reports whether any authorization-relevant claim is present
func (c *Claims) HasIdentity() bool {
	return c.UserID != nil || c.Role != "" || c.TenantID != nil
}

// Codec encodes principals into signed, time-bounded tokens and decodes them back.
type Codec struct {
	signer  Signer
	parser  *jwt.Parser
	leeway  time.Duration
	nowFunc func() time.Time
}

type CodecOption func(*Codec)

// WithNowFunc sets the clock (primarily for testing)
func WithNowFunc(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowFunc = now
	}
}

// WithLeeway tolerates clock skew when checking expiry. Default is none.
func WithLeeway(leeway time.Duration) CodecOption {
	return func(c *Codec) {
		c.leeway = leeway
	}
}

func NewCodec(signer Signer, options ...CodecOption) *Codec {
	c := &Codec{
		signer: signer,
		// Expiry is checked by Decode against the codec clock
		parser:  jwt.NewParser(jwt.WithoutClaimsValidation()),
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Encode signs a token for p that expires ttl after now. Identity claims
// (id, role, tenantId) are only embedded when includeClaims is set.
func (c *Codec) Encode(p users.Principal, ttl time.Duration, includeClaims bool) (string, error) {
	signed, _, err := c.EncodeWithExpiry(p, ttl, includeClaims)
	return signed, err
}

// EncodeWithExpiry is Encode that also returns the exp claim it wrote.
func (c *Codec) EncodeWithExpiry(p users.Principal, ttl time.Duration, includeClaims bool) (string, time.Time, error) {
	if p.Username == "" {
		return "", time.Time{}, ErrEmptySubject
	}

	// NumericDate has second precision, truncate so exp - iat == ttl
	now := c.nowFunc().Truncate(time.Second)
	expiresAt := now.Add(ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(), // two tokens minted in the same second still differ
		},
	}
	if includeClaims {
		claims.UserID = utils.Ptr(p.ID)
		claims.Role = p.Role.String()
		claims.TenantID = utils.Ptr(p.TenantID)
	}

	signed, err := c.signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "[Codec.Encode]")
	}
	return signed, expiresAt, nil
}

// Decode verifies the signature, then the expiry, and returns the claims.
// Errors are one of ErrEmptyToken, ErrUnsupportedToken, ErrInvalidToken or ErrExpiredToken.
func (c *Codec) Decode(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, ErrEmptyToken
	}

	claims := &Claims{}
	if _, err := c.parser.ParseWithClaims(rawToken, claims, c.signer.GetVerificationKey); err != nil {
		return nil, classify(err)
	}

	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing exp claim", ErrInvalidToken)
	}
	if !c.nowFunc().Before(claims.ExpiresAt.Add(c.leeway)) {
		return nil, fmt.Errorf("%w: expired at %s", ErrExpiredToken, claims.ExpiresAt.UTC().Format(time.RFC3339))
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, ErrUnsupportedToken):
		return err
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		// alg missing or not registered with the jwt library
		return fmt.Errorf("%w: %w", ErrUnsupportedToken, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrExpiredToken, err)
	default:
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
}

// Status classifies a token without returning its claims
func (c *Codec) Status(rawToken string) Status {
	_, err := c.Decode(rawToken)
	switch {
	case err == nil:
		return StatusAuthenticated
	case errors.Is(err, ErrExpiredToken):
		return StatusExpired
	case errors.Is(err, ErrUnsupportedToken):
		return StatusUnsupported
	case errors.Is(err, ErrEmptyToken):
		return StatusEmpty
	default:
		return StatusInvalid
	}
}

// IsExpired never fails: an expired token reports true, anything else false.
func (c *Codec) IsExpired(rawToken string) bool {
	_, err := c.Decode(rawToken)
	return errors.Is(err, ErrExpiredToken)
}

func (c *Codec) ExtractSubject(rawToken string) (string, error) {
	claims, err := c.Decode(rawToken)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (c *Codec) ExtractID(rawToken string) (int64, error) {
	claims, err := c.Decode(rawToken)
	if err != nil {
		return 0, err
	}
	if claims.UserID == nil {
		return 0, fmt.Errorf("%w: id", ErrClaimsEmpty)
	}
	return utils.Value(claims.UserID), nil
}

func (c *Codec) ExtractTenantID(rawToken string) (int64, error) {
	claims, err := c.Decode(rawToken)
	if err != nil {
		return 0, err
	}
	if claims.TenantID == nil {
		return 0, fmt.Errorf("%w: tenantId", ErrClaimsEmpty)
	}
	return utils.Value(claims.TenantID), nil
}

func (c *Codec) ExtractExpiry(rawToken string) (time.Time, error) {
	claims, err := c.Decode(rawToken)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAt.Time, nil
}
