package token

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// MinSecretLength is the shortest secret accepted for HS256, 256 bits
const MinSecretLength = 32

// Signer is an interface for signing and verifying JWT tokens
type Signer interface {
	// Sign creates a signed JWT token from claims
	Sign(claims jwt.Claims) (string, error)

	// GetVerificationKey is used as the jwt.Keyfunc when parsing a token
	GetVerificationKey(token *jwt.Token) (any, error)

	// GetSigningMethod returns the JWT signing method used
	GetSigningMethod() jwt.SigningMethod
}

// HMACSigner implements Signer using symmetric HMAC-SHA256
type HMACSigner struct {
	key []byte
}

var _ Signer = (*HMACSigner)(nil)

// NewHMACSigner creates a new HMAC signer keyed with the secret's UTF-8 bytes,
// so any HS256 verifier holding the same secret accepts our tokens.
func NewHMACSigner(secret string) (*HMACSigner, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if len(secret) < MinSecretLength {
		return nil, errors.Wrapf(ErrWeakSecret, "%d bytes, need at least %d", len(secret), MinSecretLength)
	}
	return &HMACSigner{key: []byte(secret)}, nil
}

func (h *HMACSigner) Sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(h.key)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token with HMAC")
	}
	return signedToken, nil
}

// GetVerificationKey only hands out the key for HS256 tokens. A typ header is
// optional, but when present it must be JWT.
func (h *HMACSigner) GetVerificationKey(token *jwt.Token) (any, error) {
	if token.Method != jwt.SigningMethodHS256 {
		return nil, errors.Wrapf(ErrUnsupportedToken, "unexpected signing method: %v", token.Header["alg"])
	}
	if typ, ok := token.Header["typ"]; ok && !isJWTType(typ) {
		return nil, errors.Wrapf(ErrUnsupportedToken, "unexpected token type: %v", token.Header["typ"])
	}
	return h.key, nil
}

func (h *HMACSigner) GetSigningMethod() jwt.SigningMethod {
	return jwt.SigningMethodHS256
}

func isJWTType(typ any) bool {
	s, ok := typ.(string)
	return ok && strings.EqualFold(s, "JWT")
}
