package token

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// RevokedTokens remembers access tokens (by jti) that were revoked before they expired
type RevokedTokens interface {
	Revoke(jti string, exp time.Time)
	IsRevoked(jti string) bool
}

// RevocationCache is an in-process RevokedTokens. Each entry lives until the
// token's own expiry, after which Decode rejects the token anyway.
type RevocationCache struct {
	c       *gocache.Cache
	nowFunc func() time.Time
}

var _ RevokedTokens = (*RevocationCache)(nil)

// NewRevocationCache creates an empty cache. nowFunc may be nil.
func NewRevocationCache(cleanupInterval time.Duration, nowFunc func() time.Time) *RevocationCache {
	if nowFunc == nil {
		nowFunc = time.Now
	}
	return &RevocationCache{
		c:       gocache.New(gocache.NoExpiration, cleanupInterval),
		nowFunc: nowFunc,
	}
}

func (r *RevocationCache) Revoke(jti string, exp time.Time) {
	if jti == "" {
		return
	}
	ttl := exp.Sub(r.nowFunc())
	if ttl <= 0 {
		return
	}
	r.c.Set(jti, exp, ttl)
}

func (r *RevocationCache) IsRevoked(jti string) bool {
	if jti == "" {
		return false
	}
	_, ok := r.c.Get(jti)
	return ok
}

func (r *RevocationCache) Len() int {
	return r.c.ItemCount()
}
