package token_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-tenant-auth/token"
	"github.com/jrsteele09/go-tenant-auth/users"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-at-least-32-bytes"

var alice = users.Principal{ID: 42, Username: "alice", Role: users.RoleTeacher, TenantID: 7}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCodec(t *testing.T, clock *testClock, opts ...token.CodecOption) *token.Codec {
	t.Helper()
	signer, err := token.NewHMACSigner(testSecret)
	require.NoError(t, err)
	return token.NewCodec(signer, append([]token.CodecOption{token.WithNowFunc(clock.Now)}, opts...)...)
}

func TestNewHMACSigner_EmptySecret(t *testing.T) {
	_, err := token.NewHMACSigner("")
	require.ErrorIs(t, err, token.ErrEmptySecret)
}

func TestNewHMACSigner_WeakSecret(t *testing.T) {
	for _, secret := range []string{"1234", "change-me", strings.Repeat("x", token.MinSecretLength-1)} {
		_, err := token.NewHMACSigner(secret)
		require.ErrorIs(t, err, token.ErrWeakSecret, secret)
	}

	_, err := token.NewHMACSigner(strings.Repeat("x", token.MinSecretLength))
	require.NoError(t, err)
}

func TestCodec_InteroperatesWithPlainHS256(t *testing.T) {
	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	codec := newTestCodec(t, clock)

	// signed elsewhere with nothing but the shared secret
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	sub, err := codec.ExtractSubject(foreign)
	require.NoError(t, err)
	require.Equal(t, "alice", sub)

	// and ours verifies with the same raw secret
	ours, err := codec.Encode(alice, time.Hour, true)
	require.NoError(t, err)
	parsed, err := jwt.Parse(ours, func(*jwt.Token) (any, error) { return []byte(testSecret), nil },
		jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(clock.Now))
	require.NoError(t, err)
	require.True(t, parsed.Valid)
}

func TestCodec_MissingTypHeaderIsAccepted(t *testing.T) {
	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	codec := newTestCodec(t, clock)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
	})
	delete(tok.Header, "typ")
	raw, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)

	require.Equal(t, token.StatusAuthenticated, codec.Status(raw))
}

func TestCodec_RoundTrip(t *testing.T) {
	clock := &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	raw, err := codec.Encode(alice, 15*time.Minute, true)
	require.NoError(t, err)

	claims, err := codec.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.True(t, claims.HasIdentity())
	require.NotEmpty(t, claims.ID)

	sub, err := codec.ExtractSubject(raw)
	require.NoError(t, err)
	require.Equal(t, "alice", sub)

	id, err := codec.ExtractID(raw)
	require.NoError(t, err)
	require.Equal(t, int64(42), id)

	tenantID, err := codec.ExtractTenantID(raw)
	require.NoError(t, err)
	require.Equal(t, int64(7), tenantID)

	exp, err := codec.ExtractExpiry(raw)
	require.NoError(t, err)
	require.True(t, exp.Equal(clock.now.Add(15*time.Minute)))

	require.Equal(t, users.RoleTeacher.String(), claims.Role)
	require.Equal(t, token.StatusAuthenticated, codec.Status(raw))
	require.False(t, codec.IsExpired(raw))
}

func TestCodec_EncodeEmptySubject(t *testing.T) {
	codec := newTestCodec(t, &testClock{now: time.Now()})
	_, err := codec.Encode(users.Principal{ID: 1}, time.Minute, true)
	require.ErrorIs(t, err, token.ErrEmptySubject)
}

func TestCodec_SameSecondTokensDiffer(t *testing.T) {
	codec := newTestCodec(t, &testClock{now: time.Unix(1_700_000_000, 0)})

	a, err := codec.Encode(alice, time.Hour, false)
	require.NoError(t, err)
	b, err := codec.Encode(alice, time.Hour, false)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestCodec_NonPositiveTTLIsExpired(t *testing.T) {
	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	codec := newTestCodec(t, clock)

	for _, ttl := range []time.Duration{0, -time.Second, -time.Hour} {
		raw, err := codec.Encode(alice, ttl, true)
		require.NoError(t, err)

		_, err = codec.Decode(raw)
		require.ErrorIs(t, err, token.ErrExpiredToken, "ttl %s", ttl)
		require.Equal(t, token.StatusExpired, codec.Status(raw))
		require.True(t, codec.IsExpired(raw))
	}
}

func TestCodec_ExpiryTimeline(t *testing.T) {
	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	codec := newTestCodec(t, clock)

	raw, err := codec.Encode(alice, time.Hour, true)
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)
	require.Equal(t, token.StatusAuthenticated, codec.Status(raw))

	// The expiry instant itself counts as expired (now >= exp). That is one
	// instant stricter than reading expiry as exp < now, and keeps a zero ttl
	// from ever authenticating.
	clock.Advance(time.Minute)
	require.Equal(t, token.StatusExpired, codec.Status(raw))

	_, err = codec.ExtractSubject(raw)
	require.ErrorIs(t, err, token.ErrExpiredToken)
}

func TestCodec_Leeway(t *testing.T) {
	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	codec := newTestCodec(t, clock, token.WithLeeway(30*time.Second))

	raw, err := codec.Encode(alice, time.Minute, true)
	require.NoError(t, err)

	clock.Advance(80 * time.Second)
	require.Equal(t, token.StatusAuthenticated, codec.Status(raw))

	clock.Advance(10 * time.Second)
	require.Equal(t, token.StatusExpired, codec.Status(raw))
}

func TestCodec_RefreshTokenHasNoIdentityClaims(t *testing.T) {
	codec := newTestCodec(t, &testClock{now: time.Now()})

	raw, err := codec.Encode(alice, time.Hour, false)
	require.NoError(t, err)

	claims, err := codec.Decode(raw)
	require.NoError(t, err)
	require.False(t, claims.HasIdentity())
	require.Equal(t, "alice", claims.Subject)

	_, err = codec.ExtractID(raw)
	require.ErrorIs(t, err, token.ErrClaimsEmpty)

	_, err = codec.ExtractTenantID(raw)
	require.ErrorIs(t, err, token.ErrClaimsEmpty)

	payload, err := base64.RawURLEncoding.DecodeString(strings.Split(raw, ".")[1])
	require.NoError(t, err)
	require.NotContains(t, string(payload), `"role"`)
	require.NotContains(t, string(payload), `"tenantId"`)
}

func TestCodec_EmptyToken(t *testing.T) {
	codec := newTestCodec(t, &testClock{now: time.Now()})

	for _, raw := range []string{"", "   "} {
		_, err := codec.Decode(raw)
		require.ErrorIs(t, err, token.ErrEmptyToken)
		require.Equal(t, token.StatusEmpty, codec.Status(raw))
		require.False(t, codec.IsExpired(raw))
	}
}

func TestCodec_TamperedPayloadIsInvalid(t *testing.T) {
	codec := newTestCodec(t, &testClock{now: time.Now()})

	raw, err := codec.Encode(alice, time.Hour, true)
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)

	payload := []byte(parts[1])
	for i := range payload {
		tampered := make([]byte, len(payload))
		copy(tampered, payload)
		if tampered[i] == 'A' {
			tampered[i] = 'B'
		} else {
			tampered[i] = 'A'
		}

		forged := parts[0] + "." + string(tampered) + "." + parts[2]
		require.Equal(t, token.StatusInvalid, codec.Status(forged), "payload byte %d", i)
		require.False(t, codec.IsExpired(forged))
	}
}

func TestCodec_Malformed(t *testing.T) {
	codec := newTestCodec(t, &testClock{now: time.Now()})

	for _, raw := range []string{"not-a-jwt", "a.b", "a.b.c.d", "..."} {
		_, err := codec.Decode(raw)
		require.ErrorIs(t, err, token.ErrInvalidToken, raw)
	}
}

func TestCodec_WrongSecretIsInvalid(t *testing.T) {
	clock := &testClock{now: time.Now()}
	other, err := token.NewHMACSigner("a-different-secret-also-32-bytes-long")
	require.NoError(t, err)

	raw, err := token.NewCodec(other, token.WithNowFunc(clock.Now)).Encode(alice, time.Hour, true)
	require.NoError(t, err)

	codec := newTestCodec(t, clock)
	_, err = codec.Decode(raw)
	require.ErrorIs(t, err, token.ErrInvalidToken)
	require.Equal(t, token.StatusInvalid, codec.Status(raw))
}

func TestCodec_MissingExpiryIsInvalid(t *testing.T) {
	key := []byte(testSecret)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "alice"}).SignedString(key)
	require.NoError(t, err)

	codec := newTestCodec(t, &testClock{now: time.Now()})
	_, err = codec.Decode(raw)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestCodec_UnsupportedAlgorithms(t *testing.T) {
	clock := &testClock{now: time.Now()}
	codec := newTestCodec(t, clock)

	claims := jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
	}

	key := []byte(testSecret)
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(key)
	require.NoError(t, err)
	rs256, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(rsaKey)
	require.NoError(t, err)

	wrongType := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	wrongType.Header["typ"] = "at+jwt"
	typed, err := wrongType.SignedString(key)
	require.NoError(t, err)

	enc := base64.RawURLEncoding
	unknownAlg := enc.EncodeToString([]byte(`{"alg":"XS999","typ":"JWT"}`)) + "." +
		enc.EncodeToString([]byte(`{"sub":"alice"}`)) + "." +
		enc.EncodeToString([]byte("sig"))

	tests := map[string]string{
		"alg none":    none,
		"HS512":       hs512,
		"RS256":       rs256,
		"unknown alg": unknownAlg,
		"typ not JWT": typed,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Decode(raw)
			require.ErrorIs(t, err, token.ErrUnsupportedToken)
			require.Equal(t, token.StatusUnsupported, codec.Status(raw))
		})
	}
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "authenticated", token.StatusAuthenticated.String())
	require.Equal(t, "expired", token.StatusExpired.String())
	require.Equal(t, "invalid", token.StatusInvalid.String())
	require.Equal(t, "unsupported", token.StatusUnsupported.String())
	require.Equal(t, "empty", token.StatusEmpty.String())
}

func TestCodec_EncodeWithExpiry(t *testing.T) {
	clock := &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 500_000_000, time.UTC)}
	codec := newTestCodec(t, clock)

	raw, exp, err := codec.EncodeWithExpiry(alice, time.Hour, false)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), exp)

	got, err := codec.ExtractExpiry(raw)
	require.NoError(t, err)
	require.True(t, got.Equal(exp))
}
