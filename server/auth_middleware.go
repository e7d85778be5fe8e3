package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-tenant-auth/auth"
	"github.com/jrsteele09/go-tenant-auth/tenants"
	"github.com/jrsteele09/go-tenant-auth/token"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyClaims stores the parsed access token claims
const ContextKeyClaims ContextKey = "claims"

// RequireAuth validates the Bearer access token and binds its tenant to the
// request context. The request logger is annotated with tenant_id.
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := auth.BearerToken(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		ctx, claims, err := s.tokens.Authenticate(r.Context(), raw)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		ctx = context.WithValue(ctx, ContextKeyClaims, claims)
		ctx = tenants.Logger(ctx).WithContext(ctx)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFrom returns the claims RequireAuth stored on the context
func ClaimsFrom(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(ContextKeyClaims).(*token.Claims)
	return claims, ok && claims != nil
}
