// Package tenants binds the current tenant (school) to a unit of request processing.
//
// The binding lives in a context.Context, so it is owned by exactly one request
// and disappears with it. Nothing is stored process-wide: two requests handled
// concurrently each see only their own tenant, and a pooled goroutine cannot
// observe a tenant left behind by a previous request.
//
// Goroutines spawned by a request only see the tenant if they are explicitly
// handed the bound context. Use Clear to hand work to a task that must run
// without a tenant.
package tenants

import (
	"context"
	"errors"
	"strconv"

	"github.com/rs/zerolog"
)

// ID identifies a tenant
type ID int64

// ErrUnbound is the panic value of MustTenantID when no tenant is bound.
var ErrUnbound = errors.New("tenant context is unbound")

type ctxKey struct{}

type binding struct {
	id    ID
	bound bool
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// WithTenantID returns a child of ctx bound to the tenant id.
func WithTenantID(ctx context.Context, id ID) context.Context {
	return context.WithValue(ctx, ctxKey{}, binding{id: id, bound: true})
}

// Clear returns a child of ctx with no tenant bound, regardless of its parent.
func Clear(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, binding{})
}

// TenantIDFrom returns the bound tenant. The bool is false when unbound.
func TenantIDFrom(ctx context.Context) (ID, bool) {
	if ctx == nil {
		return 0, false
	}
	b, ok := ctx.Value(ctxKey{}).(binding)
	if !ok || !b.bound {
		return 0, false
	}
	return b.id, true
}

// MustTenantID returns the bound tenant and panics when there is none.
// Reading the tenant before it is bound is an ordering bug, not a runtime condition.
func MustTenantID(ctx context.Context) ID {
	id, ok := TenantIDFrom(ctx)
	if !ok {
		panic(ErrUnbound)
	}
	return id
}

// Run executes fn as one unit of work bound to tenant id. The binding is only
// reachable through the context passed to fn and ends when fn returns.
func Run(ctx context.Context, id ID, fn func(ctx context.Context) error) error {
	return fn(WithTenantID(ctx, id))
}

// Logger returns the context logger, annotated with tenant_id when a tenant is bound.
func Logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	id, ok := TenantIDFrom(ctx)
	if !ok {
		return l
	}
	scoped := l.With().Int64("tenant_id", int64(id)).Logger()
	return &scoped
}
