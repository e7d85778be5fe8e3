// Package memory is an in-process refresh token repo for single-instance deployments and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-tenant-auth/token/refresh"
	gocache "github.com/patrickmn/go-cache"
)

var _ refresh.Repo = (*Repo)(nil)

// Repo keeps one go-cache entry per username. Each entry lives until the
// record's expiry plus the retention window, after which the janitor reaps it.
type Repo struct {
	c         *gocache.Cache
	retention time.Duration
	mu        sync.Mutex // serialises Save against DeleteByUsername
}

// New creates a repo. retention keeps expired records around so a late logout
// still finds them; cleanupInterval is how often dead entries are purged.
func New(retention, cleanupInterval time.Duration) *Repo {
	return &Repo{
		c:         gocache.New(gocache.NoExpiration, cleanupInterval),
		retention: retention,
	}
}

func (m *Repo) FindByUsername(_ context.Context, username string) (*refresh.Record, error) {
	v, ok := m.c.Get(username)
	if !ok {
		return nil, refresh.ErrNotFound
	}
	r := v.(refresh.Record)
	return &r, nil
}

func (m *Repo) Save(_ context.Context, record *refresh.Record) error {
	ttl := time.Until(record.ExpiresAt) + m.retention
	if ttl <= 0 {
		// go-cache treats negative durations as "never expire"
		ttl = time.Nanosecond
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.c.Set(record.Username, *record, ttl)
	return nil
}

func (m *Repo) DeleteByUsername(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.c.Get(username); !ok {
		return refresh.ErrNotFound
	}
	m.c.Delete(username)
	return nil
}

// Len returns the number of entries, including expired ones not yet reaped
func (m *Repo) Len() int {
	return m.c.ItemCount()
}
