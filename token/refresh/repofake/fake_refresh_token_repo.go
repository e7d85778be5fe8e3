package refreshrepofake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-tenant-auth/token/refresh"
)

var _ refresh.Repo = (*FakeRefreshTokenRepo)(nil)

// FakeRefreshTokenRepo keeps records in a map and never reaps them, so expiry
// is decided only by the Store clock.
type FakeRefreshTokenRepo struct {
	records map[string]refresh.Record
	lock    sync.RWMutex
}

func NewFakeRefreshTokenRepo() *FakeRefreshTokenRepo {
	return &FakeRefreshTokenRepo{
		records: make(map[string]refresh.Record),
	}
}

func (tr *FakeRefreshTokenRepo) FindByUsername(_ context.Context, username string) (*refresh.Record, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	r, ok := tr.records[username]
	if !ok {
		return nil, refresh.ErrNotFound
	}
	return &r, nil
}

func (tr *FakeRefreshTokenRepo) Save(_ context.Context, record *refresh.Record) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	tr.records[record.Username] = *record
	return nil
}

func (tr *FakeRefreshTokenRepo) DeleteByUsername(_ context.Context, username string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if _, ok := tr.records[username]; !ok {
		return refresh.ErrNotFound
	}
	delete(tr.records, username)
	return nil
}

// Len returns the number of stored records
func (tr *FakeRefreshTokenRepo) Len() int {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return len(tr.records)
}
