package directoryfake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-tenant-auth/users"
)

var _ users.Registrar = (*FakeDirectory)(nil)

type account struct {
	principal    users.Principal
	passwordHash string
}

// FakeDirectory is an in-memory users.Directory holding bcrypt password hashes.
type FakeDirectory struct {
	accounts map[string]*account // username to account
	lock     sync.RWMutex
}

func NewFakeDirectory() *FakeDirectory {
	return &FakeDirectory{
		accounts: make(map[string]*account),
	}
}

// Add stores (or replaces) a principal with the given plain-text password.
func (d *FakeDirectory) Add(p users.Principal, password string) error {
	hash, err := users.HashPassword(password)
	if err != nil {
		return err
	}

	d.lock.Lock()
	defer d.lock.Unlock()
	d.accounts[p.Username] = &account{principal: p, passwordHash: hash}
	return nil
}

func (d *FakeDirectory) Authenticate(_ context.Context, username, password string) (*users.Principal, error) {
	d.lock.RLock()
	acc, ok := d.accounts[username]
	d.lock.RUnlock()

	// Same error for unknown user and bad password
	if !ok || !users.CheckPasswordHash(password, acc.passwordHash) {
		return nil, users.ErrInvalidCredentials
	}
	p := acc.principal
	return &p, nil
}

func (d *FakeDirectory) GetByUsername(_ context.Context, username string) (*users.Principal, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	acc, ok := d.accounts[username]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	p := acc.principal
	return &p, nil
}

// Remove deletes a principal
func (d *FakeDirectory) Remove(username string) {
	d.lock.Lock()
	defer d.lock.Unlock()
	delete(d.accounts, username)
}
