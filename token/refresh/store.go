package refresh

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Store keeps the single live refresh token per user and answers whether a
// presented token is still the one on record.
type Store struct {
	repo    Repo
	nowFunc func() time.Time
}

type StoreOption func(*Store)

// WithNowFunc sets the clock used for expiry checks
func WithNowFunc(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowFunc = now
	}
}

func NewStore(repo Repo, options ...StoreOption) (*Store, error) {
	if repo == nil {
		return nil, errors.New("[NewStore] repo is required")
	}
	s := &Store{
		repo:    repo,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Upsert records token as the user's current refresh token, superseding any previous one.
func (s *Store) Upsert(ctx context.Context, username, token string, expiresAt time.Time) error {
	if username == "" {
		return errors.New("[Store.Upsert] username is required")
	}
	if err := s.repo.Save(ctx, &Record{Username: username, Token: token, ExpiresAt: expiresAt}); err != nil {
		return errors.Wrapf(err, "[Store.Upsert] failed to save refresh token for %s", username)
	}
	return nil
}

// IsValid reports whether token is the user's current refresh token and has not expired.
// Lookup failures are logged and treated as invalid.
func (s *Store) IsValid(ctx context.Context, username, token string) bool {
	if username == "" || token == "" {
		return false
	}
	record, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Err(err).Str("username", username).Msg("[Store.IsValid] refresh token lookup failed")
		}
		return false
	}
	if subtle.ConstantTimeCompare([]byte(record.Token), []byte(token)) != 1 {
		return false
	}
	return record.ExpiresAt.After(s.nowFunc())
}

// Remove deletes the user's record whatever its state. A user without a record
// yields ErrNotFound, which callers surface as "already logged out".
func (s *Store) Remove(ctx context.Context, username string) error {
	if err := s.repo.DeleteByUsername(ctx, username); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return errors.Wrapf(err, "[Store.Remove] failed to delete refresh token for %s", username)
	}
	return nil
}
