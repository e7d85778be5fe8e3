// Package redis stores refresh token records in Redis, one key per username.
package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jrsteele09/go-tenant-auth/token/refresh"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const DefaultPrefix = "refresh"

var _ refresh.Repo = (*Repo)(nil)

// Repo keeps each record as JSON under <prefix>:<username>. Keys expire at
// the record's expiry plus the retention window.
type Repo struct {
	client    redis.Cmdable
	prefix    string
	retention time.Duration
}

type Option func(*Repo)

func WithPrefix(prefix string) Option {
	return func(r *Repo) {
		r.prefix = prefix
	}
}

// WithRetention keeps keys past the record expiry so a late logout still finds them
func WithRetention(d time.Duration) Option {
	return func(r *Repo) {
		r.retention = d
	}
}

func New(client redis.Cmdable, options ...Option) *Repo {
	r := &Repo{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Connect creates a client and pings it
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "[redis.Connect] ping failed")
	}
	return rdb, nil
}

func (r *Repo) key(username string) string {
	if r.prefix == "" {
		return username
	}
	return r.prefix + ":" + username
}

func (r *Repo) FindByUsername(ctx context.Context, username string) (*refresh.Record, error) {
	val, err := r.client.Get(ctx, r.key(username)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, refresh.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis error")
	}

	record := &refresh.Record{}
	if err := json.Unmarshal(val, record); err != nil {
		return nil, errors.Wrapf(err, "corrupt refresh token record for %s", username)
	}
	return record, nil
}

// Save overwrites the key in a single SET so concurrent writers never interleave.
func (r *Repo) Save(ctx context.Context, record *refresh.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "failed to encode refresh token record")
	}
	args := redis.SetArgs{ExpireAt: record.ExpiresAt.Add(r.retention)}
	if err := r.client.SetArgs(ctx, r.key(record.Username), data, args).Err(); err != nil {
		return errors.Wrap(err, "redis error")
	}
	return nil
}

func (r *Repo) DeleteByUsername(ctx context.Context, username string) error {
	n, err := r.client.Del(ctx, r.key(username)).Result()
	if err != nil {
		return errors.Wrap(err, "redis error")
	}
	if n == 0 {
		return refresh.ErrNotFound
	}
	return nil
}
