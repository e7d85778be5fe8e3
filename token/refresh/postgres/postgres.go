// Package postgres stores refresh token records in PostgreSQL, one row per username.
package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jrsteele09/go-tenant-auth/token/refresh"
	"github.com/jrsteele09/go-tenant-auth/token/refresh/postgres/migrations"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

// DBTX is the subset of database/sql used by the repo.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var _ refresh.Repo = (*Repo)(nil)

type Repo struct {
	db DBTX
}

func New(db DBTX) *Repo {
	return &Repo{db: db}
}

// Open connects through the pgx stdlib driver and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "[postgres.Open] failed to open database")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "[postgres.Open] failed to reach database")
	}
	return db, nil
}

// gooseUp is replaced in tests
var gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
	return goose.UpContext(ctx, db, dir)
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return errors.Wrap(err, "[postgres.Migrate] failed to set dialect")
	}
	if err := gooseUp(ctx, db, "."); err != nil {
		return errors.Wrap(err, "[postgres.Migrate] failed to apply migrations")
	}
	return nil
}

func (r *Repo) FindByUsername(ctx context.Context, username string) (*refresh.Record, error) {
	query := `
		SELECT username, token, expires_at
		FROM refresh_tokens
		WHERE username = $1
	`
	record := &refresh.Record{}
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&record.Username, &record.Token, &record.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, refresh.ErrNotFound
		}
		return nil, errors.Wrap(err, "db error")
	}
	return record, nil
}

func (r *Repo) Save(ctx context.Context, record *refresh.Record) error {
	query := `
		INSERT INTO refresh_tokens (username, token, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE
		SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at
	`
	if _, err := r.db.ExecContext(ctx, query, record.Username, record.Token, record.ExpiresAt.UTC()); err != nil {
		return errors.Wrap(err, "db error")
	}
	return nil
}

func (r *Repo) DeleteByUsername(ctx context.Context, username string) error {
	query := `
		DELETE FROM refresh_tokens
		WHERE username = $1
	`
	res, err := r.db.ExecContext(ctx, query, username)
	if err != nil {
		return errors.Wrap(err, "db error")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "db error")
	}
	if n == 0 {
		return refresh.ErrNotFound
	}
	return nil
}

// DeleteExpired purges rows whose expiry is before now and returns how many went.
func (r *Repo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, now.UTC())
	if err != nil {
		return 0, errors.Wrap(err, "db error")
	}
	return res.RowsAffected()
}
