package refresh

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("refresh token not found")

// Record is the server-side copy of the refresh token last issued to a user.
// There is at most one record per username; issuing a new token overwrites it.
type Record struct {
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Repo persists refresh token records keyed by username.
type Repo interface {
	// FindByUsername returns ErrNotFound when the user holds no record
	FindByUsername(ctx context.Context, username string) (*Record, error)

	// Save inserts or replaces the user's record in one atomic step
	Save(ctx context.Context, record *Record) error

	// DeleteByUsername returns ErrNotFound when there was nothing to delete
	DeleteByUsername(ctx context.Context, username string) error
}
