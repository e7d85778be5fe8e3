package users

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Role is the single authority a principal carries into its access token
type Role string

const (
	RoleStudent Role = "ROLE_STUDENT" // Student of a school (tenant)
	RoleTeacher Role = "ROLE_TEACHER" // Teacher within a school
	RoleAdmin   Role = "ROLE_ADMIN"   // School administrator
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownRole        = errors.New("unknown role")
)

// Principal is the authenticated identity handed to the token service.
// It is never persisted by the token core.
type Principal struct {
	ID       int64  `json:"id"`       // Unique identifier for the user
	Username string `json:"username"` // Unique, stable login name (token subject)
	Role     Role   `json:"role"`     // Authority embedded in access tokens
	TenantID int64  `json:"tenantId"` // School the user belongs to
}

func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// Directory is the authentication boundary the token service depends on.
type Directory interface {
	// Authenticate checks credentials and returns the matching principal
	Authenticate(ctx context.Context, username, password string) (*Principal, error)
	// GetByUsername reloads a principal, used when refreshing tokens
	GetByUsername(ctx context.Context, username string) (*Principal, error)
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
