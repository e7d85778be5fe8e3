package users

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

const DefaultAdminUsername = "admin"

// Registrar is a Directory that can also store principals
type Registrar interface {
	Directory
	Add(p Principal, password string) error
}

// BootstrapAdmin makes sure the admin principal exists in tenantID.
// With an empty password a random one is generated and returned once;
// generatedPassword is empty when the admin already existed or a password was given.
func BootstrapAdmin(ctx context.Context, dir Registrar, tenantID int64, password string) (generatedPassword string, err error) {
	_, err = dir.GetByUsername(ctx, DefaultAdminUsername)
	if err == nil {
		return "", nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return "", fmt.Errorf("failed to check for admin user: %w", err)
	}

	if password == "" {
		passwordBytes := make([]byte, 16)
		if _, err := rand.Read(passwordBytes); err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		generatedPassword = base64.URLEncoding.EncodeToString(passwordBytes)
		password = generatedPassword
	}

	admin := Principal{ID: 1, Username: DefaultAdminUsername, Role: RoleAdmin, TenantID: tenantID}
	if err := dir.Add(admin, password); err != nil {
		return "", fmt.Errorf("failed to create admin user: %w", err)
	}
	return generatedPassword, nil
}
