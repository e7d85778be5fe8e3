package auth

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

const maxUsernameLength = 64

var ErrInvalidLoginRequest = errors.New("invalid login request")

// LoginRequest is the credential pair presented at login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks the shape of the credentials before they reach the directory.
func (r *LoginRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		return errors.Wrap(ErrInvalidLoginRequest, "username is required")
	}
	if len(r.Username) > maxUsernameLength {
		return errors.Wrapf(ErrInvalidLoginRequest, "username exceeds %d characters", maxUsernameLength)
	}
	for _, c := range r.Username {
		if unicode.IsSpace(c) || unicode.IsControl(c) {
			return errors.Wrap(ErrInvalidLoginRequest, "username contains whitespace or control characters")
		}
	}
	if r.Password == "" {
		return errors.Wrap(ErrInvalidLoginRequest, "password is required")
	}
	return nil
}
