package token

import "errors"

// Decode outcomes. Callers branch on these with errors.Is: an expired access
// token can be renewed through the refresh flow, the others cannot.
var (
	ErrEmptyToken       = errors.New("empty token")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("expired token")
	ErrUnsupportedToken = errors.New("unsupported token")
	ErrClaimsEmpty      = errors.New("token claims are empty")
)

var (
	ErrEmptySecret  = errors.New("signing secret is empty")
	ErrWeakSecret   = errors.New("signing secret is too short")
	ErrEmptySubject = errors.New("principal has no username")
)
