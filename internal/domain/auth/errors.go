package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username, email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
)
