package user

import "errors"

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username is already in use")
	ErrEmailTaken    = errors.New("email is already registered")
)
