package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrUserNotFound     = errors.New("linked user not found")
)
