package auth

import (
	"context"
)

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	Profile(ctx context.Context, userID string) (UserResponse, error)
	Logout(ctx context.Context, token string) error
}
