package jwt

import (
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const TokenTypeAccess = "access"

// Claims carried by every access token.
const (
	ClaimUserID   = "user_id"
	ClaimUsername = "username"
	ClaimEmail    = "email"
	ClaimType     = "type"
)

type Service interface {
	GenerateAccessToken(userID, username, email string) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
	RevokeToken(token string)
	IsTokenRevoked(token string) bool
}

type JWTService struct {
	accessTokenTTL time.Duration
	tokenAuth      *jwtauth.JWTAuth
	now            func() time.Time

	mu            sync.RWMutex
	revokedTokens map[string]int64
}

func NewJWTService(secretKey string, accessTokenTTL time.Duration) *JWTService {
	return &JWTService{
		accessTokenTTL: accessTokenTTL,
		tokenAuth:      jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:            time.Now,
		revokedTokens:  make(map[string]int64),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(userID, username, email string) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(j.accessTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		ClaimUserID:   userID,
		ClaimUsername: username,
		ClaimEmail:    email,
		ClaimType:     TokenTypeAccess,
		"exp":         expiresAt,
	})
	return tokenString, expiresAt, err
}

// RevokeToken remembers the token until it would have expired anyway.
func (j *JWTService) RevokeToken(token string) {
	expiresAt := j.now().Add(j.accessTokenTTL).Unix()
	if parsed, err := j.tokenAuth.Decode(token); err == nil && !parsed.Expiration().IsZero() {
		expiresAt = parsed.Expiration().Unix()
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.pruneLocked()
	j.revokedTokens[token] = expiresAt
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}

// PruneRevokedTokens forgets revoked tokens that have expired and returns how many were dropped.
func (j *JWTService) PruneRevokedTokens() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.pruneLocked()
}

func (j *JWTService) pruneLocked() int {
	now := j.now().Unix()
	pruned := 0
	for token, expiresAt := range j.revokedTokens {
		if expiresAt < now {
			delete(j.revokedTokens, token)
			pruned++
		}
	}
	return pruned
}
