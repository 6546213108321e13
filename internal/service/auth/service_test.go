package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/validator"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-for-jwt"

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]user.User
	// raceOnCreate makes Create fail like a concurrent insert won the unique index.
	raceOnCreate string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]user.User)}
}

func (f *fakeUserRepo) find(match func(user.User) bool) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	return f.find(func(u user.User) bool { return u.ID == id })
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (user.User, error) {
	return f.find(func(u user.User) bool { return u.Username == username })
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	return f.find(func(u user.User) bool { return u.Email == email })
}

func (f *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := f.GetByUsername(ctx, username)
	return err == nil, nil
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUserRepo) Create(_ context.Context, u user.User) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.raceOnCreate != "" {
		return user.User{}, &pgconn.PgError{Code: "23505", ConstraintName: f.raceOnCreate}
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.users[u.ID] = u
	return u, nil
}

func newTestAuthService(repo user.UserRepository) (*AuthServiceImpl, *jwt.JWTService) {
	jwtService := jwt.NewJWTService(testSecret, time.Hour)
	return &AuthServiceImpl{
		UserRepository: repo,
		Service:        jwtService,
		bcryptCost:     bcrypt.MinCost,
	}, jwtService
}

func validRegisterRequest() auth.RegisterRequest {
	return auth.RegisterRequest{
		Name:            "Ana Lopez",
		Username:        "Ana.Lopez",
		Email:           "Ana@Example.com",
		Password:        "Secret1",
		ConfirmPassword: "Secret1",
	}
}

func TestRegister(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestAuthService(repo)

	resp, err := svc.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)
	assert.True(t, validator.IsValidUUID(resp.ID))
	assert.Equal(t, "ana.lopez", resp.Username)
	assert.Equal(t, "ana@example.com", resp.Email)

	stored, err := repo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "Secret1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Secret1")))
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestAuthService(newFakeUserRepo())

	tests := []struct {
		name   string
		mutate func(r *auth.RegisterRequest)
		field  string
	}{
		{"missing name", func(r *auth.RegisterRequest) { r.Name = "" }, "name"},
		{"short username", func(r *auth.RegisterRequest) { r.Username = "ab" }, "username"},
		{"bad email", func(r *auth.RegisterRequest) { r.Email = "ana" }, "email"},
		{"short password", func(r *auth.RegisterRequest) { r.Password, r.ConfirmPassword = "Ab1", "Ab1" }, "password"},
		{"weak password", func(r *auth.RegisterRequest) { r.Password, r.ConfirmPassword = "secret12", "secret12" }, "password"},
		{"mismatched confirmation", func(r *auth.RegisterRequest) { r.ConfirmPassword = "Secret2" }, "confirmPassword"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegisterRequest()
			tt.mutate(&req)

			_, err := svc.Register(context.Background(), req)
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs.ToMap(), tt.field)
		})
	}
}

func TestRegisterDuplicates(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestAuthService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	_, err = svc.Register(ctx, validRegisterRequest())
	assert.ErrorIs(t, err, user.ErrUsernameTaken)

	req := validRegisterRequest()
	req.Username = "someone-else"
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	repo.raceOnCreate = "users_email_key"
	req = validRegisterRequest()
	req.Username, req.Email = "racer", "racer@example.com"
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	repo.raceOnCreate = "users_username_key"
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, user.ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	svc, jwtService := newTestAuthService(newFakeUserRepo())
	ctx := context.Background()

	registered, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	byUsername, err := svc.Login(ctx, auth.LoginRequest{Username: "ANA.LOPEZ", Password: "Secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, byUsername.AccessToken)
	assert.Equal(t, "Bearer", byUsername.TokenType)
	assert.Equal(t, registered, byUsername.User)

	token, err := jwtService.JWTAuth().Decode(byUsername.AccessToken)
	require.NoError(t, err)
	claims, err := token.AsMap(ctx)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims[jwt.ClaimUserID])
	assert.Equal(t, jwt.TokenTypeAccess, claims[jwt.ClaimType])

	byEmail, err := svc.Login(ctx, auth.LoginRequest{Email: "ana@example.com", Password: "Secret1"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, byEmail.User.ID)
}

func TestLoginFailures(t *testing.T) {
	svc, _ := newTestAuthService(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	_, err = svc.Login(ctx, auth.LoginRequest{Username: "ana.lopez", Password: "Wrong1"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(ctx, auth.LoginRequest{Username: "nobody", Password: "Secret1"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(ctx, auth.LoginRequest{Password: "Secret1"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestProfileAndLogout(t *testing.T) {
	svc, jwtService := newTestAuthService(newFakeUserRepo())
	ctx := context.Background()

	registered, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	profile, err := svc.Profile(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, registered, profile)

	_, err = svc.Profile(ctx, "not-an-id")
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	login, err := svc.Login(ctx, auth.LoginRequest{Username: "ana.lopez", Password: "Secret1"})
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, login.AccessToken))
	assert.True(t, jwtService.IsTokenRevoked(login.AccessToken))

	assert.ErrorIs(t, svc.Logout(ctx, ""), auth.ErrInvalidToken)
}
