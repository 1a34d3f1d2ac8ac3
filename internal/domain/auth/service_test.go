package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recaudo/internal/core/apperror"
	"recaudo/internal/core/id"
)

type memUsers struct {
	byEmail map[string]*User
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: make(map[string]*User)}
}

func (r *memUsers) Create(ctx context.Context, u *User) error {
	cp := *u
	r.byEmail[u.Email] = &cp
	return nil
}

func (r *memUsers) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	for _, u := range r.byEmail {
		if u.ID == userID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("user", userID.String())
}

func (r *memUsers) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, apperror.NewNotFound("user", email)
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) Update(ctx context.Context, u *User) error {
	cp := *u
	r.byEmail[u.Email] = &cp
	return nil
}

func (r *memUsers) ListByRole(ctx context.Context, role string) ([]User, error) {
	var out []User
	for _, u := range r.byEmail {
		if u.Role == role && u.IsActive {
			out = append(out, *u)
		}
	}
	return out, nil
}

func newAuthService() (*Service, *memUsers) {
	users := newMemUsers()
	svc := NewService(users, NewJWTService(DefaultJWTConfig("test-secret")))
	return svc, users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{
		Email:    "Ana@Example.com",
		Password: "super-secret",
		Name:     "Ana",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, RoleOperator, user.Role, "default role")

	token, logged, err := svc.Login(ctx, Credentials{Email: "ana@example.com", Password: "super-secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.Equal(t, user.ID, logged.ID)
	assert.NotNil(t, logged.LastLoginAt)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, _ := newAuthService()

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "ana@example.com",
		Password: "short",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "ana@example.com", Password: "super-secret"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Email: "ANA@example.com", Password: "super-secret"})
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestLoginUniformErrorForUnknownUserAndBadPassword(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "ana@example.com", Password: "super-secret"})
	require.NoError(t, err)

	_, _, errUnknown := svc.Login(ctx, Credentials{Email: "nobody@example.com", Password: "whatever"})
	_, _, errBadPass := svc.Login(ctx, Credentials{Email: "ana@example.com", Password: "wrong-password"})

	require.Error(t, errUnknown)
	require.Error(t, errBadPass)
	assert.Equal(t, errUnknown.Error(), errBadPass.Error(), "responses must not reveal which part failed")
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	svc, users := newAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Email: "ana@example.com", Password: "super-secret"})
	require.NoError(t, err)

	user.IsActive = false
	require.NoError(t, users.Update(ctx, user))

	_, _, err = svc.Login(ctx, Credentials{Email: "ana@example.com", Password: "super-secret"})
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc, _ := newAuthService()

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "ana@example.com",
		Password: "super-secret",
		Role:     "superuser",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestProvidersListsOnlyActiveProviders(t *testing.T) {
	svc, users := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "op@example.com", Password: "super-secret"})
	require.NoError(t, err)
	provider, err := svc.Register(ctx, RegisterRequest{Email: "isp@example.com", Password: "super-secret", Role: RoleProvider})
	require.NoError(t, err)
	retired, err := svc.Register(ctx, RegisterRequest{Email: "old@example.com", Password: "super-secret", Role: RoleProvider})
	require.NoError(t, err)

	retired.IsActive = false
	require.NoError(t, users.Update(ctx, retired))

	providers, err := svc.Providers(ctx)
	require.NoError(t, err)
	require.Len(t, providers, 1)
	assert.Equal(t, provider.ID, providers[0].ID)
}
