package services

import (
	"context"
	"testing"
	"time"

	"neelosewa/internal/domain"
	"neelosewa/internal/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(now *time.Time) AuthService {
	return AuthService{
		Store:    memory.New(),
		Secret:   []byte("test-secret"),
		TokenTTL: time.Hour,
		Now:      func() time.Time { return *now },
	}
}

func TestRegisterLoginAndParseToken(t *testing.T) {
	now := fixedNow
	auth := newAuth(&now)
	ctx := context.Background()

	reg, err := auth.Register(ctx, RegisterRequest{Name: " Ram  Thapa ", Email: "Ram@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "ram@example.com", reg.User.Email)
	assert.Equal(t, "Ram Thapa", reg.User.Name)
	assert.Equal(t, domain.RoleUser, reg.User.Role)
	assert.True(t, reg.User.WalletBalance.IsZero())

	login, err := auth.Login(ctx, LoginRequest{Email: "ram@example.com", Password: "secret1"})
	require.NoError(t, err)

	rc, err := auth.ParseToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, rc.UserID)
	assert.Equal(t, domain.RoleUser, rc.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	now := fixedNow
	auth := newAuth(&now)
	ctx := context.Background()

	_, err := auth.Register(ctx, RegisterRequest{Name: "Ram", Email: "ram@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = auth.Register(ctx, RegisterRequest{Name: "Other", Email: "RAM@example.com", Password: "secret2"})
	assert.True(t, domain.IsConflict(err), "got %v", err)
}

func TestLoginWrongPassword(t *testing.T) {
	now := fixedNow
	auth := newAuth(&now)
	ctx := context.Background()
	_, err := auth.Register(ctx, RegisterRequest{Name: "Ram", Email: "ram@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = auth.Login(ctx, LoginRequest{Email: "ram@example.com", Password: "nope"})
	assert.True(t, domain.IsUnauthorized(err))
	_, err = auth.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "nope"})
	assert.True(t, domain.IsUnauthorized(err))
}

func TestParseTokenRejectsExpiredAndForeign(t *testing.T) {
	now := fixedNow
	auth := newAuth(&now)
	reg, err := auth.Register(context.Background(), RegisterRequest{Name: "Ram", Email: "ram@example.com", Password: "secret1"})
	require.NoError(t, err)

	now = fixedNow.Add(2 * time.Hour)
	_, err = auth.ParseToken(reg.Token)
	assert.EqualError(t, err, "token expired")

	now = fixedNow
	other := auth
	other.Secret = []byte("another-secret")
	_, err = other.ParseToken(reg.Token)
	assert.EqualError(t, err, "invalid token")
}

func TestRegisterValidation(t *testing.T) {
	now := fixedNow
	auth := newAuth(&now)
	_, err := auth.Register(context.Background(), RegisterRequest{Name: "Ram", Email: "not-an-email", Password: "secret1"})
	assert.True(t, domain.IsValidation(err))
	_, err = auth.Register(context.Background(), RegisterRequest{Name: "Ram", Email: "ram@example.com", Password: "123"})
	assert.True(t, domain.IsValidation(err))
}
