package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuchat/internal/pkg/jwtutil"
	"docuchat/internal/repository"
)

func newAuthService(t *testing.T) (*AuthService, *repository.UserRepository) {
	t.Helper()
	db := newTestDB(t)
	repo := repository.NewUserRepository(db)
	return NewAuthService(repo, "test-secret", time.Hour), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService(t)

	result, err := svc.Register(RegisterInput{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "alice@example.com", result.User.Email)
	assert.NotEqual(t, "correct horse", result.User.PasswordHash)

	claims, err := jwtutil.ParseToken("test-secret", result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)

	login, err := svc.Login(LoginInput{Username: "alice", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, login.User.ID)
}

func TestRegisterDuplicates(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(RegisterInput{Username: "alice", Email: "a@example.com", Password: "long enough"})
	require.NoError(t, err)

	_, err = svc.Register(RegisterInput{Username: "alice", Email: "other@example.com", Password: "long enough"})
	assert.ErrorIs(t, err, ErrUsernameExists)

	_, err = svc.Register(RegisterInput{Username: "alice2", Email: "a@example.com", Password: "long enough"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(RegisterInput{Username: "alice", Email: "a@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Register(RegisterInput{Username: "", Email: "a@example.com", Password: "long enough"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLoginBadCredentials(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(RegisterInput{Username: "alice", Email: "a@example.com", Password: "long enough"})
	require.NoError(t, err)

	_, err = svc.Login(LoginInput{Username: "alice", Password: "wrong password"})
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = svc.Login(LoginInput{Username: "nobody", Password: "long enough"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}
