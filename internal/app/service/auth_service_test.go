package service

import (
	"context"
	"testing"

	"neurohire/internal/common"
	"neurohire/internal/domain/model"
	"neurohire/internal/platform/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neurohire/internal/common/security"
)

func initTestJWT() {
	if config.AppConfig == nil {
		config.AppConfig = &config.Config{JWTKey: []byte("test-secret")}
	}
	security.InitJWT()
}

func TestSignupAndLogin(t *testing.T) {
	initTestJWT()
	repo := newFakeUserRepo()
	svc := NewAuthService(repo)

	resp, err := svc.Signup(context.Background(), SignupRequest{
		Username: "jordan",
		Name:     "Jordan Lee",
		Email:    "jordan@example.com",
		Password: "hunter22",
		UserType: "candidate",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, model.UserTypeCandidate, resp.User.UserType)
	assert.Empty(t, resp.User.HashedPassword)

	// Login by email.
	login, err := svc.Login(context.Background(), LoginRequest{LoginField: "jordan@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	// Login by username.
	login, err = svc.Login(context.Background(), LoginRequest{LoginField: "jordan", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestSignup_DefaultsToCandidate(t *testing.T) {
	initTestJWT()
	svc := NewAuthService(newFakeUserRepo())

	resp, err := svc.Signup(context.Background(), SignupRequest{
		Username: "sam", Email: "sam@example.com", Password: "secret12",
	})
	require.NoError(t, err)
	assert.Equal(t, model.UserTypeCandidate, resp.User.UserType)
}

func TestSignup_RejectsAdminRole(t *testing.T) {
	initTestJWT()
	svc := NewAuthService(newFakeUserRepo())

	_, err := svc.Signup(context.Background(), SignupRequest{
		Username: "mallory", Email: "mallory@example.com", Password: "secret12",
		UserType: "admin",
	})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	initTestJWT()
	svc := NewAuthService(newFakeUserRepo())

	_, err := svc.Signup(context.Background(), SignupRequest{
		Username: "a", Email: "dup@example.com", Password: "secret12",
	})
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), SignupRequest{
		Username: "b", Email: "dup@example.com", Password: "secret12",
	})
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestLogin_BadCredentials(t *testing.T) {
	initTestJWT()
	svc := NewAuthService(newFakeUserRepo())

	_, err := svc.Signup(context.Background(), SignupRequest{
		Username: "jordan", Email: "jordan@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	// Unknown identity and wrong password look identical to the caller.
	_, err = svc.Login(context.Background(), LoginRequest{LoginField: "nobody@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = svc.Login(context.Background(), LoginRequest{LoginField: "jordan@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}
