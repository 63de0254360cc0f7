package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/dat564/e-commerce-sub001/apperrors"
	"github.com/dat564/e-commerce-sub001/models"
	"github.com/dat564/e-commerce-sub001/services"
)

func newAuthService(userRepo *mockUserRepository) (*services.AuthService, *services.TokenService) {
	tokens := services.NewTokenService(testSecret, 15*time.Minute, 7*24*time.Hour)
	return services.NewAuthService(userRepo, tokens), tokens
}

func TestRegisterAndLogin(t *testing.T) {
	userRepo := newMockUserRepository()
	svc, _ := newAuthService(userRepo)

	user, err := svc.Register(context.Background(), "Nguyen Van A", "a@example.com", "Str0ngPass")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "Str0ngPass", user.Password) // stored as a bcrypt hash

	pair, loggedIn, err := svc.Login(context.Background(), "a@example.com", "Str0ngPass")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Equal(t, user.ID, loggedIn.ID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	userRepo := newMockUserRepository()
	svc, _ := newAuthService(userRepo)

	_, err := svc.Register(context.Background(), "A", "a@example.com", "Str0ngPass")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "B", "a@example.com", "Str0ngPass")
	assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
}

func TestRegister_WeakPassword(t *testing.T) {
	svc, _ := newAuthService(newMockUserRepository())

	_, err := svc.Register(context.Background(), "A", "a@example.com", "short")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := newMockUserRepository()
	svc, _ := newAuthService(userRepo)

	_, err := svc.Register(context.Background(), "A", "a@example.com", "Str0ngPass")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "a@example.com", "WrongPass1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _ := newAuthService(newMockUserRepository())

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "Str0ngPass")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLogin_DisabledAccount(t *testing.T) {
	userRepo := newMockUserRepository()
	svc, _ := newAuthService(userRepo)

	user, err := svc.Register(context.Background(), "A", "a@example.com", "Str0ngPass")
	require.NoError(t, err)

	require.NoError(t, userRepo.Update(context.Background(), user.ID, bson.M{"is_active": false}))

	_, _, err = svc.Login(context.Background(), "a@example.com", "Str0ngPass")
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestRefresh_MintsNewPair(t *testing.T) {
	userRepo := newMockUserRepository()
	svc, tokens := newAuthService(userRepo)

	_, err := svc.Register(context.Background(), "A", "a@example.com", "Str0ngPass")
	require.NoError(t, err)
	pair, _, err := svc.Login(context.Background(), "a@example.com", "Str0ngPass")
	require.NoError(t, err)

	newPair, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	claims, err := tokens.ValidateToken(newPair.AccessToken, services.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", claims.Email)
}

func TestRefresh_RechecksAccountIsActive(t *testing.T) {
	userRepo := newMockUserRepository()
	svc, _ := newAuthService(userRepo)

	user, err := svc.Register(context.Background(), "A", "a@example.com", "Str0ngPass")
	require.NoError(t, err)
	pair, _, err := svc.Login(context.Background(), "a@example.com", "Str0ngPass")
	require.NoError(t, err)

	// deactivation between issuance and exchange must block the refresh
	require.NoError(t, userRepo.Update(context.Background(), user.ID, bson.M{"is_active": false}))

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	userRepo := newMockUserRepository()
	svc, _ := newAuthService(userRepo)

	_, err := svc.Register(context.Background(), "A", "a@example.com", "Str0ngPass")
	require.NoError(t, err)
	pair, _, err := svc.Login(context.Background(), "a@example.com", "Str0ngPass")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSignature)
}
