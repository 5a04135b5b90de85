// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmall/shop-backend/internal/config"
)

func testAuthConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{SecretKey: "test-secret", AccessTokenTTL: 1},
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, testAuthConfig())

	registered, err := auth.Register(&RegisterRequest{
		Username: "shopper",
		Email:    "shopper@example.com",
		Password: "Secret123!",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, registered.Token)

	logged, err := auth.Login(&LoginRequest{
		Email:    "shopper@example.com",
		Password: "Secret123!",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, logged.User.ID)

	_, err = auth.Login(&LoginRequest{
		Email:    "shopper@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, testAuthConfig())

	req := RegisterRequest{
		Username: "shopper",
		Email:    "shopper@example.com",
		Password: "Secret123!",
	}
	_, err := auth.Register(&req)
	require.NoError(t, err)

	_, err = auth.Register(&req)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterStorageFailure(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, testAuthConfig())

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	// A failed uniqueness query must surface as a storage error, never be
	// misread as "email available".
	_, err = auth.Register(&RegisterRequest{
		Username: "shopper",
		Email:    "shopper@example.com",
		Password: "Secret123!",
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmailTaken)
}
