package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/lending/internal/config"
	"github.com/mrlokans/lending/internal/database/users"
	"github.com/mrlokans/lending/internal/entities"
)

const testPassword = "correct-horse-battery"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "auth.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func setupTestService(t *testing.T, cfg config.Auth) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 4
	}
	return NewService(users.NewRepository(setupTestDB(t)), cfg)
}

func createTestUser(t *testing.T, svc *Service, username string, role entities.UserRole) *entities.User {
	user, err := svc.CreateUser(context.Background(), NewUser{
		Username: username,
		Email:    username + "@example.com",
		Password: testPassword,
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func TestService_CreateUser(t *testing.T) {
	svc := setupTestService(t, config.Auth{})
	ctx := context.Background()

	tests := []struct {
		name    string
		in      NewUser
		wantErr error
	}{
		{name: "valid admin", in: NewUser{Username: "admin", Email: "admin@example.com", Password: testPassword, Role: entities.UserRoleAdmin}},
		{name: "default role", in: NewUser{Username: "member", Email: "member@example.com", Password: testPassword}},
		{name: "missing username", in: NewUser{Email: "x@example.com", Password: testPassword}, wantErr: ErrUsernameRequired},
		{name: "missing email", in: NewUser{Username: "someone", Password: testPassword}, wantErr: ErrEmailRequired},
		{name: "bad username", in: NewUser{Username: "a b", Email: "ab@example.com", Password: testPassword}, wantErr: ErrUsernameInvalid},
		{name: "bad email", in: NewUser{Username: "someone", Email: "nope", Password: testPassword}, wantErr: ErrEmailInvalid},
		{name: "bad role", in: NewUser{Username: "someone", Email: "s@example.com", Password: testPassword, Role: "editor"}, wantErr: ErrInvalidRole},
		{name: "short password", in: NewUser{Username: "someone", Email: "s@example.com", Password: "short"}, wantErr: ErrPasswordTooShort},
		{name: "duplicate", in: NewUser{Username: "admin", Email: "other@example.com", Password: testPassword}, wantErr: ErrUserExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.CreateUser(ctx, tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, user.ID)
			assert.NotEqual(t, tt.in.Password, user.PasswordHash)
		})
	}

	member, err := svc.users.GetUserByLogin(ctx, "member")
	require.NoError(t, err)
	assert.Equal(t, entities.UserRoleUser, member.Role)
}

func TestService_Authenticate(t *testing.T) {
	svc := setupTestService(t, config.Auth{})
	ctx := context.Background()
	created := createTestUser(t, svc, "reader", entities.UserRoleUser)

	user, err := svc.Authenticate(ctx, "reader", testPassword)
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.NotNil(t, user.LastLoginAt)

	user, err = svc.Authenticate(ctx, "reader@example.com", testPassword)
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = svc.Authenticate(ctx, "reader", "wrong-password-123")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	_, err = svc.Authenticate(ctx, "ghost", testPassword)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_Authenticate_Lockout(t *testing.T) {
	svc := setupTestService(t, config.Auth{MaxLoginAttempts: 3, LockoutDuration: time.Hour})
	ctx := context.Background()
	createTestUser(t, svc, "reader", entities.UserRoleUser)

	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		_, err := svc.Authenticate(ctx, "reader", "wrong-password-123")
		assert.ErrorIs(t, err, ErrInvalidPassword)
	}

	_, err := svc.Authenticate(ctx, "reader", testPassword)
	assert.ErrorIs(t, err, ErrAccountLocked)

	now = now.Add(61 * time.Minute)
	user, err := svc.Authenticate(ctx, "reader", testPassword)
	require.NoError(t, err)
	assert.Equal(t, 0, user.FailedLoginCount)
}

func TestService_Tokens(t *testing.T) {
	svc := setupTestService(t, config.Auth{TokenExpiry: 24 * time.Hour})
	ctx := context.Background()
	created := createTestUser(t, svc, "reader", entities.UserRoleUser)

	_, err := svc.ValidateToken(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidToken)

	token, err := svc.GenerateToken(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, token, 64)

	user, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = svc.ValidateToken(ctx, "not-the-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	svc.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	svc.now = time.Now

	require.NoError(t, svc.RevokeToken(ctx, created.ID))
	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.GenerateToken(ctx, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_GetUserAndHasUsers(t *testing.T) {
	svc := setupTestService(t, config.Auth{})
	ctx := context.Background()

	has, err := svc.HasUsers(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	created := createTestUser(t, svc, "reader", entities.UserRoleUser)

	has, err = svc.HasUsers(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	user, err := svc.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "reader", user.Username)

	_, err = svc.GetUser(ctx, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
