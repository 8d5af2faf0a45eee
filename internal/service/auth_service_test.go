package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/asingh/agri-rental-website/internal/domain"
	"github.com/asingh/agri-rental-website/internal/repository/postgres"
	"github.com/asingh/agri-rental-website/internal/service"
	"github.com/asingh/agri-rental-website/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Signup(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig(t)
	authService := service.NewAuthService(repos.User, repos.Session, cfg)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   service.SignupInput
		setup   func()
		wantErr error
	}{
		{
			name: "successful signup",
			input: service.SignupInput{
				Name:     "Ravi Kumar",
				Phone:    "9876543210",
				Password: "secret1",
			},
		},
		{
			name: "duplicate phone",
			input: service.SignupInput{
				Name:     "Someone Else",
				Phone:    "9876543210",
				Password: "password123",
			},
			setup: func() {
				testutil.NewUserBuilder().
					WithPhone("9876543210").
					Build(t, testDB.DB)
			},
			wantErr: domain.ErrDuplicatePhone,
		},
		{
			name: "name too short",
			input: service.SignupInput{
				Name:     "R",
				Phone:    "9876543210",
				Password: "secret1",
			},
			wantErr: domain.ErrInvalidName,
		},
		{
			name: "phone with bad first digit",
			input: service.SignupInput{
				Name:     "Ravi Kumar",
				Phone:    "5876543210",
				Password: "secret1",
			},
			wantErr: domain.ErrInvalidPhone,
		},
		{
			name: "phone too short",
			input: service.SignupInput{
				Name:     "Ravi Kumar",
				Phone:    "987654321",
				Password: "secret1",
			},
			wantErr: domain.ErrInvalidPhone,
		},
		{
			name: "phone with letters",
			input: service.SignupInput{
				Name:     "Ravi Kumar",
				Phone:    "98765x3210",
				Password: "secret1",
			},
			wantErr: domain.ErrInvalidPhone,
		},
		{
			name: "password too short",
			input: service.SignupInput{
				Name:     "Ravi Kumar",
				Phone:    "9876543210",
				Password: "abc",
			},
			wantErr: domain.ErrInvalidPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDB.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}

			user, err := authService.Signup(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotZero(t, user.ID)
			assert.Equal(t, tt.input.Phone, user.Phone)
			assert.True(t, user.IsActive)
			assert.NotEqual(t, tt.input.Password, user.PasswordHash)
		})
	}
}

func TestAuthService_Signup_InvalidInputFamily(t *testing.T) {
	// Every validation failure must map into the ErrInvalidInput family so
	// the HTTP boundary can answer 400 uniformly.
	for _, err := range []error{domain.ErrInvalidName, domain.ErrInvalidPhone, domain.ErrInvalidPassword} {
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestAuthService_Login(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig(t)
	authService := service.NewAuthService(repos.User, repos.Session, cfg)
	ctx := context.Background()

	tests := []struct {
		name    string
		setup   func() (phone, password string)
		wantErr error
	}{
		{
			name: "successful login",
			setup: func() (string, string) {
				_, pw := testutil.NewUserBuilder().
					WithPhone("9876543210").
					WithPassword("correctpassword").
					Build(t, testDB.DB)
				return "9876543210", pw
			},
		},
		{
			name: "wrong password",
			setup: func() (string, string) {
				testutil.NewUserBuilder().
					WithPhone("9876543210").
					WithPassword("correctpassword").
					Build(t, testDB.DB)
				return "9876543210", "wrongpassword"
			},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name: "unregistered phone",
			setup: func() (string, string) {
				return "9123456780", "anypassword"
			},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name: "deactivated account",
			setup: func() (string, string) {
				_, pw := testutil.NewUserBuilder().
					WithPhone("9876543210").
					Deactivated().
					Build(t, testDB.DB)
				return "9876543210", pw
			},
			wantErr: domain.ErrAccountDeactivated,
		},
		{
			name: "malformed phone",
			setup: func() (string, string) {
				return "12345", "anypassword"
			},
			wantErr: domain.ErrInvalidPhone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDB.Truncate(t)

			phone, password := tt.setup()

			result, err := authService.Login(ctx, service.LoginInput{
				Phone:     phone,
				Password:  password,
				IPAddress: "203.0.113.7",
				UserAgent: "test-agent",
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Len(t, result.Token, 64, "token should be hex of 32 random bytes")
			assert.NotNil(t, result.User.LastLogin)

			var session domain.UserSession
			require.NoError(t, testDB.DB.First(&session, "session_token = ?", result.Token).Error)
			assert.Equal(t, result.User.ID, session.UserID)
			assert.Equal(t, "203.0.113.7", session.IPAddress)
			assert.Equal(t, "test-agent", session.UserAgent)
			assert.True(t, session.ExpiresAt.After(time.Now().Add(6*24*time.Hour)))
		})
	}
}

func TestAuthService_Login_ConcurrentSessionsAllowed(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig(t)
	authService := service.NewAuthService(repos.User, repos.Session, cfg)
	ctx := context.Background()

	_, password := testutil.NewUserBuilder().WithPhone("9876543210").Build(t, testDB.DB)

	first, err := authService.Login(ctx, service.LoginInput{Phone: "9876543210", Password: password})
	require.NoError(t, err)
	second, err := authService.Login(ctx, service.LoginInput{Phone: "9876543210", Password: password})
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)

	// Both sessions remain valid: a second login must not revoke the first.
	_, err = authService.ValidateSession(ctx, first.Token)
	assert.NoError(t, err)
	_, err = authService.ValidateSession(ctx, second.Token)
	assert.NoError(t, err)
}

func TestAuthService_ValidateSession(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig(t)
	authService := service.NewAuthService(repos.User, repos.Session, cfg)
	ctx := context.Background()

	login := func(t *testing.T) (*domain.User, string) {
		t.Helper()
		user, password := testutil.NewUserBuilder().WithPhone("9876543210").Build(t, testDB.DB)
		result, err := authService.Login(ctx, service.LoginInput{Phone: "9876543210", Password: password})
		require.NoError(t, err)
		return user, result.Token
	}

	t.Run("valid token resolves to user", func(t *testing.T) {
		testDB.Truncate(t)
		user, token := login(t)

		got, err := authService.ValidateSession(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, user.Phone, got.Phone)
	})

	t.Run("unknown token", func(t *testing.T) {
		testDB.Truncate(t)

		_, err := authService.ValidateSession(ctx, "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef")
		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := authService.ValidateSession(ctx, "")
		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	})

	t.Run("expired session is rejected and deleted", func(t *testing.T) {
		testDB.Truncate(t)
		_, token := login(t)

		require.NoError(t, testDB.DB.
			Model(&domain.UserSession{}).
			Where("session_token = ?", token).
			Update("expires_at", time.Now().Add(-time.Minute)).Error)

		_, err := authService.ValidateSession(ctx, token)
		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

		var count int64
		testDB.DB.Model(&domain.UserSession{}).Where("session_token = ?", token).Count(&count)
		assert.Zero(t, count, "expired session row should be removed at validation time")
	})

	t.Run("deactivated user is rejected", func(t *testing.T) {
		testDB.Truncate(t)
		user, token := login(t)

		require.NoError(t, testDB.DB.
			Model(&domain.User{}).
			Where("id = ?", user.ID).
			Update("is_active", false).Error)

		_, err := authService.ValidateSession(ctx, token)
		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	})

	t.Run("token is rejected immediately after logout", func(t *testing.T) {
		testDB.Truncate(t)
		_, token := login(t)

		require.NoError(t, authService.Logout(ctx, token))

		_, err := authService.ValidateSession(ctx, token)
		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	})
}

func TestAuthService_Logout_Idempotent(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig(t)
	authService := service.NewAuthService(repos.User, repos.Session, cfg)
	ctx := context.Background()

	_, password := testutil.NewUserBuilder().WithPhone("9876543210").Build(t, testDB.DB)
	result, err := authService.Login(ctx, service.LoginInput{Phone: "9876543210", Password: password})
	require.NoError(t, err)

	assert.NoError(t, authService.Logout(ctx, result.Token))
	assert.NoError(t, authService.Logout(ctx, result.Token), "second logout is not an error")
	assert.NoError(t, authService.Logout(ctx, "nonexistent-token"))
}

func TestAuthService_CleanupExpiredSessions(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig(t)
	authService := service.NewAuthService(repos.User, repos.Session, cfg)
	ctx := context.Background()

	_, password := testutil.NewUserBuilder().WithPhone("9876543210").Build(t, testDB.DB)

	live, err := authService.Login(ctx, service.LoginInput{Phone: "9876543210", Password: password})
	require.NoError(t, err)
	stale, err := authService.Login(ctx, service.LoginInput{Phone: "9876543210", Password: password})
	require.NoError(t, err)

	require.NoError(t, testDB.DB.
		Model(&domain.UserSession{}).
		Where("session_token = ?", stale.Token).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	n, err := authService.CleanupExpiredSessions(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = authService.ValidateSession(ctx, live.Token)
	assert.NoError(t, err, "live session must survive the sweep")
}
