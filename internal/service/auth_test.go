package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

type authEnv struct {
	svc    *AuthService
	tokens *tokens.Service
	mailer *mockMailer
	events *mockPublisher
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	ts, err := tokens.NewService([]byte("test-jwt-secret"), time.Hour)
	require.NoError(t, err)

	env := &authEnv{tokens: ts, mailer: &mockMailer{}, events: &mockPublisher{}}
	env.svc = &AuthService{
		Repo:   newTestRepo(t),
		Tokens: ts,
		Mailer: env.mailer,
		Events: env.events,
	}
	return env
}

func (e *authEnv) expectRegistration(email string) {
	e.mailer.On("Send", mock.Anything, email, mock.Anything, mock.Anything).Return(nil).Once()
	e.events.On("Publish", mock.Anything, TopicUserEvents, mock.Anything, eventOfType("user_registered")).Return(nil).Once()
}

func TestAuthService_Register_Validation(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "empty email", email: "", password: "secret1"},
		{name: "empty password", email: "user@example.com", password: ""},
		{name: "malformed email", email: "not-an-email", password: "secret1"},
		{name: "short password", email: "user@example.com", password: "12345"},
		{name: "long password", email: "user@example.com", password: strings.Repeat("p", 73)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			user, err := env.svc.Register(ctx, tt.email, tt.password)
			require.ErrorIs(t, err, ErrValidation)
			assert.Nil(t, user)
		})
	}

	env.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	env.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_Register_Success(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	ctx := context.Background()
	env.expectRegistration("new@example.com")

	user, err := env.svc.Register(ctx, "  New@Example.com ", "Secret123")
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.NotEqual(t, "Secret123", user.PasswordHash)

	stored, err := env.svc.Repo.FindUserByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.NotContains(t, stored.PasswordHash, "Secret123")

	env.mailer.AssertExpectations(t)
	env.events.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	ctx := context.Background()
	env.expectRegistration("dup@example.com")

	_, err := env.svc.Register(ctx, "dup@example.com", "Secret123")
	require.NoError(t, err)

	_, err = env.svc.Register(ctx, "dup@example.com", "Other123")
	require.ErrorIs(t, err, ErrValidation)

	env.mailer.AssertNumberOfCalls(t, "Send", 1)
}

func TestAuthService_Register_CancelledIsNotValidation(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	user, err := env.svc.Register(ctx, "late@example.com", "Secret123")
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Nil(t, user)
	env.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_Register_SideEffectsAreBestEffort(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	env.mailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	env.events.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("kafka down"))

	user, err := env.svc.Register(context.Background(), "quiet@example.com", "Secret123")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	ctx := context.Background()
	env.expectRegistration("login@example.com")

	registered, err := env.svc.Register(ctx, "login@example.com", "Secret123")
	require.NoError(t, err)

	res, err := env.svc.Login(ctx, "LOGIN@example.com", "Secret123")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	assert.Equal(t, registered.ID, res.User.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, time.Minute)

	id, err := env.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, tokens.Identity{UserID: registered.ID, Role: models.RoleCustomer}, id)

	_, err = env.svc.Login(ctx, "login@example.com", "wrong-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.svc.Login(ctx, "nobody@example.com", "Secret123")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.svc.Login(ctx, "", "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestAuthService_Login_StoreFailure(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	require.NoError(t, db.Close(env.svc.Repo.DB))

	res, err := env.svc.Login(context.Background(), "user@example.com", "Secret123")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.NotErrorIs(t, err, ErrValidation)
}

func TestAuthService_Profile(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	ctx := context.Background()
	env.expectRegistration("me@example.com")

	user, err := env.svc.Register(ctx, "me@example.com", "Secret123")
	require.NoError(t, err)

	got, err := env.svc.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", got.Email)

	_, err = env.svc.Profile(ctx, 4242)
	require.ErrorIs(t, err, ErrNotFound)
}
