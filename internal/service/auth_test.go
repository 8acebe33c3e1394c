package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/fashion_store/internal/repo"
	"github.com/Skotchmaster/fashion_store/internal/storetest"
	"github.com/Skotchmaster/fashion_store/pkg/events"
	"github.com/Skotchmaster/fashion_store/pkg/tokens"
)

func newTestAuthService(t *testing.T) (*AuthService, *events.Recorder) {
	t.Helper()

	rec := &events.Recorder{}
	return &AuthService{
		Repo:      repo.New(storetest.Open(t)),
		Events:    rec,
		JWTSecret: []byte("test-jwt-secret"),
		AccessTTL: 15 * time.Minute,
	}, rec
}

func TestAuthService_SignupAndLogin(t *testing.T) {
	svc, rec := newTestAuthService(t)
	ctx := context.Background()

	id, err := svc.Signup(ctx, "  Ann@Example.COM ", "secret")
	require.NoError(t, err)
	require.NotZero(t, id)

	res, err := svc.Login(ctx, "ann@example.com", "secret")
	require.NoError(t, err)
	assert.False(t, res.IsAdmin)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), res.AccessExp, 5*time.Second)

	claims, err := tokens.AccessClaimsFromToken(res.AccessToken, svc.JWTSecret)
	require.NoError(t, err)
	sub, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, id, sub)
	assert.Equal(t, tokens.RoleUser, claims.Role)

	got, err := svc.Authenticate(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	signups := rec.Events(events.TopicUser)
	require.Len(t, signups, 1)
	assert.Equal(t, "user_signed_up", signups[0].Event.(map[string]any)["type"])
}

func TestAuthService_Signup_Validation(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "empty email", email: "", password: "secret"},
		{name: "blank email", email: "   ", password: "secret"},
		{name: "empty password", email: "a@example.com", password: ""},
		{name: "password too long", email: "a@example.com", password: strings.Repeat("p", 73)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthService_Signup_Duplicate(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "dup@example.com", "secret")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "DUP@example.com", "other")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "bob@example.com", "secret")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "unknown email", email: "nobody@example.com", password: "secret"},
		{name: "wrong password", email: "bob@example.com", password: "Secret"},
		{name: "overlong password", email: "bob@example.com", password: strings.Repeat("s", 200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Login(ctx, tt.email, tt.password)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}

	_, err = svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuthService_Authenticate_Rejects(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	foreign, _, err := tokens.Issue(1, tokens.RoleUser, time.Minute, []byte("other-secret"))
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, foreign)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	expired, _, err := tokens.Issue(1, tokens.RoleUser, -time.Minute, svc.JWTSecret)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, expired)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	id, created, err := svc.EnsureAdmin(ctx, "root@example.com", "rootpw")
	require.NoError(t, err)
	assert.True(t, created)

	isAdmin, err := svc.IsAdmin(ctx, id)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	again, created, err := svc.EnsureAdmin(ctx, "root@example.com", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, again)

	userID, err := svc.Signup(ctx, "promote@example.com", "pw")
	require.NoError(t, err)
	isAdmin, err = svc.IsAdmin(ctx, userID)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	promoted, created, err := svc.EnsureAdmin(ctx, "promote@example.com", "ignored")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, userID, promoted)

	res, err := svc.Login(ctx, "promote@example.com", "pw")
	require.NoError(t, err)
	assert.True(t, res.IsAdmin)

	_, err = svc.IsAdmin(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = svc.EnsureAdmin(ctx, "new@example.com", "")
	assert.ErrorIs(t, err, ErrValidation)
}
