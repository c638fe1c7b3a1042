package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizctl/internal/app"
	"quizctl/internal/domain"
)

func TestLoginStoresSession(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.api.loginResp = domain.AuthResponse{Token: "t1", Email: "a@x.io", Role: domain.RoleAdmin}

	session, err := h.auth.Login(ctx, domain.LoginRequest{Email: "a@x.io", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, domain.Session{Token: "t1", Email: "a@x.io", Role: domain.RoleAdmin}, session)

	stored, err := h.auth.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, session, stored)

	token, err := h.auth.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t1", token)
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	previous := domain.Session{Token: "old", Email: "s@x.io", Role: domain.RoleStudent}
	require.NoError(t, h.sessions.Save(ctx, previous))

	tests := []struct {
		name    string
		resp    domain.AuthResponse
		err     error
		message string
	}{
		{name: "server message", err: &remoteError{status: 401, message: "Invalid credentials"}, message: "Invalid credentials"},
		{name: "transport failure", err: errors.New("connection reset"), message: "Login failed"},
		{name: "empty token", resp: domain.AuthResponse{Email: "a@x.io", Role: domain.RoleAdmin}, message: "Login failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h.api.loginErr = tt.err
			h.api.loginResp = tt.resp

			_, err := h.auth.Login(ctx, domain.LoginRequest{Email: "a@x.io", Password: "pw"})
			require.EqualError(t, err, tt.message)

			stored, err := h.auth.Current(ctx)
			require.NoError(t, err)
			assert.Equal(t, previous, stored)
		})
	}
}

func TestLoginTransportErrorShowsFallbackAndKeepsCause(t *testing.T) {
	h := newHarness(t)
	cause := errors.New("dial tcp: connection refused")
	h.api.loginErr = cause

	_, err := h.auth.Login(context.Background(), domain.LoginRequest{Email: "a@x.io", Password: "pw"})
	var ae *domain.ActionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "Login failed", ae.Message)
	assert.NotContains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
}

func TestLoginValidatesBeforeCalling(t *testing.T) {
	h := newHarness(t)

	_, err := h.auth.Login(context.Background(), domain.LoginRequest{Email: "not-an-email"})
	var verrs domain.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)
	assert.Equal(t, 0, h.api.loginCalls)
}

func TestLogoutClearsSession(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	require.NoError(t, h.sessions.Save(ctx, domain.Session{Token: "t", Email: "a@x.io", Role: domain.RoleStudent}))

	require.NoError(t, h.auth.Logout(ctx))

	_, err := h.auth.Current(ctx)
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
	token, err := h.auth.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestRegisterSendsRole(t *testing.T) {
	h := newHarness(t)

	req := domain.RegisterRequest{Name: "Ann", Email: "ann@x.io", Password: "pw", Role: domain.RoleStudent}
	require.NoError(t, h.auth.Register(context.Background(), req))
	assert.Equal(t, []domain.RegisterRequest{req}, h.api.registered)

	err := h.auth.Register(context.Background(), domain.RegisterRequest{Name: "Bob", Email: "bob@x.io", Password: "pw", Role: "TEACHER"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "role: must be STUDENT or ADMIN")
	assert.Len(t, h.api.registered, 1)
}

func TestClaimsDecodesStoredToken(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	claims := app.TokenClaims{
		Email: "a@x.io",
		Role:  "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "a@x.io",
			ExpiresAt: jwt.NewNumericDate(time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("anything"))
	require.NoError(t, err)
	require.NoError(t, h.sessions.Save(ctx, domain.Session{Token: signed, Email: "a@x.io", Role: domain.RoleAdmin}))

	got, err := h.auth.Claims(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", got.Role)
	assert.Equal(t, "a@x.io", got.Subject)

	require.NoError(t, h.sessions.Save(ctx, domain.Session{Token: "opaque", Email: "a@x.io", Role: domain.RoleAdmin}))
	_, err = h.auth.Claims(ctx)
	assert.ErrorIs(t, err, app.ErrOpaqueToken)
}
