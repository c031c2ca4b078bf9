package client

import (
	"context"
	"testing"
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/auth"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(repo *MockClientRepository) (*AuthService, *auth.JWTService, *auth.InMemoryTokenBlacklist) {
	jwtSvc := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "closet-test",
		MaxRefreshCount:        3,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	return NewAuthService(repo, jwtSvc, blacklist, nil), jwtSvc, blacklist
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	return domainErr.Code
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	c := clientWithPassword(t, "correct-horse")

	t.Run("success", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc, jwtSvc, _ := newTestAuthService(repo)
		repo.On("FindByEmail", ctx, c.Email).Return(c, nil)
		repo.On("RecordLogin", ctx, c.ID, mock.AnythingOfType("time.Time")).Return(nil)

		result, err := svc.Login(ctx, LoginInput{Email: c.Email, Password: "correct-horse", IP: "10.0.0.1"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer", result.TokenType)
		assert.Equal(t, c.ID, result.Client.ID)
		assert.NotNil(t, c.LastLoginAt)

		claims, err := jwtSvc.ValidateAccessToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, c.ID.String(), claims.ClientID)
		assert.False(t, claims.IsAdmin)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("failing to stamp the login still logs in", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc, _, _ := newTestAuthService(repo)
		repo.On("FindByEmail", ctx, c.Email).Return(c, nil)
		repo.On("RecordLogin", ctx, c.ID, mock.AnythingOfType("time.Time")).Return(shared.ErrNotFound)

		result, err := svc.Login(ctx, LoginInput{Email: c.Email, Password: "correct-horse"})
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc, _, _ := newTestAuthService(repo)
		repo.On("FindByEmail", ctx, c.Email).Return(c, nil)

		_, err := svc.Login(ctx, LoginInput{Email: c.Email, Password: "wrong-password"})
		assert.Equal(t, "INVALID_CREDENTIALS", domainCode(t, err))
		repo.AssertNotCalled(t, "RecordLogin", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown email looks like a wrong password", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc, _, _ := newTestAuthService(repo)
		repo.On("FindByEmail", ctx, "nobody@example.com").Return(nil, shared.ErrNotFound)

		_, err := svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "whatever1"})
		assert.Equal(t, "INVALID_CREDENTIALS", domainCode(t, err))
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("picks up role changes and is single use", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc, jwtSvc, _ := newTestAuthService(repo)
		c := fakeClient(t, false, false)
		pair, err := jwtSvc.GenerateTokenPair(tokenInput(c))
		require.NoError(t, err)

		c.SetRoles(true, false)
		repo.On("FindByID", ctx, c.ID).Return(c, nil)

		result, err := svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: pair.RefreshToken})
		require.NoError(t, err)
		claims, err := jwtSvc.ValidateAccessToken(result.AccessToken)
		require.NoError(t, err)
		assert.True(t, claims.IsAdmin)

		_, err = svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: pair.RefreshToken})
		assert.Equal(t, "TOKEN_REVOKED", domainCode(t, err))
	})

	t.Run("garbage token", func(t *testing.T) {
		svc, _, _ := newTestAuthService(new(MockClientRepository))
		_, err := svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: "not-a-jwt"})
		assert.Equal(t, "TOKEN_INVALID", domainCode(t, err))
	})

	t.Run("access token is rejected", func(t *testing.T) {
		svc, jwtSvc, _ := newTestAuthService(new(MockClientRepository))
		pair, err := jwtSvc.GenerateTokenPair(tokenInput(fakeClient(t, false, false)))
		require.NoError(t, err)

		_, err = svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: pair.AccessToken})
		assert.Equal(t, "TOKEN_INVALID", domainCode(t, err))
	})

	t.Run("deleted client", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc, jwtSvc, _ := newTestAuthService(repo)
		c := fakeClient(t, false, false)
		pair, err := jwtSvc.GenerateTokenPair(tokenInput(c))
		require.NoError(t, err)
		repo.On("FindByID", ctx, c.ID).Return(nil, shared.ErrNotFound)

		_, err = svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: pair.RefreshToken})
		assert.Equal(t, "TOKEN_INVALID", domainCode(t, err))
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	svc, jwtSvc, blacklist := newTestAuthService(new(MockClientRepository))
	c := fakeClient(t, false, false)
	pair, err := jwtSvc.GenerateTokenPair(tokenInput(c))
	require.NoError(t, err)
	claims, err := jwtSvc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, LogoutInput{ClientID: c.ID, TokenJTI: claims.ID, TokenTTL: claims.GetRemainingTTL()}))

	revoked, err := blacklist.IsBlacklisted(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("revokes earlier tokens", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc, _, blacklist := newTestAuthService(repo)
		c := clientWithPassword(t, "old-password")
		repo.On("FindByID", ctx, c.ID).Return(c, nil)
		repo.On("Save", ctx, c).Return(nil)

		err := svc.ChangePassword(ctx, ChangePasswordInput{
			ClientID:    c.ID,
			OldPassword: "old-password",
			NewPassword: "new-password",
			TokenJTI:    "current-jti",
			TokenTTL:    time.Minute,
		})
		require.NoError(t, err)
		assert.True(t, c.VerifyPassword("new-password"))

		invalidated, err := blacklist.IsClientTokenInvalidated(ctx, c.ID.String(), time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.True(t, invalidated)
		revoked, err := blacklist.IsBlacklisted(ctx, "current-jti")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("wrong old password", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc, _, _ := newTestAuthService(repo)
		c := clientWithPassword(t, "old-password")
		repo.On("FindByID", ctx, c.ID).Return(c, nil)

		err := svc.ChangePassword(ctx, ChangePasswordInput{ClientID: c.ID, OldPassword: "nope-nope", NewPassword: "new-password"})
		assert.Equal(t, "INVALID_PASSWORD", domainCode(t, err))
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()
	repo := new(MockClientRepository)
	svc, _, _ := newTestAuthService(repo)
	c := fakeClient(t, true, false)
	repo.On("FindByID", ctx, c.ID).Return(c, nil)

	resp, err := svc.Me(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Email, resp.Email)
	assert.True(t, resp.IsAdmin)
}
