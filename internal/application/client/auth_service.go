package client

import (
	"context"
	"errors"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/client"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthService handles login, token refresh and password changes
type AuthService struct {
	clientRepo client.Repository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	clientRepo client.Repository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		clientRepo: clientRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// Login authenticates a client by email and password
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	c, err := s.clientRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown email", zap.String("ip", input.IP))
			return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
		}
		return nil, err
	}
	if !c.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt",
			zap.String("client_id", c.ID.String()),
			zap.String("ip", input.IP))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	pair, err := s.jwtService.GenerateTokenPair(tokenInput(c))
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	if err := s.clientRepo.RecordLogin(ctx, c.ID, c.RecordLogin()); err != nil {
		// the login still succeeds
		s.logger.Error("Failed to record login", zap.Error(err))
	}

	s.logger.Info("Client logged in",
		zap.String("client_id", c.ID.String()),
		zap.Bool("is_admin", c.IsAdmin))

	return &LoginResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		Client:                ToClientResponse(c),
	}, nil
}

// RefreshToken exchanges a refresh token for a new pair carrying the client's current roles
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*RefreshTokenResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	if claims.ID != "" {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, mapTokenError(auth.ErrTokenBlacklisted)
		}
	}
	invalidated, err := s.blacklist.IsClientTokenInvalidated(ctx, claims.ClientID, claims.GetIssuedAtTime())
	if err != nil {
		return nil, err
	}
	if invalidated {
		return nil, mapTokenError(auth.ErrTokenBlacklisted)
	}

	clientID, err := claims.GetClientUUID()
	if err != nil {
		return nil, mapTokenError(auth.ErrInvalidClaims)
	}
	c, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("TOKEN_INVALID", "Client no longer exists")
		}
		return nil, err
	}

	pair, err := s.jwtService.RefreshTokenPair(claims, tokenInput(c))
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	// one use per refresh token
	if claims.ID != "" {
		if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
			s.logger.Error("Failed to revoke used refresh token", zap.Error(err))
		}
	}

	s.logger.Info("Token refreshed", zap.String("client_id", c.ID.String()))

	return &RefreshTokenResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}, nil
}

// Logout revokes the access token until it would have expired
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.TokenJTI != "" && input.TokenTTL > 0 {
		if err := s.blacklist.AddToBlacklist(ctx, input.TokenJTI, input.TokenTTL); err != nil {
			s.logger.Error("Failed to blacklist token", zap.Error(err))
			return err
		}
	}
	s.logger.Info("Client logged out", zap.String("client_id", input.ClientID.String()))
	return nil
}

// Me returns the authenticated client
func (s *AuthService) Me(ctx context.Context, clientID uuid.UUID) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	resp := ToClientResponse(c)
	return &resp, nil
}

// ChangePassword changes the caller's password and revokes every token issued before it
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	c, err := s.clientRepo.FindByID(ctx, input.ClientID)
	if err != nil {
		return err
	}
	if err := c.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}
	if err := s.clientRepo.Save(ctx, c); err != nil {
		return err
	}

	if err := s.blacklist.InvalidateClientTokens(ctx, c.ID.String(), s.jwtService.GetRefreshTokenExpiration()); err != nil {
		s.logger.Error("Failed to invalidate client tokens", zap.Error(err))
	}
	if input.TokenJTI != "" && input.TokenTTL > 0 {
		if err := s.blacklist.AddToBlacklist(ctx, input.TokenJTI, input.TokenTTL); err != nil {
			s.logger.Error("Failed to blacklist current token", zap.Error(err))
		}
	}

	s.logger.Info("Password changed", zap.String("client_id", c.ID.String()))
	return nil
}

func tokenInput(c *client.Client) auth.GenerateTokenInput {
	return auth.GenerateTokenInput{
		ClientID:     c.ID,
		Email:        c.Email,
		IsAdmin:      c.IsAdmin,
		IsSuperAdmin: c.IsSuperAdmin,
	}
}

// mapTokenError maps JWT errors to domain errors
func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return shared.NewDomainError("TOKEN_REVOKED", "Refresh token has been revoked")
	default:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
}
