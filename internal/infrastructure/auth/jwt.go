// Package auth issues and verifies the JWTs that carry a client's identity and roles.
package auth

import (
	"errors"
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distinguishes access from refresh tokens inside the claims.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidTokenType   = errors.New("invalid token type")
	ErrInvalidClaims      = errors.New("invalid token claims")
	ErrTokenNotYetValid   = errors.New("token is not yet valid")
	ErrMissingClientID    = errors.New("missing client_id in claims")
	ErrMaxRefreshExceeded = errors.New("maximum refresh count exceeded")
	ErrTokenBlacklisted   = errors.New("token has been revoked")
)

// clockSkew tolerated on exp, nbf and iat.
const clockSkew = 5 * time.Second

// Claims is the closet's token payload. Refresh tokens carry identity only;
// roles are re-read from the client store when they are exchanged.
type Claims struct {
	jwt.RegisteredClaims
	ClientID     string    `json:"client_id"`
	Email        string    `json:"email,omitempty"`
	IsAdmin      bool      `json:"is_admin,omitempty"`
	IsSuperAdmin bool      `json:"is_super_admin,omitempty"`
	TokenType    TokenType `json:"token_type"`
	RefreshCount int       `json:"refresh_count,omitempty"`
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// GenerateTokenInput is the identity and role set a token pair is minted for.
type GenerateTokenInput struct {
	ClientID     uuid.UUID
	Email        string
	IsAdmin      bool
	IsSuperAdmin bool
}

type keyring struct {
	kind   TokenType
	secret []byte
	ttl    time.Duration
}

// JWTService signs and verifies HS256 tokens. Access and refresh tokens use
// separate secrets unless no refresh secret is configured.
type JWTService struct {
	access     keyring
	refresh    keyring
	issuer     string
	maxRefresh int
	parser     *jwt.Parser
	now        func() time.Time
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	refreshSecret := cfg.RefreshSecret
	if refreshSecret == "" {
		refreshSecret = cfg.Secret
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(clockSkew),
		jwt.WithIssuedAt(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer), jwt.WithAudience(cfg.Issuer))
	}

	return &JWTService{
		access:     keyring{kind: TokenTypeAccess, secret: []byte(cfg.Secret), ttl: cfg.AccessTokenExpiration},
		refresh:    keyring{kind: TokenTypeRefresh, secret: []byte(refreshSecret), ttl: cfg.RefreshTokenExpiration},
		issuer:     cfg.Issuer,
		maxRefresh: cfg.MaxRefreshCount,
		parser:     jwt.NewParser(opts...),
		now:        time.Now,
	}
}

// GenerateTokenPair mints a fresh pair at login.
func (s *JWTService) GenerateTokenPair(input GenerateTokenInput) (*TokenPair, error) {
	return s.mint(input, 0)
}

// RefreshTokenPair exchanges a verified refresh token for a new pair. current
// holds the client's roles as stored now, so a demotion takes effect on the
// next refresh.
func (s *JWTService) RefreshTokenPair(claims *Claims, current GenerateTokenInput) (*TokenPair, error) {
	switch {
	case claims == nil || claims.TokenType != TokenTypeRefresh:
		return nil, ErrInvalidTokenType
	case s.maxRefresh > 0 && claims.RefreshCount >= s.maxRefresh:
		return nil, ErrMaxRefreshExceeded
	case claims.ClientID != current.ClientID.String():
		return nil, ErrInvalidClaims
	}
	return s.mint(current, claims.RefreshCount+1)
}

func (s *JWTService) mint(in GenerateTokenInput, refreshCount int) (*TokenPair, error) {
	now := s.now()
	id := in.ClientID.String()

	access, err := s.sign(s.access, now, &Claims{
		ClientID:     id,
		Email:        in.Email,
		IsAdmin:      in.IsAdmin || in.IsSuperAdmin,
		IsSuperAdmin: in.IsSuperAdmin,
	})
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(s.refresh, now, &Claims{
		ClientID:     id,
		RefreshCount: refreshCount,
	})
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:           access,
		RefreshToken:          refresh,
		AccessTokenExpiresAt:  now.Add(s.access.ttl),
		RefreshTokenExpiresAt: now.Add(s.refresh.ttl),
		TokenType:             "Bearer",
	}, nil
}

func (s *JWTService) sign(k keyring, now time.Time, c *Claims) (string, error) {
	c.TokenType = k.kind
	c.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.issuer,
		Subject:   c.ClientID,
		ExpiresAt: jwt.NewNumericDate(now.Add(k.ttl)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	if s.issuer != "" {
		c.Audience = jwt.ClaimStrings{s.issuer}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(k.secret)
}

// ValidateAccessToken verifies an access token and returns its claims.
func (s *JWTService) ValidateAccessToken(token string) (*Claims, error) {
	return s.verify(s.access, token)
}

// ValidateRefreshToken verifies a refresh token and returns its claims.
func (s *JWTService) ValidateRefreshToken(token string) (*Claims, error) {
	return s.verify(s.refresh, token)
}

func (s *JWTService) verify(k keyring, raw string) (*Claims, error) {
	claims := &Claims{}
	if _, err := s.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return k.secret, nil
	}); err != nil {
		return nil, translateParseError(err)
	}

	if claims.TokenType != k.kind {
		return nil, ErrInvalidTokenType
	}
	if claims.ClientID == "" {
		return nil, ErrMissingClientID
	}
	if _, err := uuid.Parse(claims.ClientID); err != nil || claims.Subject != claims.ClientID {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

func translateParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return ErrTokenNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrInvalidClaims
	}
	return ErrInvalidToken
}

// GetClientUUID parses the client id carried by the token.
func (c *Claims) GetClientUUID() (uuid.UUID, error) {
	return uuid.Parse(c.ClientID)
}

// GetIssuedAtTime returns iat, or the zero time when absent.
func (c *Claims) GetIssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// GetRemainingTTL is how long the token stays valid, never negative. The
// blacklist keeps revoked ids for exactly this long.
func (c *Claims) GetRemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(time.Until(c.ExpiresAt.Time), 0)
}

func (s *JWTService) GetAccessTokenExpiration() time.Duration  { return s.access.ttl }
func (s *JWTService) GetRefreshTokenExpiration() time.Duration { return s.refresh.ttl }
