package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/auth"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey   = "jwt_claims"
	JWTClientIDKey = "jwt_client_id"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// TokenBlacklist is optional for checking revoked tokens
	TokenBlacklist auth.TokenBlacklist
	// CookieName, when set, is read if no Authorization header is present
	CookieName string
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication
	SkipPathPrefixes []string
	// Optional callback if token is invalid (default: return 401)
	OnError func(c *gin.Context, err error)
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultJWTConfig returns default JWT middleware configuration
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/api/v1/health",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
		SkipPathPrefixes: []string{
			"/swagger",
		},
	}
}

// JWTAuthMiddleware creates JWT authentication middleware
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(jwtService))
}

// JWTAuthMiddlewareWithConfig creates JWT authentication middleware with custom config
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		tokenString, err := extractToken(c, cfg.CookieName)
		if err != nil {
			handleAuthError(c, cfg, auth.ErrInvalidToken, err.Error())
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "Token validation failed")
			return
		}

		if cfg.TokenBlacklist != nil {
			ctx := c.Request.Context()

			// Individual logout
			if claims.ID != "" {
				blacklisted, err := cfg.TokenBlacklist.IsBlacklisted(ctx, claims.ID)
				if err != nil {
					// fail open
					if cfg.Logger != nil {
						cfg.Logger.Error("Failed to check token blacklist",
							zap.String("jti", claims.ID),
							zap.Error(err))
					}
				} else if blacklisted {
					handleAuthError(c, cfg, auth.ErrTokenBlacklisted, "Token has been revoked")
					return
				}
			}

			// Password change or account deletion
			invalidated, err := cfg.TokenBlacklist.IsClientTokenInvalidated(ctx, claims.ClientID, claims.GetIssuedAtTime())
			if err != nil {
				if cfg.Logger != nil {
					cfg.Logger.Error("Failed to check client token invalidation",
						zap.String("client_id", claims.ClientID),
						zap.Error(err))
				}
			} else if invalidated {
				handleAuthError(c, cfg, auth.ErrTokenBlacklisted, "Client session has been invalidated")
				return
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTClientIDKey, claims.ClientID)

		c.Request = c.Request.WithContext(logger.WithClientID(c.Request.Context(), claims.ClientID))

		if cfg.Logger != nil {
			cfg.Logger.Debug("JWT authentication successful",
				zap.String("client_id", claims.ClientID),
				zap.Bool("admin", claims.IsAdmin))
		}

		c.Next()
	}
}

func extractToken(c *gin.Context, cookieName string) (string, error) {
	if authHeader := c.GetHeader(AuthHeaderKey); authHeader != "" {
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			return "", errors.New("invalid authorization header format")
		}
		token := strings.TrimPrefix(authHeader, BearerPrefix)
		if token == "" {
			return "", errors.New("missing token")
		}
		return token, nil
	}
	if cookieName != "" {
		if token, err := c.Cookie(cookieName); err == nil && token != "" {
			return token, nil
		}
	}
	return "", errors.New("missing authorization header")
}

// handleAuthError handles authentication errors
func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error, message string) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("JWT authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	errorCode := "ERR_UNAUTHORIZED"
	errorMessage := "Authentication required"

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		errorCode = "ERR_TOKEN_EXPIRED"
		errorMessage = "Token has expired"
	case errors.Is(err, auth.ErrInvalidTokenType):
		errorCode = "ERR_TOKEN_INVALID"
		errorMessage = "Invalid token type"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		errorCode = "ERR_TOKEN_INVALID"
		errorMessage = "Token is not yet valid"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		errorCode = "ERR_TOKEN_REVOKED"
		errorMessage = "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidToken):
		errorCode = "ERR_TOKEN_INVALID"
		errorMessage = "Invalid token"
	}

	abortWithError(c, http.StatusUnauthorized, errorCode, errorMessage)
}

// RequireAdmin rejects callers without the admin role
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortWithError(c, http.StatusUnauthorized, "ERR_UNAUTHORIZED", "Authentication required")
			return
		}
		if !claims.IsAdmin && !claims.IsSuperAdmin {
			abortWithError(c, http.StatusForbidden, "ERR_FORBIDDEN", "Admin access required")
			return
		}
		c.Next()
	}
}

// RequireSuperAdmin rejects callers without the super admin role
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortWithError(c, http.StatusUnauthorized, "ERR_UNAUTHORIZED", "Authentication required")
			return
		}
		if !claims.IsSuperAdmin {
			abortWithError(c, http.StatusForbidden, "ERR_FORBIDDEN", "Super admin access required")
			return
		}
		c.Next()
	}
}

// RequireClientAccess allows admins, or the client whose id is in the
// given path parameter.
func RequireClientAccess(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortWithError(c, http.StatusUnauthorized, "ERR_UNAUTHORIZED", "Authentication required")
			return
		}
		if claims.IsAdmin || claims.IsSuperAdmin || claims.ClientID == c.Param(param) {
			c.Next()
			return
		}
		abortWithError(c, http.StatusForbidden, "ERR_FORBIDDEN", "Access to this client is forbidden")
	}
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":       code,
			"message":    message,
			"request_id": GetRequestID(c),
		},
	})
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTClientID retrieves the client ID from JWT claims in context
func GetJWTClientID(c *gin.Context) string {
	if clientID, exists := c.Get(JWTClientIDKey); exists {
		if id, ok := clientID.(string); ok {
			return id
		}
	}
	return ""
}
