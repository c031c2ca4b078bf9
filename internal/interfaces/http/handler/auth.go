package handler

import (
	"net/http"
	"strings"
	"time"

	appclient "github.com/ZThygesen/inspired-virtual-closet-sub001/internal/application/client"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/config"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService *appclient.AuthService
	cookies     config.CookieConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *appclient.AuthService, cookies config.CookieConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
	}
}

// Login godoc
// @Summary      Client login
// @Description  Authenticate with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} dto.Response{data=LoginResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), appclient.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setTokenCookies(c, result.AccessToken, result.AccessTokenExpiresAt, result.RefreshToken, result.RefreshTokenExpiresAt)

	h.Success(c, LoginResponse{
		Token: TokenResponse{
			AccessToken:           result.AccessToken,
			RefreshToken:          result.RefreshToken,
			AccessTokenExpiresAt:  result.AccessTokenExpiresAt,
			RefreshTokenExpiresAt: result.RefreshTokenExpiresAt,
			TokenType:             result.TokenType,
		},
		Client: result.Client,
	})
}

// RefreshToken godoc
// @Summary      Refresh access token
// @Description  Exchange a refresh token (body or cookie) for a new token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshTokenRequest false "Refresh token"
// @Success      200 {object} dto.Response{data=RefreshTokenResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if c.Request.ContentLength != 0 {
		if !h.bindJSON(c, &req) {
			return
		}
	}
	token := strings.TrimSpace(req.RefreshToken)
	if token == "" && h.cookies.Enabled && h.cookies.RefreshTokenName != "" {
		token, _ = c.Cookie(h.cookies.RefreshTokenName)
	}
	if token == "" {
		h.BadRequest(c, "Refresh token is required")
		return
	}

	result, err := h.authService.RefreshToken(c.Request.Context(), appclient.RefreshTokenInput{
		RefreshToken: token,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setTokenCookies(c, result.AccessToken, result.AccessTokenExpiresAt, result.RefreshToken, result.RefreshTokenExpiresAt)

	h.Success(c, RefreshTokenResponse{
		Token: TokenResponse{
			AccessToken:           result.AccessToken,
			RefreshToken:          result.RefreshToken,
			AccessTokenExpiresAt:  result.AccessTokenExpiresAt,
			RefreshTokenExpiresAt: result.RefreshTokenExpiresAt,
			TokenType:             result.TokenType,
		},
	})
}

// Logout godoc
// @Summary      Client logout
// @Description  Revoke the current access token
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=MessageData}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	clientID, err := claims.GetClientUUID()
	if err != nil {
		h.Unauthorized(c, "Invalid client ID in token")
		return
	}

	err = h.authService.Logout(c.Request.Context(), appclient.LogoutInput{
		ClientID: clientID,
		TokenJTI: claims.ID,
		TokenTTL: claims.GetRemainingTTL(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.clearTokenCookies(c)
	h.Success(c, MessageData{Message: "Logged out successfully"})
}

// GetCurrentClient godoc
// @Summary      Get current client
// @Description  Get the authenticated client's account
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=appclient.ClientResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) GetCurrentClient(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	result, err := h.authService.Me(c.Request.Context(), actor.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ChangePassword godoc
// @Summary      Change password
// @Description  Change the current client's password. Other sessions are signed out.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ChangePasswordRequest true "Password change request"
// @Success      200 {object} dto.Response{data=MessageData}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	clientID, err := claims.GetClientUUID()
	if err != nil {
		h.Unauthorized(c, "Invalid client ID in token")
		return
	}

	var req ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	err = h.authService.ChangePassword(c.Request.Context(), appclient.ChangePasswordInput{
		ClientID:    clientID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
		TokenJTI:    claims.ID,
		TokenTTL:    claims.GetRemainingTTL(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.clearTokenCookies(c)
	h.Success(c, MessageData{Message: "Password changed successfully"})
}

func (h *AuthHandler) setTokenCookies(c *gin.Context, access string, accessExp time.Time, refresh string, refreshExp time.Time) {
	if !h.cookies.Enabled {
		return
	}
	c.SetSameSite(sameSiteMode(h.cookies.SameSite))
	c.SetCookie(h.cookies.AccessTokenName, access, maxAge(accessExp), h.cookiePath(), h.cookies.Domain, h.cookies.Secure, true)
	c.SetCookie(h.cookies.RefreshTokenName, refresh, maxAge(refreshExp), h.cookiePath(), h.cookies.Domain, h.cookies.Secure, true)
}

func (h *AuthHandler) clearTokenCookies(c *gin.Context) {
	if !h.cookies.Enabled {
		return
	}
	c.SetSameSite(sameSiteMode(h.cookies.SameSite))
	c.SetCookie(h.cookies.AccessTokenName, "", -1, h.cookiePath(), h.cookies.Domain, h.cookies.Secure, true)
	c.SetCookie(h.cookies.RefreshTokenName, "", -1, h.cookiePath(), h.cookies.Domain, h.cookies.Secure, true)
}

func (h *AuthHandler) cookiePath() string {
	if h.cookies.Path == "" {
		return "/"
	}
	return h.cookies.Path
}

func maxAge(expiresAt time.Time) int {
	secs := int(time.Until(expiresAt).Seconds())
	if secs < 1 {
		return 1
	}
	return secs
}

func sameSiteMode(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
