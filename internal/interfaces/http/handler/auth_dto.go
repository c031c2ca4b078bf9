package handler

import (
	"time"

	appclient "github.com/ZThygesen/inspired-virtual-closet-sub001/internal/application/client"
)

// LoginRequest represents the login request body
// @Description Login request with email and password
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=200" example:"edie@example.com"`
	Password string `json:"password" binding:"required,min=1,max=72" example:"password123"`
}

// RefreshTokenRequest represents the refresh token request body.
// The token may instead come from the refresh cookie.
// @Description Refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// ChangePasswordRequest represents the change password request body
// @Description Change password request
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required" example:"oldpassword123"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72" example:"newpassword123"`
}

// TokenResponse represents the token information in responses
// @Description JWT token pair
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type" example:"Bearer"`
}

// LoginResponse represents the login response
// @Description Login response with tokens and the signed-in client
type LoginResponse struct {
	Token  TokenResponse            `json:"token"`
	Client appclient.ClientResponse `json:"client"`
}

// RefreshTokenResponse represents the token refresh response
// @Description Refreshed token pair
type RefreshTokenResponse struct {
	Token TokenResponse `json:"token"`
}
