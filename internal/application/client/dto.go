package client

import (
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/client"
	"github.com/google/uuid"
)

// Actor is the authenticated caller of an operation
type Actor struct {
	ID           uuid.UUID
	IsAdmin      bool
	IsSuperAdmin bool
}

// CreateClientRequest represents a request to create a client
type CreateClientRequest struct {
	FirstName    string `json:"first_name" binding:"required,notblank,max=100"`
	LastName     string `json:"last_name" binding:"required,notblank,max=100"`
	Email        string `json:"email" binding:"required,email,max=200"`
	Password     string `json:"password" binding:"required,min=8,max=72"`
	Phone        string `json:"phone" binding:"omitempty,max=50"`
	IsAdmin      bool   `json:"is_admin"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	Credits      int    `json:"credits" binding:"omitempty,min=0"`
}

// UpdateClientRequest represents a request to update a client.
// Nil role flags leave the roles unchanged.
type UpdateClientRequest struct {
	FirstName    string `json:"first_name" binding:"required,notblank,max=100"`
	LastName     string `json:"last_name" binding:"required,notblank,max=100"`
	Email        string `json:"email" binding:"required,email,max=200"`
	Phone        string `json:"phone" binding:"omitempty,max=50"`
	IsAdmin      *bool  `json:"is_admin"`
	IsSuperAdmin *bool  `json:"is_super_admin"`
}

// AddCreditsRequest grants credits to a client
type AddCreditsRequest struct {
	Amount int `json:"amount" binding:"required,gt=0,max=100000"`
}

// ClientListFilter represents query parameters for listing clients
type ClientListFilter struct {
	Search   string `form:"search" binding:"omitempty,max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=created_at updated_at first_name last_name email credits"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID           uuid.UUID  `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	FullName     string     `json:"full_name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	IsAdmin      bool       `json:"is_admin"`
	IsSuperAdmin bool       `json:"is_super_admin"`
	Credits      int        `json:"credits"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Version      int        `json:"version"`
}

// ToClientResponse converts a domain client to a response
func ToClientResponse(c *client.Client) ClientResponse {
	return ClientResponse{
		ID:           c.ID,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		FullName:     c.FullName(),
		Email:        c.Email,
		Phone:        c.Phone,
		IsAdmin:      c.IsAdmin,
		IsSuperAdmin: c.IsSuperAdmin,
		Credits:      c.Credits,
		LastLoginAt:  c.LastLoginAt,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		Version:      c.Version,
	}
}

// DeleteClientResponse reports what a client delete removed
type DeleteClientResponse struct {
	DeletedItems   int `json:"deleted_items"`
	DeletedOutfits int `json:"deleted_outfits"`
}

// StyleProfileRequest replaces a client's style profile
type StyleProfileRequest struct {
	Summary string            `json:"summary" binding:"max=2000"`
	Styles  []string          `json:"styles" binding:"max=50,dive,max=100"`
	Colors  []string          `json:"colors" binding:"max=50,dive,hexcolor"`
	Sizes   map[string]string `json:"sizes" binding:"max=50"`
	Notes   string            `json:"notes" binding:"max=5000"`
}

// StyleProfileResponse represents a style profile in API responses
type StyleProfileResponse struct {
	ClientID  uuid.UUID         `json:"client_id"`
	Summary   string            `json:"summary"`
	Styles    []string          `json:"styles"`
	Colors    []string          `json:"colors"`
	Sizes     map[string]string `json:"sizes"`
	Notes     string            `json:"notes"`
	UpdatedAt *time.Time        `json:"updated_at,omitempty"`
}

// ToStyleProfileResponse converts a domain profile to a response
func ToStyleProfileResponse(p *client.StyleProfile) StyleProfileResponse {
	resp := StyleProfileResponse{
		ClientID: p.ClientID,
		Summary:  p.Summary,
		Styles:   p.Styles,
		Colors:   p.Colors,
		Sizes:    p.Sizes,
		Notes:    p.Notes,
	}
	if resp.Styles == nil {
		resp.Styles = []string{}
	}
	if resp.Colors == nil {
		resp.Colors = []string{}
	}
	if resp.Sizes == nil {
		resp.Sizes = map[string]string{}
	}
	if !p.UpdatedAt.IsZero() {
		at := p.UpdatedAt
		resp.UpdatedAt = &at
	}
	return resp
}

// LoginInput contains the input for client login
type LoginInput struct {
	Email    string
	Password string
	IP       string
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	Client                ClientResponse
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// LogoutInput contains the input for logout
type LogoutInput struct {
	ClientID uuid.UUID
	TokenJTI string
	TokenTTL time.Duration // remaining lifetime of the access token
}

// ChangePasswordInput contains the input for a password change
type ChangePasswordInput struct {
	ClientID    uuid.UUID
	OldPassword string
	NewPassword string
	TokenJTI    string
	TokenTTL    time.Duration
}
