package models

import (
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/client"
	"github.com/google/uuid"
)

// ClientModel is the persistence model for the Client aggregate.
type ClientModel struct {
	AggregateModel
	FirstName    string `gorm:"type:varchar(100);not null"`
	LastName     string `gorm:"type:varchar(100);not null"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex:idx_clients_email"`
	Phone        string `gorm:"type:varchar(30)"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	IsAdmin      bool   `gorm:"not null;default:false"`
	IsSuperAdmin bool   `gorm:"not null;default:false"`
	Credits      int    `gorm:"not null;default:0"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client.
func (m *ClientModel) ToDomain() *client.Client {
	return &client.Client{
		BaseAggregateRoot: m.ToAggregateRoot(),
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		Email:             m.Email,
		Phone:             m.Phone,
		PasswordHash:      m.PasswordHash,
		IsAdmin:           m.IsAdmin,
		IsSuperAdmin:      m.IsSuperAdmin,
		Credits:           m.Credits,
		LastLoginAt:       m.LastLoginAt,
	}
}

// FromDomain populates the persistence model from a domain Client.
func (m *ClientModel) FromDomain(c *client.Client) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.FirstName = c.FirstName
	m.LastName = c.LastName
	m.Email = c.Email
	m.Phone = c.Phone
	m.PasswordHash = c.PasswordHash
	m.IsAdmin = c.IsAdmin
	m.IsSuperAdmin = c.IsSuperAdmin
	m.Credits = c.Credits
	m.LastLoginAt = c.LastLoginAt
}

// ClientModelFromDomain creates a new persistence model from a domain Client.
func ClientModelFromDomain(c *client.Client) *ClientModel {
	m := &ClientModel{}
	m.FromDomain(c)
	return m
}

// StyleProfileModel stores one style profile per client.
type StyleProfileModel struct {
	ClientID  uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Summary   string            `gorm:"type:text"`
	Styles    []string          `gorm:"type:text;serializer:json"`
	Colors    []string          `gorm:"type:text;serializer:json"`
	Sizes     map[string]string `gorm:"type:text;serializer:json"`
	Notes     string            `gorm:"type:text"`
	UpdatedAt time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StyleProfileModel) TableName() string {
	return "style_profiles"
}

// ToDomain converts the persistence model to a domain StyleProfile.
func (m *StyleProfileModel) ToDomain() *client.StyleProfile {
	sizes := m.Sizes
	if sizes == nil {
		sizes = map[string]string{}
	}
	return &client.StyleProfile{
		ClientID:  m.ClientID,
		Summary:   m.Summary,
		Styles:    stringList(m.Styles),
		Colors:    stringList(m.Colors),
		Sizes:     sizes,
		Notes:     m.Notes,
		UpdatedAt: m.UpdatedAt,
	}
}

// StyleProfileModelFromDomain creates a persistence model from a domain StyleProfile.
func StyleProfileModelFromDomain(p *client.StyleProfile) *StyleProfileModel {
	sizes := p.Sizes
	if sizes == nil {
		sizes = map[string]string{}
	}
	return &StyleProfileModel{
		ClientID:  p.ClientID,
		Summary:   p.Summary,
		Styles:    stringList(p.Styles),
		Colors:    stringList(p.Colors),
		Sizes:     sizes,
		Notes:     p.Notes,
		UpdatedAt: p.UpdatedAt,
	}
}
