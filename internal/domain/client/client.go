// Package client holds the client aggregate: the people whose closets are
// managed, including the stylists who manage them.
package client

import (
	"regexp"
	"strings"
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is a var so tests can lower it
var bcryptCost = 12

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Client represents a closet owner or a stylist.
// Admins manage closets; super admins additionally manage admins and credits.
type Client struct {
	shared.BaseAggregateRoot
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	PasswordHash string
	IsAdmin      bool
	IsSuperAdmin bool
	Credits      int
	LastLoginAt  *time.Time
}

// NewClient creates a new non-admin client
func NewClient(firstName, lastName, email, password string) (*Client, error) {
	if err := validateName("first name", firstName); err != nil {
		return nil, err
	}
	if err := validateName("last name", lastName); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FirstName:         strings.TrimSpace(firstName),
		LastName:          strings.TrimSpace(lastName),
		Email:             normalizeEmail(email),
		PasswordHash:      hash,
	}, nil
}

// FullName returns "First Last"
func (c *Client) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Rename updates the client's names
func (c *Client) Rename(firstName, lastName string) error {
	if err := validateName("first name", firstName); err != nil {
		return err
	}
	if err := validateName("last name", lastName); err != nil {
		return err
	}
	c.FirstName = strings.TrimSpace(firstName)
	c.LastName = strings.TrimSpace(lastName)
	c.changed()
	return nil
}

// SetEmail sets the client's email
func (c *Client) SetEmail(email string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	c.Email = normalizeEmail(email)
	c.changed()
	return nil
}

// SetPhone sets the client's phone number
func (c *Client) SetPhone(phone string) error {
	if len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	c.Phone = strings.TrimSpace(phone)
	c.changed()
	return nil
}

// SetRoles sets the admin flags. A super admin is always an admin.
func (c *Client) SetRoles(isAdmin, isSuperAdmin bool) {
	c.IsSuperAdmin = isSuperAdmin
	c.IsAdmin = isAdmin || isSuperAdmin
	c.changed()
}

// ChangePassword changes the password after verifying the old one
func (c *Client) ChangePassword(oldPassword, newPassword string) error {
	if !c.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	return c.SetPassword(newPassword)
}

// SetPassword replaces the password without checking the old one
func (c *Client) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	c.PasswordHash = hash
	c.changed()
	return nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (c *Client) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
}

// RecordLogin stamps the last login time and returns it. The stamp is
// stored on its own with Repository.RecordLogin.
func (c *Client) RecordLogin() time.Time {
	now := time.Now()
	c.LastLoginAt = &now
	return now
}

// HasUnlimitedCredits reports whether credit checks are skipped
func (c *Client) HasUnlimitedCredits() bool {
	return c.IsSuperAdmin
}

// AddCredits grants credits
func (c *Client) AddCredits(amount int) error {
	if amount <= 0 {
		return shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}
	c.Credits += amount
	c.changed()
	return nil
}

// ConsumeCredits spends credits, failing when the balance is too low
func (c *Client) ConsumeCredits(amount int) error {
	if amount <= 0 {
		return shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}
	if c.HasUnlimitedCredits() {
		return nil
	}
	if c.Credits < amount {
		return shared.ErrInsufficientCredits
	}
	c.Credits -= amount
	c.changed()
	return nil
}

// CanAccessCloset reports whether c may read the closet owned by owner
func (c *Client) CanAccessCloset(owner *Client) bool {
	return c.IsAdmin || c.ID == owner.ID
}

func (c *Client) changed() {
	c.Modified()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateName(field, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "The "+field+" cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "The "+field+" cannot exceed 100 characters")
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
