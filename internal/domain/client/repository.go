package client

import (
	"context"
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines persistence for clients
type Repository interface {
	// FindByID finds a client by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)

	// FindByEmail finds a client by email (case-insensitive)
	FindByEmail(ctx context.Context, email string) (*Client, error)

	// FindAll lists clients; Filter.Search matches names and email
	FindAll(ctx context.Context, filter shared.Filter) ([]Client, int64, error)

	// ExistsByEmail reports whether another client uses the email
	ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error)

	// Create inserts a new client
	Create(ctx context.Context, c *Client) error

	// Save writes an existing client if it is still at c.Version, then
	// advances c.Version. Credits and LastLoginAt are not written. It returns
	// shared.ErrConcurrencyConflict when the row changed since it was loaded
	// and shared.ErrNotFound when it is gone.
	Save(ctx context.Context, c *Client) error

	// RecordLogin stores the last login time
	RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error

	// Delete removes a client and all of its closet data
	Delete(ctx context.Context, id uuid.UUID) error

	// ConsumeCredits atomically decrements credits when the balance allows it.
	// It returns shared.ErrInsufficientCredits when it does not.
	ConsumeCredits(ctx context.Context, id uuid.UUID, amount int) error

	// AddCredits atomically increments credits
	AddCredits(ctx context.Context, id uuid.UUID, amount int) error
}

// StyleProfileRepository persists style profiles
type StyleProfileRepository interface {
	// FindByClientID returns shared.ErrNotFound when the client has no profile
	FindByClientID(ctx context.Context, clientID uuid.UUID) (*StyleProfile, error)

	// Save inserts or replaces the profile
	Save(ctx context.Context, profile *StyleProfile) error
}
