// Package shopping models a client's shopping list.
package shopping

import (
	"context"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a suggested purchase for a client
type Item struct {
	shared.BaseAggregateRoot
	ClientID  uuid.UUID
	Name      string
	Link      string
	ImageLink string
	Notes     string
	Price     *decimal.Decimal
	Purchased bool
}

// Details are the editable fields of a shopping item
type Details struct {
	Name      string
	Link      string
	ImageLink string
	Notes     string
	Price     *decimal.Decimal
}

// NewItem creates a shopping list entry
func NewItem(clientID uuid.UUID, d Details) (*Item, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client is required")
	}
	item := &Item{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
	}
	if err := item.apply(d); err != nil {
		return nil, err
	}
	return item, nil
}

// Update replaces the editable fields
func (i *Item) Update(d Details) error {
	if err := i.apply(d); err != nil {
		return err
	}
	i.Modified()
	return nil
}

// SetPurchased marks the item as bought or not
func (i *Item) SetPurchased(purchased bool) {
	if i.Purchased == purchased {
		return
	}
	i.Purchased = purchased
	i.Modified()
}

func (i *Item) apply(d Details) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Shopping item name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Shopping item name cannot exceed 200 characters")
	}
	if err := validateLink("link", d.Link); err != nil {
		return err
	}
	if err := validateLink("image link", d.ImageLink); err != nil {
		return err
	}
	if len(d.Notes) > 2000 {
		return shared.NewDomainError("INVALID_NOTES", "Notes cannot exceed 2000 characters")
	}
	if d.Price != nil && d.Price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	i.Name = name
	i.Link = strings.TrimSpace(d.Link)
	i.ImageLink = strings.TrimSpace(d.ImageLink)
	i.Notes = d.Notes
	if d.Price != nil {
		p := d.Price.Round(2)
		i.Price = &p
	} else {
		i.Price = nil
	}
	return nil
}

func validateLink(field, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if len(raw) > 2000 {
		return shared.NewDomainError("INVALID_LINK", "The "+field+" is too long")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return shared.NewDomainError("INVALID_LINK", "The "+field+" must be an http or https URL")
	}
	return nil
}

// Filter narrows shopping list queries
type Filter struct {
	shared.Filter
	Purchased *bool
}

// Repository defines persistence for shopping items
type Repository interface {
	// FindByID finds a shopping item by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)

	// FindByClient lists a client's shopping items
	FindByClient(ctx context.Context, clientID uuid.UUID, filter Filter) ([]Item, int64, error)

	// Create inserts a new shopping item
	Create(ctx context.Context, item *Item) error

	// Save writes an existing shopping item under optimistic locking
	Save(ctx context.Context, item *Item) error

	// Delete removes a shopping item
	Delete(ctx context.Context, id uuid.UUID) error
}
