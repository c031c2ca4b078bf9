// Package outfit models outfits composed on the styling canvas.
package outfit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxStageBytes caps the serialized canvas scene
const MaxStageBytes = 2 << 20

// Outfit is a canvas composition of closet items
type Outfit struct {
	shared.BaseAggregateRoot
	ClientID   uuid.UUID
	Name       string
	Stage      json.RawMessage
	ItemIDs    []uuid.UUID
	PreviewKey string
}

// NewOutfitID allocates an outfit ID ahead of time so the preview key can embed it
func NewOutfitID() uuid.UUID {
	return uuid.New()
}

// NewOutfit creates an outfit
func NewOutfit(id, clientID uuid.UUID, name string, stage json.RawMessage, itemIDs []uuid.UUID) (*Outfit, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client is required")
	}
	o := &Outfit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
	}
	if id != uuid.Nil {
		o.ID = id
	}
	if err := o.apply(name, stage, itemIDs); err != nil {
		return nil, err
	}
	return o, nil
}

// Update replaces the outfit contents
func (o *Outfit) Update(name string, stage json.RawMessage, itemIDs []uuid.UUID) error {
	if err := o.apply(name, stage, itemIDs); err != nil {
		return err
	}
	o.Modified()
	return nil
}

// SetPreview records a new preview key and returns the one it replaces
func (o *Outfit) SetPreview(key string) string {
	old := o.PreviewKey
	o.PreviewKey = key
	o.Modified()
	return old
}

// RemoveItem drops an item reference, reporting whether it was present
func (o *Outfit) RemoveItem(itemID uuid.UUID) bool {
	for idx, id := range o.ItemIDs {
		if id == itemID {
			o.ItemIDs = append(o.ItemIDs[:idx], o.ItemIDs[idx+1:]...)
			o.Modified()
			return true
		}
	}
	return false
}

// PreviewKeyFor returns a fresh storage key for an outfit preview
func PreviewKeyFor(clientID, outfitID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("clients/%s/outfits/%s/preview-%d.png", clientID, outfitID, at.Unix())
}

func (o *Outfit) apply(name string, stage json.RawMessage, itemIDs []uuid.UUID) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Outfit name cannot exceed 100 characters")
	}
	if len(stage) == 0 {
		return shared.NewDomainError("INVALID_STAGE", "Outfit canvas is required")
	}
	if len(stage) > MaxStageBytes {
		return shared.NewDomainError("INVALID_STAGE", "Outfit canvas is too large")
	}
	if !json.Valid(stage) {
		return shared.NewDomainError("INVALID_STAGE", "Outfit canvas must be valid JSON")
	}

	seen := make(map[uuid.UUID]struct{}, len(itemIDs))
	ids := make([]uuid.UUID, 0, len(itemIDs))
	for _, id := range itemIDs {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	o.Name = strings.TrimSpace(name)
	o.Stage = stage
	o.ItemIDs = ids
	return nil
}

// Repository defines persistence for outfits
type Repository interface {
	// FindByID finds an outfit by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Outfit, error)

	// FindByClient lists a client's outfits, newest first
	FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]Outfit, int64, error)

	// FindAllByClient returns every outfit of a client, unpaginated
	FindAllByClient(ctx context.Context, clientID uuid.UUID) ([]Outfit, error)

	// Create inserts a new outfit
	Create(ctx context.Context, outfit *Outfit) error

	// Save writes an existing outfit under optimistic locking.
	// It returns shared.ErrConcurrencyConflict when the row changed since it was
	// loaded and shared.ErrNotFound when it is gone.
	Save(ctx context.Context, outfit *Outfit) error

	// Delete removes an outfit
	Delete(ctx context.Context, id uuid.UUID) error

	// KeyExists reports whether any outfit references the preview key
	KeyExists(ctx context.Context, key string) (bool, error)
}
