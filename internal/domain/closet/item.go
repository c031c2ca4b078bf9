package closet

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxTagsPerItem caps the tag list of a single item
const MaxTagsPerItem = 30

// Item is one clothing image in a client's closet
type Item struct {
	shared.BaseAggregateRoot
	ClientID          uuid.UUID
	CategoryID        uuid.UUID
	Name              string
	FullKey           string
	SmallKey          string
	ContentType       string
	Size              int64
	Width             int
	Height            int
	TagIDs            []uuid.UUID
	BackgroundRemoved bool
}

// ImageInfo describes the stored images of an item
type ImageInfo struct {
	FullKey     string
	SmallKey    string
	ContentType string
	Size        int64
	Width       int
	Height      int
}

// NewItemID allocates an item ID ahead of time so storage keys can embed it
func NewItemID() uuid.UUID {
	return uuid.New()
}

// NewItem creates a closet item for a client
func NewItem(id, clientID, categoryID uuid.UUID, name string, img ImageInfo) (*Item, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client is required")
	}
	if categoryID == uuid.Nil {
		categoryID = OtherCategoryID
	}
	if err := validateItemName(name); err != nil {
		return nil, err
	}
	if img.FullKey == "" || img.SmallKey == "" {
		return nil, shared.NewDomainError("INVALID_IMAGE", "Both full and small image keys are required")
	}
	if img.Size <= 0 {
		return nil, shared.NewDomainError("INVALID_IMAGE", "Image size must be positive")
	}

	base := shared.NewBaseAggregateRoot()
	if id != uuid.Nil {
		base.ID = id
	}
	return &Item{
		BaseAggregateRoot: base,
		ClientID:          clientID,
		CategoryID:        categoryID,
		Name:              strings.TrimSpace(name),
		FullKey:           img.FullKey,
		SmallKey:          img.SmallKey,
		ContentType:       img.ContentType,
		Size:              img.Size,
		Width:             img.Width,
		Height:            img.Height,
		TagIDs:            []uuid.UUID{},
	}, nil
}

// ItemFullKey returns the storage key of the full-size image
func ItemFullKey(clientID, itemID uuid.UUID, ext string) string {
	return fmt.Sprintf("clients/%s/items/%s/full%s", clientID, itemID, ext)
}

// ItemSmallKey returns the storage key of the thumbnail
func ItemSmallKey(clientID, itemID uuid.UUID) string {
	return fmt.Sprintf("clients/%s/items/%s/small.jpg", clientID, itemID)
}

// Rename sets the item's optional name
func (i *Item) Rename(name string) error {
	if err := validateItemName(name); err != nil {
		return err
	}
	i.Name = strings.TrimSpace(name)
	i.changed()
	return nil
}

// MoveToCategory files the item under another category
func (i *Item) MoveToCategory(categoryID uuid.UUID) {
	if categoryID == uuid.Nil {
		categoryID = OtherCategoryID
	}
	i.CategoryID = categoryID
	i.changed()
}

// SetTags replaces the tag list, dropping duplicates and keeping order
func (i *Item) SetTags(tagIDs []uuid.UUID) error {
	seen := make(map[uuid.UUID]struct{}, len(tagIDs))
	out := make([]uuid.UUID, 0, len(tagIDs))
	for _, id := range tagIDs {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) > MaxTagsPerItem {
		return shared.NewDomainError("TOO_MANY_TAGS", fmt.Sprintf("An item can have at most %d tags", MaxTagsPerItem))
	}
	i.TagIDs = out
	i.changed()
	return nil
}

// RemoveTag drops a tag from the item, reporting whether it was present
func (i *Item) RemoveTag(tagID uuid.UUID) bool {
	for idx, id := range i.TagIDs {
		if id == tagID {
			i.TagIDs = append(i.TagIDs[:idx], i.TagIDs[idx+1:]...)
			i.changed()
			return true
		}
	}
	return false
}

// HasAllTags reports whether the item carries every tag in want
func (i *Item) HasAllTags(want []uuid.UUID) bool {
	have := make(map[uuid.UUID]struct{}, len(i.TagIDs))
	for _, id := range i.TagIDs {
		have[id] = struct{}{}
	}
	for _, id := range want {
		if _, ok := have[id]; !ok {
			return false
		}
	}
	return true
}

// MarkBackgroundRemoved flags that the stored full image had its background removed
func (i *Item) MarkBackgroundRemoved() {
	i.BackgroundRemoved = true
}

// StorageKeys returns every object key owned by the item
func (i *Item) StorageKeys() []string {
	return []string{i.FullKey, i.SmallKey}
}

func (i *Item) changed() {
	i.Modified()
}

func validateItemName(name string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Item name cannot exceed 100 characters")
	}
	return nil
}
