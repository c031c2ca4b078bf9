// Package closet contains the closet aggregates: categories, tags and the
// clothing items filed under them.
package closet

import (
	"strings"
	"unicode/utf8"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// OtherCategoryID is the reserved fallback category. Items from deleted categories land here.
var OtherCategoryID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// OtherCategoryName is the display name of the fallback category
const OtherCategoryName = "Other"

// CategoryType is the broad kind of garment a category holds
type CategoryType string

const (
	CategoryTypeClothes     CategoryType = "clothes"
	CategoryTypeAccessories CategoryType = "accessories"
	CategoryTypeShoes       CategoryType = "shoes"
	CategoryTypeOther       CategoryType = "other"
)

// IsValid checks if the category type is known
func (t CategoryType) IsValid() bool {
	switch t {
	case CategoryTypeClothes, CategoryTypeAccessories, CategoryTypeShoes, CategoryTypeOther:
		return true
	}
	return false
}

// FoldName returns the case-insensitive lookup key for a name.
func FoldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// Category groups closet items, e.g. "Tops" in group "Clothing"
type Category struct {
	shared.BaseAggregateRoot
	Name      string
	NameKey   string
	Group     string
	Type      CategoryType
	SortOrder int
}

// NewCategory creates a new category
func NewCategory(name, group string, categoryType CategoryType) (*Category, error) {
	if err := validateLabel("category", name); err != nil {
		return nil, err
	}
	if err := validateGroup(group); err != nil {
		return nil, err
	}
	if !categoryType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Category type must be clothes, accessories, shoes or other")
	}

	name = strings.TrimSpace(name)
	return &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		NameKey:           FoldName(name),
		Group:             strings.TrimSpace(group),
		Type:              categoryType,
	}, nil
}

// NewOtherCategory builds the reserved fallback category
func NewOtherCategory() *Category {
	c := &Category{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.NewBaseEntityWithID(OtherCategoryID),
			Version:    1,
		},
		Name:      OtherCategoryName,
		NameKey:   FoldName(OtherCategoryName),
		Type:      CategoryTypeOther,
		SortOrder: 1 << 20,
	}
	return c
}

// IsReserved reports whether this is the fallback category
func (c *Category) IsReserved() bool {
	return c.ID == OtherCategoryID
}

// Update changes the category's name, group, type and sort order
func (c *Category) Update(name, group string, categoryType CategoryType, sortOrder int) error {
	if c.IsReserved() {
		return shared.NewDomainError("RESERVED_CATEGORY", "The Other category cannot be modified")
	}
	if err := validateLabel("category", name); err != nil {
		return err
	}
	if err := validateGroup(group); err != nil {
		return err
	}
	if !categoryType.IsValid() {
		return shared.NewDomainError("INVALID_TYPE", "Category type must be clothes, accessories, shoes or other")
	}

	c.Name = strings.TrimSpace(name)
	c.NameKey = FoldName(name)
	c.Group = strings.TrimSpace(group)
	c.Type = categoryType
	c.SortOrder = sortOrder
	c.Modified()
	return nil
}

// CanDelete checks that the category may be removed
func (c *Category) CanDelete() error {
	if c.IsReserved() {
		return shared.NewDomainError("RESERVED_CATEGORY", "The Other category cannot be deleted")
	}
	return nil
}

func validateLabel(kind, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "The "+kind+" name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 50 {
		return shared.NewDomainError("INVALID_NAME", "The "+kind+" name cannot exceed 50 characters")
	}
	return nil
}

func validateGroup(group string) error {
	if utf8.RuneCountInString(strings.TrimSpace(group)) > 50 {
		return shared.NewDomainError("INVALID_GROUP", "Group cannot exceed 50 characters")
	}
	return nil
}
