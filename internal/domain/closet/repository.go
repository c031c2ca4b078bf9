package closet

import (
	"context"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// CategoryRepository defines persistence for categories
type CategoryRepository interface {
	// FindByID finds a category by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// FindAll returns every category ordered by group, sort order and name
	FindAll(ctx context.Context) ([]Category, error)

	// ExistsByName checks if another category already uses the name (case-insensitive)
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)

	// Create inserts a new category
	Create(ctx context.Context, category *Category) error

	// Save writes an existing category under optimistic locking.
	// It returns shared.ErrConcurrencyConflict when the row changed since it was
	// loaded and shared.ErrNotFound when it is gone.
	Save(ctx context.Context, category *Category) error

	// DeleteAndReassign removes a category and moves its items to the Other category
	// in one transaction. It returns how many items moved.
	DeleteAndReassign(ctx context.Context, id uuid.UUID) (int64, error)

	// EnsureDefaults creates the reserved categories when missing
	EnsureDefaults(ctx context.Context) error
}

// TagRepository defines persistence for tags and tag groups
type TagRepository interface {
	// FindGroupByID finds a tag group by ID, without its tags
	FindGroupByID(ctx context.Context, id uuid.UUID) (*TagGroup, error)

	// FindAllGroups returns every group with its tags loaded
	FindAllGroups(ctx context.Context) ([]TagGroup, error)

	// GroupExistsByName checks if another group already uses the name
	GroupExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)

	// CreateGroup inserts a new tag group
	CreateGroup(ctx context.Context, group *TagGroup) error

	// SaveGroup writes an existing tag group under optimistic locking
	SaveGroup(ctx context.Context, group *TagGroup) error

	// DeleteGroupAndReassign removes a group and moves its tags to the Other group.
	// It returns how many tags moved.
	DeleteGroupAndReassign(ctx context.Context, id uuid.UUID) (int64, error)

	// FindTagByID finds a tag by ID
	FindTagByID(ctx context.Context, id uuid.UUID) (*Tag, error)

	// FindTagsByIDs returns the tags that exist among ids
	FindTagsByIDs(ctx context.Context, ids []uuid.UUID) ([]Tag, error)

	// TagExistsByName checks if the group already has a tag with the name
	TagExistsByName(ctx context.Context, groupID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error)

	// CreateTag inserts a new tag
	CreateTag(ctx context.Context, tag *Tag) error

	// SaveTag writes an existing tag under optimistic locking
	SaveTag(ctx context.Context, tag *Tag) error

	// DeleteTag removes a tag and strips it from every item. It returns how many items changed.
	DeleteTag(ctx context.Context, id uuid.UUID) (int64, error)

	// EnsureDefaults creates the reserved tag group when missing
	EnsureDefaults(ctx context.Context) error
}

// ItemFilter narrows item listings
type ItemFilter struct {
	shared.Filter
	CategoryID *uuid.UUID
	TagIDs     []uuid.UUID
}

// CategoryCount is the number of items a client has in one category
type CategoryCount struct {
	CategoryID uuid.UUID
	Count      int64
}

// ItemRepository defines persistence for closet items
type ItemRepository interface {
	// FindByID finds an item by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)

	// FindByClient lists a client's items. Items must carry every tag in filter.TagIDs.
	FindByClient(ctx context.Context, clientID uuid.UUID, filter ItemFilter) ([]Item, int64, error)

	// FindByIDs returns the items that exist among ids
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Item, error)

	// FindAllByClient returns every item of a client, unpaginated
	FindAllByClient(ctx context.Context, clientID uuid.UUID) ([]Item, error)

	// CountByCategory groups a client's items by category
	CountByCategory(ctx context.Context, clientID uuid.UUID) ([]CategoryCount, error)

	// Create inserts a new item
	Create(ctx context.Context, item *Item) error

	// Save writes an existing item under optimistic locking.
	// It returns shared.ErrConcurrencyConflict when the row changed since it was
	// loaded and shared.ErrNotFound when it is gone.
	Save(ctx context.Context, item *Item) error

	// Delete removes an item and strips it from every outfit of its client
	Delete(ctx context.Context, id uuid.UUID) error

	// KeyExists reports whether any item references the storage key
	KeyExists(ctx context.Context, key string) (bool, error)
}
