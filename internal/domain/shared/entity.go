package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and timestamps shared by every record
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity stamps a fresh ID and creation time
func NewBaseEntity() BaseEntity {
	return NewBaseEntityWithID(uuid.New())
}

// NewBaseEntityWithID is NewBaseEntity for records whose ID is fixed, such as
// the reserved Other category.
func NewBaseEntityWithID(id uuid.UUID) BaseEntity {
	now := time.Now()
	return BaseEntity{ID: id, CreatedAt: now, UpdatedAt: now}
}

// BaseAggregateRoot adds the version used for optimistic locking.
// Version is the stored version the aggregate was loaded at. It starts at 1
// and only the repository advances it, once per successful write, so several
// changes saved together count as one.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
}

// NewBaseAggregateRoot returns a new root at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// Modified stamps UpdatedAt for an unsaved change
func (a *BaseAggregateRoot) Modified() {
	a.UpdatedAt = time.Now()
}
