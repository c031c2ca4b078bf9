package models

import (
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel extends BaseModel with the optimistic version counter
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// ToAggregateRoot converts the model back to a domain BaseAggregateRoot
func (m *AggregateModel) ToAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: m.BaseModel.ToDomain(),
		Version:    m.Version,
	}
}

// GetID returns the primary key
func (m *BaseModel) GetID() uuid.UUID { return m.ID }

// GetVersion returns the optimistic version
func (m *AggregateModel) GetVersion() int { return m.Version }

// SetVersion overwrites the optimistic version
func (m *AggregateModel) SetVersion(v int) { m.Version = v }

// uuidList never returns nil so JSON columns hold [] instead of null
func uuidList(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}

func stringList(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// AllModels lists every model in migration order. Tests use it for AutoMigrate.
func AllModels() []any {
	return []any{
		&ClientModel{},
		&StyleProfileModel{},
		&CategoryModel{},
		&TagGroupModel{},
		&TagModel{},
		&ItemModel{},
		&OutfitModel{},
		&ShoppingItemModel{},
	}
}
