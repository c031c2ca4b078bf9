package models

import (
	"encoding/json"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/outfit"
	"github.com/google/uuid"
)

// OutfitModel is the persistence model for outfits.
// Stage is the canvas scene kept verbatim as JSON text.
type OutfitModel struct {
	AggregateModel
	ClientID   uuid.UUID   `gorm:"type:uuid;not null;index"`
	Name       string      `gorm:"type:varchar(100);not null;default:''"`
	Stage      string      `gorm:"type:text;not null"`
	ItemIDs    []uuid.UUID `gorm:"column:item_ids;type:text;not null;serializer:json"`
	PreviewKey string      `gorm:"type:varchar(300);not null;default:''"`
}

// TableName returns the table name for GORM
func (OutfitModel) TableName() string {
	return "outfits"
}

// ToDomain converts the persistence model to a domain Outfit.
func (m *OutfitModel) ToDomain() *outfit.Outfit {
	return &outfit.Outfit{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ClientID:          m.ClientID,
		Name:              m.Name,
		Stage:             json.RawMessage(m.Stage),
		ItemIDs:           uuidList(m.ItemIDs),
		PreviewKey:        m.PreviewKey,
	}
}

// OutfitModelFromDomain creates a persistence model from a domain Outfit.
func OutfitModelFromDomain(o *outfit.Outfit) *OutfitModel {
	m := &OutfitModel{
		ClientID:   o.ClientID,
		Name:       o.Name,
		Stage:      string(o.Stage),
		ItemIDs:    uuidList(o.ItemIDs),
		PreviewKey: o.PreviewKey,
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	return m
}
