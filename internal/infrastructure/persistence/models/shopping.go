package models

import (
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shopping"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShoppingItemModel is the persistence model for shopping list entries.
type ShoppingItemModel struct {
	AggregateModel
	ClientID  uuid.UUID        `gorm:"type:uuid;not null;index"`
	Name      string           `gorm:"type:varchar(200);not null"`
	Link      string           `gorm:"type:text;not null;default:''"`
	ImageLink string           `gorm:"type:text;not null;default:''"`
	Notes     string           `gorm:"type:text;not null;default:''"`
	Price     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Purchased bool             `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (ShoppingItemModel) TableName() string {
	return "shopping_items"
}

// ToDomain converts the persistence model to a domain shopping Item.
func (m *ShoppingItemModel) ToDomain() *shopping.Item {
	return &shopping.Item{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ClientID:          m.ClientID,
		Name:              m.Name,
		Link:              m.Link,
		ImageLink:         m.ImageLink,
		Notes:             m.Notes,
		Price:             m.Price,
		Purchased:         m.Purchased,
	}
}

// ShoppingItemModelFromDomain creates a persistence model from a domain shopping Item.
func ShoppingItemModelFromDomain(i *shopping.Item) *ShoppingItemModel {
	m := &ShoppingItemModel{
		ClientID:  i.ClientID,
		Name:      i.Name,
		Link:      i.Link,
		ImageLink: i.ImageLink,
		Notes:     i.Notes,
		Price:     i.Price,
		Purchased: i.Purchased,
	}
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	return m
}
