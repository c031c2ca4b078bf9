package models

import (
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/closet"
	"github.com/google/uuid"
)

// CategoryModel is the persistence model for closet categories.
type CategoryModel struct {
	AggregateModel
	Name      string              `gorm:"type:varchar(50);not null"`
	NameKey   string              `gorm:"type:varchar(200);not null;uniqueIndex:idx_categories_name_key"`
	Group     string              `gorm:"column:group_name;type:varchar(50);not null;default:''"`
	Type      closet.CategoryType `gorm:"type:varchar(20);not null;default:'clothes'"`
	SortOrder int                 `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category.
func (m *CategoryModel) ToDomain() *closet.Category {
	return &closet.Category{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		NameKey:           m.NameKey,
		Group:             m.Group,
		Type:              m.Type,
		SortOrder:         m.SortOrder,
	}
}

// CategoryModelFromDomain creates a persistence model from a domain Category.
func CategoryModelFromDomain(c *closet.Category) *CategoryModel {
	m := &CategoryModel{
		Name:      c.Name,
		NameKey:   c.NameKey,
		Group:     c.Group,
		Type:      c.Type,
		SortOrder: c.SortOrder,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// TagGroupModel is the persistence model for tag groups.
type TagGroupModel struct {
	AggregateModel
	Name      string `gorm:"type:varchar(50);not null"`
	NameKey   string `gorm:"type:varchar(200);not null;uniqueIndex:idx_tag_groups_name_key"`
	SortOrder int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (TagGroupModel) TableName() string {
	return "tag_groups"
}

// ToDomain converts the model to a TagGroup without its tags.
func (m *TagGroupModel) ToDomain() *closet.TagGroup {
	return &closet.TagGroup{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		NameKey:           m.NameKey,
		SortOrder:         m.SortOrder,
		Tags:              []closet.Tag{},
	}
}

// TagGroupModelFromDomain creates a persistence model from a domain TagGroup.
func TagGroupModelFromDomain(g *closet.TagGroup) *TagGroupModel {
	m := &TagGroupModel{
		Name:      g.Name,
		NameKey:   g.NameKey,
		SortOrder: g.SortOrder,
	}
	m.FromDomainAggregateRoot(g.BaseAggregateRoot)
	return m
}

// TagModel is the persistence model for tags.
type TagModel struct {
	AggregateModel
	GroupID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_tags_group_name_key,priority:1"`
	Name    string    `gorm:"type:varchar(50);not null"`
	NameKey string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_tags_group_name_key,priority:2"`
	Color   string    `gorm:"type:varchar(7);not null"`
}

// TableName returns the table name for GORM
func (TagModel) TableName() string {
	return "tags"
}

// ToDomain converts the persistence model to a domain Tag.
func (m *TagModel) ToDomain() *closet.Tag {
	return &closet.Tag{
		BaseAggregateRoot: m.ToAggregateRoot(),
		GroupID:           m.GroupID,
		Name:              m.Name,
		NameKey:           m.NameKey,
		Color:             m.Color,
	}
}

// TagModelFromDomain creates a persistence model from a domain Tag.
func TagModelFromDomain(t *closet.Tag) *TagModel {
	m := &TagModel{
		GroupID: t.GroupID,
		Name:    t.Name,
		NameKey: t.NameKey,
		Color:   t.Color,
	}
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	return m
}

// ItemModel is the persistence model for closet items.
type ItemModel struct {
	AggregateModel
	ClientID          uuid.UUID   `gorm:"type:uuid;not null;index:idx_items_client_category,priority:1"`
	CategoryID        uuid.UUID   `gorm:"type:uuid;not null;index:idx_items_client_category,priority:2"`
	Name              string      `gorm:"type:varchar(100);not null;default:''"`
	FullKey           string      `gorm:"type:varchar(300);not null;uniqueIndex:idx_items_full_key"`
	SmallKey          string      `gorm:"type:varchar(300);not null;uniqueIndex:idx_items_small_key"`
	ContentType       string      `gorm:"type:varchar(50);not null"`
	Size              int64       `gorm:"not null"`
	Width             int         `gorm:"not null;default:0"`
	Height            int         `gorm:"not null;default:0"`
	TagIDs            []uuid.UUID `gorm:"column:tag_ids;type:text;not null;serializer:json"`
	BackgroundRemoved bool        `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "items"
}

// ToDomain converts the persistence model to a domain Item.
func (m *ItemModel) ToDomain() *closet.Item {
	return &closet.Item{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ClientID:          m.ClientID,
		CategoryID:        m.CategoryID,
		Name:              m.Name,
		FullKey:           m.FullKey,
		SmallKey:          m.SmallKey,
		ContentType:       m.ContentType,
		Size:              m.Size,
		Width:             m.Width,
		Height:            m.Height,
		TagIDs:            uuidList(m.TagIDs),
		BackgroundRemoved: m.BackgroundRemoved,
	}
}

// ItemModelFromDomain creates a persistence model from a domain Item.
func ItemModelFromDomain(i *closet.Item) *ItemModel {
	m := &ItemModel{
		ClientID:          i.ClientID,
		CategoryID:        i.CategoryID,
		Name:              i.Name,
		FullKey:           i.FullKey,
		SmallKey:          i.SmallKey,
		ContentType:       i.ContentType,
		Size:              i.Size,
		Width:             i.Width,
		Height:            i.Height,
		TagIDs:            uuidList(i.TagIDs),
		BackgroundRemoved: i.BackgroundRemoved,
	}
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	return m
}
