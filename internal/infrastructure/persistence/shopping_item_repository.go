package persistence

import (
	"context"
	"strings"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shopping"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormShoppingItemRepository implements shopping.Repository using GORM
type GormShoppingItemRepository struct {
	db *gorm.DB
}

// NewGormShoppingItemRepository creates a new GormShoppingItemRepository
func NewGormShoppingItemRepository(db *gorm.DB) *GormShoppingItemRepository {
	return &GormShoppingItemRepository{db: db}
}

// FindByID finds a shopping item by its ID
func (r *GormShoppingItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*shopping.Item, error) {
	var model models.ShoppingItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByClient lists a client's shopping items
func (r *GormShoppingItemRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shopping.Filter) ([]shopping.Item, int64, error) {
	page := filter.Filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.ShoppingItemModel{}).Where("client_id = ?", clientID)
	if filter.Purchased != nil {
		query = query.Where("purchased = ?", *filter.Purchased)
	}
	if search := strings.TrimSpace(page.Search); search != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\'", likePattern(strings.ToLower(search)))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ShoppingItemModel
	if err := query.
		Order(shoppingSort.by(page.OrderBy, page.OrderDir)).
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	items := make([]shopping.Item, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, total, nil
}

// Create inserts a new shopping item
func (r *GormShoppingItemRepository) Create(ctx context.Context, item *shopping.Item) error {
	return translateError(r.db.WithContext(ctx).Create(models.ShoppingItemModelFromDomain(item)).Error)
}

// Save writes an existing shopping item under optimistic locking
func (r *GormShoppingItemRepository) Save(ctx context.Context, item *shopping.Item) error {
	model := models.ShoppingItemModelFromDomain(item)
	if err := updateLocked(r.db.WithContext(ctx), model); err != nil {
		return err
	}
	item.Version = model.Version
	return nil
}

// Delete removes a shopping item
func (r *GormShoppingItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ShoppingItemModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ shopping.Repository = (*GormShoppingItemRepository)(nil)
