package persistence

import (
	"context"
	"strings"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/closet"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormItemRepository implements closet.ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID finds an item by its ID
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*closet.Item, error) {
	var model models.ItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByClient lists a client's items. Every tag in filter.TagIDs must be present on an item.
func (r *GormItemRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter closet.ItemFilter) ([]closet.Item, int64, error) {
	page := filter.Filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.ItemModel{}).Where("client_id = ?", clientID)

	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	for _, tagID := range filter.TagIDs {
		query = query.Where("tag_ids LIKE ?", jsonListContains(tagID.String()))
	}
	if search := strings.TrimSpace(page.Search); search != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\'", likePattern(strings.ToLower(search)))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ItemModel
	if err := query.
		Order(itemSort.by(page.OrderBy, page.OrderDir)).
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return itemsToDomain(rows), total, nil
}

// FindByIDs returns the items that exist among ids
func (r *GormItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]closet.Item, error) {
	if len(ids) == 0 {
		return []closet.Item{}, nil
	}
	var rows []models.ItemModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return itemsToDomain(rows), nil
}

// FindAllByClient returns every item of a client without paging
func (r *GormItemRepository) FindAllByClient(ctx context.Context, clientID uuid.UUID) ([]closet.Item, error) {
	var rows []models.ItemModel
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return itemsToDomain(rows), nil
}

// CountByCategory returns how many items a client has in each category
func (r *GormItemRepository) CountByCategory(ctx context.Context, clientID uuid.UUID) ([]closet.CategoryCount, error) {
	var rows []struct {
		CategoryID uuid.UUID
		Count      int64
	}
	if err := r.db.WithContext(ctx).Model(&models.ItemModel{}).
		Select("category_id, COUNT(*) AS count").
		Where("client_id = ?", clientID).
		Group("category_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make([]closet.CategoryCount, len(rows))
	for i, row := range rows {
		counts[i] = closet.CategoryCount{CategoryID: row.CategoryID, Count: row.Count}
	}
	return counts, nil
}

// Create inserts a new item
func (r *GormItemRepository) Create(ctx context.Context, item *closet.Item) error {
	return translateError(r.db.WithContext(ctx).Create(models.ItemModelFromDomain(item)).Error)
}

// Save writes an existing item under optimistic locking. An item deleted in
// the meantime stays deleted.
func (r *GormItemRepository) Save(ctx context.Context, item *closet.Item) error {
	model := models.ItemModelFromDomain(item)
	if err := updateLocked(r.db.WithContext(ctx), model); err != nil {
		return err
	}
	item.Version = model.Version
	return nil
}

// Delete removes an item and drops it from every outfit that uses it
func (r *GormItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var outfits []models.OutfitModel
		if err := tx.Where("item_ids LIKE ?", jsonListContains(id.String())).Find(&outfits).Error; err != nil {
			return err
		}
		for i := range outfits {
			o := outfits[i].ToDomain()
			if !o.RemoveItem(id) {
				continue
			}
			if err := updateLocked(tx, models.OutfitModelFromDomain(o)); err != nil {
				return err
			}
		}

		result := tx.Delete(&models.ItemModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// KeyExists reports whether any item references the storage key
func (r *GormItemRepository) KeyExists(ctx context.Context, key string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ItemModel{}).
		Where("full_key = ? OR small_key = ?", key, key).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func itemsToDomain(rows []models.ItemModel) []closet.Item {
	items := make([]closet.Item, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items
}

var _ closet.ItemRepository = (*GormItemRepository)(nil)
