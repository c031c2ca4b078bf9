package persistence

import (
	"context"
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/closet"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCategoryRepository implements closet.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*closet.Category, error) {
	var model models.CategoryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns every category ordered for display
func (r *GormCategoryRepository) FindAll(ctx context.Context) ([]closet.Category, error) {
	var rows []models.CategoryModel
	if err := r.db.WithContext(ctx).
		Order("group_name ASC, sort_order ASC, name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	categories := make([]closet.Category, len(rows))
	for i := range rows {
		categories[i] = *rows[i].ToDomain()
	}
	return categories, nil
}

// ExistsByName checks for a category with the same case-folded name
func (r *GormCategoryRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.CategoryModel{}).
		Where("name_key = ?", closet.FoldName(name))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new category
func (r *GormCategoryRepository) Create(ctx context.Context, category *closet.Category) error {
	return translateError(r.db.WithContext(ctx).Create(models.CategoryModelFromDomain(category)).Error)
}

// Save writes an existing category under optimistic locking
func (r *GormCategoryRepository) Save(ctx context.Context, category *closet.Category) error {
	model := models.CategoryModelFromDomain(category)
	if err := updateLocked(r.db.WithContext(ctx), model); err != nil {
		return err
	}
	category.Version = model.Version
	return nil
}

// DeleteAndReassign deletes a category and moves its items to Other.
// It returns the number of items moved.
func (r *GormCategoryRepository) DeleteAndReassign(ctx context.Context, id uuid.UUID) (int64, error) {
	if id == closet.OtherCategoryID {
		return 0, closet.NewOtherCategory().CanDelete()
	}

	var moved int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ItemModel{}).
			Where("category_id = ?", id).
			Updates(map[string]any{
				"category_id": closet.OtherCategoryID,
				"updated_at":  time.Now(),
				"version":     gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return result.Error
		}
		moved = result.RowsAffected

		deleted := tx.Delete(&models.CategoryModel{}, "id = ?", id)
		if deleted.Error != nil {
			return deleted.Error
		}
		if deleted.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return moved, nil
}

// EnsureDefaults inserts the reserved Other category if it is missing
func (r *GormCategoryRepository) EnsureDefaults(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(models.CategoryModelFromDomain(closet.NewOtherCategory())).Error
}

var _ closet.CategoryRepository = (*GormCategoryRepository)(nil)
