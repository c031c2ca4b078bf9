package persistence

import (
	"context"
	"strings"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/outfit"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOutfitRepository implements outfit.Repository using GORM
type GormOutfitRepository struct {
	db *gorm.DB
}

// NewGormOutfitRepository creates a new GormOutfitRepository
func NewGormOutfitRepository(db *gorm.DB) *GormOutfitRepository {
	return &GormOutfitRepository{db: db}
}

// FindByID finds an outfit by its ID
func (r *GormOutfitRepository) FindByID(ctx context.Context, id uuid.UUID) (*outfit.Outfit, error) {
	var model models.OutfitModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByClient lists a client's outfits, newest first unless the filter says otherwise
func (r *GormOutfitRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]outfit.Outfit, int64, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.OutfitModel{}).Where("client_id = ?", clientID)
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\'", likePattern(strings.ToLower(search)))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.OutfitModel
	if err := query.
		Order(outfitSort.by(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return outfitsToDomain(rows), total, nil
}

// FindAllByClient returns every outfit of a client without paging
func (r *GormOutfitRepository) FindAllByClient(ctx context.Context, clientID uuid.UUID) ([]outfit.Outfit, error) {
	var rows []models.OutfitModel
	if err := r.db.WithContext(ctx).Where("client_id = ?", clientID).Find(&rows).Error; err != nil {
		return nil, err
	}
	return outfitsToDomain(rows), nil
}

// Create inserts a new outfit
func (r *GormOutfitRepository) Create(ctx context.Context, o *outfit.Outfit) error {
	return translateError(r.db.WithContext(ctx).Create(models.OutfitModelFromDomain(o)).Error)
}

// Save writes an existing outfit under optimistic locking
func (r *GormOutfitRepository) Save(ctx context.Context, o *outfit.Outfit) error {
	model := models.OutfitModelFromDomain(o)
	if err := updateLocked(r.db.WithContext(ctx), model); err != nil {
		return err
	}
	o.Version = model.Version
	return nil
}

// Delete removes an outfit
func (r *GormOutfitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.OutfitModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// KeyExists reports whether any outfit references the preview key
func (r *GormOutfitRepository) KeyExists(ctx context.Context, key string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OutfitModel{}).
		Where("preview_key = ?", key).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func outfitsToDomain(rows []models.OutfitModel) []outfit.Outfit {
	outfits := make([]outfit.Outfit, len(rows))
	for i := range rows {
		outfits[i] = *rows[i].ToDomain()
	}
	return outfits
}

var _ outfit.Repository = (*GormOutfitRepository)(nil)
