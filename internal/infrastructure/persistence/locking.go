package persistence

import (
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// versioned is satisfied by every model embedding models.AggregateModel
type versioned interface {
	GetID() uuid.UUID
	GetVersion() int
	SetVersion(v int)
}

// updateLocked overwrites the row behind model while it is still at the
// version the aggregate was loaded with, and moves it one version on.
// Columns in omit are left as stored. A row that is gone yields
// shared.ErrNotFound; a row that moved on yields shared.ErrConcurrencyConflict.
// It never inserts.
func updateLocked(tx *gorm.DB, model versioned, omit ...string) error {
	expected := model.GetVersion()
	model.SetVersion(expected + 1)

	result := tx.Model(model).
		Where("version = ?", expected).
		Select("*").
		Omit(append([]string{"id", "created_at"}, omit...)...).
		Updates(model)
	if result.Error == nil && result.RowsAffected == 1 {
		return nil
	}
	model.SetVersion(expected)
	if result.Error != nil {
		return translateError(result.Error)
	}

	var count int64
	if err := tx.Model(model).
		Where("id = ?", model.GetID()).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return shared.ErrConcurrencyConflict
}
