package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/client"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClientRepository implements client.Repository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by its ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a client by email, case-insensitively
func (r *GormClientRepository) FindByEmail(ctx context.Context, email string) (*client.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists clients matching the filter's search term
func (r *GormClientRepository) FindAll(ctx context.Context, filter shared.Filter) ([]client.Client, int64, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.ClientModel{})

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := likePattern(strings.ToLower(search))
		query = query.Where(
			"LOWER(first_name) LIKE ? ESCAPE '\\' OR LOWER(last_name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\'",
			pattern, pattern, pattern,
		)
	}
	if isAdmin, ok := filter.Filters["is_admin"].(bool); ok {
		query = query.Where("is_admin = ?", isAdmin)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ClientModel
	if err := query.
		Order(clientSort.by(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	clients := make([]client.Client, len(rows))
	for i := range rows {
		clients[i] = *rows[i].ToDomain()
	}
	return clients, total, nil
}

// ExistsByEmail reports whether another client already uses the email
func (r *GormClientRepository) ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.ClientModel{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email)))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new client
func (r *GormClientRepository) Create(ctx context.Context, c *client.Client) error {
	return translateError(r.db.WithContext(ctx).Create(models.ClientModelFromDomain(c)).Error)
}

// clientLedgerColumns are written only by their dedicated atomic updates
var clientLedgerColumns = []string{"credits", "last_login_at"}

// Save writes an existing client under optimistic locking. Credits and the
// last login stamp are left as stored.
func (r *GormClientRepository) Save(ctx context.Context, c *client.Client) error {
	model := models.ClientModelFromDomain(c)
	if err := updateLocked(r.db.WithContext(ctx), model, clientLedgerColumns...); err != nil {
		return err
	}
	c.Version = model.Version
	return nil
}

// RecordLogin stores the last login time, leaving the profile and credits alone
func (r *GormClientRepository) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.ClientModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_login_at": at,
			"version":       gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a client together with everything in their closet.
// Stored objects are left for the caller to remove once the rows are gone.
func (r *GormClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&models.ShoppingItemModel{},
			&models.OutfitModel{},
			&models.ItemModel{},
		} {
			if err := tx.Where("client_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("client_id = ?", id).Delete(&models.StyleProfileModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.ClientModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ConsumeCredits atomically deducts credits.
// The conditional update keeps concurrent uploads from overdrawing the balance.
func (r *GormClientRepository) ConsumeCredits(ctx context.Context, id uuid.UUID, amount int) error {
	if amount <= 0 {
		return shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}

	result := r.db.WithContext(ctx).Model(&models.ClientModel{}).
		Where("id = ? AND is_super_admin = ? AND credits >= ?", id, false, amount).
		Updates(map[string]any{
			"credits":    gorm.Expr("credits - ?", amount),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	current, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if current.HasUnlimitedCredits() {
		return nil
	}
	return shared.ErrInsufficientCredits
}

// AddCredits atomically adds credits to a client's balance
func (r *GormClientRepository) AddCredits(ctx context.Context, id uuid.UUID, amount int) error {
	if amount <= 0 {
		return shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}
	result := r.db.WithContext(ctx).Model(&models.ClientModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"credits":    gorm.Expr("credits + ?", amount),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormStyleProfileRepository implements client.StyleProfileRepository using GORM
type GormStyleProfileRepository struct {
	db *gorm.DB
}

// NewGormStyleProfileRepository creates a new GormStyleProfileRepository
func NewGormStyleProfileRepository(db *gorm.DB) *GormStyleProfileRepository {
	return &GormStyleProfileRepository{db: db}
}

// FindByClientID returns shared.ErrNotFound when the client has no profile yet
func (r *GormStyleProfileRepository) FindByClientID(ctx context.Context, clientID uuid.UUID) (*client.StyleProfile, error) {
	var model models.StyleProfileModel
	err := r.db.WithContext(ctx).First(&model, "client_id = ?", clientID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts the profile
func (r *GormStyleProfileRepository) Save(ctx context.Context, profile *client.StyleProfile) error {
	return r.db.WithContext(ctx).Save(models.StyleProfileModelFromDomain(profile)).Error
}

var (
	_ client.Repository             = (*GormClientRepository)(nil)
	_ client.StyleProfileRepository = (*GormStyleProfileRepository)(nil)
)
