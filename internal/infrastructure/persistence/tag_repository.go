package persistence

import (
	"context"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/closet"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTagRepository implements closet.TagRepository using GORM
type GormTagRepository struct {
	db *gorm.DB
}

// NewGormTagRepository creates a new GormTagRepository
func NewGormTagRepository(db *gorm.DB) *GormTagRepository {
	return &GormTagRepository{db: db}
}

// FindGroupByID finds a tag group and loads its tags
func (r *GormTagRepository) FindGroupByID(ctx context.Context, id uuid.UUID) (*closet.TagGroup, error) {
	var model models.TagGroupModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	var tags []models.TagModel
	if err := r.db.WithContext(ctx).
		Where("group_id = ?", id).
		Order("name ASC").
		Find(&tags).Error; err != nil {
		return nil, err
	}
	group := model.ToDomain()
	for i := range tags {
		group.Tags = append(group.Tags, *tags[i].ToDomain())
	}
	return group, nil
}

// FindAllGroups returns every group with its tags, Other last
func (r *GormTagRepository) FindAllGroups(ctx context.Context) ([]closet.TagGroup, error) {
	var groupRows []models.TagGroupModel
	if err := r.db.WithContext(ctx).
		Order("sort_order ASC, name ASC").
		Find(&groupRows).Error; err != nil {
		return nil, err
	}
	var tagRows []models.TagModel
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&tagRows).Error; err != nil {
		return nil, err
	}

	byGroup := make(map[uuid.UUID][]closet.Tag, len(groupRows))
	for i := range tagRows {
		byGroup[tagRows[i].GroupID] = append(byGroup[tagRows[i].GroupID], *tagRows[i].ToDomain())
	}

	groups := make([]closet.TagGroup, len(groupRows))
	for i := range groupRows {
		groups[i] = *groupRows[i].ToDomain()
		if tags, ok := byGroup[groups[i].ID]; ok {
			groups[i].Tags = tags
		}
	}
	return groups, nil
}

// GroupExistsByName checks for a group with the same case-folded name
func (r *GormTagRepository) GroupExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.TagGroupModel{}).
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

// CreateGroup inserts a new tag group. Its Tags are not written.
func (r *GormTagRepository) CreateGroup(ctx context.Context, group *closet.TagGroup) error {
	return translateError(r.db.WithContext(ctx).Create(models.TagGroupModelFromDomain(group)).Error)
}

// SaveGroup writes an existing tag group under optimistic locking
func (r *GormTagRepository) SaveGroup(ctx context.Context, group *closet.TagGroup) error {
	model := models.TagGroupModelFromDomain(group)
	if err := updateLocked(r.db.WithContext(ctx), model); err != nil {
		return err
	}
	group.Version = model.Version
	return nil
}

// DeleteGroupAndReassign deletes a group and moves its tags to Other.
// A tag whose name already exists in Other is merged into that tag.
// It returns the number of tags moved or merged.
func (r *GormTagRepository) DeleteGroupAndReassign(ctx context.Context, id uuid.UUID) (int64, error) {
	if id == closet.OtherTagGroupID {
		return 0, closet.NewOtherTagGroup().CanDelete()
	}

	var moved int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tags []models.TagModel
		if err := tx.Where("group_id = ?", id).Find(&tags).Error; err != nil {
			return err
		}
		var others []models.TagModel
		if err := tx.Where("group_id = ?", closet.OtherTagGroupID).Find(&others).Error; err != nil {
			return err
		}
		existing := make(map[string]uuid.UUID, len(others))
		for _, o := range others {
			existing[o.NameKey] = o.ID
		}

		for i := range tags {
			tag := tags[i].ToDomain()
			if target, ok := existing[tag.NameKey]; ok {
				if _, err := rewriteItemTags(tx, tag.ID, &target); err != nil {
					return err
				}
				if err := tx.Delete(&models.TagModel{}, "id = ?", tag.ID).Error; err != nil {
					return err
				}
			} else {
				tag.MoveToGroup(closet.OtherTagGroupID)
				if err := updateLocked(tx, models.TagModelFromDomain(tag)); err != nil {
					return err
				}
				existing[tag.NameKey] = tag.ID
			}
			moved++
		}

		deleted := tx.Delete(&models.TagGroupModel{}, "id = ?", id)
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

// FindTagByID finds a tag by its ID
func (r *GormTagRepository) FindTagByID(ctx context.Context, id uuid.UUID) (*closet.Tag, error) {
	var model models.TagModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindTagsByIDs returns the tags that exist among ids
func (r *GormTagRepository) FindTagsByIDs(ctx context.Context, ids []uuid.UUID) ([]closet.Tag, error) {
	if len(ids) == 0 {
		return []closet.Tag{}, nil
	}
	var rows []models.TagModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	tags := make([]closet.Tag, len(rows))
	for i := range rows {
		tags[i] = *rows[i].ToDomain()
	}
	return tags, nil
}

// TagExistsByName checks for a tag with the same case-folded name in a group
func (r *GormTagRepository) TagExistsByName(ctx context.Context, groupID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.TagModel{}).
		Where("group_id = ? AND name_key = ?", groupID, closet.FoldName(name))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateTag inserts a new tag
func (r *GormTagRepository) CreateTag(ctx context.Context, tag *closet.Tag) error {
	return translateError(r.db.WithContext(ctx).Create(models.TagModelFromDomain(tag)).Error)
}

// SaveTag writes an existing tag under optimistic locking
func (r *GormTagRepository) SaveTag(ctx context.Context, tag *closet.Tag) error {
	model := models.TagModelFromDomain(tag)
	if err := updateLocked(r.db.WithContext(ctx), model); err != nil {
		return err
	}
	tag.Version = model.Version
	return nil
}

// DeleteTag deletes a tag and strips it from every item.
// It returns the number of items that carried the tag.
func (r *GormTagRepository) DeleteTag(ctx context.Context, id uuid.UUID) (int64, error) {
	var stripped int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := rewriteItemTags(tx, id, nil)
		if err != nil {
			return err
		}
		stripped = n

		deleted := tx.Delete(&models.TagModel{}, "id = ?", id)
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
	return stripped, nil
}

// EnsureDefaults inserts the reserved Other tag group if it is missing
func (r *GormTagRepository) EnsureDefaults(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(models.TagGroupModelFromDomain(closet.NewOtherTagGroup())).Error
}

// rewriteItemTags removes tagID from every item that carries it,
// adding replacement in its place when given.
func rewriteItemTags(tx *gorm.DB, tagID uuid.UUID, replacement *uuid.UUID) (int64, error) {
	var rows []models.ItemModel
	if err := tx.Where("tag_ids LIKE ?", jsonListContains(tagID.String())).Find(&rows).Error; err != nil {
		return 0, err
	}

	var changed int64
	for i := range rows {
		item := rows[i].ToDomain()
		if !item.RemoveTag(tagID) {
			continue
		}
		if replacement != nil {
			if err := item.SetTags(append(item.TagIDs, *replacement)); err != nil {
				return 0, err
			}
		}
		if err := updateLocked(tx, models.ItemModelFromDomain(item)); err != nil {
			return 0, err
		}
		changed++
	}
	return changed, nil
}

var _ closet.TagRepository = (*GormTagRepository)(nil)
