package closet

import (
	"context"
	"errors"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/closet"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TagService manages tag groups and the tags inside them
type TagService struct {
	tagRepo closet.TagRepository
	logger  *zap.Logger
}

// NewTagService creates a new TagService
func NewTagService(tagRepo closet.TagRepository, logger *zap.Logger) *TagService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TagService{
		tagRepo: tagRepo,
		logger:  logger,
	}
}

// ListGroups returns every group with its tags
func (s *TagService) ListGroups(ctx context.Context) ([]TagGroupResponse, error) {
	groups, err := s.tagRepo.FindAllGroups(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TagGroupResponse, len(groups))
	for i := range groups {
		out[i] = ToTagGroupResponse(&groups[i])
	}
	return out, nil
}

// CreateGroup creates a tag group
func (s *TagService) CreateGroup(ctx context.Context, req CreateTagGroupRequest) (*TagGroupResponse, error) {
	exists, err := s.tagRepo.GroupExistsByName(ctx, req.Name, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.AlreadyExists("A tag group with this name")
	}

	group, err := closet.NewTagGroup(req.Name, req.SortOrder)
	if err != nil {
		return nil, err
	}
	if err := s.tagRepo.CreateGroup(ctx, group); err != nil {
		return nil, err
	}

	resp := ToTagGroupResponse(group)
	return &resp, nil
}

// UpdateGroup renames or reorders a tag group
func (s *TagService) UpdateGroup(ctx context.Context, groupID uuid.UUID, req UpdateTagGroupRequest) (*TagGroupResponse, error) {
	group, err := s.tagRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	exists, err := s.tagRepo.GroupExistsByName(ctx, req.Name, &groupID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.AlreadyExists("A tag group with this name")
	}

	if err := group.Update(req.Name, req.SortOrder); err != nil {
		return nil, err
	}
	if err := s.tagRepo.SaveGroup(ctx, group); err != nil {
		return nil, err
	}

	resp := ToTagGroupResponse(group)
	return &resp, nil
}

// DeleteGroup removes a tag group and moves its tags to Other
func (s *TagService) DeleteGroup(ctx context.Context, groupID uuid.UUID) (*DeleteTagGroupResponse, error) {
	group, err := s.tagRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := group.CanDelete(); err != nil {
		return nil, err
	}

	moved, err := s.tagRepo.DeleteGroupAndReassign(ctx, groupID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Tag group deleted",
		zap.String("group_id", groupID.String()),
		zap.Int64("reassigned_tags", moved))

	return &DeleteTagGroupResponse{ReassignedTags: moved}, nil
}

// CreateTag creates a tag inside a group
func (s *TagService) CreateTag(ctx context.Context, req CreateTagRequest) (*TagResponse, error) {
	if err := s.requireGroup(ctx, req.GroupID); err != nil {
		return nil, err
	}
	if err := s.checkTagName(ctx, req.GroupID, req.Name, nil); err != nil {
		return nil, err
	}

	tag, err := closet.NewTag(req.GroupID, req.Name, req.Color)
	if err != nil {
		return nil, err
	}
	if err := s.tagRepo.CreateTag(ctx, tag); err != nil {
		return nil, err
	}

	resp := ToTagResponse(tag)
	return &resp, nil
}

// UpdateTag renames, recolors or moves a tag
func (s *TagService) UpdateTag(ctx context.Context, tagID uuid.UUID, req UpdateTagRequest) (*TagResponse, error) {
	tag, err := s.tagRepo.FindTagByID(ctx, tagID)
	if err != nil {
		return nil, err
	}

	groupID := tag.GroupID
	if req.GroupID != nil && *req.GroupID != tag.GroupID {
		if err := s.requireGroup(ctx, *req.GroupID); err != nil {
			return nil, err
		}
		groupID = *req.GroupID
	}
	if err := s.checkTagName(ctx, groupID, req.Name, &tagID); err != nil {
		return nil, err
	}

	if err := tag.Update(req.Name, req.Color); err != nil {
		return nil, err
	}
	if groupID != tag.GroupID {
		tag.MoveToGroup(groupID)
	}
	if err := s.tagRepo.SaveTag(ctx, tag); err != nil {
		return nil, err
	}

	resp := ToTagResponse(tag)
	return &resp, nil
}

// DeleteTag removes a tag and strips it from every item
func (s *TagService) DeleteTag(ctx context.Context, tagID uuid.UUID) (*DeleteTagResponse, error) {
	updated, err := s.tagRepo.DeleteTag(ctx, tagID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Tag deleted",
		zap.String("tag_id", tagID.String()),
		zap.Int64("updated_items", updated))
	return &DeleteTagResponse{UpdatedItems: updated}, nil
}

func (s *TagService) requireGroup(ctx context.Context, groupID uuid.UUID) error {
	if _, err := s.tagRepo.FindGroupByID(ctx, groupID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_GROUP", "Tag group not found")
		}
		return err
	}
	return nil
}

func (s *TagService) checkTagName(ctx context.Context, groupID uuid.UUID, name string, excludeID *uuid.UUID) error {
	exists, err := s.tagRepo.TagExistsByName(ctx, groupID, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.AlreadyExists("A tag with this name in the group")
	}
	return nil
}
