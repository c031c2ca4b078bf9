package closet

import (
	"context"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/closet"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo closet.CategoryRepository
	logger       *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo closet.CategoryRepository, logger *zap.Logger) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// List returns every category, grouped and sorted for display
func (s *CategoryService) List(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, len(categories))
	for i := range categories {
		out[i] = ToCategoryResponse(&categories[i])
	}
	return out, nil
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	exists, err := s.categoryRepo.ExistsByName(ctx, req.Name, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.AlreadyExists("A category with this name")
	}

	category, err := closet.NewCategory(req.Name, req.Group, closet.CategoryType(req.Type))
	if err != nil {
		return nil, err
	}
	category.SortOrder = req.SortOrder

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Update renames or regroups a category
func (s *CategoryService) Update(ctx context.Context, categoryID uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	exists, err := s.categoryRepo.ExistsByName(ctx, req.Name, &categoryID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.AlreadyExists("A category with this name")
	}

	if err := category.Update(req.Name, req.Group, closet.CategoryType(req.Type), req.SortOrder); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Delete removes a category. Its items move to Other.
func (s *CategoryService) Delete(ctx context.Context, categoryID uuid.UUID) (*DeleteCategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if err := category.CanDelete(); err != nil {
		return nil, err
	}

	moved, err := s.categoryRepo.DeleteAndReassign(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Category deleted",
		zap.String("category_id", categoryID.String()),
		zap.Int64("reassigned_items", moved))

	return &DeleteCategoryResponse{ReassignedItems: moved}, nil
}
