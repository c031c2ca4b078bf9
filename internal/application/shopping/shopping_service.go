package shopping

import (
	"context"
	"strings"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shopping"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ShoppingService manages client shopping lists
type ShoppingService struct {
	repo   shopping.Repository
	logger *zap.Logger
}

// NewShoppingService creates a new ShoppingService
func NewShoppingService(repo shopping.Repository, logger *zap.Logger) *ShoppingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShoppingService{repo: repo, logger: logger}
}

// List returns a page of a client's shopping list
func (s *ShoppingService) List(ctx context.Context, clientID uuid.UUID, filter ShoppingListFilter) ([]ShoppingItemResponse, int64, error) {
	items, total, err := s.repo.FindByClient(ctx, clientID, shopping.Filter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   strings.TrimSpace(filter.Search),
		},
		Purchased: filter.Purchased,
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]ShoppingItemResponse, len(items))
	for i := range items {
		out[i] = ToShoppingItemResponse(&items[i])
	}
	return out, total, nil
}

// Create adds an entry to a client's shopping list
func (s *ShoppingService) Create(ctx context.Context, clientID uuid.UUID, req ShoppingItemRequest) (*ShoppingItemResponse, error) {
	item, err := shopping.NewItem(clientID, req.details())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("Shopping item created",
		zap.String("client_id", clientID.String()),
		zap.String("shopping_item_id", item.ID.String()))

	resp := ToShoppingItemResponse(item)
	return &resp, nil
}

// Update replaces an entry's details
func (s *ShoppingService) Update(ctx context.Context, clientID, itemID uuid.UUID, req ShoppingItemRequest) (*ShoppingItemResponse, error) {
	item, err := s.findOwned(ctx, clientID, itemID)
	if err != nil {
		return nil, err
	}
	if err := item.Update(req.details()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, err
	}
	resp := ToShoppingItemResponse(item)
	return &resp, nil
}

// SetPurchased marks an entry as bought or not
func (s *ShoppingService) SetPurchased(ctx context.Context, clientID, itemID uuid.UUID, purchased bool) (*ShoppingItemResponse, error) {
	item, err := s.findOwned(ctx, clientID, itemID)
	if err != nil {
		return nil, err
	}
	if item.Purchased != purchased {
		item.SetPurchased(purchased)
		if err := s.repo.Save(ctx, item); err != nil {
			return nil, err
		}
	}
	resp := ToShoppingItemResponse(item)
	return &resp, nil
}

// Delete removes an entry
func (s *ShoppingService) Delete(ctx context.Context, clientID, itemID uuid.UUID) error {
	item, err := s.findOwned(ctx, clientID, itemID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, item.ID); err != nil {
		return err
	}
	s.logger.Info("Shopping item deleted",
		zap.String("client_id", clientID.String()),
		zap.String("shopping_item_id", itemID.String()))
	return nil
}

func (s *ShoppingService) findOwned(ctx context.Context, clientID, itemID uuid.UUID) (*shopping.Item, error) {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.ClientID != clientID {
		return nil, shared.ErrNotFound
	}
	return item, nil
}
