package shopping

import (
	"context"
	"testing"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shopping"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockShoppingRepository is a mock implementation of shopping.Repository
type MockShoppingRepository struct {
	mock.Mock
}

func (m *MockShoppingRepository) FindByID(ctx context.Context, id uuid.UUID) (*shopping.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shopping.Item), args.Error(1)
}

func (m *MockShoppingRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shopping.Filter) ([]shopping.Item, int64, error) {
	args := m.Called(ctx, clientID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]shopping.Item), args.Get(1).(int64), args.Error(2)
}

func (m *MockShoppingRepository) Create(ctx context.Context, item *shopping.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockShoppingRepository) Save(ctx context.Context, item *shopping.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockShoppingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newShoppingItem(t *testing.T, clientID uuid.UUID) *shopping.Item {
	t.Helper()
	item, err := shopping.NewItem(clientID, shopping.Details{Name: "Loafers"})
	require.NoError(t, err)
	return item
}

func TestShoppingService_Create(t *testing.T) {
	ctx := context.Background()
	repo := new(MockShoppingRepository)
	svc := NewShoppingService(repo, nil)
	clientID := uuid.New()
	price := decimal.RequireFromString("129.999")

	repo.On("Create", ctx, mock.AnythingOfType("*shopping.Item")).Return(nil)

	resp, err := svc.Create(ctx, clientID, ShoppingItemRequest{
		Name:  "Trench coat",
		Link:  "https://shop.example/trench",
		Price: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, clientID, resp.ClientID)
	require.NotNil(t, resp.Price)
	assert.Equal(t, "130", resp.Price.String())
	assert.False(t, resp.Purchased)

	negative := decimal.NewFromInt(-1)
	_, err = svc.Create(ctx, clientID, ShoppingItemRequest{Name: "Scarf", Price: &negative})
	require.Error(t, err)
}

func TestShoppingService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(MockShoppingRepository)
	svc := NewShoppingService(repo, nil)
	clientID := uuid.New()
	purchased := false

	repo.On("FindByClient", ctx, clientID, shopping.Filter{
		Filter:    shared.Filter{Page: 1, PageSize: 20},
		Purchased: &purchased,
	}).Return([]shopping.Item{*newShoppingItem(t, clientID)}, int64(1), nil)

	out, total, err := svc.List(ctx, clientID, ShoppingListFilter{Purchased: &purchased, Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Loafers", out[0].Name)
}

func TestShoppingService_SetPurchased(t *testing.T) {
	ctx := context.Background()
	clientID := uuid.New()

	t.Run("owner marks purchased", func(t *testing.T) {
		repo := new(MockShoppingRepository)
		svc := NewShoppingService(repo, nil)
		item := newShoppingItem(t, clientID)
		repo.On("FindByID", ctx, item.ID).Return(item, nil)
		repo.On("Save", ctx, item).Run(func(args mock.Arguments) {
			args.Get(1).(*shopping.Item).Version++
		}).Return(nil)

		resp, err := svc.SetPurchased(ctx, clientID, item.ID, true)
		require.NoError(t, err)
		assert.True(t, resp.Purchased)
		assert.Equal(t, 2, resp.Version)
	})

	t.Run("unchanged state skips the write", func(t *testing.T) {
		repo := new(MockShoppingRepository)
		svc := NewShoppingService(repo, nil)
		item := newShoppingItem(t, clientID)
		repo.On("FindByID", ctx, item.ID).Return(item, nil)

		_, err := svc.SetPurchased(ctx, clientID, item.ID, false)
		require.NoError(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("another client's item", func(t *testing.T) {
		repo := new(MockShoppingRepository)
		svc := NewShoppingService(repo, nil)
		item := newShoppingItem(t, uuid.New())
		repo.On("FindByID", ctx, item.ID).Return(item, nil)

		_, err := svc.SetPurchased(ctx, clientID, item.ID, true)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestShoppingService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	clientID := uuid.New()
	repo := new(MockShoppingRepository)
	svc := NewShoppingService(repo, nil)
	item := newShoppingItem(t, clientID)

	repo.On("FindByID", ctx, item.ID).Return(item, nil)
	repo.On("Save", ctx, item).Return(nil)
	repo.On("Delete", ctx, item.ID).Return(nil)

	resp, err := svc.Update(ctx, clientID, item.ID, ShoppingItemRequest{Name: "Suede loafers", Notes: "size 39"})
	require.NoError(t, err)
	assert.Equal(t, "Suede loafers", resp.Name)
	assert.Nil(t, resp.Price)

	_, err = svc.Update(ctx, clientID, item.ID, ShoppingItemRequest{Name: "x", Link: "ftp://nope"})
	require.Error(t, err)

	require.NoError(t, svc.Delete(ctx, clientID, item.ID))
	repo.AssertCalled(t, "Delete", ctx, item.ID)
}
