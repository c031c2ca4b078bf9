package client

import (
	"context"
	"testing"
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/client"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/closet"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/outfit"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockClientRepository is a mock implementation of client.Repository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientRepository) FindByEmail(ctx context.Context, email string) (*client.Client, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientRepository) FindAll(ctx context.Context, filter shared.Filter) ([]client.Client, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]client.Client), args.Get(1).(int64), args.Error(2)
}

func (m *MockClientRepository) ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockClientRepository) Create(ctx context.Context, c *client.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockClientRepository) Save(ctx context.Context, c *client.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockClientRepository) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockClientRepository) ConsumeCredits(ctx context.Context, id uuid.UUID, amount int) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockClientRepository) AddCredits(ctx context.Context, id uuid.UUID, amount int) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

// MockStyleProfileRepository is a mock implementation of client.StyleProfileRepository
type MockStyleProfileRepository struct {
	mock.Mock
}

func (m *MockStyleProfileRepository) FindByClientID(ctx context.Context, clientID uuid.UUID) (*client.StyleProfile, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.StyleProfile), args.Error(1)
}

func (m *MockStyleProfileRepository) Save(ctx context.Context, profile *client.StyleProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

// MockItemRepository is a mock implementation of closet.ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*closet.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*closet.Item), args.Error(1)
}

func (m *MockItemRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter closet.ItemFilter) ([]closet.Item, int64, error) {
	args := m.Called(ctx, clientID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]closet.Item), args.Get(1).(int64), args.Error(2)
}

func (m *MockItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]closet.Item, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]closet.Item), args.Error(1)
}

func (m *MockItemRepository) FindAllByClient(ctx context.Context, clientID uuid.UUID) ([]closet.Item, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]closet.Item), args.Error(1)
}

func (m *MockItemRepository) CountByCategory(ctx context.Context, clientID uuid.UUID) ([]closet.CategoryCount, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]closet.CategoryCount), args.Error(1)
}

func (m *MockItemRepository) Create(ctx context.Context, item *closet.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) Save(ctx context.Context, item *closet.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockItemRepository) KeyExists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// MockOutfitRepository is a mock implementation of outfit.Repository
type MockOutfitRepository struct {
	mock.Mock
}

func (m *MockOutfitRepository) FindByID(ctx context.Context, id uuid.UUID) (*outfit.Outfit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outfit.Outfit), args.Error(1)
}

func (m *MockOutfitRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]outfit.Outfit, int64, error) {
	args := m.Called(ctx, clientID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]outfit.Outfit), args.Get(1).(int64), args.Error(2)
}

func (m *MockOutfitRepository) FindAllByClient(ctx context.Context, clientID uuid.UUID) ([]outfit.Outfit, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]outfit.Outfit), args.Error(1)
}

func (m *MockOutfitRepository) Create(ctx context.Context, o *outfit.Outfit) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOutfitRepository) Save(ctx context.Context, o *outfit.Outfit) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOutfitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutfitRepository) KeyExists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// MockObjectDeleter is a mock implementation of ObjectDeleter
type MockObjectDeleter struct {
	mock.Mock
}

func (m *MockObjectDeleter) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// fakeClient builds a client without hashing a password
func fakeClient(t *testing.T, admin, superAdmin bool) *client.Client {
	t.Helper()
	c := &client.Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FirstName:         gofakeit.FirstName(),
		LastName:          gofakeit.LastName(),
		Email:             gofakeit.Email(),
	}
	c.SetRoles(admin, superAdmin)
	return c
}

// clientWithPassword builds a client whose password verifies
func clientWithPassword(t *testing.T, password string) *client.Client {
	t.Helper()
	c, err := client.NewClient(gofakeit.FirstName(), gofakeit.LastName(), "edie@example.com", password)
	require.NoError(t, err)
	return c
}

func actorOf(c *client.Client) Actor {
	return Actor{ID: c.ID, IsAdmin: c.IsAdmin, IsSuperAdmin: c.IsSuperAdmin}
}
