package closet

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/client"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/closet"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/imaging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Mocks
// ============================================================================

// MockCategoryRepository is a mock implementation of closet.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*closet.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*closet.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindAll(ctx context.Context) ([]closet.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]closet.Category), args.Error(1)
}

func (m *MockCategoryRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *closet.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Save(ctx context.Context, category *closet.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) DeleteAndReassign(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCategoryRepository) EnsureDefaults(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockTagRepository is a mock implementation of closet.TagRepository
type MockTagRepository struct {
	mock.Mock
}

func (m *MockTagRepository) FindGroupByID(ctx context.Context, id uuid.UUID) (*closet.TagGroup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*closet.TagGroup), args.Error(1)
}

func (m *MockTagRepository) FindAllGroups(ctx context.Context) ([]closet.TagGroup, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]closet.TagGroup), args.Error(1)
}

func (m *MockTagRepository) GroupExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTagRepository) CreateGroup(ctx context.Context, group *closet.TagGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockTagRepository) SaveGroup(ctx context.Context, group *closet.TagGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockTagRepository) DeleteGroupAndReassign(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTagRepository) FindTagByID(ctx context.Context, id uuid.UUID) (*closet.Tag, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*closet.Tag), args.Error(1)
}

func (m *MockTagRepository) FindTagsByIDs(ctx context.Context, ids []uuid.UUID) ([]closet.Tag, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]closet.Tag), args.Error(1)
}

func (m *MockTagRepository) TagExistsByName(ctx context.Context, groupID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, groupID, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTagRepository) CreateTag(ctx context.Context, tag *closet.Tag) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}

func (m *MockTagRepository) SaveTag(ctx context.Context, tag *closet.Tag) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}

func (m *MockTagRepository) DeleteTag(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTagRepository) EnsureDefaults(ctx context.Context) error {
	args := m.Called(ctx)
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

// MockObjectStorage is a mock implementation of ObjectStorageService
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockImageProcessor is a mock implementation of ImageProcessor
type MockImageProcessor struct {
	mock.Mock
}

func (m *MockImageProcessor) Thumbnail(data []byte) (*imaging.Thumbnail, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*imaging.Thumbnail), args.Error(1)
}

// MockBackgroundRemover is a mock implementation of BackgroundRemover
type MockBackgroundRemover struct {
	mock.Mock
}

func (m *MockBackgroundRemover) Remove(ctx context.Context, data []byte, filename string) ([]byte, error) {
	args := m.Called(ctx, data, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// ============================================================================
// Fixtures
// ============================================================================

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestClient(t *testing.T, admin, superAdmin bool, credits int) *client.Client {
	t.Helper()
	c := &client.Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FirstName:         "Edie",
		LastName:          "Stylist",
		Email:             uuid.NewString()[:8] + "@example.com",
	}
	c.SetRoles(admin, superAdmin)
	c.Credits = credits
	return c
}

func newTestItem(t *testing.T, clientID uuid.UUID) *closet.Item {
	t.Helper()
	id := closet.NewItemID()
	item, err := closet.NewItem(id, clientID, uuid.Nil, "Blazer", closet.ImageInfo{
		FullKey:     closet.ItemFullKey(clientID, id, ".png"),
		SmallKey:    closet.ItemSmallKey(clientID, id),
		ContentType: "image/png",
		Size:        100,
	})
	require.NoError(t, err)
	return item
}
