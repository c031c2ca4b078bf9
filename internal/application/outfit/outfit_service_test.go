package outfit

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/closet"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/outfit"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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
	return args.Get(0).([]closet.Item), args.Error(1)
}

func (m *MockItemRepository) CountByCategory(ctx context.Context, clientID uuid.UUID) ([]closet.CategoryCount, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]closet.CategoryCount), args.Error(1)
}

func (m *MockItemRepository) Create(ctx context.Context, item *closet.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockItemRepository) Save(ctx context.Context, item *closet.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockItemRepository) KeyExists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// MockObjectStorage is a mock implementation of ObjectStorageService
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	return m.Called(ctx, key, data, contentType).Error(0)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type outfitFixture struct {
	outfits *MockOutfitRepository
	items   *MockItemRepository
	storage *MockObjectStorage
	svc     *OutfitService
	now     time.Time
}

func newOutfitFixture() *outfitFixture {
	f := &outfitFixture{
		outfits: new(MockOutfitRepository),
		items:   new(MockItemRepository),
		storage: new(MockObjectStorage),
		now:     time.Unix(1_700_000_000, 0),
	}
	f.svc = NewOutfitService(f.outfits, f.items, f.storage, nil)
	f.svc.now = func() time.Time { return f.now }
	f.storage.On("GenerateDownloadURL", mock.Anything, mock.Anything, time.Hour).
		Return("https://signed.example/preview.png", f.now.Add(time.Hour), nil)
	return f
}

func previewPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func dataURL(data []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
}

func ownedItem(t *testing.T, clientID uuid.UUID) closet.Item {
	t.Helper()
	id := closet.NewItemID()
	item, err := closet.NewItem(id, clientID, uuid.Nil, "", closet.ImageInfo{
		FullKey:  closet.ItemFullKey(clientID, id, ".png"),
		SmallKey: closet.ItemSmallKey(clientID, id),
		Size:     1,
	})
	require.NoError(t, err)
	return *item
}

func TestOutfitService_Create(t *testing.T) {
	ctx := context.Background()
	clientID := uuid.New()
	img := previewPNG(t)

	t.Run("stores preview and outfit", func(t *testing.T) {
		f := newOutfitFixture()
		item := ownedItem(t, clientID)
		f.items.On("FindByIDs", mock.Anything, []uuid.UUID{item.ID}).Return([]closet.Item{item}, nil)
		f.storage.On("PutObject", mock.Anything, mock.MatchedBy(func(key string) bool {
			return bytes.HasSuffix([]byte(key), []byte("/preview-1700000000.png"))
		}), img, "image/png").Return(nil)
		f.outfits.On("Create", mock.Anything, mock.AnythingOfType("*outfit.Outfit")).Return(nil)

		resp, err := f.svc.Create(ctx, clientID, CreateOutfitRequest{
			Name:    "Brunch",
			Stage:   []byte(`{"children":[]}`),
			ItemIDs: []uuid.UUID{item.ID, item.ID},
			Preview: dataURL(img),
		})
		require.NoError(t, err)
		assert.Equal(t, "Brunch", resp.Name)
		assert.Equal(t, []uuid.UUID{item.ID}, resp.ItemIDs)
		assert.Equal(t, "https://signed.example/preview.png", resp.PreviewURL)
	})

	t.Run("foreign item", func(t *testing.T) {
		f := newOutfitFixture()
		item := ownedItem(t, uuid.New())
		f.items.On("FindByIDs", mock.Anything, []uuid.UUID{item.ID}).Return([]closet.Item{item}, nil)

		_, err := f.svc.Create(ctx, clientID, CreateOutfitRequest{Stage: []byte(`{}`), ItemIDs: []uuid.UUID{item.ID}, Preview: dataURL(img)})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_ITEM", domainErr.Code)
		f.storage.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing item", func(t *testing.T) {
		f := newOutfitFixture()
		missing := uuid.New()
		f.items.On("FindByIDs", mock.Anything, []uuid.UUID{missing}).Return([]closet.Item{}, nil)

		_, err := f.svc.Create(ctx, clientID, CreateOutfitRequest{Stage: []byte(`{}`), ItemIDs: []uuid.UUID{missing}, Preview: dataURL(img)})
		require.Error(t, err)
	})

	t.Run("preview must be png", func(t *testing.T) {
		f := newOutfitFixture()
		_, err := f.svc.Create(ctx, clientID, CreateOutfitRequest{Stage: []byte(`{}`), Preview: dataURL([]byte("GIF89a......"))})
		assert.ErrorIs(t, err, shared.ErrUnsupportedMedia)
	})

	t.Run("preview must be a data url", func(t *testing.T) {
		f := newOutfitFixture()
		_, err := f.svc.Create(ctx, clientID, CreateOutfitRequest{Stage: []byte(`{}`), Preview: "https://example.com/a.png"})
		require.Error(t, err)
	})

	t.Run("preview too large", func(t *testing.T) {
		f := newOutfitFixture()
		f.svc.SetConfig(OutfitServiceConfig{MaxPreviewSize: 16})
		_, err := f.svc.Create(ctx, clientID, CreateOutfitRequest{Stage: []byte(`{}`), Preview: dataURL(img)})
		assert.ErrorIs(t, err, shared.ErrPayloadTooLarge)
	})

	t.Run("invalid stage", func(t *testing.T) {
		f := newOutfitFixture()
		_, err := f.svc.Create(ctx, clientID, CreateOutfitRequest{Stage: []byte(`{not json`), Preview: dataURL(img)})
		require.Error(t, err)
		f.storage.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("save failure removes preview", func(t *testing.T) {
		f := newOutfitFixture()
		f.storage.On("PutObject", mock.Anything, mock.Anything, img, "image/png").Return(nil)
		f.outfits.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))
		f.storage.On("DeleteObject", mock.Anything, mock.Anything).Return(nil)

		_, err := f.svc.Create(ctx, clientID, CreateOutfitRequest{Stage: []byte(`{}`), Preview: dataURL(img)})
		require.Error(t, err)
		f.storage.AssertNumberOfCalls(t, "DeleteObject", 1)
	})
}

func TestOutfitService_Update(t *testing.T) {
	ctx := context.Background()
	clientID := uuid.New()
	img := previewPNG(t)

	existing := func(t *testing.T) *outfit.Outfit {
		o, err := outfit.NewOutfit(uuid.Nil, clientID, "Old", []byte(`{}`), nil)
		require.NoError(t, err)
		o.SetPreview(outfit.PreviewKeyFor(clientID, o.ID, time.Unix(1_600_000_000, 0)))
		return o
	}

	t.Run("replaces preview and deletes the old one", func(t *testing.T) {
		f := newOutfitFixture()
		o := existing(t)
		oldKey := o.PreviewKey
		newKey := outfit.PreviewKeyFor(clientID, o.ID, f.now)
		f.outfits.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.storage.On("PutObject", mock.Anything, newKey, img, "image/png").Return(nil)
		f.outfits.On("Save", mock.Anything, o).Run(func(args mock.Arguments) {
			args.Get(1).(*outfit.Outfit).Version++
		}).Return(nil)
		f.storage.On("DeleteObject", mock.Anything, oldKey).Return(nil)

		resp, err := f.svc.Update(ctx, clientID, o.ID, UpdateOutfitRequest{Name: "New", Stage: []byte(`{"a":1}`), Preview: dataURL(img)})
		require.NoError(t, err)
		assert.Equal(t, "New", resp.Name)
		assert.Equal(t, newKey, o.PreviewKey)
		assert.Equal(t, 2, resp.Version)
		f.storage.AssertCalled(t, "DeleteObject", mock.Anything, oldKey)
	})

	t.Run("keeps preview when none is sent", func(t *testing.T) {
		f := newOutfitFixture()
		o := existing(t)
		oldKey := o.PreviewKey
		f.outfits.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.outfits.On("Save", mock.Anything, o).Return(nil)

		_, err := f.svc.Update(ctx, clientID, o.ID, UpdateOutfitRequest{Stage: []byte(`{}`)})
		require.NoError(t, err)
		assert.Equal(t, oldKey, o.PreviewKey)
		f.storage.AssertNotCalled(t, "DeleteObject", mock.Anything, mock.Anything)
	})

	t.Run("other client's outfit", func(t *testing.T) {
		f := newOutfitFixture()
		o := existing(t)
		f.outfits.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := f.svc.Update(ctx, uuid.New(), o.ID, UpdateOutfitRequest{Stage: []byte(`{}`)})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestOutfitService_Delete(t *testing.T) {
	ctx := context.Background()
	clientID := uuid.New()
	f := newOutfitFixture()
	o, err := outfit.NewOutfit(uuid.Nil, clientID, "", []byte(`{}`), nil)
	require.NoError(t, err)
	o.SetPreview("clients/a/outfits/b/preview-1.png")

	f.outfits.On("FindByID", ctx, o.ID).Return(o, nil)
	f.outfits.On("Delete", ctx, o.ID).Return(nil)
	f.storage.On("DeleteObject", mock.Anything, o.PreviewKey).Return(nil)

	require.NoError(t, f.svc.Delete(ctx, clientID, o.ID))
	f.storage.AssertExpectations(t)
}

func TestOutfitService_List(t *testing.T) {
	ctx := context.Background()
	clientID := uuid.New()
	f := newOutfitFixture()
	o, err := outfit.NewOutfit(uuid.Nil, clientID, "", []byte(`{}`), nil)
	require.NoError(t, err)

	f.outfits.On("FindByClient", ctx, clientID, shared.Filter{Page: 1, PageSize: 5}).
		Return([]outfit.Outfit{*o}, int64(1), nil)

	out, total, err := f.svc.List(ctx, clientID, OutfitListFilter{Page: 1, PageSize: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, out, 1)
	assert.Empty(t, out[0].PreviewURL)
	assert.Equal(t, []uuid.UUID{}, out[0].ItemIDs)
}
