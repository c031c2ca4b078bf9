package persistence

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/client"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/closet"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/outfit"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/persistence/models"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens a private in-memory SQLite database with the schema and reserved rows.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := NewDatabaseFromDialector(sqlite.Open(":memory:"), nil)
	require.NoError(t, err)

	sqlDB, err := database.DB.DB()
	require.NoError(t, err)
	// a second connection would see a different in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.DB.AutoMigrate(models.AllModels()...))

	ctx := context.Background()
	require.NoError(t, NewGormCategoryRepository(database.DB).EnsureDefaults(ctx))
	require.NoError(t, NewGormTagRepository(database.DB).EnsureDefaults(ctx))
	return database.DB
}

// fakeClient builds a client without paying for bcrypt
func fakeClient() *client.Client {
	return &client.Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FirstName:         gofakeit.FirstName(),
		LastName:          gofakeit.LastName(),
		Email:             uuid.NewString()[:8] + "@" + gofakeit.DomainName(),
		PasswordHash:      "$2a$04$placeholder",
	}
}

func saveClient(t *testing.T, db *gorm.DB, c *client.Client) *client.Client {
	t.Helper()
	require.NoError(t, NewGormClientRepository(db).Create(context.Background(), c))
	return c
}

func saveCategory(t *testing.T, db *gorm.DB, name string) *closet.Category {
	t.Helper()
	category, err := closet.NewCategory(name, "Tops", closet.CategoryTypeClothes)
	require.NoError(t, err)
	require.NoError(t, NewGormCategoryRepository(db).Create(context.Background(), category))
	return category
}

func saveTag(t *testing.T, db *gorm.DB, groupID uuid.UUID, name string) *closet.Tag {
	t.Helper()
	tag, err := closet.NewTag(groupID, name, "")
	require.NoError(t, err)
	require.NoError(t, NewGormTagRepository(db).CreateTag(context.Background(), tag))
	return tag
}

func saveItem(t *testing.T, db *gorm.DB, clientID, categoryID uuid.UUID, tagIDs ...uuid.UUID) *closet.Item {
	t.Helper()
	id := closet.NewItemID()
	item, err := closet.NewItem(id, clientID, categoryID, gofakeit.ProductName(), closet.ImageInfo{
		FullKey:     closet.ItemFullKey(clientID, id, ".png"),
		SmallKey:    closet.ItemSmallKey(clientID, id),
		ContentType: "image/png",
		Size:        int64(gofakeit.Number(1024, 4096)),
		Width:       800,
		Height:      1200,
	})
	require.NoError(t, err)
	require.NoError(t, item.SetTags(tagIDs))
	require.NoError(t, NewGormItemRepository(db).Create(context.Background(), item))
	return item
}

func saveOutfit(t *testing.T, db *gorm.DB, clientID uuid.UUID, itemIDs ...uuid.UUID) *outfit.Outfit {
	t.Helper()
	return saveOutfitAt(t, db, time.Now(), clientID, itemIDs...)
}

func saveOutfitAt(t *testing.T, db *gorm.DB, createdAt time.Time, clientID uuid.UUID, itemIDs ...uuid.UUID) *outfit.Outfit {
	t.Helper()
	o, err := outfit.NewOutfit(outfit.NewOutfitID(), clientID, gofakeit.Word(), json.RawMessage(`{"children":[]}`), itemIDs)
	require.NoError(t, err)
	o.CreatedAt = createdAt
	require.NoError(t, NewGormOutfitRepository(db).Create(context.Background(), o))
	return o
}
