package persistence

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/client"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/closet"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shopping"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormClientRepository_SaveAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormClientRepository(db)
	ctx := context.Background()

	c := saveClient(t, db, fakeClient())

	t.Run("by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.Email, found.Email)
		assert.Equal(t, c.FirstName, found.FirstName)
		assert.False(t, found.IsAdmin)
	})

	t.Run("by email ignores case", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, strings.ToUpper(c.Email))
		require.NoError(t, err)
		assert.Equal(t, c.ID, found.ID)
	})

	t.Run("missing client", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := fakeClient()
		dup.Email = c.Email
		err := repo.Create(ctx, dup)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("exists by email honours exclude", func(t *testing.T) {
		exists, err := repo.ExistsByEmail(ctx, c.Email, nil)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByEmail(ctx, c.Email, &c.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestGormClientRepository_FindAll(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormClientRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		saveClient(t, db, fakeClient())
	}
	target := fakeClient()
	target.FirstName = "Zelda"
	saveClient(t, db, target)

	t.Run("pages results", func(t *testing.T) {
		clients, total, err := repo.FindAll(ctx, shared.Filter{Page: 2, PageSize: 4})
		require.NoError(t, err)
		assert.Equal(t, int64(6), total)
		assert.Len(t, clients, 2)
	})

	t.Run("searches names case-insensitively", func(t *testing.T) {
		clients, total, err := repo.FindAll(ctx, shared.Filter{Search: "zEL"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, clients, 1)
		assert.Equal(t, target.ID, clients[0].ID)
	})

	t.Run("treats wildcards literally", func(t *testing.T) {
		_, total, err := repo.FindAll(ctx, shared.Filter{Search: "%"})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})
}

func TestGormClientRepository_Credits(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormClientRepository(db)
	ctx := context.Background()

	admin := fakeClient()
	admin.SetRoles(true, false)
	admin.Credits = 2
	saveClient(t, db, admin)

	t.Run("consumes while balance lasts", func(t *testing.T) {
		require.NoError(t, repo.ConsumeCredits(ctx, admin.ID, 1))
		require.NoError(t, repo.ConsumeCredits(ctx, admin.ID, 1))

		err := repo.ConsumeCredits(ctx, admin.ID, 1)
		assert.ErrorIs(t, err, shared.ErrInsufficientCredits)

		found, err := repo.FindByID(ctx, admin.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, found.Credits)
	})

	t.Run("adds credits", func(t *testing.T) {
		require.NoError(t, repo.AddCredits(ctx, admin.ID, 3))
		found, err := repo.FindByID(ctx, admin.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, found.Credits)
	})

	t.Run("super admins are never charged", func(t *testing.T) {
		super := fakeClient()
		super.SetRoles(true, true)
		saveClient(t, db, super)

		require.NoError(t, repo.ConsumeCredits(ctx, super.ID, 5))
		found, err := repo.FindByID(ctx, super.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, found.Credits)
	})

	t.Run("unknown client", func(t *testing.T) {
		assert.ErrorIs(t, repo.ConsumeCredits(ctx, uuid.New(), 1), shared.ErrNotFound)
		assert.ErrorIs(t, repo.AddCredits(ctx, uuid.New(), 1), shared.ErrNotFound)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		assert.Error(t, repo.ConsumeCredits(ctx, admin.ID, 0))
		assert.Error(t, repo.AddCredits(ctx, admin.ID, -1))
	})
}

func TestGormClientRepository_SaveIsVersionChecked(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormClientRepository(db)
	ctx := context.Background()

	c := fakeClient()
	c.SetRoles(true, false)
	c.Credits = 5
	saveClient(t, db, c)

	t.Run("stale copy cannot overwrite a spent credit", func(t *testing.T) {
		stale, err := repo.FindByID(ctx, c.ID)
		require.NoError(t, err)

		require.NoError(t, repo.ConsumeCredits(ctx, c.ID, 1))

		require.NoError(t, stale.Rename("Stale", "Copy"))
		assert.ErrorIs(t, repo.Save(ctx, stale), shared.ErrConcurrencyConflict)

		found, err := repo.FindByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, found.Credits)
		assert.NotEqual(t, "Stale", found.FirstName)
	})

	t.Run("one save advances the version once", func(t *testing.T) {
		fresh, err := repo.FindByID(ctx, c.ID)
		require.NoError(t, err)
		other, err := repo.FindByID(ctx, c.ID)
		require.NoError(t, err)
		loaded := fresh.Version

		require.NoError(t, fresh.Rename("Fresh", "Copy"))
		require.NoError(t, fresh.SetPhone("555-0100"))
		require.NoError(t, repo.Save(ctx, fresh))
		assert.Equal(t, loaded+1, fresh.Version)

		found, err := repo.FindByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, loaded+1, found.Version)
		assert.Equal(t, "Fresh", found.FirstName)
		assert.Equal(t, "555-0100", found.Phone)
		assert.Equal(t, 4, found.Credits)

		require.NoError(t, other.SetPhone("555-0199"))
		assert.ErrorIs(t, repo.Save(ctx, other), shared.ErrConcurrencyConflict)
	})

	t.Run("recording a login keeps credits", func(t *testing.T) {
		before, err := repo.FindByID(ctx, c.ID)
		require.NoError(t, err)

		require.NoError(t, repo.RecordLogin(ctx, c.ID, before.RecordLogin()))

		found, err := repo.FindByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, found.Credits)
		assert.NotNil(t, found.LastLoginAt)
		assert.Equal(t, before.Version+1, found.Version)
		assert.ErrorIs(t, repo.RecordLogin(ctx, uuid.New(), before.UpdatedAt), shared.ErrNotFound)
	})

	t.Run("missing client is not inserted", func(t *testing.T) {
		ghost := fakeClient()
		assert.ErrorIs(t, repo.Save(ctx, ghost), shared.ErrNotFound)
		_, err := repo.FindByID(ctx, ghost.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormClientRepository_ConcurrentConsumeNeverOverdraws(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormClientRepository(db)
	ctx := context.Background()

	admin := fakeClient()
	admin.SetRoles(true, false)
	admin.Credits = 3
	saveClient(t, db, admin)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.ConsumeCredits(ctx, admin.ID, 1); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, success)
	found, err := repo.FindByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, found.Credits)
}

func TestGormClientRepository_DeleteCascades(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormClientRepository(db)
	ctx := context.Background()

	owner := saveClient(t, db, fakeClient())
	other := saveClient(t, db, fakeClient())

	item := saveItem(t, db, owner.ID, closet.OtherCategoryID)
	saveOutfit(t, db, owner.ID, item.ID)
	kept := saveItem(t, db, other.ID, closet.OtherCategoryID)

	entry, err := shopping.NewItem(owner.ID, shopping.Details{Name: "Trench coat"})
	require.NoError(t, err)
	require.NoError(t, NewGormShoppingItemRepository(db).Create(ctx, entry))

	profile := client.EmptyStyleProfile(owner.ID)
	require.NoError(t, profile.Update("Classic", []string{"minimal"}, nil, nil, ""))
	require.NoError(t, NewGormStyleProfileRepository(db).Save(ctx, profile))

	require.NoError(t, repo.Delete(ctx, owner.ID))

	for _, model := range []any{&models.ItemModel{}, &models.OutfitModel{}, &models.ShoppingItemModel{}, &models.StyleProfileModel{}} {
		var count int64
		require.NoError(t, db.Model(model).Where("client_id = ?", owner.ID).Count(&count).Error)
		assert.Zero(t, count)
	}

	_, err = NewGormItemRepository(db).FindByID(ctx, kept.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, repo.Delete(ctx, owner.ID), shared.ErrNotFound)
}

func TestGormStyleProfileRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormStyleProfileRepository(db)
	ctx := context.Background()
	owner := saveClient(t, db, fakeClient())

	_, err := repo.FindByClientID(ctx, owner.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	profile := client.EmptyStyleProfile(owner.ID)
	require.NoError(t, profile.Update("Soft classic", []string{"romantic"}, []string{"#aabbcc"}, map[string]string{"top": "S"}, "Prefers natural fabrics"))
	require.NoError(t, repo.Save(ctx, profile))

	require.NoError(t, profile.Update("Dramatic", nil, nil, map[string]string{"shoe": "38"}, ""))
	require.NoError(t, repo.Save(ctx, profile))

	found, err := repo.FindByClientID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dramatic", found.Summary)
	assert.Equal(t, map[string]string{"shoe": "38"}, found.Sizes)
	assert.Empty(t, found.Styles)
}
