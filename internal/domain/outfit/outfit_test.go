package outfit

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stage = json.RawMessage(`{"attrs":{"width":800,"height":600},"children":[]}`)

func TestNewOutfit(t *testing.T) {
	clientID := uuid.New()
	a, b := uuid.New(), uuid.New()

	t.Run("valid outfit dedupes items", func(t *testing.T) {
		o, err := NewOutfit(uuid.Nil, clientID, " Date night ", stage, []uuid.UUID{a, b, a, uuid.Nil})
		require.NoError(t, err)
		assert.Equal(t, "Date night", o.Name)
		assert.Equal(t, []uuid.UUID{a, b}, o.ItemIDs)
		assert.NotEqual(t, uuid.Nil, o.ID)
	})

	t.Run("keeps preallocated id", func(t *testing.T) {
		id := NewOutfitID()
		o, err := NewOutfit(id, clientID, "", stage, nil)
		require.NoError(t, err)
		assert.Equal(t, id, o.ID)
	})

	t.Run("rejects invalid json", func(t *testing.T) {
		_, err := NewOutfit(uuid.Nil, clientID, "", json.RawMessage(`{"attrs":`), nil)
		assert.Error(t, err)
	})

	t.Run("rejects empty stage", func(t *testing.T) {
		_, err := NewOutfit(uuid.Nil, clientID, "", nil, nil)
		assert.Error(t, err)
	})

	t.Run("rejects long name", func(t *testing.T) {
		_, err := NewOutfit(uuid.Nil, clientID, strings.Repeat("x", 101), stage, nil)
		assert.Error(t, err)
	})
}

func TestOutfit_PreviewAndItems(t *testing.T) {
	clientID := uuid.New()
	item := uuid.New()
	o, err := NewOutfit(uuid.Nil, clientID, "", stage, []uuid.UUID{item})
	require.NoError(t, err)

	key := PreviewKeyFor(clientID, o.ID, time.Unix(1700000000, 0))
	assert.Equal(t, "clients/"+clientID.String()+"/outfits/"+o.ID.String()+"/preview-1700000000.png", key)
	assert.Equal(t, "", o.SetPreview(key))
	assert.Equal(t, key, o.SetPreview("next"))

	assert.True(t, o.RemoveItem(item))
	assert.False(t, o.RemoveItem(item))
	assert.Empty(t, o.ItemIDs)

	stamped := o.UpdatedAt
	require.NoError(t, o.Update("Renamed", stage, nil))
	assert.Equal(t, 1, o.Version)
	assert.False(t, o.UpdatedAt.Before(stamped))
}
