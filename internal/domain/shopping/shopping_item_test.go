package shopping

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestNewItem(t *testing.T) {
	clientID := uuid.New()

	tests := []struct {
		name    string
		details Details
		wantErr bool
	}{
		{name: "minimal", details: Details{Name: "White sneakers"}},
		{name: "full", details: Details{Name: "Trench", Link: "https://shop.example.com/trench", ImageLink: "https://cdn.example.com/t.jpg", Price: price("129.999")}},
		{name: "empty name", details: Details{Name: " "}, wantErr: true},
		{name: "bad link", details: Details{Name: "Trench", Link: "ftp://example.com"}, wantErr: true},
		{name: "relative image link", details: Details{Name: "Trench", ImageLink: "/img.png"}, wantErr: true},
		{name: "negative price", details: Details{Name: "Trench", Price: price("-1")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := NewItem(clientID, tt.details)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.False(t, item.Purchased)
		})
	}
}

func TestItem_PriceRounded(t *testing.T) {
	item, err := NewItem(uuid.New(), Details{Name: "Trench", Price: price("129.999")})
	require.NoError(t, err)
	require.NotNil(t, item.Price)
	assert.Equal(t, "130", item.Price.String())
}

func TestItem_SetPurchased(t *testing.T) {
	item, err := NewItem(uuid.New(), Details{Name: "Belt"})
	require.NoError(t, err)

	stale := item.UpdatedAt.Add(-time.Hour)
	item.UpdatedAt = stale

	item.SetPurchased(true)
	assert.True(t, item.Purchased)
	assert.True(t, item.UpdatedAt.After(stale))
	assert.Equal(t, 1, item.Version)

	item.UpdatedAt = stale
	item.SetPurchased(true)
	assert.Equal(t, stale, item.UpdatedAt, "no-op when unchanged")
}
