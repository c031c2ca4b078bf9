package client

import (
	"context"
	"testing"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/client"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProfileService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("missing profile is empty", func(t *testing.T) {
		profiles, clients := new(MockStyleProfileRepository), new(MockClientRepository)
		svc := NewProfileService(profiles, clients, nil)
		c := fakeClient(t, false, false)
		clients.On("FindByID", ctx, c.ID).Return(c, nil)
		profiles.On("FindByClientID", ctx, c.ID).Return(nil, shared.ErrNotFound)

		resp, err := svc.Get(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.ID, resp.ClientID)
		assert.Empty(t, resp.Styles)
		assert.NotNil(t, resp.Sizes)
		assert.Nil(t, resp.UpdatedAt)
	})

	t.Run("unknown client", func(t *testing.T) {
		profiles, clients := new(MockStyleProfileRepository), new(MockClientRepository)
		svc := NewProfileService(profiles, clients, nil)
		id := uuid.New()
		clients.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := svc.Get(ctx, id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestProfileService_Upsert(t *testing.T) {
	ctx := context.Background()

	t.Run("saves cleaned values", func(t *testing.T) {
		profiles, clients := new(MockStyleProfileRepository), new(MockClientRepository)
		svc := NewProfileService(profiles, clients, nil)
		c := fakeClient(t, false, false)
		clients.On("FindByID", ctx, c.ID).Return(c, nil)
		profiles.On("FindByClientID", ctx, c.ID).Return(client.EmptyStyleProfile(c.ID), nil)
		profiles.On("Save", ctx, mock.AnythingOfType("*client.StyleProfile")).Return(nil)

		resp, err := svc.Upsert(ctx, c.ID, StyleProfileRequest{
			Summary: "  Classic with a twist ",
			Styles:  []string{"minimal", " ", "preppy"},
			Colors:  []string{"#aabbcc"},
			Sizes:   map[string]string{"shoe": " 39 "},
		})
		require.NoError(t, err)
		assert.Equal(t, "Classic with a twist", resp.Summary)
		assert.Equal(t, []string{"minimal", "preppy"}, resp.Styles)
		assert.Equal(t, []string{"#AABBCC"}, resp.Colors)
		assert.Equal(t, "39", resp.Sizes["shoe"])
		assert.NotNil(t, resp.UpdatedAt)
	})

	t.Run("bad color", func(t *testing.T) {
		profiles, clients := new(MockStyleProfileRepository), new(MockClientRepository)
		svc := NewProfileService(profiles, clients, nil)
		c := fakeClient(t, false, false)
		clients.On("FindByID", ctx, c.ID).Return(c, nil)
		profiles.On("FindByClientID", ctx, c.ID).Return(nil, shared.ErrNotFound)

		_, err := svc.Upsert(ctx, c.ID, StyleProfileRequest{Colors: []string{"red"}})
		require.Error(t, err)
		profiles.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
