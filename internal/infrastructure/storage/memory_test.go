package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryObjectStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryObjectStorage()

	data := []byte("png-bytes")
	require.NoError(t, s.PutObject(ctx, "clients/a/items/1/full.png", data, "image/png"))
	require.NoError(t, s.PutObject(ctx, "clients/a/items/1/small.jpg", []byte("jpg"), "image/jpeg"))
	require.NoError(t, s.PutObject(ctx, "other/file", []byte("x"), "text/plain"))

	t.Run("stores a copy", func(t *testing.T) {
		data[0] = 'X'
		stored, contentType, ok := s.Object("clients/a/items/1/full.png")
		require.True(t, ok)
		assert.Equal(t, "png-bytes", string(stored))
		assert.Equal(t, "image/png", contentType)
	})

	t.Run("exists", func(t *testing.T) {
		ok, err := s.ObjectExists(ctx, "clients/a/items/1/small.jpg")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.ObjectExists(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("lists by prefix in order", func(t *testing.T) {
		var keys []string
		require.NoError(t, s.ListObjects(ctx, "clients/", func(info ObjectInfo) error {
			keys = append(keys, info.Key)
			return nil
		}))
		assert.Equal(t, []string{"clients/a/items/1/full.png", "clients/a/items/1/small.jpg"}, keys)
	})

	t.Run("download url carries the key", func(t *testing.T) {
		u, expires, err := s.GenerateDownloadURL(ctx, "clients/a/items/1/full.png", time.Minute)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(u, "memory://closet/clients/a/items/1/full.png?expires="))
		assert.WithinDuration(t, time.Now().Add(time.Minute), expires, 5*time.Second)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, s.DeleteObject(ctx, "other/file"))
		require.NoError(t, s.DeleteObject(ctx, "other/file"))
		assert.Equal(t, 2, s.Len())
	})

	t.Run("empty keys are rejected", func(t *testing.T) {
		assert.ErrorIs(t, s.PutObject(ctx, "", nil, ""), ErrKeyRequired)
		assert.ErrorIs(t, s.DeleteObject(ctx, ""), ErrKeyRequired)
		_, _, err := s.GenerateDownloadURL(ctx, "", 0)
		assert.ErrorIs(t, err, ErrKeyRequired)
		_, err = s.ObjectExists(ctx, "")
		assert.ErrorIs(t, err, ErrKeyRequired)
	})
}
