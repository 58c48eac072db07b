package images

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinedex/service/internal/storage"
)

func seedObject(t *testing.T, store *storage.MemoryStorage, key string, modified time.Time) {
	t.Helper()
	err := store.Upload(context.Background(), key, strings.NewReader("img"), 3, "image/jpeg")
	require.NoError(t, err)
	store.SetLastModified(key, modified)
}

func TestResolverLatest(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("returns the most recently modified object", func(t *testing.T) {
		store := storage.NewMemoryStorage()
		seedObject(t, store, "resized-images/alice/a.jpg", base)
		seedObject(t, store, "resized-images/alice/c.jpg", base.Add(2*time.Hour))
		seedObject(t, store, "resized-images/alice/b.jpg", base.Add(time.Hour))

		latest, err := NewResolver(store).Latest(context.Background(), ClassResized, "alice")
		require.NoError(t, err)
		assert.Equal(t, "resized-images/alice/c.jpg", latest.Key)
	})

	t.Run("tie on timestamp breaks to lexicographically greatest key", func(t *testing.T) {
		store := storage.NewMemoryStorage()
		seedObject(t, store, "resized-images/alice/a.jpg", base)
		seedObject(t, store, "resized-images/alice/z.jpg", base)
		seedObject(t, store, "resized-images/alice/m.jpg", base)

		latest, err := NewResolver(store).Latest(context.Background(), ClassResized, "alice")
		require.NoError(t, err)
		assert.Equal(t, "resized-images/alice/z.jpg", latest.Key)
	})

	t.Run("ignores other owners and the original prefix", func(t *testing.T) {
		store := storage.NewMemoryStorage()
		seedObject(t, store, "resized-images/alice/a.jpg", base)
		seedObject(t, store, "resized-images/bob/newer.jpg", base.Add(time.Hour))
		seedObject(t, store, "original-images/alice/newest.jpg", base.Add(2*time.Hour))

		latest, err := NewResolver(store).Latest(context.Background(), ClassResized, "alice")
		require.NoError(t, err)
		assert.Equal(t, "resized-images/alice/a.jpg", latest.Key)
	})

	t.Run("empty prefix yields ErrNoImages", func(t *testing.T) {
		store := storage.NewMemoryStorage()
		_, err := NewResolver(store).Latest(context.Background(), ClassResized, "nobody")
		assert.ErrorIs(t, err, ErrNoImages)
	})

	t.Run("original class resolves under original-images", func(t *testing.T) {
		store := storage.NewMemoryStorage()
		seedObject(t, store, "original-images/alice/a.jpg", base)

		latest, err := NewResolver(store).Latest(context.Background(), ClassOriginal, "alice")
		require.NoError(t, err)
		assert.Equal(t, "original-images/alice/a.jpg", latest.Key)
	})
}

func TestResolverListKeys(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := storage.NewMemoryStorage()
	seedObject(t, store, "resized-images/alice/b.jpg", base)
	seedObject(t, store, "resized-images/alice/a.jpg", base.Add(time.Hour))
	seedObject(t, store, "resized-images/bob/c.jpg", base)

	keys, err := NewResolver(store).ListKeys(context.Background(), ClassResized, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"resized-images/alice/a.jpg", "resized-images/alice/b.jpg"}, keys)

	empty, err := NewResolver(store).ListKeys(context.Background(), ClassResized, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
