package images

import (
	"context"
	"errors"
	"fmt"

	"github.com/cinedex/service/internal/storage"
)

// ErrNoImages is returned when an owner has no objects under the requested
// prefix.
var ErrNoImages = errors.New("no images found")

// PrefixClass selects which side of the pipeline a read targets.
type PrefixClass string

const (
	ClassOriginal PrefixClass = "original-images"
	ClassResized  PrefixClass = "resized-images"
)

func (c PrefixClass) prefix() string {
	if c == ClassOriginal {
		return OriginalPrefix
	}
	return ResizedPrefix
}

// Resolver answers "which is the owner's most recent image" over the store.
// It is a pure read: safe to call concurrently and repeatedly.
type Resolver struct {
	store storage.Storage
}

// NewResolver creates a Resolver over the given store.
func NewResolver(store storage.Storage) *Resolver {
	return &Resolver{store: store}
}

// Latest lists all objects under "{prefix}/{owner}/" and returns the one with
// the maximum LastModified timestamp. Ties are broken by lexicographically
// greatest key, making the selection a total, order-independent function.
// Returns ErrNoImages when the owner has no objects under the prefix.
func (r *Resolver) Latest(ctx context.Context, class PrefixClass, owner string) (storage.ObjectInfo, error) {
	objects, err := r.store.List(ctx, class.prefix()+owner+"/")
	if err != nil {
		return storage.ObjectInfo{}, fmt.Errorf("list %s images for %q: %w", class, owner, err)
	}
	if len(objects) == 0 {
		return storage.ObjectInfo{}, ErrNoImages
	}

	latest := objects[0]
	for _, obj := range objects[1:] {
		if obj.LastModified.After(latest.LastModified) {
			latest = obj
			continue
		}
		if obj.LastModified.Equal(latest.LastModified) && obj.Key > latest.Key {
			latest = obj
		}
	}
	return latest, nil
}

// ListKeys returns every key under "{prefix}/{owner}/" in store listing order.
// The order is not guaranteed to be chronological.
func (r *Resolver) ListKeys(ctx context.Context, class PrefixClass, owner string) ([]string, error) {
	objects, err := r.store.List(ctx, class.prefix()+owner+"/")
	if err != nil {
		return nil, fmt.Errorf("list %s images for %q: %w", class, owner, err)
	}
	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		keys = append(keys, obj.Key)
	}
	return keys, nil
}
