package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStorage is an in-memory Storage backend used in tests and local
// development. It honours the same last-write-wins per-key semantics as a
// real object store and is safe for concurrent use.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memObject

	// Now is the clock used to stamp LastModified on uploads. Tests may
	// replace it to control timestamps.
	Now func() time.Time
}

type memObject struct {
	data         []byte
	contentType  string
	lastModified time.Time
}

// NewMemoryStorage returns an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		objects: make(map[string]memObject),
		Now:     time.Now,
	}
}

// Upload stores the full body under key, replacing any previous object.
func (s *MemoryStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read body for %q: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memObject{
		data:         data,
		contentType:  contentType,
		lastModified: s.Now(),
	}
	return nil
}

// Get returns a reader over a copy of the stored body.
func (s *MemoryStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("get object %q: %w", key, ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(append([]byte(nil), obj.data...))), nil
}

// Stat returns metadata for the object at key.
func (s *MemoryStorage) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return ObjectInfo{}, fmt.Errorf("stat object %q: %w", key, ErrNotFound)
	}
	return ObjectInfo{
		Key:          key,
		Size:         int64(len(obj.data)),
		LastModified: obj.lastModified,
		ContentType:  obj.contentType,
	}, nil
}

// List returns all objects under prefix in key order.
func (s *MemoryStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := []ObjectInfo{}
	for key, obj := range s.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		infos = append(infos, ObjectInfo{
			Key:          key,
			Size:         int64(len(obj.data)),
			LastModified: obj.lastModified,
			ContentType:  obj.contentType,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// Delete removes the object at key. Deleting a missing key is a no-op,
// matching S3 semantics.
func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// PublicURL returns a stable fake URL for the given key.
func (s *MemoryStorage) PublicURL(key string) string {
	return "memory://" + key
}

// SetLastModified overrides the timestamp of an existing object. Test helper
// for exercising latest-image resolution.
func (s *MemoryStorage) SetLastModified(key string, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if obj, ok := s.objects[key]; ok {
		obj.lastModified = t
		s.objects[key] = obj
	}
}
