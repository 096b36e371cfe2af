package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// PhotoStore keeps haircut photos and QR images. Refs are opaque.
type PhotoStore interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
	Delete(ctx context.Context, ref string) error
}

func newKey(name string) string {
	if name == "" {
		name = "photo"
	}
	return "photos/" + name + "-" + uuid.NewString() + ".webp"
}

// MemoryStore is used when no bucket is configured.
type MemoryStore struct {
	mu       sync.Mutex
	maxWidth int
	objects  map[string][]byte
}

func NewMemoryStore(maxWidth int) *MemoryStore {
	return &MemoryStore{maxWidth: maxWidth, objects: make(map[string][]byte)}
}

func (m *MemoryStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	out, err := Process(data, m.maxWidth)
	if err != nil {
		return "", err
	}

	key := newKey(name)
	m.mu.Lock()
	m.objects[key] = out
	m.mu.Unlock()
	return key, nil
}

func (m *MemoryStore) Delete(ctx context.Context, ref string) error {
	m.mu.Lock()
	delete(m.objects, ref)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(ref string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[ref]
	return b, ok
}
