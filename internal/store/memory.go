package store

import (
	"context"
	"sync"
)

// MemoryBackend keeps the encoded document in memory. Loads always decode a
// fresh copy, so callers cannot mutate the stored state behind the store's back.
type MemoryBackend struct {
	data  []byte
	saves int
	mu    sync.RWMutex
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) Load(_ context.Context) (*Document, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return DecodeDocument(b.data)
}

func (b *MemoryBackend) Save(_ context.Context, doc *Document) error {
	data, err := EncodeDocument(doc)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = data
	b.saves++
	return nil
}

func (b *MemoryBackend) HealthCheck(_ context.Context) error {
	return nil
}

// Saves returns how many times the document has been written.
func (b *MemoryBackend) Saves() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.saves
}
