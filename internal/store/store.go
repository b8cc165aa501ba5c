// Package store persists the classroom document and serializes access to it.
//
// Every operation loads the whole document, works on an in-memory copy and, for
// mutations, writes the whole document back. Store holds a mutex around that
// cycle so overlapping requests queue instead of overwriting each other.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/p-n-ai/pai-classroom/internal/classroom"
)

// Backend loads and saves the whole document.
type Backend interface {
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, doc *Document) error
	HealthCheck(ctx context.Context) error
}

// Store is the single access point to the persisted document.
type Store struct {
	backend Backend
	ids     *IDMinter
	mu      sync.Mutex
}

// New creates a store over the given backend.
func New(backend Backend) *Store {
	return &Store{
		backend: backend,
		ids:     NewIDMinter(time.Now),
	}
}

// View runs fn against a freshly loaded document. Changes made by fn are discarded.
func (s *Store) View(ctx context.Context, fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	return fn(doc)
}

// Update runs fn against a freshly loaded document and saves it if fn succeeds.
func (s *Store) Update(ctx context.Context, fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if err := fn(doc); err != nil {
		return err
	}
	if err := s.backend.Save(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// NextID mints a new record identifier.
func (s *Store) NextID() classroom.ID {
	return s.ids.Next()
}

// IDs exposes the minter so other components (generation) share one sequence.
func (s *Store) IDs() *IDMinter {
	return s.ids
}

// HealthCheck verifies the backend is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.backend.HealthCheck(ctx)
}

// IDMinter hands out time-based identifiers that never repeat within a process.
type IDMinter struct {
	now  func() time.Time
	last int64
	mu   sync.Mutex
}

// NewIDMinter creates a minter reading the given clock.
func NewIDMinter(now func() time.Time) *IDMinter {
	return &IDMinter{now: now}
}

// Next returns the current time in milliseconds, bumped past the previous value
// when the clock has not advanced.
func (m *IDMinter) Next() classroom.ID {
	m.mu.Lock()
	defer m.mu.Unlock()

	ms := m.now().UnixMilli()
	if ms <= m.last {
		ms = m.last + 1
	}
	m.last = ms
	return classroom.ID(ms)
}
