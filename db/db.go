// Package db persists alignments as lists of triples keyed by an alignment id.
package db

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/jsphweid/perfdex/model"
)

var ErrNotFound = errors.New("alignment not found")

type Store interface {
	// Save replaces whatever was stored under id.
	Save(ctx context.Context, id string, triples []model.Triple) error
	Load(ctx context.Context, id string) ([]model.Triple, error)
}

type MemoryStore struct {
	mu    sync.RWMutex
	items map[string][]model.Triple
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]model.Triple)}
}

func (m *MemoryStore) Save(_ context.Context, id string, triples []model.Triple) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// an empty alignment is stored as no alignment, as it is in dynamo
	if len(triples) == 0 {
		delete(m.items, id)
		return nil
	}
	m.items[id] = append([]model.Triple(nil), triples...)
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) ([]model.Triple, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	triples, ok := m.items[id]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, id)
	}
	return append([]model.Triple(nil), triples...), nil
}
