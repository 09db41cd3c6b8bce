package inventory

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrNotFound is returned when a product with the given ID is not stored.
var ErrNotFound = errors.New("product not found")

// ErrEmptyID is returned when trying to store a product with an empty ID.
var ErrEmptyID = errors.New("empty product ID")

// Storage persists products.
type Storage interface {
	Set(ctx context.Context, p *Product) error
	Read(ctx context.Context, id string) (*Product, error)
	GetAll(ctx context.Context) ([]*Product, error)
}

// LocalStorage keeps products in memory.
type LocalStorage struct {
	mu sync.RWMutex
	m  map[string]Product
}

// NewLocalStorage returns an empty LocalStorage.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{m: map[string]Product{}}
}

// Set inserts or replaces a product.
func (l *LocalStorage) Set(_ context.Context, p *Product) error {
	if p.ID == "" {
		return ErrEmptyID
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.m[p.ID] = *p
	return nil
}

// Read returns ErrNotFound for unknown IDs.
func (l *LocalStorage) Read(_ context.Context, id string) (*Product, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// GetAll returns all products ordered by name.
func (l *LocalStorage) GetAll(_ context.Context) ([]*Product, error) {
	l.mu.RLock()
	out := make([]*Product, 0, len(l.m))
	for _, p := range l.m {
		p := p
		out = append(out, &p)
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
