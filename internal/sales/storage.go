package sales

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrNotFound is returned when a sale with the given ID is not found.
var ErrNotFound = errors.New("sale not found")

// ErrEmptyID is returned when trying to store a sale with an empty ID.
var ErrEmptyID = errors.New("empty sale ID")

// ErrDuplicateID is returned when a sale with the same ID is already stored.
var ErrDuplicateID = errors.New("sale already recorded")

// Storage is the main interface for our sales storage layer.
// Sales are append-only: there is no update or delete.
type Storage interface {
	Set(ctx context.Context, sale *Sale) error
	Read(ctx context.Context, id string) (*Sale, error)
	GetAll(ctx context.Context) ([]*Sale, error)
}

// LocalStorage provides an in-memory implementation for storing sales.
type LocalStorage struct {
	mu sync.RWMutex
	m  map[string]*Sale
}

// NewLocalStorage instantiates a new LocalStorage for sales with an empty map.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		m: map[string]*Sale{},
	}
}

// Set stores a sale.
// Returns ErrEmptyID if the sale has an empty ID and ErrDuplicateID if it is
// already stored.
func (l *LocalStorage) Set(_ context.Context, sale *Sale) error {
	if sale.ID == "" {
		return ErrEmptyID
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.m[sale.ID]; ok {
		return ErrDuplicateID
	}
	l.m[sale.ID] = clone(sale)
	return nil
}

// Read retrieves a sale from the local storage by ID.
// Returns ErrNotFound if the sale is not found.
func (l *LocalStorage) Read(_ context.Context, id string) (*Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

// GetAll retrieves all sales, newest first.
func (l *LocalStorage) GetAll(_ context.Context) ([]*Sale, error) {
	l.mu.RLock()
	sales := make([]*Sale, 0, len(l.m))
	for _, s := range l.m {
		sales = append(sales, clone(s))
	}
	l.mu.RUnlock()

	sort.Slice(sales, func(i, j int) bool {
		if sales[i].Timestamp != sales[j].Timestamp {
			return sales[i].Timestamp > sales[j].Timestamp
		}
		return sales[i].ID < sales[j].ID
	})
	return sales, nil
}

// clone copies a sale including its customer details.
func clone(s *Sale) *Sale {
	cp := *s
	if s.CustomerInfo != nil {
		ci := *s.CustomerInfo
		cp.CustomerInfo = &ci
	}
	return &cp
}
