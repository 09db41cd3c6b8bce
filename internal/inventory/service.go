package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidProduct is returned when a product payload fails validation.
var ErrInvalidProduct = errors.New("invalid product")

// Service lists and records products.
type Service struct {
	storage Storage
	logger  *zap.Logger
}

// NewService creates a new Service.
func NewService(storage Storage, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{storage: storage, logger: logger}
}

// SaveProduct validates and stores a product, generating an ID when absent.
func (s *Service) SaveProduct(ctx context.Context, p Product) (*Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	switch {
	case p.Name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case p.Category == "":
		return nil, fmt.Errorf("%w: category is required", ErrInvalidProduct)
	case p.Price < 0:
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	case p.Stock < 0 || p.MinStockLevel < 0:
		return nil, fmt.Errorf("%w: stock levels must not be negative", ErrInvalidProduct)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	if err := s.storage.Set(ctx, &p); err != nil {
		s.logger.Error("failed to save product", zap.String("product_id", p.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to save product: %w", err)
	}
	s.logger.Info("product saved", zap.String("product_id", p.ID), zap.Int("stock", p.Stock))
	return &p, nil
}

// List returns products, optionally restricted to one category
// (case-insensitive).
func (s *Service) List(ctx context.Context, category string) ([]Product, error) {
	all, err := s.storage.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to get products from storage", zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	out := make([]Product, 0, len(all))
	for _, p := range all {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

// Get returns one product by ID, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	p, err := s.storage.Read(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("failed to read product", zap.String("product_id", id), zap.Error(err))
		}
		return nil, fmt.Errorf("failed to get product %q: %w", id, err)
	}
	return p, nil
}

// LowStock returns the products whose stock is at or below their minimum.
func (s *Service) LowStock(ctx context.Context) ([]Product, error) {
	all, err := s.List(ctx, "")
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0)
	for _, p := range all {
		if p.LowStock() {
			out = append(out, p)
		}
	}
	return out, nil
}
