package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidSale is returned when a sale payload fails validation.
var ErrInvalidSale = errors.New("invalid sale")

// ErrInvalidStatus is returned for unknown status values.
var ErrInvalidStatus = errors.New("invalid status value")

// Service provides high-level sales operations on a Storage backend.
type Service struct {
	storage Storage
	logger  *zap.Logger
	now     func() time.Time
}

// SalesMetadata summarizes a search result.
type SalesMetadata struct {
	Quantity    int     `json:"quantity"`
	Completed   int     `json:"completed"`
	Pending     int     `json:"pending"`
	Refunded    int     `json:"refunded"`
	TotalAmount float64 `json:"total_amount"`
	TotalTax    float64 `json:"total_tax"`
}

// Filter narrows a search. Empty fields match everything.
type Filter struct {
	Status string
	SoldBy string
}

// NewService creates a new Service.
func NewService(storage Storage, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// RecordSale stores a sale as supplied. Totals are taken verbatim; an ID and
// timestamp are assigned when absent and the status defaults to completed.
func (s *Service) RecordSale(ctx context.Context, sale Sale) (*Sale, error) {
	if sale.Status == "" {
		sale.Status = StatusCompleted
	}
	if err := validate(sale); err != nil {
		return nil, err
	}
	if sale.ID == "" {
		sale.ID = uuid.NewString()
	}
	if sale.Timestamp == 0 {
		sale.Timestamp = s.now().Unix()
	}

	if err := s.storage.Set(ctx, &sale); err != nil {
		s.logger.Error("failed to save sale", zap.String("sale_id", sale.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to save sale: %w", err)
	}

	s.logger.Info("sale recorded",
		zap.String("sale_id", sale.ID),
		zap.Float64("final_total", sale.FinalTotal),
		zap.String("sold_by", sale.SoldByName),
	)
	return &sale, nil
}

// SearchSale returns the sales matching the filter together with their
// aggregated metadata.
func (s *Service) SearchSale(ctx context.Context, f Filter) ([]Sale, SalesMetadata, error) {
	if f.Status != "" && !validStatus(f.Status) {
		s.logger.Warn("invalid status filter provided", zap.String("status_filter", f.Status))
		return nil, SalesMetadata{}, fmt.Errorf("%w: '%s'", ErrInvalidStatus, f.Status)
	}

	allSales, err := s.storage.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to get all sales from storage", zap.Error(err))
		return nil, SalesMetadata{}, fmt.Errorf("failed to retrieve sales: %w", err)
	}

	filtered := make([]Sale, 0, len(allSales))
	metadata := SalesMetadata{}

	for _, sale := range allSales {
		if f.SoldBy != "" && sale.SoldByName != f.SoldBy {
			continue
		}
		if f.Status != "" && sale.Status != f.Status {
			continue
		}

		filtered = append(filtered, *sale)

		metadata.Quantity++
		metadata.TotalAmount += sale.FinalTotal
		metadata.TotalTax += sale.Tax
		switch sale.Status {
		case StatusCompleted:
			metadata.Completed++
		case StatusPending:
			metadata.Pending++
		case StatusRefunded:
			metadata.Refunded++
		}
	}

	s.logger.Debug("sales search completed",
		zap.String("status_filter", f.Status),
		zap.String("sold_by_filter", f.SoldBy),
		zap.Int("results_count", len(filtered)),
	)

	return filtered, metadata, nil
}

// Get returns one sale by ID, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*Sale, error) {
	sale, err := s.storage.Read(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("failed to read sale", zap.String("sale_id", id), zap.Error(err))
		}
		return nil, fmt.Errorf("failed to get sale %q: %w", id, err)
	}
	return sale, nil
}

// All returns every recorded sale, newest first.
func (s *Service) All(ctx context.Context) ([]Sale, error) {
	sales, _, err := s.SearchSale(ctx, Filter{})
	return sales, err
}

func validate(sale Sale) error {
	switch {
	case sale.PaymentMethod == "":
		return fmt.Errorf("%w: payment method is required", ErrInvalidSale)
	case sale.SoldByName == "":
		return fmt.Errorf("%w: seller name is required", ErrInvalidSale)
	case sale.Total < 0 || sale.Tax < 0 || sale.FinalTotal < 0:
		return fmt.Errorf("%w: amounts must not be negative", ErrInvalidSale)
	case sale.Timestamp < 0:
		return fmt.Errorf("%w: timestamp must not be negative", ErrInvalidSale)
	case !validStatus(sale.Status):
		return fmt.Errorf("%w: '%s'", ErrInvalidStatus, sale.Status)
	}
	return nil
}
