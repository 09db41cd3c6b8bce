package sales

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestService(t *testing.T) *Service {
	svc := NewService(NewLocalStorage(), zaptest.NewLogger(t))
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }
	return svc
}

// TestNewService verifies the service initialization.
func TestNewService(t *testing.T) {
	svc := NewService(NewLocalStorage(), nil)

	require.NotNil(t, svc)
	assert.NotNil(t, svc.storage)
	assert.NotNil(t, svc.logger, "nil logger should fall back to a no-op logger")
}

func TestRecordSale_AssignsIDAndTimestamp(t *testing.T) {
	svc := newTestService(t)

	sale, err := svc.RecordSale(context.Background(), Sale{
		Total: 10, Tax: 1, FinalTotal: 11, PaymentMethod: "cash", SoldByName: "Ana",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, sale.ID)
	assert.Equal(t, int64(1700000000), sale.Timestamp)
	assert.Equal(t, StatusCompleted, sale.Status)
	assert.Equal(t, 11.0, sale.FinalTotal, "totals are stored as supplied")
}

func TestRecordSale_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		sale Sale
		want error
	}{
		{"missing payment method", Sale{SoldByName: "Ana"}, ErrInvalidSale},
		{"missing seller", Sale{PaymentMethod: "card"}, ErrInvalidSale},
		{"negative total", Sale{PaymentMethod: "card", SoldByName: "Ana", Total: -1}, ErrInvalidSale},
		{"unknown status", Sale{PaymentMethod: "card", SoldByName: "Ana", Status: "lost"}, ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordSale(ctx, tt.sale)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRecordSale_DuplicateID(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	sale := Sale{ID: "s1", PaymentMethod: "cash", SoldByName: "Ana"}

	_, err := svc.RecordSale(ctx, sale)
	require.NoError(t, err)
	_, err = svc.RecordSale(ctx, sale)
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestGet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.RecordSale(ctx, Sale{
		ID: "s1", PaymentMethod: "cash", SoldByName: "Ana",
		CustomerInfo: &CustomerInfo{Name: "Marie"},
	})
	require.NoError(t, err)

	sale, err := svc.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Marie", sale.CustomerName())

	sale.CustomerInfo.Name = "changed"
	again, err := svc.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Marie", again.CustomerName(), "reads return copies")

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchSale_FiltersAndMetadata(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	seed := []Sale{
		{ID: "a", Timestamp: 100, Tax: 1, FinalTotal: 11, PaymentMethod: "cash", SoldByName: "Ana", Status: StatusCompleted},
		{ID: "b", Timestamp: 200, Tax: 2, FinalTotal: 22, PaymentMethod: "card", SoldByName: "Ana", Status: StatusRefunded},
		{ID: "c", Timestamp: 300, Tax: 3, FinalTotal: 33, PaymentMethod: "card", SoldByName: "Luis", Status: StatusPending},
	}
	for _, s := range seed {
		_, err := svc.RecordSale(ctx, s)
		require.NoError(t, err)
	}

	all, meta, err := svc.SearchSale(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID, "newest first")
	assert.Equal(t, 3, meta.Quantity)
	assert.Equal(t, 1, meta.Completed)
	assert.Equal(t, 1, meta.Pending)
	assert.Equal(t, 1, meta.Refunded)
	assert.InDelta(t, 66.0, meta.TotalAmount, 1e-9)
	assert.InDelta(t, 6.0, meta.TotalTax, 1e-9)

	bySeller, meta, err := svc.SearchSale(ctx, Filter{SoldBy: "Ana", Status: StatusRefunded})
	require.NoError(t, err)
	require.Len(t, bySeller, 1)
	assert.Equal(t, "b", bySeller[0].ID)
	assert.Equal(t, 1, meta.Refunded)

	_, _, err = svc.SearchSale(ctx, Filter{Status: "approved"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSale_CustomerName(t *testing.T) {
	assert.Equal(t, "", Sale{}.CustomerName())
	assert.Equal(t, "Marie", Sale{CustomerInfo: &CustomerInfo{Name: "Marie"}}.CustomerName())
	assert.Equal(t, "2023-11-14", Sale{Timestamp: 1700000000}.Time().Format("2006-01-02"))
}
