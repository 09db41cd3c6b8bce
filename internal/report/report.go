// Package report turns sales and inventory records into downloadable CSV and
// XLSX artifacts.
package report

import (
	"fmt"
	"strconv"

	"api_pos/internal/inventory"
	"api_pos/internal/sales"
)

// Kind names the record type a report covers.
type Kind string

const (
	KindSales     Kind = "sales"
	KindInventory Kind = "inventory"
)

// ParseKind validates a kind taken from a URL or query string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindSales, KindInventory:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown report kind %q", s)
}

var (
	salesHeader     = []string{"Date", "ID", "Total", "Tax", "Final Total", "Payment Method", "Sold By", "Customer", "Status"}
	inventoryHeader = []string{"ID", "Name", "Category", "Price", "Stock", "Min Stock", "Supplier"}
)

// Report is a homogeneous list of records. The only implementations are
// SalesReport and InventoryReport.
type Report interface {
	Kind() Kind
	Len() int

	header() []string
	// records renders every row as text in header order.
	records() [][]string
	// cells renders every row with numeric columns kept numeric.
	cells() [][]any
}

// SalesReport is a report over sales.
type SalesReport struct {
	Rows []sales.Sale
}

// InventoryReport is a report over products.
type InventoryReport struct {
	Rows []inventory.Product
}

func (SalesReport) Kind() Kind       { return KindSales }
func (r SalesReport) Len() int       { return len(r.Rows) }
func (SalesReport) header() []string { return salesHeader }

func (r SalesReport) records() [][]string {
	out := make([][]string, 0, len(r.Rows))
	for _, s := range r.Rows {
		out = append(out, []string{
			saleDate(s),
			s.ID,
			formatFloat(s.Total),
			formatFloat(s.Tax),
			formatFloat(s.FinalTotal),
			s.PaymentMethod,
			s.SoldByName,
			s.CustomerName(),
			s.Status,
		})
	}
	return out
}

func (r SalesReport) cells() [][]any {
	out := make([][]any, 0, len(r.Rows))
	for _, s := range r.Rows {
		out = append(out, []any{
			saleDate(s), s.ID, s.Total, s.Tax, s.FinalTotal,
			s.PaymentMethod, s.SoldByName, s.CustomerName(), s.Status,
		})
	}
	return out
}

func (InventoryReport) Kind() Kind       { return KindInventory }
func (r InventoryReport) Len() int       { return len(r.Rows) }
func (InventoryReport) header() []string { return inventoryHeader }

func (r InventoryReport) records() [][]string {
	out := make([][]string, 0, len(r.Rows))
	for _, p := range r.Rows {
		out = append(out, []string{
			p.ID,
			p.Name,
			p.Category,
			formatFloat(p.Price),
			strconv.Itoa(p.Stock),
			strconv.Itoa(p.MinStockLevel),
			p.Supplier,
		})
	}
	return out
}

func (r InventoryReport) cells() [][]any {
	out := make([][]any, 0, len(r.Rows))
	for _, p := range r.Rows {
		out = append(out, []any{
			p.ID, p.Name, p.Category, p.Price, p.Stock, p.MinStockLevel, p.Supplier,
		})
	}
	return out
}

// saleDate is the date-only ISO form of the sale timestamp, in UTC.
func saleDate(s sales.Sale) string {
	return s.Time().Format("2006-01-02")
}

// formatFloat prints the shortest decimal that round-trips: 9.99, 5, 0.1.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
