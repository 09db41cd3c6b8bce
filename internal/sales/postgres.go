package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema creates the sales table.
const Schema = `
CREATE TABLE IF NOT EXISTS sales (
	id             TEXT PRIMARY KEY,
	sold_at        BIGINT NOT NULL,
	total          DOUBLE PRECISION NOT NULL,
	tax            DOUBLE PRECISION NOT NULL,
	final_total    DOUBLE PRECISION NOT NULL,
	payment_method TEXT NOT NULL,
	sold_by_name   TEXT NOT NULL,
	customer_name  TEXT,
	customer_email TEXT,
	status         TEXT NOT NULL
)`

const selectSales = `
SELECT id, sold_at, total, tax, final_total, payment_method, sold_by_name,
       customer_name, customer_email, status
FROM sales`

// DB is the part of *pgxpool.Pool the storage uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStorage stores sales in Postgres.
type PostgresStorage struct {
	pool DB
}

// NewPostgresStorage creates the table if needed and returns the storage.
func NewPostgresStorage(ctx context.Context, pool DB) (*PostgresStorage, error) {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return nil, fmt.Errorf("create sales table: %w", err)
	}
	return &PostgresStorage{pool: pool}, nil
}

// Set inserts a sale. Returns ErrDuplicateID on primary key conflicts.
func (p *PostgresStorage) Set(ctx context.Context, sale *Sale) error {
	if sale.ID == "" {
		return ErrEmptyID
	}

	var name, email *string
	if sale.CustomerInfo != nil {
		name, email = &sale.CustomerInfo.Name, &sale.CustomerInfo.Email
	}

	_, err := p.pool.Exec(ctx, `
		INSERT INTO sales (id, sold_at, total, tax, final_total, payment_method,
		                   sold_by_name, customer_name, customer_email, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		sale.ID, sale.Timestamp, sale.Total, sale.Tax, sale.FinalTotal,
		sale.PaymentMethod, sale.SoldByName, name, email, sale.Status,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// Read fetches one sale by ID.
func (p *PostgresStorage) Read(ctx context.Context, id string) (*Sale, error) {
	rows, err := p.pool.Query(ctx, selectSales+` WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("query sale: %w", err)
	}
	sale, err := pgx.CollectExactlyOneRow(rows, scanSale)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan sale: %w", err)
	}
	return sale, nil
}

// GetAll returns every sale, newest first.
func (p *PostgresStorage) GetAll(ctx context.Context) ([]*Sale, error) {
	rows, err := p.pool.Query(ctx, selectSales+` ORDER BY sold_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	sales, err := pgx.CollectRows(rows, scanSale)
	if err != nil {
		return nil, fmt.Errorf("scan sales: %w", err)
	}
	return sales, nil
}

func scanSale(row pgx.CollectableRow) (*Sale, error) {
	var (
		s           Sale
		name, email *string
	)
	err := row.Scan(&s.ID, &s.Timestamp, &s.Total, &s.Tax, &s.FinalTotal,
		&s.PaymentMethod, &s.SoldByName, &name, &email, &s.Status)
	if err != nil {
		return nil, err
	}
	s.CustomerInfo = customerFrom(name, email)
	return &s, nil
}

// customerFrom rebuilds the optional customer from nullable columns.
func customerFrom(name, email *string) *CustomerInfo {
	if name == nil && email == nil {
		return nil
	}
	c := &CustomerInfo{}
	if name != nil {
		c.Name = *name
	}
	if email != nil {
		c.Email = *email
	}
	return c
}
