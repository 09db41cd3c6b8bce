package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema creates the products table.
const Schema = `
CREATE TABLE IF NOT EXISTS products (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	category        TEXT NOT NULL,
	price           DOUBLE PRECISION NOT NULL,
	stock           INTEGER NOT NULL,
	min_stock_level INTEGER NOT NULL,
	supplier        TEXT NOT NULL DEFAULT ''
)`

const selectProducts = `
SELECT id, name, category, price, stock, min_stock_level, supplier FROM products`

// DB is the part of *pgxpool.Pool the storage uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStorage stores products in Postgres.
type PostgresStorage struct {
	pool DB
}

// NewPostgresStorage creates the table if needed and returns the storage.
func NewPostgresStorage(ctx context.Context, pool DB) (*PostgresStorage, error) {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return nil, fmt.Errorf("create products table: %w", err)
	}
	return &PostgresStorage{pool: pool}, nil
}

// Set upserts a product.
func (p *PostgresStorage) Set(ctx context.Context, prod *Product) error {
	if prod.ID == "" {
		return ErrEmptyID
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO products (id, name, category, price, stock, min_stock_level, supplier)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			price = EXCLUDED.price,
			stock = EXCLUDED.stock,
			min_stock_level = EXCLUDED.min_stock_level,
			supplier = EXCLUDED.supplier`,
		prod.ID, prod.Name, prod.Category, prod.Price, prod.Stock, prod.MinStockLevel, prod.Supplier,
	)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

// Read fetches one product by ID.
func (p *PostgresStorage) Read(ctx context.Context, id string) (*Product, error) {
	rows, err := p.pool.Query(ctx, selectProducts+` WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	prod, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return prod, nil
}

// GetAll returns all products ordered by name.
func (p *PostgresStorage) GetAll(ctx context.Context) ([]*Product, error) {
	rows, err := p.pool.Query(ctx, selectProducts+` ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("scan products: %w", err)
	}
	return products, nil
}

func scanProduct(row pgx.CollectableRow) (*Product, error) {
	var prod Product
	err := row.Scan(&prod.ID, &prod.Name, &prod.Category, &prod.Price,
		&prod.Stock, &prod.MinStockLevel, &prod.Supplier)
	if err != nil {
		return nil, err
	}
	return &prod, nil
}
