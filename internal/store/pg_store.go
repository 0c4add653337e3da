package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	perrors "github.com/mkovardin/digistore/internal/errors"
)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

const productColumns = `id, name, description, price_in_cents, is_available_for_purchase, file_path, image_path, created_at, updated_at`

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := p.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// FindAll retrieves all products with their order counts, newest first.
// It returns a slice of products, which may be empty if no products exist.
func (p *PgStore) FindAll(ctx context.Context) ([]ProductWithOrderCount, error) {
	rows, err := p.db.Query(ctx, `
		SELECT p.id, p.name, p.price_in_cents, p.is_available_for_purchase, COUNT(o.id) AS orders_count
		FROM products p
		LEFT JOIN orders o ON o.product_id = p.id
		GROUP BY p.id
		ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	defer rows.Close()

	products := make([]ProductWithOrderCount, 0)
	for rows.Next() {
		var item ProductWithOrderCount
		if err := rows.Scan(&item.ID, &item.Name, &item.PriceInCents, &item.IsAvailable, &item.OrdersCount); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}
	return products, nil
}

// Create adds a new product row. Availability is always false on creation,
// regardless of what the caller submitted.
func (p *PgStore) Create(ctx context.Context, params CreateParams) (*Product, error) {
	row := p.db.QueryRow(ctx, `
		INSERT INTO products (name, description, price_in_cents, is_available_for_purchase, file_path, image_path)
		VALUES ($1, $2, $3, FALSE, $4, $5)
		RETURNING `+productColumns,
		params.Name, params.Description, params.PriceInCents, params.FilePath, params.ImagePath)
	product, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// Update replaces a product's attributes.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Product, error) {
	row := p.db.QueryRow(ctx, `
		UPDATE products
		SET name = $2, description = $3, price_in_cents = $4, file_path = $5, image_path = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns,
		id, params.Name, params.Description, params.PriceInCents, params.FilePath, params.ImagePath)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// UpdateAvailability sets the availability flag of a product.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) UpdateAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	tag, err := p.db.Exec(ctx, `
		UPDATE products SET is_available_for_purchase = $2, updated_at = now() WHERE id = $1`,
		id, available)
	if err != nil {
		return fmt.Errorf("failed to update product availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

// DeleteByID removes a product row inside a transaction and returns the
// deleted row so the caller can remove its stored artifacts afterwards.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) DeleteByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `DELETE FROM products WHERE id = $1 RETURNING `+productColumns, id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return product, nil
}

// CountOrders returns the number of orders referencing the product.
func (p *PgStore) CountOrders(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	if err := p.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE product_id = $1`, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// scanProduct scans a single product row in productColumns order.
func scanProduct(row pgx.Row) (*Product, error) {
	var product Product
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.PriceInCents,
		&product.IsAvailable,
		&product.FilePath,
		&product.ImagePath,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &product, nil
}
