// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product represents a product row in the relational store.
type Product struct {
	ID           uuid.UUID
	Name         string
	Description  string
	PriceInCents int64
	IsAvailable  bool
	FilePath     string
	ImagePath    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProductWithOrderCount is the listing projection: the row attributes the
// admin table displays plus the number of orders referencing the product.
type ProductWithOrderCount struct {
	ID           uuid.UUID
	Name         string
	PriceInCents int64
	IsAvailable  bool
	OrdersCount  int64
}

// CreateParams holds the attributes for a new product row.
type CreateParams struct {
	Name         string
	Description  string
	PriceInCents int64
	FilePath     string
	ImagePath    string
}

// UpdateParams holds the replacement attributes for an existing product row.
// FilePath and ImagePath always carry the final paths, whether retained or new.
type UpdateParams struct {
	Name         string
	Description  string
	PriceInCents int64
	FilePath     string
	ImagePath    string
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAll returns all products with their order counts.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]ProductWithOrderCount, error)

	// Create adds a new product row. Availability is always false on creation.
	Create(ctx context.Context, params CreateParams) (*Product, error)

	// Update replaces a product's attributes.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Product, error)

	// UpdateAvailability sets the availability flag of a product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	UpdateAvailability(ctx context.Context, id uuid.UUID, available bool) error

	// DeleteByID removes a product row and returns the deleted row so the
	// caller can clean up its stored artifacts.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// CountOrders returns the number of orders referencing the product.
	CountOrders(ctx context.Context, id uuid.UUID) (int64, error)
}
