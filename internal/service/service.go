// Package service implements the admin product-management workflow.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mkovardin/digistore/internal/cache"
	"github.com/mkovardin/digistore/internal/forms"
	"github.com/mkovardin/digistore/internal/storage"
	"github.com/mkovardin/digistore/internal/store"
)

// Pages whose cached renders depend on the product catalog. Every successful
// mutation marks both stale.
const (
	pageHome     = "/"
	pageProducts = "/products"
)

// ProductService defines the admin-facing product management operations.
// Inputs are assumed to have passed form validation.
type ProductService interface {
	// Create stores both asset payloads and inserts the product row.
	// Availability is always false on creation.
	Create(ctx context.Context, form forms.ProductForm) (*ProductDto, error)

	// Update replaces the product's attributes. Assets are replaced only for
	// payloads present on the form; omitted payloads keep the stored artifacts.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id uuid.UUID, form forms.ProductForm) (*ProductDto, error)

	// ToggleAvailability sets the availability flag.
	// Returns ErrProductNotFound if no product exists with the given ID.
	ToggleAvailability(ctx context.Context, id uuid.UUID, available bool) error

	// Delete removes the product row and both of its stored artifacts.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns all products with their order counts for the admin table.
	List(ctx context.Context) ([]ProductListItemDto, error)

	// FindByID retrieves a single product, e.g. to populate the edit form.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error)

	// Download opens the product's private file and returns it together with
	// the filename it was originally uploaded under.
	Download(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, error)
}

// Service implements ProductService on top of the relational store, the blob
// store and the page revalidation signal.
type Service struct {
	repository  store.ProductStore
	blobs       storage.BlobStore
	revalidator cache.Revalidator
	logger      *slog.Logger
}

// NewService creates a new instance of ProductService.
func NewService(repo store.ProductStore, blobs storage.BlobStore, revalidator cache.Revalidator, logger *slog.Logger) *Service {
	return &Service{
		repository:  repo,
		blobs:       blobs,
		revalidator: revalidator,
		logger:      logger.With("component", "service"),
	}
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	Description            string `json:"description"`
	PriceInCents           int64  `json:"priceInCents"`
	IsAvailableForPurchase bool   `json:"isAvailableForPurchase"`
	FilePath               string `json:"filePath"`
	ImagePath              string `json:"imagePath"`
}

// ProductListItemDto is the listing projection for the admin table.
type ProductListItemDto struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	PriceInCents           int64  `json:"priceInCents"`
	IsAvailableForPurchase bool   `json:"isAvailableForPurchase"`
	OrdersCount            int64  `json:"ordersCount"`
}

// blobRef identifies a stored artifact for deferred cleanup.
type blobRef struct {
	kind storage.Kind
	path string
}

// Create stores the file and image payloads, then inserts the row. A failed
// insert removes the just-written blobs so no orphaned artifacts remain.
func (s *Service) Create(ctx context.Context, form forms.ProductForm) (*ProductDto, error) {
	filePath, err := s.blobs.Put(ctx, storage.KindFile, form.File.Filename, form.File.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to store product file: %w", err)
	}
	imagePath, err := s.blobs.Put(ctx, storage.KindImage, form.Image.Filename, form.Image.Data)
	if err != nil {
		s.removeBlobs(ctx, blobRef{storage.KindFile, filePath})
		return nil, fmt.Errorf("failed to store product image: %w", err)
	}

	product, err := s.repository.Create(ctx, store.CreateParams{
		Name:         form.Name,
		Description:  form.Description,
		PriceInCents: form.PriceInCents,
		FilePath:     filePath,
		ImagePath:    imagePath,
	})
	if err != nil {
		s.removeBlobs(ctx, blobRef{storage.KindFile, filePath}, blobRef{storage.KindImage, imagePath})
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.revalidate(ctx)
	return toDto(product), nil
}

// Update replaces the product's attributes. New asset payloads are written
// before the row update and the replaced artifacts are removed only after it
// succeeds, so the row never references a missing artifact.
func (s *Service) Update(ctx context.Context, id uuid.UUID, form forms.ProductForm) (*ProductDto, error) {
	existing, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %s for update: %w", id, err)
	}

	filePath := existing.FilePath
	imagePath := existing.ImagePath
	var written, replaced []blobRef

	if form.File != nil {
		filePath, err = s.blobs.Put(ctx, storage.KindFile, form.File.Filename, form.File.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to store replacement file: %w", err)
		}
		written = append(written, blobRef{storage.KindFile, filePath})
		replaced = append(replaced, blobRef{storage.KindFile, existing.FilePath})
	}
	if form.Image != nil {
		imagePath, err = s.blobs.Put(ctx, storage.KindImage, form.Image.Filename, form.Image.Data)
		if err != nil {
			s.removeBlobs(ctx, written...)
			return nil, fmt.Errorf("failed to store replacement image: %w", err)
		}
		written = append(written, blobRef{storage.KindImage, imagePath})
		replaced = append(replaced, blobRef{storage.KindImage, existing.ImagePath})
	}

	updated, err := s.repository.Update(ctx, id, store.UpdateParams{
		Name:         form.Name,
		Description:  form.Description,
		PriceInCents: form.PriceInCents,
		FilePath:     filePath,
		ImagePath:    imagePath,
	})
	if err != nil {
		s.removeBlobs(ctx, written...)
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}

	// The row now points at the new artifacts; the replaced ones are garbage.
	s.removeBlobs(ctx, replaced...)
	s.revalidate(ctx)
	return toDto(updated), nil
}

// ToggleAvailability sets the availability flag and nothing else.
func (s *Service) ToggleAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	if err := s.repository.UpdateAvailability(ctx, id, available); err != nil {
		return fmt.Errorf("failed to update availability for product %s: %w", id, err)
	}
	s.revalidate(ctx)
	return nil
}

// Delete removes the row first, then both stored artifacts. A missing row
// means not-found and no file cleanup happens.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.repository.DeleteByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}

	fileErr := s.blobs.Remove(ctx, storage.KindFile, product.FilePath)
	imageErr := s.blobs.Remove(ctx, storage.KindImage, product.ImagePath)
	if err := errors.Join(fileErr, imageErr); err != nil {
		return fmt.Errorf("failed to remove artifacts of product %s: %w", id, err)
	}

	s.revalidate(ctx)
	return nil
}

// List returns all products with their order counts.
func (s *Service) List(ctx context.Context) ([]ProductListItemDto, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	items := make([]ProductListItemDto, len(products))
	for i, p := range products {
		items[i] = ProductListItemDto{
			ID:                     p.ID.String(),
			Name:                   p.Name,
			PriceInCents:           p.PriceInCents,
			IsAvailableForPurchase: p.IsAvailable,
			OrdersCount:            p.OrdersCount,
		}
	}
	return items, nil
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	return toDto(product), nil
}

// Download opens the product's private file for streaming.
func (s *Service) Download(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch product %s for download: %w", id, err)
	}
	rc, err := s.blobs.Open(ctx, storage.KindFile, product.FilePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file of product %s: %w", id, err)
	}
	return rc, storage.OriginalName(product.FilePath), nil
}

// revalidate marks the catalog pages stale. The signal is advisory: a failure
// is logged, not propagated, since the mutation itself has committed.
func (s *Service) revalidate(ctx context.Context) {
	if err := s.revalidator.Revalidate(ctx, pageHome, pageProducts); err != nil {
		s.logger.WarnContext(ctx, "Failed to revalidate catalog pages", "error", err)
	}
}

// removeBlobs is best-effort cleanup for artifacts that lost their row.
func (s *Service) removeBlobs(ctx context.Context, refs ...blobRef) {
	for _, ref := range refs {
		if err := s.blobs.Remove(ctx, ref.kind, ref.path); err != nil {
			s.logger.WarnContext(ctx, "Failed to remove orphaned artifact", "kind", ref.kind.String(), "path", ref.path, "error", err)
		}
	}
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:                     product.ID.String(),
		Name:                   product.Name,
		Description:            product.Description,
		PriceInCents:           product.PriceInCents,
		IsAvailableForPurchase: product.IsAvailable,
		FilePath:               product.FilePath,
		ImagePath:              product.ImagePath,
	}
}
