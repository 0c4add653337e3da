// Package rest provides HTTP handlers for the admin product-management surface.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	producterrors "github.com/mkovardin/digistore/internal/errors"
	"github.com/mkovardin/digistore/internal/forms"
	"github.com/mkovardin/digistore/internal/service"
	"github.com/mkovardin/digistore/pkg/web"
)

// adminProductsPath is where a successful mutation points the client back to.
const adminProductsPath = "/admin/products"

type Handler struct {
	service  service.ProductService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the admin product API with the provided service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the admin product API.
// adminOnly guards the whole subtree.
func (h *Handler) RegisterRoutes(r *chi.Mux, adminOnly func(http.Handler) http.Handler) {
	r.Route("/api/v1/admin/products", func(r chi.Router) {
		r.Use(web.AuthMiddleware)
		r.Use(adminOnly)

		r.Get("/", h.List)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Put("/availability", h.ToggleAvailability)
			r.Delete("/", h.DeleteByID)
			r.Get("/download", h.Download)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// List returns all products with their order counts for the admin table.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	mLogger.DebugContext(r.Context(), "Received request to list products")
	list, err := h.service.List(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindByID retrieves a product by its ID, e.g. to populate the edit form.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, producterrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// Create handles the multipart product creation form.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	form, ok := h.parseForm(w, r, mLogger, true)
	if !ok {
		return
	}

	newProduct, err := h.service.Create(r.Context(), form)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", newProduct.ID, "Name", newProduct.Name)
	w.Header().Set("Location", adminProductsPath)
	web.RespondJSON(w, mLogger, http.StatusCreated, newProduct)
}

// Update handles the multipart product update form. File and image payloads
// are optional; omitted ones keep the stored artifacts.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	form, ok := h.parseForm(w, r, mLogger, false)
	if !ok {
		return
	}

	updated, err := h.service.Update(r.Context(), id, form)
	if err != nil {
		if errors.Is(err, producterrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for update", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error updating product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to update product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	w.Header().Set("Location", adminProductsPath)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

type availabilityDto struct {
	IsAvailableForPurchase *bool `json:"isAvailableForPurchase"`
}

// ToggleAvailability sets the availability flag of a product.
func (h *Handler) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	var dto availabilityDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil || dto.IsAvailableForPurchase == nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.ToggleAvailability(r.Context(), id, *dto.IsAvailableForPurchase); err != nil {
		if errors.Is(err, producterrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for availability toggle", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error toggling product availability", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to toggle availability of product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product availability toggled", "ID", id, "available", *dto.IsAvailableForPurchase)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteByID deletes a product and both of its stored artifacts.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, producterrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for deletion", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error deleting product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// Download streams the product's private file as an attachment.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	rc, filename, err := h.service.Download(r.Context(), id)
	if err != nil {
		if errors.Is(err, producterrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for download", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error opening product file", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to download file of product with ID %s", id))
		return
	}
	defer func() { _ = rc.Close() }()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := io.Copy(w, rc); err != nil {
		mLogger.ErrorContext(r.Context(), "Error streaming product file", "ID", id, "error", err)
	}
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// parseForm decodes and validates the multipart product form. On validation
// failure it writes the field-error mapping and reports false; no side
// effects have happened at that point.
func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, requireAssets bool) (forms.ProductForm, bool) {
	form, parseErrors, err := forms.ParseProduct(r)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error parsing multipart form", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return forms.ProductForm{}, false
	}

	fieldErrors := form.Validate(h.validate, requireAssets)
	for field, messages := range parseErrors {
		fieldErrors[field] = append(messages, fieldErrors[field]...)
	}
	if len(fieldErrors) > 0 {
		mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", fieldErrors)
		web.RespondFieldErrors(w, mLogger, fieldErrors)
		return forms.ProductForm{}, false
	}
	return form, true
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
