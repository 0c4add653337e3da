// Package app contains the application setup for the admin service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkovardin/digistore/internal/cache"
	"github.com/mkovardin/digistore/internal/config"
	"github.com/mkovardin/digistore/internal/service"
	"github.com/mkovardin/digistore/internal/storage"
	"github.com/mkovardin/digistore/internal/store"
	"github.com/mkovardin/digistore/internal/transport/rest"
	pkgconfig "github.com/mkovardin/digistore/pkg/config"
	"github.com/mkovardin/digistore/pkg/server"
	"github.com/mkovardin/digistore/pkg/web"
)

type Dependencies struct {
	ProductService service.ProductService
	Revalidator    cache.Revalidator
	Logger         *slog.Logger
}

// SetupDependencies wires the store, blob storage, revalidation signal and
// the product service from the loaded configuration.
func SetupDependencies(ctx context.Context, dbPool *pgxpool.Pool, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	blobs, err := setupBlobStore(ctx, &cfg.Storage)
	if err != nil {
		return nil, err
	}
	revalidator, err := setupRevalidator(ctx, &cfg.Redis)
	if err != nil {
		return nil, err
	}

	pService := service.NewService(store.NewPgStore(dbPool), blobs, revalidator, logger)

	return &Dependencies{
		ProductService: pService,
		Revalidator:    revalidator,
		Logger:         logger,
	}, nil
}

// SetupHttpHandler initializes the HTTP routes for the admin service.
// Also used by tests to exercise the full middleware chain.
func SetupHttpHandler(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps, cfg)
	return mux
}

// wireRoutes sets up the HTTP routes for the admin service.
func wireRoutes(mux *chi.Mux, deps *Dependencies, cfg *config.Config) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Logger)
	productHandler.RegisterRoutes(mux, web.RequireAdmin(cfg.Auth.AdminIDs))
}

// SetupHttpServer creates and configures an HTTP server for the admin service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps, cfg)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}

// setupBlobStore selects the asset storage backend from configuration.
func setupBlobStore(ctx context.Context, cfg *pkgconfig.StorageConfig) (storage.BlobStore, error) {
	switch cfg.Backend {
	case pkgconfig.StorageBackendMinio:
		blobs, err := storage.NewMinioStore(ctx, storage.MinioOptions{
			Endpoint:      cfg.Minio.Endpoint,
			AccessKey:     cfg.Minio.AccessKey,
			SecretKey:     cfg.Minio.SecretKey,
			UseSSL:        cfg.Minio.UseSSL,
			PrivateBucket: cfg.Minio.PrivateBucket,
			PublicBucket:  cfg.Minio.PublicBucket,
			PublicPrefix:  cfg.PublicPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to set up minio storage: %w", err)
		}
		return blobs, nil
	default:
		return storage.NewLocalStore(cfg.PrivateDir, cfg.PublicDir, cfg.PublicPrefix), nil
	}
}

// setupRevalidator selects the revalidation backend: redis when configured,
// otherwise the in-process fallback.
func setupRevalidator(ctx context.Context, cfg *pkgconfig.RedisConfig) (cache.Revalidator, error) {
	if cfg.Addr == "" {
		return cache.NewMemoryRevalidator(), nil
	}
	revalidator, err := cache.NewRedisRevalidator(ctx, cache.RedisOptions{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up redis revalidator: %w", err)
	}
	return revalidator, nil
}
