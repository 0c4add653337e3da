package store

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	perrors "github.com/mkovardin/digistore/internal/errors"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const skipIntegrationTests = "ADMIN_SVC_SKIP_INTEGRATION_TESTS"

// ProductStoreSuite is a test suite for the ProductStore implementation.
type ProductStoreSuite struct {
	suite.Suite                             // Embedding testify suite for structured testing
	pgContainer *postgres.PostgresContainer // PostgreSQL container for E2E tests
	dbPool      *pgxpool.Pool               // PostgreSQL connection pool for E2E tests
	store       ProductStore                //
	logger      *slog.Logger                // Logger for the test suite
	ctx         context.Context             // Context for the test suite, used for cancellation and timeouts
}

// SetupSuite initializes the test suite by setting up a PostgreSQL container,
func (s *ProductStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dbName := "products_db"
	dbUser := "user"
	dbPassword := "password"

	// 1. Start a PostgreSQL container with the specified configuration. Wait for the container to be ready.
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		// Wait for a specific log message indicating the database service is ready.
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		// Ensure the container is ready to accept connections on the default PostgreSQL port.
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	// 2. Get the connection string from the container
	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	// 3. create a new pgxpool instance using the connection string
	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgxpool")

	// 3.1 Ping the database to ensure the connection is established
	for i := range 10 {
		s.logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		err = s.dbPool.Ping(s.ctx)
		if err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	// 4. Database migration
	// Build path to migrations directory
	wd, _ := os.Getwd()
	migrationsPath := filepath.Join(wd, "../../db/migrations")
	sourceURL := "file://" + migrationsPath
	// Create a new migrate instance with the source URL and connection string
	m, err := migrate.New(sourceURL, connStr)
	require.NoError(s.T(), err, "Failed to create migrate instance")
	// Apply all available migrations
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		require.NoError(s.T(), err, "Failed to apply migrations")
	}
	s.logger.Info("Migrations applied for E2E tests")

	s.store = NewPgStore(s.dbPool)
	s.logger.Info("Initialization complete for ProductStoreSuite")
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *ProductStoreSuite) TearDownSuite() {
	s.logger.Info("Tearing down suite...")
	if s.dbPool != nil {
		s.dbPool.Close()
		s.logger.Info("DB pool closed.")
	}
	if s.pgContainer != nil {
		s.logger.Info("Terminating PostgreSQL container...")
		err := s.pgContainer.Terminate(s.ctx)
		if err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		} else {
			s.logger.Info("PostgreSQL container terminated.")
		}
	}
}

// SetupTest prepares the database for each test by truncating the products table.
func (s *ProductStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE products RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err, "Failed to truncate products table")
}

// TestProductStoreIntegration runs the ProductStore integration tests.
func TestProductStoreIntegration(t *testing.T) {
	// Skip integration tests if the environment variable is set
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	// Run the test suite
	suite.Run(t, new(ProductStoreSuite))
}

// createTestProduct is a helper function to create a product for testing purposes.
func (s *ProductStoreSuite) createTestProduct(name string) *Product {
	s.T().Helper()
	product, err := s.store.Create(s.ctx, CreateParams{
		Name:         name,
		Description:  "Description of " + name,
		PriceInCents: 1500,
		FilePath:     "data/products/" + uuid.NewString() + "-" + name + ".pdf",
		ImagePath:    "/products/" + uuid.NewString() + "-" + name + ".png",
	})
	require.NoError(s.T(), err, "createTestProduct helper failed to create product")
	return product
}

// createTestOrder inserts an order row referencing the given product.
func (s *ProductStoreSuite) createTestOrder(productID uuid.UUID) {
	s.T().Helper()
	_, err := s.dbPool.Exec(s.ctx,
		`INSERT INTO orders (product_id, price_paid_in_cents) VALUES ($1, $2)`,
		productID, 1500)
	require.NoError(s.T(), err, "createTestOrder helper failed to insert order")
}

func (s *ProductStoreSuite) TestCreate() {
	s.SetupTest()
	// given
	params := CreateParams{
		Name:         "Widget",
		Description:  "A widget",
		PriceInCents: 500,
		FilePath:     "data/products/abc-manual.pdf",
		ImagePath:    "/products/abc-cover.png",
	}

	// when
	created, err := s.store.Create(s.ctx, params)

	// then
	require.NoError(s.T(), err, "Create should not return an error")
	require.NotEqual(s.T(), uuid.Nil, created.ID, "Created product ID should be set")
	require.Equal(s.T(), params.Name, created.Name)
	require.Equal(s.T(), params.Description, created.Description)
	require.Equal(s.T(), params.PriceInCents, created.PriceInCents)
	require.False(s.T(), created.IsAvailable, "New products must not be available for purchase")
	require.Equal(s.T(), params.FilePath, created.FilePath)
	require.Equal(s.T(), params.ImagePath, created.ImagePath)
	require.NotZero(s.T(), created.CreatedAt, "CreatedAt should be set")
}

func (s *ProductStoreSuite) TestFindByID() {
	s.SetupTest()
	// given
	created := s.createTestProduct("Widget")

	// when
	fetched, err := s.store.FindByID(s.ctx, created.ID)

	// then
	require.NoError(s.T(), err, "FindByID should not return an error")
	require.Equal(s.T(), created.ID, fetched.ID)
	require.Equal(s.T(), created.Name, fetched.Name)
	require.Equal(s.T(), created.FilePath, fetched.FilePath)
	require.Equal(s.T(), created.ImagePath, fetched.ImagePath)
	require.WithinDuration(s.T(), created.CreatedAt, fetched.CreatedAt, time.Second)
}

func (s *ProductStoreSuite) TestFindByID_NotFound() {
	s.SetupTest()
	// given (no products created)

	// when
	_, err := s.store.FindByID(s.ctx, uuid.New())

	// then
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound, "Expected ErrProductNotFound for non-existent product")
}

func (s *ProductStoreSuite) TestFindAll() {
	s.SetupTest()
	// given
	first := s.createTestProduct("First")
	second := s.createTestProduct("Second")
	s.createTestOrder(second.ID)
	s.createTestOrder(second.ID)

	// when
	products, err := s.store.FindAll(s.ctx)

	// then
	require.NoError(s.T(), err, "FindAll should not return an error")
	require.Len(s.T(), products, 2, "Should retrieve both products")

	counts := make(map[uuid.UUID]int64, len(products))
	for _, p := range products {
		counts[p.ID] = p.OrdersCount
	}
	require.Equal(s.T(), int64(0), counts[first.ID], "Product without orders should count zero")
	require.Equal(s.T(), int64(2), counts[second.ID], "Order count should reflect inserted orders")
}

func (s *ProductStoreSuite) TestFindAll_Empty() {
	s.SetupTest()
	// given (no products created)

	// when
	products, err := s.store.FindAll(s.ctx)

	// then
	require.NoError(s.T(), err, "FindAll should not return an error")
	require.NotNil(s.T(), products, "Products should not be nil")
	require.Len(s.T(), products, 0, "Should retrieve no products")
}

func (s *ProductStoreSuite) TestUpdate() {
	s.SetupTest()
	// given
	created := s.createTestProduct("Widget")
	input := UpdateParams{
		Name:         "Widget v2",
		Description:  "Updated description",
		PriceInCents: 900,
		FilePath:     "data/products/new-manual.pdf",
		ImagePath:    "/products/new-cover.png",
	}

	// when
	updated, err := s.store.Update(s.ctx, created.ID, input)

	// then
	require.NoError(s.T(), err, "Update should not return an error")
	require.Equal(s.T(), created.ID, updated.ID)
	require.Equal(s.T(), input.Name, updated.Name)
	require.Equal(s.T(), input.Description, updated.Description)
	require.Equal(s.T(), input.PriceInCents, updated.PriceInCents)
	require.Equal(s.T(), input.FilePath, updated.FilePath)
	require.Equal(s.T(), input.ImagePath, updated.ImagePath)
	require.Equal(s.T(), created.IsAvailable, updated.IsAvailable, "Update must not change availability")
	require.True(s.T(), updated.UpdatedAt.After(updated.CreatedAt) || updated.UpdatedAt.Equal(updated.CreatedAt))
}

func (s *ProductStoreSuite) TestUpdate_NotFound() {
	s.SetupTest()
	// given (no products created)

	// when
	updated, err := s.store.Update(s.ctx, uuid.New(), UpdateParams{Name: "Ghost", Description: "x", PriceInCents: 1})

	// then
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
	require.Nil(s.T(), updated)
}

func (s *ProductStoreSuite) TestUpdateAvailability() {
	s.SetupTest()
	// given
	created := s.createTestProduct("Widget")
	require.False(s.T(), created.IsAvailable)

	// when
	err := s.store.UpdateAvailability(s.ctx, created.ID, true)

	// then
	require.NoError(s.T(), err, "UpdateAvailability should not return an error")
	fetched, err := s.store.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.True(s.T(), fetched.IsAvailable, "Availability flag should be persisted")
}

func (s *ProductStoreSuite) TestUpdateAvailability_NotFound() {
	s.SetupTest()

	err := s.store.UpdateAvailability(s.ctx, uuid.New(), true)

	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *ProductStoreSuite) TestDeleteByID() {
	s.SetupTest()
	// given
	created := s.createTestProduct("Widget")
	s.createTestOrder(created.ID)

	// when
	deleted, err := s.store.DeleteByID(s.ctx, created.ID)

	// then
	require.NoError(s.T(), err, "DeleteByID should not return an error")
	require.Equal(s.T(), created.ID, deleted.ID)
	require.Equal(s.T(), created.FilePath, deleted.FilePath, "Deleted row must carry paths for artifact cleanup")
	require.Equal(s.T(), created.ImagePath, deleted.ImagePath)

	_, err = s.store.FindByID(s.ctx, created.ID)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound, "Product should be gone after deletion")

	count, err := s.store.CountOrders(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int64(0), count, "Orders referencing the product are removed with it")
}

func (s *ProductStoreSuite) TestDeleteByID_NotFound() {
	s.SetupTest()

	deleted, err := s.store.DeleteByID(s.ctx, uuid.New())

	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
	require.Nil(s.T(), deleted)
}

func (s *ProductStoreSuite) TestCountOrders() {
	s.SetupTest()
	// given
	created := s.createTestProduct("Widget")
	s.createTestOrder(created.ID)
	s.createTestOrder(created.ID)
	s.createTestOrder(created.ID)

	// when
	count, err := s.store.CountOrders(s.ctx, created.ID)

	// then
	require.NoError(s.T(), err, "CountOrders should not return an error")
	require.Equal(s.T(), int64(3), count)
}
