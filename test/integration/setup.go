package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"fronteira/internal/database"
	"fronteira/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	// Create connection pool
	logger := zerolog.Nop()
	pool, err := database.NewPoolFromConnString(ctx, connStr, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	// Create schema
	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS products (
			id VARCHAR(50) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			price DECIMAL(10, 2) NOT NULL,
			stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
			active BOOLEAN NOT NULL DEFAULT TRUE,
			weight_kg DECIMAL(10, 3) NOT NULL DEFAULT 0,
			pickup_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS product_variants (
			id VARCHAR(50) PRIMARY KEY,
			product_id VARCHAR(50) NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
			price_adjustment DECIMAL(10, 2) NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT TRUE
		);

		CREATE TABLE IF NOT EXISTS customers (
			id UUID PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			phone VARCHAR(20) NOT NULL UNIQUE,
			email VARCHAR(255),
			address VARCHAR(500),
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			customer_id UUID NOT NULL REFERENCES customers(id),
			status VARCHAR(20) NOT NULL,
			subtotal DECIMAL(12, 2) NOT NULL,
			delivery_fee DECIMAL(12, 2) NOT NULL,
			total DECIMAL(12, 2) NOT NULL,
			distance_km DOUBLE PRECISION NOT NULL DEFAULT 0,
			shipping_method VARCHAR(30) NOT NULL,
			latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			notes VARCHAR(500) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS order_items (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id VARCHAR(50) NOT NULL REFERENCES products(id),
			product_name VARCHAR(255) NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			unit_price DECIMAL(10, 2) NOT NULL,
			subtotal DECIMAL(12, 2) NOT NULL
		);

		CREATE TABLE IF NOT EXISTS drivers (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL DEFAULT gen_random_uuid(),
			name VARCHAR(100) NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			tracking_enabled BOOLEAN NOT NULL DEFAULT TRUE,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			position_updated_at TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS deliveries (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL UNIQUE REFERENCES orders(id) ON DELETE CASCADE,
			status VARCHAR(20) NOT NULL,
			driver_id UUID REFERENCES drivers(id),
			driver_latitude DOUBLE PRECISION,
			driver_longitude DOUBLE PRECISION,
			position_updated_at TIMESTAMP,
			picked_at TIMESTAMP,
			actual_delivery TIMESTAMP,
			notes VARCHAR(500) NOT NULL DEFAULT '',
			last_notified_status VARCHAR(20) NOT NULL DEFAULT '',
			last_notified_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS store_settings (
			store_latitude DOUBLE PRECISION NOT NULL,
			store_longitude DOUBLE PRECISION NOT NULL,
			local_base_fee DECIMAL(10, 2) NOT NULL,
			local_per_km_fee DECIMAL(10, 2) NOT NULL,
			max_local_km DOUBLE PRECISION NOT NULL,
			national_flat_fee DECIMAL(10, 2) NOT NULL,
			fx_rate DOUBLE PRECISION NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS shipping_tiers (
			id VARCHAR(50) PRIMARY KEY,
			max_weight_kg DECIMAL(10, 3) NOT NULL,
			price DECIMAL(10, 2) NOT NULL,
			dimensions VARCHAR(100) NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
		CREATE INDEX IF NOT EXISTS idx_order_items_product_id ON order_items(product_id);
		CREATE INDEX IF NOT EXISTS idx_deliveries_driver_id ON deliveries(driver_id);
		CREATE INDEX IF NOT EXISTS idx_orders_customer_id ON orders(customer_id);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedCatalogue inserts test products, store settings and shipping tiers.
func SeedCatalogue(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	products := []struct {
		id            string
		name          string
		price         float64
		stock         int
		weightKg      float64
		pickupEnabled bool
	}{
		{"P001", "Yerba Mate 1kg", 10.00, 50, 1.0, true},
		{"P002", "Dulce de Leche 400g", 20.00, 30, 0.4, true},
		{"P003", "Leather Wallet", 30.00, 10, 0.2, false},
		{"P004", "Thermos Flask", 40.00, 5, 0.9, false},
		{"P005", "Gift Hamper", 50.00, 0, 3.5, false},
	}

	for _, p := range products {
		_, err := pool.Exec(ctx,
			`INSERT INTO products (id, name, price, stock, active, weight_kg, pickup_enabled)
			 VALUES ($1, $2, $3, $4, TRUE, $5, $6)`,
			p.id, p.name, p.price, p.stock, p.weightKg, p.pickupEnabled,
		)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", p.id, err)
		}
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO store_settings (store_latitude, store_longitude, local_base_fee,
			local_per_km_fee, max_local_km, national_flat_fee, fx_rate)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		-25.5163, -54.5854, 5.0, 1.5, 4.0, 25.0, 0.0008,
	)
	if err != nil {
		t.Fatalf("failed to seed store settings: %v", err)
	}

	tiers := []struct {
		id          string
		maxWeightKg float64
		price       float64
	}{
		{"T1", 0.5, 200},
		{"T2", 1.5, 300},
		{"T3", 3.0, 450},
	}
	for _, tier := range tiers {
		_, err := pool.Exec(ctx,
			`INSERT INTO shipping_tiers (id, max_weight_kg, price) VALUES ($1, $2, $3)`,
			tier.id, tier.maxWeightKg, tier.price,
		)
		if err != nil {
			t.Fatalf("failed to seed shipping tier %s: %v", tier.id, err)
		}
	}
}

// SeedVariants moves a seeded product's stock onto variant rows: the product
// row is zeroed and the given variants are inserted for it.
func SeedVariants(t *testing.T, pool *pgxpool.Pool, productID string, variants []model.ProductVariant) {
	t.Helper()

	ctx := context.Background()

	_, err := pool.Exec(ctx, `UPDATE products SET stock = 0 WHERE id = $1`, productID)
	if err != nil {
		t.Fatalf("failed to zero product stock for %s: %v", productID, err)
	}

	for _, v := range variants {
		_, err := pool.Exec(ctx,
			`INSERT INTO product_variants (id, product_id, name, stock, price_adjustment, active)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			v.ID, productID, v.Name, v.Stock, v.PriceAdjustment, v.Active,
		)
		if err != nil {
			t.Fatalf("failed to seed variant %s: %v", v.ID, err)
		}
	}
}

// SeedDriver inserts a driver row and returns its id.
func SeedDriver(t *testing.T, pool *pgxpool.Pool, active, trackingEnabled bool) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO drivers (id, name, active, tracking_enabled) VALUES ($1, $2, $3, $4)`,
		id, "Test Driver", active, trackingEnabled,
	)
	if err != nil {
		t.Fatalf("failed to seed driver: %v", err)
	}
	return id
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{
		"deliveries", "order_items", "orders", "customers",
		"drivers", "product_variants", "products",
		"shipping_tiers", "store_settings",
	}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
