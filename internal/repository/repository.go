package repository

import (
	"context"
	"time"

	"fronteira/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves active products with their variants, paginated.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product with its variants, or nil if absent.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves the requested products keyed by id, variants included.
	GetByIDs(ctx context.Context, ids []string) (map[string]model.Product, error)

	// DecrementStock conditionally reduces stock within the transaction.
	// It returns false when stock is insufficient at write time, leaving the
	// row untouched.
	DecrementStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) (bool, error)
}

// CustomerRepository defines customer lookup and upsert operations.
type CustomerRepository interface {
	// UpsertByPhone creates the customer or updates name, email, address and
	// coordinates for an existing phone number. Returns the customer id.
	UpsertByPhone(ctx context.Context, c *model.Customer) (uuid.UUID, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// UpdateStatus sets the order status and bumps updated_at.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// DeliveryRepository defines the interface for delivery tracking records.
type DeliveryRepository interface {
	// Create inserts the delivery row paired with a freshly created order.
	Create(ctx context.Context, d *model.Delivery) error

	// GetByID retrieves a delivery, or nil if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Delivery, error)

	// GetByOrderID retrieves the delivery paired with an order, or nil.
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Delivery, error)

	// UpdateStatus sets the delivery status and stamps the lifecycle
	// timestamps carried in the update.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, pickedAt, actualDelivery *time.Time) error

	// Claim assigns an unassigned delivery to a driver. It returns false when
	// the delivery was already claimed at write time.
	Claim(ctx context.Context, deliveryID, driverID uuid.UUID) (bool, error)

	// UpdatePosition records the driver's latest position on the delivery.
	UpdatePosition(ctx context.Context, id uuid.UUID, lat, lon float64, at time.Time) error

	// ListActiveByDriver returns the driver's non-terminal deliveries joined
	// with their orders' drop-off coordinates.
	ListActiveByDriver(ctx context.Context, driverID uuid.UUID) ([]model.ActiveDelivery, error)

	// MarkNotified records the last status change that was published for the
	// delivery's order.
	MarkNotified(ctx context.Context, id uuid.UUID, status string, at time.Time) error
}

// DriverRepository defines courier account access.
type DriverRepository interface {
	// GetByID retrieves a driver, or nil if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Driver, error)

	// UpdatePosition records the driver's last known position.
	UpdatePosition(ctx context.Context, id uuid.UUID, lat, lon float64, at time.Time) error
}

// SettingsRepository provides hot-reloadable tenant configuration.
type SettingsRepository interface {
	// GetStoreSettings returns the singleton settings row, or nil when the
	// tenant has not configured one yet.
	GetStoreSettings(ctx context.Context) (*model.StoreSettings, error)

	// GetShippingTiers returns the international tiers ordered by ascending
	// max weight.
	GetShippingTiers(ctx context.Context) ([]model.ShippingTier, error)
}
