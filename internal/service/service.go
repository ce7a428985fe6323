package service

import (
	"context"

	"fronteira/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for the catalogue read side.
type ProductService interface {
	// GetAll retrieves active products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// OrderService defines order assembly and retrieval.
type OrderService interface {
	// Create recomputes prices, resolves the tariff and persists the order
	// with its items and pending delivery.
	Create(ctx context.Context, req *model.OrderRequest) (*model.OrderResponse, error)

	// GetByID retrieves an order with its items and paired delivery.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error)
}

// FulfillmentService drives the order/delivery lifecycle.
type FulfillmentService interface {
	// SetOrderStatus applies an order-driven transition and propagates the
	// forced delivery status from the mapping table.
	SetOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus string) error

	// SetDeliveryStatus applies a delivery-driven transition and propagates
	// the forced order status from the mapping table.
	SetDeliveryStatus(ctx context.Context, deliveryID uuid.UUID, newStatus string) error

	// HandlePaymentCallback maps a payment outcome onto the order lifecycle.
	HandlePaymentCallback(ctx context.Context, cb *model.PaymentCallback) error

	// ClaimDelivery assigns an unclaimed delivery to a driver. Exactly one of
	// N concurrent claims succeeds.
	ClaimDelivery(ctx context.Context, deliveryID, driverID uuid.UUID) error
}

// TrackingService accepts driver position reports and fans them out.
type TrackingService interface {
	// ReportPosition stamps the driver's position and propagates it to every
	// active delivery assigned to that driver.
	ReportPosition(ctx context.Context, driverID uuid.UUID, report model.LocationReport) ([]model.PositionUpdate, error)
}
