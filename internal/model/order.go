package model

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses. An order only moves forward through this list, except for
// cancellation, which is allowed from any non-terminal status.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusPreparing = "preparing"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Shipping methods supported by the tariff model.
const (
	ShippingPickup              = "pickup"
	ShippingLocal               = "local"
	ShippingNationalFlat        = "national_flat"
	ShippingInternationalTiered = "international_tiered"
)

// Currency tags a fee with the ledger it is denominated in.
type Currency string

const (
	// CurrencyBase is the store's primary ledger currency.
	CurrencyBase Currency = "BASE"
	// CurrencySecondary is the partner country's currency, converted into the
	// base currency through the configured FX rate before totalling.
	CurrencySecondary Currency = "SECONDARY"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusPreparing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// ValidShippingMethod reports whether m is a known shipping method.
func ValidShippingMethod(m string) bool {
	switch m {
	case ShippingPickup, ShippingLocal, ShippingNationalFlat, ShippingInternationalTiered:
		return true
	}
	return false
}

// Order represents a placed purchase. Total, delivery fee and distance are
// always recomputed server-side from the catalogue and store settings.
type Order struct {
	ID             uuid.UUID `json:"id" db:"id"`
	CustomerID     uuid.UUID `json:"customerId" db:"customer_id"`
	Status         string    `json:"status" db:"status"`
	Subtotal       float64   `json:"subtotal" db:"subtotal"`
	DeliveryFee    float64   `json:"deliveryFee" db:"delivery_fee"`
	Total          float64   `json:"total" db:"total"`
	DistanceKm     float64   `json:"distanceKm" db:"distance_km"`
	ShippingMethod string    `json:"shippingMethod" db:"shipping_method"`
	Latitude       float64   `json:"latitude" db:"latitude"`
	Longitude      float64   `json:"longitude" db:"longitude"`
	Notes          string    `json:"notes,omitempty" db:"notes"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// OrderItem is a line item snapshot. Unit price and subtotal are frozen from
// the authoritative product data at order time.
type OrderItem struct {
	ID          uuid.UUID `json:"-" db:"id"`
	OrderID     uuid.UUID `json:"-" db:"order_id"`
	ProductID   string    `json:"productId" db:"product_id"`
	ProductName string    `json:"productName" db:"product_name"`
	Quantity    int       `json:"quantity" db:"quantity"`
	UnitPrice   float64   `json:"unitPrice" db:"unit_price"`
	Subtotal    float64   `json:"subtotal" db:"subtotal"`
}

// CartLine is a requested purchase before validation. It is transient and
// never persisted.
type CartLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// OrderRequest is the payload for creating an order.
type OrderRequest struct {
	Items    []CartLine        `json:"items"`
	Customer CustomerRequest   `json:"customer"`
	Delivery DeliverySelection `json:"delivery"`
	Notes    string            `json:"notes,omitempty"`
}

// CustomerRequest identifies the buyer placing an order.
type CustomerRequest struct {
	Name      string   `json:"name"`
	Phone     string   `json:"phone"`
	Email     string   `json:"email,omitempty"`
	Address   string   `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// DeliverySelection carries the requested drop-off and shipping method. The
// distance field is accepted for UI round-tripping but never trusted; the
// server recomputes it from the coordinates.
type DeliverySelection struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Distance       float64 `json:"distance"`
	ShippingMethod string  `json:"shipping_method"`
}

// OrderResponse is returned after a successful order creation.
type OrderResponse struct {
	Success     bool      `json:"success"`
	OrderID     uuid.UUID `json:"order_id"`
	Total       float64   `json:"total"`
	Subtotal    float64   `json:"subtotal"`
	DeliveryFee float64   `json:"delivery_fee"`
}

// OrderDetail is the read-side view of an order with its items and delivery.
type OrderDetail struct {
	Order    Order       `json:"order"`
	Items    []OrderItem `json:"items"`
	Delivery *Delivery   `json:"delivery,omitempty"`
}

// PaymentCallback is the payload the payment collaborator posts back after
// attempting to collect payment for an order.
type PaymentCallback struct {
	OrderID uuid.UUID `json:"order_id"`
	Outcome string    `json:"outcome"`
}

// Payment outcomes reported by the collaborator.
const (
	PaymentApproved = "approved"
	PaymentRejected = "rejected"
	PaymentPending  = "pending"
)
