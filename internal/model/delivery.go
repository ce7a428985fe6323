package model

import (
	"time"

	"github.com/google/uuid"
)

// Delivery statuses. A delivery advances in lockstep with its order through
// the status synchronizer.
const (
	DeliveryStatusPending   = "pending"
	DeliveryStatusAssigned  = "assigned"
	DeliveryStatusInTransit = "in_transit"
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusFailed    = "failed"
)

// ValidDeliveryStatus reports whether s is a known delivery status.
func ValidDeliveryStatus(s string) bool {
	switch s {
	case DeliveryStatusPending, DeliveryStatusAssigned, DeliveryStatusInTransit,
		DeliveryStatusDelivered, DeliveryStatusFailed:
		return true
	}
	return false
}

// Delivery is the fulfillment tracking record, exactly one per order.
type Delivery struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	OrderID            uuid.UUID  `json:"orderId" db:"order_id"`
	Status             string     `json:"status" db:"status"`
	DriverID           *uuid.UUID `json:"driverId,omitempty" db:"driver_id"`
	DriverLatitude     *float64   `json:"driverLatitude,omitempty" db:"driver_latitude"`
	DriverLongitude    *float64   `json:"driverLongitude,omitempty" db:"driver_longitude"`
	PositionUpdatedAt  *time.Time `json:"positionUpdatedAt,omitempty" db:"position_updated_at"`
	PickedAt           *time.Time `json:"pickedAt,omitempty" db:"picked_at"`
	ActualDelivery     *time.Time `json:"actualDelivery,omitempty" db:"actual_delivery"`
	Notes              string     `json:"notes,omitempty" db:"notes"`
	LastNotifiedStatus string     `json:"-" db:"last_notified_status"`
	LastNotifiedAt     *time.Time `json:"-" db:"last_notified_at"`
	CreatedAt          time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time  `json:"updatedAt" db:"updated_at"`
}

// Driver is a courier account. Location fields are only meaningful while
// tracking is enabled.
type Driver struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	UserID            uuid.UUID  `json:"userId" db:"user_id"`
	Name              string     `json:"name" db:"name"`
	Active            bool       `json:"active" db:"active"`
	TrackingEnabled   bool       `json:"trackingEnabled" db:"tracking_enabled"`
	Latitude          *float64   `json:"latitude,omitempty" db:"latitude"`
	Longitude         *float64   `json:"longitude,omitempty" db:"longitude"`
	PositionUpdatedAt *time.Time `json:"positionUpdatedAt,omitempty" db:"position_updated_at"`
}

// ActiveDelivery pairs an in-flight delivery with its order's drop-off
// coordinates so position updates can derive distance and ETA.
type ActiveDelivery struct {
	Delivery
	DropoffLatitude  float64 `db:"dropoff_latitude"`
	DropoffLongitude float64 `db:"dropoff_longitude"`
}

// LocationReport is the payload a driver app posts periodically while a
// delivery is in flight.
type LocationReport struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PositionUpdate is pushed to tracking subscribers whenever a driver reports
// a new position for a delivery.
type PositionUpdate struct {
	DeliveryID uuid.UUID `json:"deliveryId"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	DistanceKm float64   `json:"distanceKm"`
	ETAMinutes int       `json:"etaMinutes"`
	ETALabel   string    `json:"etaLabel"`
	ReportedAt time.Time `json:"reportedAt"`
}

// StatusChangeRequest asks for a single status transition on one side of the
// order/delivery pair.
type StatusChangeRequest struct {
	Status string `json:"status"`
}

// ClaimRequest asks to assign an unclaimed delivery to a driver.
type ClaimRequest struct {
	DriverID uuid.UUID `json:"driver_id"`
}
