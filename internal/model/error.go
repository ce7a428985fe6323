package model

import "fmt"

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeUnknownProduct      = "UNKNOWN_PRODUCT"
	ErrCodeProductUnavailable  = "PRODUCT_UNAVAILABLE"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeShippingUnavailable = "SHIPPING_UNAVAILABLE"
	ErrCodeOrderNotFound       = "ORDER_NOT_FOUND"
	ErrCodeDeliveryNotFound    = "DELIVERY_NOT_FOUND"
	ErrCodeDriverNotFound      = "DRIVER_NOT_FOUND"
	ErrCodeAlreadyClaimed      = "DELIVERY_ALREADY_CLAIMED"
	ErrCodeInvalidTransition   = "INVALID_STATUS_TRANSITION"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeInternalError       = "INTERNAL_ERROR"
	ErrCodePersistenceFailure  = "PERSISTENCE_FAILURE"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DomainError is a business-rule violation that maps to a 4xx response.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrUnknownProduct      = NewDomainError(ErrCodeUnknownProduct, "One or more products not found")
	ErrProductUnavailable  = NewDomainError(ErrCodeProductUnavailable, "Product is not available for purchase")
	ErrShippingUnavailable = NewDomainError(ErrCodeShippingUnavailable, "Selected shipping method is not available for this order")
	ErrOrderNotFound       = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrDeliveryNotFound    = NewDomainError(ErrCodeDeliveryNotFound, "Delivery not found")
	ErrDriverNotFound      = NewDomainError(ErrCodeDriverNotFound, "Driver not found")
	ErrAlreadyClaimed      = NewDomainError(ErrCodeAlreadyClaimed, "Delivery has already been claimed by another driver")
)

// NewInsufficientStockError reports a stock shortfall. The message always
// carries the quantity still available so the storefront can adjust the cart.
func NewInsufficientStockError(productName string, available int) *DomainError {
	return NewDomainError(
		ErrCodeInsufficientStock,
		fmt.Sprintf("Insufficient stock for %q: only %d available", productName, available),
	)
}

// NewValidationError reports a malformed or out-of-bounds request field.
func NewValidationError(message string) *DomainError {
	return NewDomainError(ErrCodeValidation, message)
}

// NewInvalidTransitionError reports a status change the lifecycle forbids.
func NewInvalidTransitionError(from, to string) *DomainError {
	return NewDomainError(
		ErrCodeInvalidTransition,
		fmt.Sprintf("Cannot transition from %q to %q", from, to),
	)
}
