// Package pricing recomputes cart totals from authoritative catalogue data.
package pricing

import (
	"fmt"

	"fronteira/internal/model"

	"github.com/google/uuid"
)

// Quantity bounds for a single cart line.
const (
	MinQuantity = 1
	MaxQuantity = 999
)

// Result carries the validated cart: line items with frozen unit prices and
// subtotals, the cart subtotal, and the accumulated parcel weight.
type Result struct {
	Items         []model.OrderItem
	Subtotal      float64
	TotalWeightKg float64
	PickupAllowed bool
}

// Validate checks every cart line against the catalogue and freezes prices.
// It has no side effects and is safe to retry. The catalogue map must come
// from storage; client-supplied prices are never consulted.
func Validate(lines []model.CartLine, catalog map[string]model.Product) (*Result, error) {
	if len(lines) == 0 {
		return nil, model.NewValidationError("order must contain at least one item")
	}

	result := &Result{
		Items: make([]model.OrderItem, 0, len(lines)),
	}

	for i, line := range lines {
		if line.ProductID == "" {
			return nil, model.NewValidationError(fmt.Sprintf("item %d: product ID is required", i))
		}
		if line.Quantity < MinQuantity || line.Quantity > MaxQuantity {
			return nil, model.NewValidationError(
				fmt.Sprintf("item %d: quantity must be between %d and %d", i, MinQuantity, MaxQuantity))
		}

		product, ok := catalog[line.ProductID]
		if !ok {
			return nil, model.ErrUnknownProduct
		}
		if !product.Active {
			return nil, model.ErrProductUnavailable
		}

		available := product.AvailableStock()
		if line.Quantity > available {
			return nil, model.NewInsufficientStockError(product.Name, available)
		}

		subtotal := product.Price * float64(line.Quantity)
		result.Items = append(result.Items, model.OrderItem{
			ID:          uuid.New(),
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   product.Price,
			Subtotal:    subtotal,
		})

		result.Subtotal += subtotal
		result.TotalWeightKg += product.UnitWeightKg() * float64(line.Quantity)
		// Pickup stays offered as long as at least one line supports it.
		if product.PickupEnabled {
			result.PickupAllowed = true
		}
	}

	return result, nil
}
