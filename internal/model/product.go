package model

import "time"

// DefaultItemWeightKg is assumed for products with no configured weight.
const DefaultItemWeightKg = 0.5

// Product represents a sellable item in the catalogue. Price and stock are
// authoritative only when read from storage, never from client input.
type Product struct {
	ID            string           `json:"id" db:"id"`
	Name          string           `json:"name" db:"name"`
	Price         float64          `json:"price" db:"price"`
	Stock         int              `json:"stock" db:"stock"`
	Active        bool             `json:"active" db:"active"`
	WeightKg      float64          `json:"weightKg" db:"weight_kg"`
	PickupEnabled bool             `json:"pickupEnabled" db:"pickup_enabled"`
	Variants      []ProductVariant `json:"variants,omitempty"`
	CreatedAt     time.Time        `json:"createdAt" db:"created_at"`
}

// ProductVariant represents a size/colour SKU of a product.
type ProductVariant struct {
	ID              string  `json:"id" db:"id"`
	ProductID       string  `json:"-" db:"product_id"`
	Name            string  `json:"name" db:"name"`
	Stock           int     `json:"stock" db:"stock"`
	PriceAdjustment float64 `json:"priceAdjustment" db:"price_adjustment"`
	Active          bool    `json:"active" db:"active"`
}

// AvailableStock returns the purchasable quantity. When variants exist their
// combined active stock supersedes the product-level figure.
func (p *Product) AvailableStock() int {
	if len(p.Variants) == 0 {
		return p.Stock
	}
	total := 0
	for _, v := range p.Variants {
		if v.Active {
			total += v.Stock
		}
	}
	return total
}

// UnitWeightKg returns the parcel weight of a single unit, falling back to
// DefaultItemWeightKg when the product has no configured weight.
func (p *Product) UnitWeightKg() float64 {
	if p.WeightKg <= 0 {
		return DefaultItemWeightKg
	}
	return p.WeightKg
}
