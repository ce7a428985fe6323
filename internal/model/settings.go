package model

import "time"

// StoreSettings is the singleton tenant configuration driving tariff
// computation. Values are hot-reloadable rows, not compile-time constants;
// absent values fall back to the defaults configured at startup.
type StoreSettings struct {
	StoreLatitude   float64 `json:"storeLatitude" db:"store_latitude"`
	StoreLongitude  float64 `json:"storeLongitude" db:"store_longitude"`
	LocalBaseFee    float64 `json:"localBaseFee" db:"local_base_fee"`
	LocalPerKmFee   float64 `json:"localPerKmFee" db:"local_per_km_fee"`
	MaxLocalKm      float64 `json:"maxLocalKm" db:"max_local_km"`
	NationalFlatFee float64 `json:"nationalFlatFee" db:"national_flat_fee"`
	// FXRate converts one unit of the secondary currency into base currency.
	FXRate    float64   `json:"fxRate" db:"fx_rate"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ShippingTier is a weight bracket with a flat international shipping price,
// denominated in the secondary currency.
type ShippingTier struct {
	ID          string  `json:"id" db:"id"`
	MaxWeightKg float64 `json:"maxWeightKg" db:"max_weight_kg"`
	Price       float64 `json:"price" db:"price"`
	Dimensions  string  `json:"dimensions,omitempty" db:"dimensions"`
}
