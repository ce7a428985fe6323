// Package shipping resolves a fee and currency for a chosen shipping method
// from the store's tariff configuration.
package shipping

import (
	"sort"

	"fronteira/internal/model"
)

// Quote is the outcome of resolving a shipping method.
type Quote struct {
	Fee       float64        `json:"fee"`
	Currency  model.Currency `json:"currency"`
	Available bool           `json:"available"`
}

// FeeInBase converts the quoted fee into the store's base currency using the
// configured FX rate. Base-currency fees pass through unchanged.
func (q Quote) FeeInBase(fxRate float64) float64 {
	if q.Currency == model.CurrencySecondary {
		return q.Fee * fxRate
	}
	return q.Fee
}

// Input carries everything a resolution needs. DistanceKm is only meaningful
// for local delivery and WeightKg only for international tiers.
type Input struct {
	Method        string
	DistanceKm    float64
	WeightKg      float64
	PickupAllowed bool
}

// Resolve prices the requested method against the store settings and tier
// table. It never fails; ineligible methods come back with Available false.
func Resolve(in Input, settings model.StoreSettings, tiers []model.ShippingTier) Quote {
	switch in.Method {
	case model.ShippingPickup:
		return Quote{Fee: 0, Currency: model.CurrencyBase, Available: in.PickupAllowed}

	case model.ShippingLocal:
		// The cap is both a price clamp and an eligibility gate: distance is
		// clamped before pricing, and anything beyond the cap is rejected
		// outright rather than charged at the capped rate.
		clamped := in.DistanceKm
		if clamped > settings.MaxLocalKm {
			clamped = settings.MaxLocalKm
		}
		fee := settings.LocalBaseFee + clamped*settings.LocalPerKmFee
		return Quote{
			Fee:       fee,
			Currency:  model.CurrencyBase,
			Available: in.DistanceKm <= settings.MaxLocalKm,
		}

	case model.ShippingNationalFlat:
		return Quote{Fee: settings.NationalFlatFee, Currency: model.CurrencyBase, Available: true}

	case model.ShippingInternationalTiered:
		tier, ok := matchTier(tiers, in.WeightKg)
		if !ok {
			return Quote{Currency: model.CurrencySecondary, Available: false}
		}
		return Quote{Fee: tier.Price, Currency: model.CurrencySecondary, Available: true}
	}

	return Quote{Currency: model.CurrencyBase, Available: false}
}

// matchTier picks the first tier, ascending by max weight, that can carry the
// parcel. Parcels heavier than every tier fall back to the heaviest tier as a
// price ceiling instead of failing.
func matchTier(tiers []model.ShippingTier, weightKg float64) (model.ShippingTier, bool) {
	if len(tiers) == 0 {
		return model.ShippingTier{}, false
	}

	sorted := make([]model.ShippingTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MaxWeightKg < sorted[j].MaxWeightKg
	})

	for _, tier := range sorted {
		if tier.MaxWeightKg >= weightKg {
			return tier, true
		}
	}
	return sorted[len(sorted)-1], true
}
