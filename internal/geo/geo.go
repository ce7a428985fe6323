// Package geo provides great-circle distance and delivery ETA helpers.
package geo

import (
	"fmt"
	"math"
)

const (
	earthRadiusKm = 6371

	// averageSpeedKmh is the assumed urban delivery speed used for ETA
	// display. It is never used for billing.
	averageSpeedKmh = 25
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Latitude  float64
	Longitude float64
}

// DistanceKm returns the haversine great-circle distance between two points.
func DistanceKm(a, b Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// ETAMinutes estimates travel time for a distance at the assumed average
// speed, rounded up and never below one minute.
func ETAMinutes(distanceKm float64) int {
	if distanceKm <= 0 {
		return 1
	}
	minutes := int(math.Ceil(distanceKm / averageSpeedKmh * 60))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// FormatETA renders minutes as "N min" or "Hh Mm" above an hour.
func FormatETA(minutes int) string {
	if minutes < 1 {
		minutes = 1
	}
	if minutes <= 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
