package domain

import (
	"log"
	"math"
)

// categoryMultiplier groups the five bus categories into the three fare
// classes. Sleeper and Luxury price as the luxury class, Deluxe and AC
// as standard, Ordinary as economy.
func categoryMultiplier(category BusCategory) float64 {
	switch category {
	case BusCategorySleeper, BusCategoryLuxury:
		return 1.5
	case BusCategoryDeluxe, BusCategoryAC:
		return 1.0
	case BusCategoryOrdinary:
		return 0.8
	default:
		log.Printf("fare: unknown bus category %q, using multiplier 1.0", category)
		return 1.0
	}
}

// Fare computes the price in cents for a seat: base fare scaled by the
// bus category class and the route multiplier, rounded to the nearest
// cent. A non-positive route multiplier is treated as 1.0.
func Fare(baseFareCents int64, category BusCategory, routeMultiplier float64) int64 {
	if routeMultiplier <= 0 {
		routeMultiplier = 1.0
	}
	amount := float64(baseFareCents) * categoryMultiplier(category) * routeMultiplier
	return int64(math.Round(amount))
}
