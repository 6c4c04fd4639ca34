// Package util provides common utility functions for price math.
package util

import "math"

// RoundToTick rounds x to the nearest tick increment. Strike targeting
// uses tick=5 so suggested strikes land on the exchange's liquid grid.
func RoundToTick(x, tick float64) float64 {
	if tick <= 0 {
		return x
	}
	return math.Round(x/tick) * tick
}

// RoundTo rounds x to the given number of decimal places.
func RoundTo(x float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(x*pow) / pow
}
