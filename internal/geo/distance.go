package geo

import (
	orbgeo "github.com/paulmach/orb/geo"
)

// DistanceKM returns the great-circle (haversine) distance between two
// points in kilometers.
func DistanceKM(a, b Point) float64 {
	return orbgeo.DistanceHaversine(a.Orb(), b.Orb()) / 1000
}
