package search

import "math"

// Mean Earth radius in kilometers.
const earthRadiusKM = 6371.0

// Haversine returns the great-circle distance in kilometers between two
// coordinates on a spherical Earth. Pure and symmetric.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lon1Rad := lon1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lon2Rad := lon2 * math.Pi / 180

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKM * c
}

// round2 rounds to two decimal places. The rounded value is used for the
// radius comparison, the sort key, and display, so a borderline facility
// can never show a distance past the radius.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
