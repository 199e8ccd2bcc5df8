package domain

import "math"

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance in kilometers between two
// WGS-84 coordinates. Pure; callers must pre-validate finiteness.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Asin(math.Sqrt(a))

	return earthRadiusKm * c
}

// InBounds reports whether the coordinate lies within the region,
// inclusive on both axes.
func InBounds(lat, lon float64, bounds RegionBounds) bool {
	return lat >= bounds.MinLat && lat <= bounds.MaxLat &&
		lon >= bounds.MinLon && lon <= bounds.MaxLon
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
