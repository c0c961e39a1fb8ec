package geo

import "math"

// EarthRadiusKm is Earth's radius in kilometers for Haversine calculation.
const EarthRadiusKm = 6371.0

const degToRad = math.Pi / 180

// HaversineKm calculates the great-circle distance between two points
// on Earth in kilometers using the Haversine formula.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * degToRad
	dLng := (lng2 - lng1) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// bearing returns the initial bearing from point 1 to point 2, in radians.
func bearing(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * degToRad
	phi2 := lat2 * degToRad
	dLng := (lng2 - lng1) * degToRad
	y := math.Sin(dLng) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLng)
	return math.Atan2(y, x)
}

// SegmentDistanceKm returns the great-circle distance in kilometers from
// point P to the segment between A and B. The nearest point is clamped to
// the segment: when P projects before A or past B, the distance to the
// corresponding endpoint is returned. A degenerate segment (A == B)
// collapses to plain point distance.
func SegmentDistanceKm(latA, lngA, latB, lngB, latP, lngP float64) float64 {
	if latA == latB && lngA == lngB {
		return HaversineKm(latA, lngA, latP, lngP)
	}

	// Angular distances and bearings for the cross-track formula.
	d13 := HaversineKm(latA, lngA, latP, lngP) / EarthRadiusKm
	theta13 := bearing(latA, lngA, latP, lngP)
	theta12 := bearing(latA, lngA, latB, lngB)

	// Projection falls before A.
	if math.Cos(theta13-theta12) < 0 {
		return HaversineKm(latA, lngA, latP, lngP)
	}

	dxt := math.Asin(math.Sin(d13) * math.Sin(theta13-theta12))
	dat := math.Acos(math.Cos(d13) / math.Cos(dxt))

	// Projection falls past B.
	d12 := HaversineKm(latA, lngA, latB, lngB) / EarthRadiusKm
	if dat > d12 {
		return HaversineKm(latB, lngB, latP, lngP)
	}

	return math.Abs(dxt) * EarthRadiusKm
}

// IsWithinDeviation checks whether point P lies within maxDeviationKm of
// the route segment A -> B.
func IsWithinDeviation(latA, lngA, latB, lngB, latP, lngP, maxDeviationKm float64) bool {
	return SegmentDistanceKm(latA, lngA, latB, lngB, latP, lngP) <= maxDeviationKm
}

// ValidateCoordinates проверяет корректность координат
func ValidateCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
