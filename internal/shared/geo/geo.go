package geo

import "math"

const (
	// EarthRadiusKm is the mean Earth radius used by the Haversine formula.
	EarthRadiusKm = 6371.0

	// JitterThresholdKm is the minimum delta between two consecutive fixes
	// that counts as real movement. Deltas at or below it are GPS noise and
	// are discarded entirely; consecutive small true movements below the
	// threshold are under-counted as a consequence.
	JitterThresholdKm = 0.005
)

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// HaversineKm returns the great-circle distance in kilometers between two
// points given in decimal degrees.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// DeltaKm returns the great-circle distance between two coordinates.
func DeltaKm(prev, curr Coordinate) float64 {
	return HaversineKm(prev.Latitude, prev.Longitude, curr.Latitude, curr.Longitude)
}

// Accepted reports whether a delta clears the jitter threshold.
func Accepted(deltaKm float64) bool {
	return deltaKm > JitterThresholdKm
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
