package assistant

import (
	"fmt"
	"math"

	"github.com/noah-isme/campus-connect-api/pkg/osrm"
)

const (
	earthRadiusMeters   = 6371000.0
	walkingMetersPerMin = 80.0
)

// HaversineMeters returns the great-circle distance between two points.
func HaversineMeters(a, b osrm.Point) float64 {
	lat1, lat2 := toRadians(a.Lat), toRadians(b.Lat)
	dLat := lat2 - lat1
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// WalkingMinutes estimates walking time, never less than a minute.
func WalkingMinutes(meters float64) int {
	minutes := int(math.Ceil(meters / walkingMetersPerMin))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// MapsDirectionsURL links to Google Maps walking directions between two points.
func MapsDirectionsURL(from, to osrm.Point) string {
	return fmt.Sprintf("https://www.google.com/maps/dir/?api=1&origin=%.6f,%.6f&destination=%.6f,%.6f&travelmode=walking",
		from.Lat, from.Lon, to.Lat, to.Lon)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
