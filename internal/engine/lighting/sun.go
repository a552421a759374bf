// Package lighting builds the weather-driven light rig the composer
// uploads each frame.
package lighting

import "math"

// SunDirection converts longitude/latitude angles to a normalized
// direction vector pointing towards the sun. Longitude is rotation
// around Y (0-360 degrees), latitude is elevation from the horizon
// (0-90 degrees).
func SunDirection(longitude, latitude float32) [3]float32 {
	lonRad := float64(longitude) * math.Pi / 180.0
	latRad := float64(latitude) * math.Pi / 180.0

	x := float32(math.Cos(latRad) * math.Sin(lonRad))
	y := float32(math.Sin(latRad))
	z := float32(math.Cos(latRad) * math.Cos(lonRad))

	return [3]float32{x, y, z}
}
