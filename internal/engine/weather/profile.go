// Package weather simulates environmental conditions: per-profile
// lighting and fog plus rain/wind particle systems with fixed-size
// recycled arenas.
package weather

import (
	"strings"

	"github.com/vitrine3d/vitrine/internal/engine/profile"
)

// Kind selects one of the four weather profiles.
type Kind int

// Weather kinds.
const (
	Sunny Kind = iota
	Rainy
	Night
	Foggy
)

// String returns the profile name.
func (k Kind) String() string {
	switch k {
	case Sunny:
		return "sunny"
	case Rainy:
		return "rainy"
	case Night:
		return "night"
	case Foggy:
		return "foggy"
	default:
		return "unknown"
	}
}

// Kinds lists every selectable profile in display order.
var Kinds = []Kind{Sunny, Rainy, Night, Foggy}

// ParseKind normalizes a profile name, falling back to Sunny.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rainy", "rain":
		return Rainy
	case "night":
		return Night
	case "foggy", "fog":
		return Foggy
	}
	return Sunny
}

// Params fully determines a profile's environment: light intensities,
// background and fog, and which particle systems exist.
type Params struct {
	Kind Kind

	AmbientIntensity float32
	AmbientColor     [3]float32
	SunIntensity     float32
	SunColor         [3]float32
	FillIntensity    float32
	HemiIntensity    float32

	Background [3]float32

	// FogDensity 0 disables fog. Fog is exponential-squared.
	FogDensity float32
	FogColor   [3]float32

	HasRain bool
	HasWind bool
}

// ParamsFor builds the parameter record for a profile under the given
// quality profile. Fog density for rain depends on the performance tier.
func ParamsFor(kind Kind, q profile.Profile) Params {
	switch kind {
	case Rainy:
		density := float32(0.0018)
		if q.Tier == profile.TierLow {
			density = 0.0026
		}
		return Params{
			Kind:             Rainy,
			AmbientIntensity: 0.55,
			AmbientColor:     [3]float32{0.62, 0.66, 0.72},
			SunIntensity:     0.35,
			SunColor:         [3]float32{0.72, 0.76, 0.82},
			FillIntensity:    0.25,
			HemiIntensity:    0.3,
			Background:       [3]float32{0.32, 0.35, 0.40},
			FogDensity:       density,
			FogColor:         [3]float32{0.38, 0.41, 0.46},
			HasRain:          true,
			HasWind:          true,
		}
	case Night:
		return Params{
			Kind:             Night,
			AmbientIntensity: 0.18,
			AmbientColor:     [3]float32{0.28, 0.32, 0.5},
			SunIntensity:     0.22,
			SunColor:         [3]float32{0.55, 0.6, 0.85},
			FillIntensity:    0.1,
			HemiIntensity:    0.12,
			Background:       [3]float32{0.02, 0.03, 0.08},
			FogDensity:       0.0009,
			FogColor:         [3]float32{0.05, 0.06, 0.12},
			HasWind:          true,
		}
	case Foggy:
		return Params{
			Kind:             Foggy,
			AmbientIntensity: 0.65,
			AmbientColor:     [3]float32{0.78, 0.79, 0.8},
			SunIntensity:     0.3,
			SunColor:         [3]float32{0.85, 0.85, 0.85},
			FillIntensity:    0.3,
			HemiIntensity:    0.35,
			Background:       [3]float32{0.68, 0.70, 0.72},
			FogDensity:       0.0042,
			FogColor:         [3]float32{0.70, 0.72, 0.74},
			HasWind:          true,
		}
	default: // Sunny
		return Params{
			Kind:             Sunny,
			AmbientIntensity: 0.85,
			AmbientColor:     [3]float32{1.0, 0.98, 0.92},
			SunIntensity:     1.15,
			SunColor:         [3]float32{1.0, 0.96, 0.88},
			FillIntensity:    0.4,
			HemiIntensity:    0.5,
			Background:       [3]float32{0.53, 0.71, 0.92},
		}
	}
}
