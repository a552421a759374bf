package lighting

import (
	"github.com/vitrine3d/vitrine/internal/engine/profile"
	"github.com/vitrine3d/vitrine/internal/engine/weather"
)

// Directional is one directional light of the rig.
type Directional struct {
	Direction   [3]float32 // normalized, pointing TO the light
	Color       [3]float32
	Intensity   float32
	CastsShadow bool
}

// Rig is the complete light set for one weather profile at one quality
// tier. Rim lights exist only at high tier; the fill light casts
// shadows only at medium and high.
type Rig struct {
	AmbientColor     [3]float32
	AmbientIntensity float32

	Sun  Directional
	Fill Directional
	Rims []Directional

	// Hemisphere sky/ground bounce.
	HemiSkyColor    [3]float32
	HemiGroundColor [3]float32
	HemiIntensity   float32
}

// Sun and fill placement, in longitude/latitude degrees.
const (
	sunLongitude  = 135
	sunLatitude   = 55
	fillLongitude = 315
	fillLatitude  = 30
)

// BuildRig derives the light rig from the active weather parameters and
// the quality tier.
func BuildRig(p weather.Params, tier profile.Tier) Rig {
	rig := Rig{
		AmbientColor:     p.AmbientColor,
		AmbientIntensity: p.AmbientIntensity,
		Sun: Directional{
			Direction:   SunDirection(sunLongitude, sunLatitude),
			Color:       p.SunColor,
			Intensity:   p.SunIntensity,
			CastsShadow: true,
		},
		Fill: Directional{
			Direction:   SunDirection(fillLongitude, fillLatitude),
			Color:       [3]float32{1, 1, 1},
			Intensity:   p.FillIntensity,
			CastsShadow: tier != profile.TierLow,
		},
		HemiSkyColor:    p.Background,
		HemiGroundColor: [3]float32{0.25, 0.22, 0.2},
		HemiIntensity:   p.HemiIntensity,
	}

	if tier == profile.TierHigh {
		rig.Rims = []Directional{
			{
				Direction: SunDirection(60, 15),
				Color:     [3]float32{0.9, 0.95, 1.0},
				Intensity: p.SunIntensity * 0.3,
			},
			{
				Direction: SunDirection(240, 15),
				Color:     [3]float32{1.0, 0.95, 0.9},
				Intensity: p.SunIntensity * 0.25,
			},
		}
	}

	return rig
}
