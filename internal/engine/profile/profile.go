// Package profile derives a rendering quality profile from device hints.
package profile

// Tier is a discrete rendering-fidelity class.
type Tier int

// Quality tiers.
const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

// String returns a human-readable tier name.
func (t Tier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMedium:
		return "medium"
	case TierHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Particle budget baselines before performance scaling.
const (
	RainBaseBudget   = 8000
	RainStormBudget  = 22000
	WindBaseBudget   = 300
	WindStrongBudget = 600
)

// DefaultCores is assumed when the host cannot report its core count.
const DefaultCores = 4

// Profile holds quality parameters derived once per session.
// Read-only after New; shared by every component.
type Profile struct {
	Cores             int
	DevicePixelRatio  float32
	PerformanceFactor float32
	Tier              Tier
	LowEnd            bool
	MaxPixelRatio     float32
	ShadowResolution  int32
	RainBudget        int
	RainStormBudget   int
	WindBudget        int
	WindStrongBudget  int
}

// New computes a Profile from the device's logical core count and pixel ratio.
// Pure function of its inputs.
func New(cores int, devicePixelRatio float32) Profile {
	if cores <= 0 {
		cores = DefaultCores
	}
	dpr := devicePixelRatio
	if dpr < 1 {
		dpr = 1
	}
	if dpr > 1.5 {
		dpr = 1.5
	}

	coreFactor := float32(cores) / 4
	if coreFactor > 1 {
		coreFactor = 1
	}
	factor := coreFactor * (1 / dpr)

	lowEnd := cores < 4 || factor < 0.5

	p := Profile{
		Cores:             cores,
		DevicePixelRatio:  devicePixelRatio,
		PerformanceFactor: factor,
		LowEnd:            lowEnd,
	}

	switch {
	case lowEnd:
		p.Tier = TierLow
		p.MaxPixelRatio = 1.25
		p.ShadowResolution = 1024
	case factor > 0.75:
		p.Tier = TierHigh
		p.MaxPixelRatio = 2.0
		p.ShadowResolution = 4096
	default:
		p.Tier = TierMedium
		p.MaxPixelRatio = 2.0
		p.ShadowResolution = 2048
	}

	p.RainBudget = scaleBudget(RainBaseBudget, factor)
	p.RainStormBudget = scaleBudget(RainStormBudget, factor)
	p.WindBudget = scaleBudget(WindBaseBudget, factor)
	p.WindStrongBudget = scaleBudget(WindStrongBudget, factor)

	return p
}

// HeavyStepInterval returns how many rendered frames pass between
// particle kinematics updates.
func (p Profile) HeavyStepInterval() int {
	if p.Tier == TierLow {
		return 4
	}
	return 3
}

func scaleBudget(base int, factor float32) int {
	n := int(float32(base) * factor)
	if n < 1 {
		n = 1
	}
	return n
}
