package weather

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/vitrine3d/vitrine/internal/engine/profile"
	"github.com/vitrine3d/vitrine/internal/logger"
)

// Simulator is the weather state machine. Switching profiles is a total
// reset: existing particle systems are disposed before the new
// profile's parameters and systems are built.
type Simulator struct {
	quality profile.Profile
	params  Params

	Rain *RainSystem
	Wind *WindSystem

	// Largest dimension of the displayed model; bounds the wind volume.
	modelMax float32

	frame int
	rng   *rand.Rand
}

// NewSimulator creates a simulator with no active weather. Call
// SetWeather to enter the first profile.
func NewSimulator(quality profile.Profile) *Simulator {
	return &Simulator{
		quality:  quality,
		modelMax: 100,
		rng:      rand.New(rand.NewSource(rand.Int63())),
	}
}

// Params returns the active profile's parameter record.
func (s *Simulator) Params() Params {
	return s.params
}

// SetModelExtent updates the largest model dimension. Takes effect the
// next time a wind system is built.
func (s *Simulator) SetModelExtent(maxDim float32) {
	if maxDim > 0 {
		s.modelMax = maxDim
	}
}

// SetWeather transitions to the given profile: dispose any existing
// particle systems, clear fog, then construct the new profile's
// parameters and systems sized per the quality budgets.
func (s *Simulator) SetWeather(kind Kind) {
	s.DisposeSystems()
	s.params = ParamsFor(kind, s.quality)

	if s.params.HasRain {
		budget := s.quality.RainBudget
		if s.quality.PerformanceFactor > 0.6 {
			budget = s.quality.RainStormBudget
		}
		boost := float32(1)
		if s.quality.LowEnd {
			boost = LowEndFallBoost
		}
		s.Rain = NewRainSystem(budget, boost, s.rng)
	}
	if s.params.HasWind {
		budget := s.quality.WindBudget
		if kind == Rainy {
			budget = s.quality.WindStrongBudget
		}
		s.Wind = NewWindSystem(budget, s.modelMax, s.rng)
	}

	logger.Debug("weather profile applied",
		zap.String("profile", kind.String()),
		zap.Int("rain", s.rainCount()),
		zap.Int("wind", s.windCount()))
}

// Advance ticks the frame clock and runs particle kinematics when the
// heavy-step gate fires. Returns true when a heavy-step ran.
func (s *Simulator) Advance() bool {
	s.frame++
	if s.frame%s.quality.HeavyStepInterval() != 0 {
		return false
	}
	if s.Rain != nil {
		s.Rain.Step()
	}
	if s.Wind != nil {
		s.Wind.Step()
	}
	return true
}

// DisposeSystems releases the current particle systems. Idempotent.
func (s *Simulator) DisposeSystems() {
	if s.Rain != nil {
		s.Rain.Dispose()
		s.Rain = nil
	}
	if s.Wind != nil {
		s.Wind.Dispose()
		s.Wind = nil
	}
}

func (s *Simulator) rainCount() int {
	if s.Rain == nil {
		return 0
	}
	return s.Rain.Count()
}

func (s *Simulator) windCount() int {
	if s.Wind == nil {
		return 0
	}
	return s.Wind.Count()
}
