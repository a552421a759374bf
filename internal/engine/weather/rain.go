package weather

import (
	gomath "math"
	"math/rand"
)

// Rain volume constants in model units. The model itself is normalized
// to at most 100 units, so the volume comfortably surrounds it.
const (
	rainHalfExtent  = 500  // horizontal wrap boundary
	rainFloor       = -100 // below this a drop respawns
	rainRespawnMinY = 600
	rainRespawnMaxY = 1000
	rainSpawnMinY   = -100
	rainSpawnMaxY   = 900

	rainMinFall = 12
	rainMaxFall = 30

	// Drops fall faster on low-end devices so the thinner budget still
	// reads as rain.
	LowEndFallBoost = 1.25
)

// RainSystem is a struct-of-arrays particle arena for rain. Particles
// are recycled in place, never allocated per step.
type RainSystem struct {
	X, Y, Z []float32
	FallV   []float32 // downward units per heavy-step
	DriftX  []float32
	DriftZ  []float32
	Gust    []float32 // per-particle sinusoidal phase seed

	time      float32
	rng       *rand.Rand
	disposed  bool
	onDispose []func()
}

// NewRainSystem creates count particles randomized across the spawn
// volume. boost multiplies fall speed (low-end profiles pass
// LowEndFallBoost).
func NewRainSystem(count int, boost float32, rng *rand.Rand) *RainSystem {
	if count < 1 {
		count = 1
	}
	if boost <= 0 {
		boost = 1
	}
	r := &RainSystem{
		X:      make([]float32, count),
		Y:      make([]float32, count),
		Z:      make([]float32, count),
		FallV:  make([]float32, count),
		DriftX: make([]float32, count),
		DriftZ: make([]float32, count),
		Gust:   make([]float32, count),
		rng:    rng,
	}
	for i := 0; i < count; i++ {
		r.X[i] = r.randRange(-rainHalfExtent, rainHalfExtent)
		r.Y[i] = r.randRange(rainSpawnMinY, rainSpawnMaxY)
		r.Z[i] = r.randRange(-rainHalfExtent, rainHalfExtent)
		r.FallV[i] = r.randRange(rainMinFall, rainMaxFall) * boost
		r.DriftX[i] = r.randRange(-1.5, 1.5)
		r.DriftZ[i] = r.randRange(-1.5, 1.5)
		r.Gust[i] = r.randRange(0, 2*gomath.Pi)
	}
	return r
}

// Count returns the particle count.
func (r *RainSystem) Count() int {
	return len(r.X)
}

// Step advances every drop by one heavy-step: fall velocity plus drift
// plus a per-particle sinusoidal gust. Drops leaving the floor respawn
// high up with a fresh horizontal seed; horizontal positions wrap at
// the volume boundary.
func (r *RainSystem) Step() {
	r.time += 1.0 / 60.0
	for i := range r.X {
		gust := float32(gomath.Sin(float64(r.time*2.1+r.Gust[i]))) * 0.8

		r.X[i] += r.DriftX[i] + gust
		r.Z[i] += r.DriftZ[i]
		r.Y[i] -= r.FallV[i]

		if r.Y[i] < rainFloor {
			r.respawn(i)
		}

		r.X[i] = wrap(r.X[i], rainHalfExtent)
		r.Z[i] = wrap(r.Z[i], rainHalfExtent)
	}
}

func (r *RainSystem) respawn(i int) {
	r.X[i] = r.randRange(-rainHalfExtent, rainHalfExtent)
	r.Y[i] = r.randRange(rainRespawnMinY, rainRespawnMaxY)
	r.Z[i] = r.randRange(-rainHalfExtent, rainHalfExtent)
	r.Gust[i] = r.randRange(0, 2*gomath.Pi)
}

// OnDispose registers a callback run once when the system is disposed.
// The render side hooks its GPU buffer teardown here.
func (r *RainSystem) OnDispose(fn func()) {
	r.onDispose = append(r.onDispose, fn)
}

// Dispose releases the arena. Safe to call more than once.
func (r *RainSystem) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	for i := len(r.onDispose) - 1; i >= 0; i-- {
		r.onDispose[i]()
	}
	r.onDispose = nil
}

// Disposed reports whether Dispose has run.
func (r *RainSystem) Disposed() bool {
	return r.disposed
}

func (r *RainSystem) randRange(lo, hi float32) float32 {
	return lo + r.rng.Float32()*(hi-lo)
}

// wrap folds v into [-limit, limit], re-entering from the opposite side.
func wrap(v, limit float32) float32 {
	if v > limit {
		return -limit + (v - limit)
	}
	if v < -limit {
		return limit + (v + limit)
	}
	return v
}
