package weather

import (
	gomath "math"
	"math/rand"
)

// Wind band and lifetime constants.
const (
	windBandMinY = -20
	windBandMaxY = 260

	// Lifetime budget in heavy-steps.
	WindLifetimeCap = 360

	// Horizontal escape distance as a multiple of the model's largest
	// dimension.
	windExtentFactor = 3
)

// WindSystem is a struct-of-arrays arena of drifting streak particles.
// Each particle carries a velocity and an accumulating lifetime; it is
// recycled when it ages out or leaves the volume around the model.
type WindSystem struct {
	X, Y, Z    []float32
	VX, VY, VZ []float32
	Life       []float32
	Phase      []float32

	extent    float32 // horizontal escape distance from the model center
	time      float32
	rng       *rand.Rand
	disposed  bool
	onDispose []func()
}

// NewWindSystem creates count particles around a model whose largest
// dimension is modelMax.
func NewWindSystem(count int, modelMax float32, rng *rand.Rand) *WindSystem {
	if count < 1 {
		count = 1
	}
	if modelMax <= 0 {
		modelMax = 100
	}
	w := &WindSystem{
		X:      make([]float32, count),
		Y:      make([]float32, count),
		Z:      make([]float32, count),
		VX:     make([]float32, count),
		VY:     make([]float32, count),
		VZ:     make([]float32, count),
		Life:   make([]float32, count),
		Phase:  make([]float32, count),
		extent: modelMax * windExtentFactor,
		rng:    rng,
	}
	for i := 0; i < count; i++ {
		w.spawn(i)
		// Stagger initial ages so the whole arena does not recycle at once.
		w.Life[i] = w.randRange(0, WindLifetimeCap*0.8)
	}
	return w
}

// Count returns the particle count.
func (w *WindSystem) Count() int {
	return len(w.X)
}

// Step advances every particle by one heavy-step: velocity plus layered
// sinusoidal turbulence and gust terms, then recycles anything past its
// lifetime budget or outside the volume.
func (w *WindSystem) Step() {
	w.time += 1.0 / 60.0
	for i := range w.X {
		t := float64(w.time)
		p := float64(w.Phase[i])

		turb := float32(gomath.Sin(t*1.7+p)*0.6 + gomath.Sin(t*4.3+p*2)*0.25)
		gust := float32(gomath.Sin(t*0.6+p)) * 0.9

		w.X[i] += w.VX[i] + gust
		w.Y[i] += w.VY[i] + turb*0.4
		w.Z[i] += w.VZ[i] + turb

		w.Life[i]++

		if w.Life[i] > WindLifetimeCap || w.escaped(i) {
			w.spawn(i)
		}
	}
}

func (w *WindSystem) escaped(i int) bool {
	if w.Y[i] < windBandMinY || w.Y[i] > windBandMaxY {
		return true
	}
	dx, dz := w.X[i], w.Z[i]
	return dx*dx+dz*dz > w.extent*w.extent
}

// spawn recycles particle i: fresh velocity and direction, lifetime
// reset to zero, position drawn from one of three weighted regions —
// 70% the windward side, 20% the lee side, 10% from above.
func (w *WindSystem) spawn(i int) {
	w.Life[i] = 0
	w.Phase[i] = w.randRange(0, 2*gomath.Pi)

	speed := w.randRange(2.5, 7)
	w.VX[i] = speed
	w.VY[i] = w.randRange(-0.4, 0.4)
	w.VZ[i] = w.randRange(-1.2, 1.2)

	switch roll := w.rng.Float32(); {
	case roll < 0.7:
		// Windward side: enter from -X, travel across the model.
		w.X[i] = -w.extent * w.randRange(0.85, 1.0)
		w.Y[i] = w.randRange(windBandMinY+5, windBandMaxY-5)
		w.Z[i] = w.randRange(-w.extent, w.extent) * 0.6
	case roll < 0.9:
		// Lee side, blowing back in.
		w.X[i] = w.extent * w.randRange(0.85, 1.0)
		w.Y[i] = w.randRange(windBandMinY+5, windBandMaxY-5)
		w.Z[i] = w.randRange(-w.extent, w.extent) * 0.6
		w.VX[i] = -speed
	default:
		// From above, drifting down through the band.
		w.X[i] = w.randRange(-w.extent, w.extent) * 0.5
		w.Y[i] = windBandMaxY - 10
		w.Z[i] = w.randRange(-w.extent, w.extent) * 0.5
		w.VY[i] = -w.randRange(0.5, 1.5)
	}
}

// OnDispose registers a callback run once when the system is disposed.
func (w *WindSystem) OnDispose(fn func()) {
	w.onDispose = append(w.onDispose, fn)
}

// Dispose releases the arena. Safe to call more than once.
func (w *WindSystem) Dispose() {
	if w.disposed {
		return
	}
	w.disposed = true
	for i := len(w.onDispose) - 1; i >= 0; i-- {
		w.onDispose[i]()
	}
	w.onDispose = nil
}

// Disposed reports whether Dispose has run.
func (w *WindSystem) Disposed() bool {
	return w.disposed
}

func (w *WindSystem) randRange(lo, hi float32) float32 {
	return lo + w.rng.Float32()*(hi-lo)
}
