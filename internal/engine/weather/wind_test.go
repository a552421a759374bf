package weather

import (
	"math/rand"
	"testing"
)

func newTestWind(count int) *WindSystem {
	return NewWindSystem(count, 100, rand.New(rand.NewSource(7)))
}

func TestWind_LifetimeNeverExceedsCap(t *testing.T) {
	w := newTestWind(200)
	for step := 0; step < 1000; step++ {
		w.Step()
		for i := range w.Life {
			if w.Life[i] > WindLifetimeCap {
				t.Fatalf("step %d: particle %d lifetime %v exceeds cap %d",
					step, i, w.Life[i], WindLifetimeCap)
			}
		}
	}
}

func TestWind_RespawnResetsLifetime(t *testing.T) {
	w := newTestWind(50)

	// Age a particle past the budget; the next step must recycle it
	// with its lifetime reset to zero.
	w.Life[3] = WindLifetimeCap
	w.Step()
	if w.Life[3] != 0 {
		t.Errorf("lifetime after forced recycle = %v, want 0", w.Life[3])
	}
}

func TestWind_EscapeRecycles(t *testing.T) {
	w := newTestWind(50)

	// Push a particle outside the horizontal threshold (3x model max = 300).
	w.X[0] = 400
	w.Z[0] = 0
	w.Y[0] = 100
	w.Life[0] = 5
	w.Step()
	if w.X[0] > 310 || w.X[0] < -320 {
		t.Errorf("escaped particle not respawned: x=%v", w.X[0])
	}

	// Push one below the vertical band.
	w.Y[1] = windBandMinY - 50
	w.Step()
	if w.Y[1] < windBandMinY-10 {
		t.Errorf("particle below band not respawned: y=%v", w.Y[1])
	}
}

func TestWind_SpawnRegions(t *testing.T) {
	w := NewWindSystem(4000, 100, rand.New(rand.NewSource(99)))

	// extent = 300; windward spawns start at x <= -255.
	left, right, above := 0, 0, 0
	for i := range w.X {
		switch {
		case w.X[i] <= -250:
			left++
		case w.X[i] >= 250:
			right++
		default:
			above++
		}
	}

	total := float64(w.Count())
	if f := float64(left) / total; f < 0.6 || f > 0.8 {
		t.Errorf("windward spawn share = %v, want ~0.7", f)
	}
	if f := float64(right) / total; f < 0.12 || f > 0.28 {
		t.Errorf("lee spawn share = %v, want ~0.2", f)
	}
	if f := float64(above) / total; f < 0.04 || f > 0.18 {
		t.Errorf("above spawn share = %v, want ~0.1", f)
	}
}

func TestWind_DisposeIdempotent(t *testing.T) {
	w := newTestWind(10)
	calls := 0
	w.OnDispose(func() { calls++ })
	w.Dispose()
	w.Dispose()
	if calls != 1 {
		t.Errorf("dispose callback ran %d times, want 1", calls)
	}
}
