package session

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vitrine3d/vitrine/internal/catalog"
	"github.com/vitrine3d/vitrine/internal/engine/measure"
	"github.com/vitrine3d/vitrine/internal/engine/model"
	"github.com/vitrine3d/vitrine/pkg/formats"
	"github.com/vitrine3d/vitrine/pkg/math"
)

// loadResult carries one finished load from the worker goroutine back
// to the frame loop. generation identifies the request; a result whose
// generation is stale is dropped on the floor.
type loadResult struct {
	generation uint64
	index      int
	entry      catalog.Entry
	mesh       *model.Mesh
	glb        *formats.GLB
	err        error
}

// LoadAsset starts an asynchronous load of the given catalog entry.
// Fetch and parse run off the frame loop; upload and publish happen in
// Frame when the result arrives. A newer LoadAsset supersedes any load
// still in flight.
func (s *Session) LoadAsset(index int) {
	if index < 0 || index >= len(s.entries) {
		return
	}
	entry := s.entries[index]

	s.generation++
	gen := s.generation
	s.loading = true

	s.log.Info("loading asset",
		zap.String("name", entry.Name),
		zap.Int("index", index))

	go func() {
		mesh, glb, err := s.loadWorker(entry)
		s.deliver(loadResult{
			generation: gen,
			index:      index,
			entry:      entry,
			mesh:       mesh,
			glb:        glb,
			err:        err,
		})
	}()
}

// deliver hands a finished load to the frame loop. The results channel
// holds one slot and drains once per frame, so a worker superseded by
// rapid LoadAsset calls can find it occupied; giving up on quit keeps
// those workers from outliving a closed session.
func (s *Session) deliver(res loadResult) {
	select {
	case s.results <- res:
	case <-s.quit:
	}
}

// loadWorker runs off the frame loop: fetch bytes, parse the container,
// flatten geometry, normalize for presentation. No GL calls here.
func (s *Session) loadWorker(entry catalog.Entry) (*model.Mesh, *formats.GLB, error) {
	data, err := s.fetcher.Fetch(entry.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching %q: %w", entry.URL, err)
	}

	glb, err := formats.ParseGLB(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %q: %w", entry.URL, err)
	}

	mesh, err := model.FromGLB(glb)
	if err != nil {
		return nil, nil, fmt.Errorf("building %q: %w", entry.URL, err)
	}
	mesh.Normalize(model.NormalizedSize)

	return mesh, glb, nil
}

// drainLoads consumes at most one pending result per frame. Stale
// results are discarded; failures clear the loading flag and leave the
// previous bundle untouched.
func (s *Session) drainLoads() {
	select {
	case res := <-s.results:
		if res.generation != s.generation {
			s.log.Debug("discarding stale load",
				zap.String("name", res.entry.Name))
			return
		}
		s.loading = false

		if res.err != nil {
			s.log.Error("asset load failed",
				zap.String("name", res.entry.Name),
				zap.Error(res.err))
			return
		}
		s.publish(res)
	default:
	}
}

// publish swaps in the loaded bundle atomically with its overlay,
// camera framing, and wind volume so no frame observes a mix of old
// and new state.
func (s *Session) publish(res loadResult) {
	if s.units != nil {
		s.assumedUnit = s.units.Get(res.entry.URL, s.assumedUnit)
	}

	raw := res.mesh.RawSize
	dims := measure.Resolve(specFor(res.entry), [3]float64{
		float64(raw.X), float64(raw.Y), float64(raw.Z),
	}, s.assumedUnit)

	s.bundle = &Bundle{
		Mesh:       res.mesh,
		GLB:        res.glb,
		Entry:      res.entry,
		Dimensions: dims,
	}
	s.activeIndex = res.index

	nb := res.mesh.NormalizedBounds
	s.overlay = measure.Build(vec3(nb.Min), vec3(nb.Max), dims, s.displayUnit)
	s.overlay.Visible = s.overlayVisible

	s.Simulator.SetModelExtent(nb.MaxDimension())

	if s.stage != nil {
		s.stage.LoadMesh(res.mesh, res.glb)
		s.stage.SetOverlay(s.overlay)
	}
	s.Camera.FitToBounds(nb.Min, nb.Max)

	s.log.Info("asset published",
		zap.String("name", res.entry.Name),
		zap.Int("surfaces", len(res.mesh.Surfaces)),
		zap.Bool("authoritative", dims.Authoritative))
}

func vec3(p [3]float32) math.Vec3 {
	return math.Vec3{X: p[0], Y: p[1], Z: p[2]}
}
