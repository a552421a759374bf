// Package session owns one viewer session: the active asset, weather,
// measurement state, and every resource created for them. A session is
// created on mount and torn down completely on unmount.
package session

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vitrine3d/vitrine/internal/catalog"
	"github.com/vitrine3d/vitrine/internal/engine/camera"
	"github.com/vitrine3d/vitrine/internal/engine/measure"
	"github.com/vitrine3d/vitrine/internal/engine/model"
	"github.com/vitrine3d/vitrine/internal/engine/profile"
	"github.com/vitrine3d/vitrine/internal/engine/weather"
	"github.com/vitrine3d/vitrine/internal/logger"
	"github.com/vitrine3d/vitrine/pkg/formats"
)

// Stage is the render surface the session drives. The GL-backed scene
// implements it; headless callers pass nil and the session skips GPU
// work.
type Stage interface {
	ApplyWeather(weather.Params)
	AttachRain(*weather.RainSystem) error
	AttachWind(*weather.WindSystem) error
	SyncParticles()
	LoadMesh(*model.Mesh, *formats.GLB)
	ClearMesh()
	SetOverlay(*measure.Overlay)
	SetOverlayVisible(bool)
	SetBoundsVisible(bool)
	Destroy()
}

// Ambience is the weather soundtrack. Intensity follows the active
// profile; nil disables audio.
type Ambience interface {
	SetIntensity(float32)
	SetMuted(bool)
	Close()
}

// UnitStore persists the per-asset assumed unit.
type UnitStore interface {
	Get(url string, fallback measure.Unit) measure.Unit
	Set(url string, unit measure.Unit) error
}

// Bundle is the loaded model plus its measurement inputs. Replaced
// wholesale on asset change, never mutated in place.
type Bundle struct {
	Mesh       *model.Mesh
	GLB        *formats.GLB
	Entry      catalog.Entry
	Dimensions measure.Dimensions
}

// Session is one live viewer session.
type Session struct {
	ID      uuid.UUID
	Quality profile.Profile

	Camera    *camera.OrbitCamera
	Simulator *weather.Simulator

	stage    Stage
	ambience Ambience
	units    UnitStore
	fetcher  *catalog.Fetcher

	entries []catalog.Entry

	activeIndex int
	generation  uint64
	loading     bool
	results     chan loadResult
	quit        chan struct{}

	bundle  *Bundle
	overlay *measure.Overlay

	displayUnit    measure.Unit
	assumedUnit    measure.Unit
	overlayVisible bool

	running   bool
	disposers []func()
	closed    bool

	log *zap.Logger
}

// Options configures a new session.
type Options struct {
	Quality     profile.Profile
	Catalog     *catalog.Catalog
	Stage       Stage
	Ambience    Ambience
	Units       UnitStore
	DisplayUnit measure.Unit
	Weather     weather.Kind
}

// New creates a session and applies the initial weather profile. The
// first asset is not loaded automatically; call LoadAsset.
func New(opts Options) *Session {
	s := &Session{
		ID:             uuid.New(),
		Quality:        opts.Quality,
		stage:          opts.Stage,
		ambience:       opts.Ambience,
		units:          opts.Units,
		fetcher:        catalog.NewFetcher(),
		activeIndex:    -1,
		results:        make(chan loadResult, 1),
		quit:           make(chan struct{}),
		displayUnit:    opts.DisplayUnit,
		assumedUnit:    measure.Meter,
		overlayVisible: true,
		running:        true,
	}
	if !s.displayUnit.Valid() {
		s.displayUnit = measure.Millimeter
	}
	if opts.Catalog != nil {
		s.entries = opts.Catalog.Entries
	}

	s.log = logger.Log.With(zap.String("session", s.ID.String()))

	s.Camera = camera.NewOrbitCamera()
	s.pushDisposer(s.Camera.Dispose)

	s.Simulator = weather.NewSimulator(opts.Quality)
	s.pushDisposer(s.Simulator.DisposeSystems)

	s.SetWeather(opts.Weather)

	s.log.Info("session created",
		zap.String("tier", opts.Quality.Tier.String()),
		zap.Int("assets", len(s.entries)))

	return s
}

// Entries returns the session's asset list.
func (s *Session) Entries() []catalog.Entry {
	return s.entries
}

// ActiveIndex returns the displayed asset index, -1 before any load.
func (s *Session) ActiveIndex() int {
	return s.activeIndex
}

// Bundle returns the displayed model bundle, nil when none is loaded.
func (s *Session) Bundle() *Bundle {
	return s.bundle
}

// Overlay returns the live measurement overlay, nil without a model.
func (s *Session) Overlay() *measure.Overlay {
	return s.overlay
}

// Loading reports whether an asset fetch is in flight.
func (s *Session) Loading() bool {
	return s.loading
}

// DisplayUnit returns the measurement display unit.
func (s *Session) DisplayUnit() measure.Unit {
	return s.displayUnit
}

// AssumedUnit returns the assumed model unit for the active asset.
func (s *Session) AssumedUnit() measure.Unit {
	return s.assumedUnit
}

// OverlayVisible reports the dimension overlay toggle.
func (s *Session) OverlayVisible() bool {
	return s.overlayVisible
}

// AddLocalAsset appends a local file to the session's asset list and
// returns its index.
func (s *Session) AddLocalAsset(path, name string) int {
	s.entries = append(s.entries, catalog.Entry{Name: name, URL: path})
	return len(s.entries) - 1
}

// NextAsset advances to the next catalog entry, wrapping around.
func (s *Session) NextAsset() {
	if len(s.entries) < 2 {
		return
	}
	s.LoadAsset((s.activeIndex + 1) % len(s.entries))
}

// PrevAsset steps back to the previous catalog entry, wrapping around.
func (s *Session) PrevAsset() {
	if len(s.entries) < 2 {
		return
	}
	s.LoadAsset((s.activeIndex - 1 + len(s.entries)) % len(s.entries))
}

// SetWeather transitions the weather profile: total particle reset,
// then new systems attached to the stage and the ambience retargeted.
func (s *Session) SetWeather(kind weather.Kind) {
	s.Simulator.SetWeather(kind)
	params := s.Simulator.Params()

	if s.stage != nil {
		s.stage.ApplyWeather(params)
		if s.Simulator.Rain != nil {
			if err := s.stage.AttachRain(s.Simulator.Rain); err != nil {
				s.log.Error("attaching rain system", zap.Error(err))
			}
		}
		if s.Simulator.Wind != nil {
			if err := s.stage.AttachWind(s.Simulator.Wind); err != nil {
				s.log.Error("attaching wind system", zap.Error(err))
			}
		}
	}

	if s.ambience != nil {
		if params.HasRain {
			s.ambience.SetIntensity(s.rainIntensity())
		} else {
			s.ambience.SetIntensity(0)
		}
	}
}

// Weather returns the active weather kind.
func (s *Session) Weather() weather.Kind {
	return s.Simulator.Params().Kind
}

// rainIntensity maps rain budget utilisation to an audio level.
func (s *Session) rainIntensity() float32 {
	if s.Simulator.Rain == nil {
		return 0
	}
	n := float32(s.Simulator.Rain.Count())
	full := float32(s.Quality.RainStormBudget)
	if full <= 0 {
		return 0
	}
	v := 0.4 + 0.6*(n/full)
	if v > 1 {
		v = 1
	}
	return v
}

// SetDisplayUnit rewrites overlay labels in place. No geometry rebuild
// and no asset reload.
func (s *Session) SetDisplayUnit(u measure.Unit) {
	if !u.Valid() || u == s.displayUnit {
		return
	}
	s.displayUnit = u
	if s.overlay != nil {
		s.overlay.SetDisplayUnit(u)
	}
}

// SetAssumedUnit records the assumed model unit for the active asset,
// persists it, and re-resolves inferred dimensions. Fully authoritative
// dimensions do not change.
func (s *Session) SetAssumedUnit(u measure.Unit) {
	if !u.Valid() || u == s.assumedUnit {
		return
	}
	s.assumedUnit = u

	if s.bundle != nil {
		if s.units != nil {
			if err := s.units.Set(s.bundle.Entry.URL, u); err != nil {
				s.log.Warn("persisting assumed unit", zap.Error(err))
			}
		}
		s.refreshDimensions()
	}
}

// refreshDimensions re-resolves the bundle's dimensions under the
// current assumed unit and rebuilds the overlay geometry.
func (s *Session) refreshDimensions() {
	b := s.bundle
	raw := b.Mesh.RawSize
	dims := measure.Resolve(specFor(b.Entry), [3]float64{
		float64(raw.X), float64(raw.Y), float64(raw.Z),
	}, s.assumedUnit)
	b.Dimensions = dims

	nb := b.Mesh.NormalizedBounds
	s.overlay = measure.Build(
		vec3(nb.Min), vec3(nb.Max),
		dims, s.displayUnit,
	)
	s.overlay.Visible = s.overlayVisible
	if s.stage != nil {
		s.stage.SetOverlay(s.overlay)
	}
}

// ToggleOverlay flips dimension overlay visibility.
func (s *Session) ToggleOverlay() {
	s.SetOverlayVisible(!s.overlayVisible)
}

// SetOverlayVisible applies the overlay show/hide flag.
func (s *Session) SetOverlayVisible(v bool) {
	s.overlayVisible = v
	if s.overlay != nil {
		s.overlay.Visible = v
	}
	if s.stage != nil {
		s.stage.SetOverlayVisible(v)
	}
}

// SetBoundsVisible toggles the debug bounds wireframe.
func (s *Session) SetBoundsVisible(v bool) {
	if s.stage != nil {
		s.stage.SetBoundsVisible(v)
	}
}

// SetMuted toggles the ambience.
func (s *Session) SetMuted(m bool) {
	if s.ambience != nil {
		s.ambience.SetMuted(m)
	}
}

// Frame advances one tick: drain load completions, ease the camera,
// advance particles when the heavy-step gate fires, and stream their
// positions. Rendering itself stays with the caller, which owns the GL
// context. Returns false once the session is stopped.
func (s *Session) Frame(dt float32) bool {
	if !s.running {
		return false
	}

	s.drainLoads()
	s.Camera.Update(dt)

	if s.Simulator.Advance() && s.stage != nil {
		s.stage.SyncParticles()
	}
	return true
}

// Stop halts the frame loop. The session remains queryable until Close.
func (s *Session) Stop() {
	s.running = false
}

// Running reports whether the frame loop is active.
func (s *Session) Running() bool {
	return s.running
}

// pushDisposer records a teardown closure. Close runs them in reverse
// creation order.
func (s *Session) pushDisposer(fn func()) {
	s.disposers = append(s.disposers, fn)
}

// Close tears the session down: stop the loop, release overlay and
// camera, dispose particle systems, then the stage. Idempotent.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true

	s.Stop()
	close(s.quit)

	if s.stage != nil {
		s.stage.ClearMesh()
	}
	s.overlay = nil
	s.bundle = nil

	for i := len(s.disposers) - 1; i >= 0; i-- {
		s.disposers[i]()
	}
	s.disposers = nil

	if s.stage != nil {
		s.stage.Destroy()
		s.stage = nil
	}
	if s.ambience != nil {
		s.ambience.Close()
		s.ambience = nil
	}

	s.log.Info("session closed")
}

func specFor(e catalog.Entry) measure.Spec {
	return measure.Spec{
		Width:     e.Width,
		Height:    e.Height,
		Thickness: e.Thickness,
		Unit:      e.Unit,
	}
}
