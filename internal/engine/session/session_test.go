package session

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	gomath "math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vitrine3d/vitrine/internal/catalog"
	"github.com/vitrine3d/vitrine/internal/engine/measure"
	"github.com/vitrine3d/vitrine/internal/engine/model"
	"github.com/vitrine3d/vitrine/internal/engine/profile"
	"github.com/vitrine3d/vitrine/internal/engine/weather"
	"github.com/vitrine3d/vitrine/internal/logger"
	"github.com/vitrine3d/vitrine/pkg/formats"
)

func TestMain(m *testing.M) {
	logger.InitWithFileConfig("error", logger.FileConfig{}, false)
	os.Exit(m.Run())
}

// fakeStage records stage calls so sessions can be exercised headless.
type fakeStage struct {
	applied     []weather.Params
	rainAttach  int
	windAttach  int
	syncs       int
	loadedMesh  *model.Mesh
	cleared     int
	overlay     *measure.Overlay
	overlayFlag bool
	boundsFlag  bool
	destroyed   int
}

func (f *fakeStage) ApplyWeather(p weather.Params) { f.applied = append(f.applied, p) }
func (f *fakeStage) AttachRain(*weather.RainSystem) error {
	f.rainAttach++
	return nil
}
func (f *fakeStage) AttachWind(*weather.WindSystem) error {
	f.windAttach++
	return nil
}
func (f *fakeStage) SyncParticles() { f.syncs++ }
func (f *fakeStage) LoadMesh(m *model.Mesh, _ *formats.GLB) {
	f.loadedMesh = m
}
func (f *fakeStage) ClearMesh()                  { f.cleared++ }
func (f *fakeStage) SetOverlay(o *measure.Overlay) { f.overlay = o }
func (f *fakeStage) SetOverlayVisible(v bool)    { f.overlayFlag = v }
func (f *fakeStage) SetBoundsVisible(v bool)     { f.boundsFlag = v }
func (f *fakeStage) Destroy()                    { f.destroyed++ }

// memStore is an in-memory UnitStore.
type memStore struct {
	units map[string]measure.Unit
	sets  int
}

func newMemStore() *memStore {
	return &memStore{units: map[string]measure.Unit{}}
}

func (m *memStore) Get(url string, fallback measure.Unit) measure.Unit {
	if u, ok := m.units[url]; ok {
		return u
	}
	return fallback
}

func (m *memStore) Set(url string, u measure.Unit) error {
	m.units[url] = u
	m.sets++
	return nil
}

const (
	glbMagic  = 0x46546C67
	chunkJSON = 0x4E4F534A
	chunkBIN  = 0x004E4942
)

// writeTriangleGLB writes a minimal one-triangle asset spanning
// 2 x 1 x 0.5 raw units and returns its path.
func writeTriangleGLB(t *testing.T, dir, name string) string {
	t.Helper()

	bin := new(bytes.Buffer)
	positions := [][3]float32{{0, 0, 0}, {2, 0, 0}, {0, 1, 0.5}}
	for _, p := range positions {
		for _, c := range p {
			binary.Write(bin, binary.LittleEndian, gomath.Float32bits(c))
		}
	}
	for _, idx := range []uint16{0, 1, 2} {
		binary.Write(bin, binary.LittleEndian, idx)
	}

	doc := map[string]any{
		"asset":   map[string]any{"version": "2.0"},
		"buffers": []any{map[string]any{"byteLength": bin.Len()}},
		"bufferViews": []any{
			map[string]any{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			map[string]any{"buffer": 0, "byteOffset": 36, "byteLength": 6},
		},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			map[string]any{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"},
		},
		"meshes": []any{
			map[string]any{
				"name": "panel",
				"primitives": []any{
					map[string]any{
						"attributes": map[string]any{"POSITION": 0},
						"indices":    1,
					},
				},
			},
		},
		"nodes": []any{map[string]any{"name": "root", "mesh": 0}},
	}

	return writeGLB(t, dir, name, doc, bin.Bytes())
}

// writeGLB assembles a GLB container around doc and binBytes and writes
// it under dir. A nil binBytes skips the BIN chunk.
func writeGLB(t *testing.T, dir, name string, doc map[string]any, binBytes []byte) string {
	t.Helper()

	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal fixture doc: %v", err)
	}
	for len(jsonBytes)%4 != 0 {
		jsonBytes = append(jsonBytes, ' ')
	}
	for len(binBytes)%4 != 0 {
		binBytes = append(binBytes, 0)
	}

	buf := new(bytes.Buffer)
	total := 12 + 8 + len(jsonBytes)
	if binBytes != nil {
		total += 8 + len(binBytes)
	}
	binary.Write(buf, binary.LittleEndian, uint32(glbMagic))
	binary.Write(buf, binary.LittleEndian, uint32(2))
	binary.Write(buf, binary.LittleEndian, uint32(total))
	binary.Write(buf, binary.LittleEndian, uint32(len(jsonBytes)))
	binary.Write(buf, binary.LittleEndian, uint32(chunkJSON))
	buf.Write(jsonBytes)
	if binBytes != nil {
		binary.Write(buf, binary.LittleEndian, uint32(len(binBytes)))
		binary.Write(buf, binary.LittleEndian, uint32(chunkBIN))
		buf.Write(binBytes)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func testSession(t *testing.T, stage *fakeStage, store UnitStore, entries ...catalog.Entry) *Session {
	t.Helper()
	s := New(Options{
		Quality:     profile.New(8, 1),
		Catalog:     &catalog.Catalog{Entries: entries},
		Stage:       stage,
		Units:       store,
		DisplayUnit: measure.Millimeter,
		Weather:     weather.Sunny,
	})
	t.Cleanup(s.Close)
	return s
}

// pump runs frames until the in-flight load settles.
func pump(t *testing.T, s *Session) {
	t.Helper()
	for i := 0; i < 400; i++ {
		s.Frame(0.016)
		if !s.Loading() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("load did not settle")
}

func TestNew_Defaults(t *testing.T) {
	s := testSession(t, &fakeStage{}, nil)

	if !s.Running() {
		t.Error("new session not running")
	}
	if s.ActiveIndex() != -1 {
		t.Errorf("active index = %d before any load", s.ActiveIndex())
	}
	if !s.OverlayVisible() {
		t.Error("overlay hidden by default")
	}
	if s.DisplayUnit() != measure.Millimeter {
		t.Errorf("display unit = %q", s.DisplayUnit())
	}
}

func TestNew_InvalidDisplayUnitFallsBack(t *testing.T) {
	s := New(Options{
		Quality:     profile.New(8, 1),
		DisplayUnit: measure.Unit("furlong"),
		Weather:     weather.Sunny,
	})
	defer s.Close()

	if s.DisplayUnit() != measure.Millimeter {
		t.Errorf("display unit = %q, want mm", s.DisplayUnit())
	}
}

func TestSetWeather_AttachesSystems(t *testing.T) {
	stage := &fakeStage{}
	s := testSession(t, stage, nil)

	if stage.rainAttach != 0 || stage.windAttach != 0 {
		t.Fatalf("sunny attached rain=%d wind=%d", stage.rainAttach, stage.windAttach)
	}

	s.SetWeather(weather.Rainy)

	if s.Weather() != weather.Rainy {
		t.Errorf("weather = %v", s.Weather())
	}
	if stage.rainAttach != 1 {
		t.Errorf("rain attach = %d, want 1", stage.rainAttach)
	}
	if stage.windAttach != 1 {
		t.Errorf("wind attach = %d, want 1", stage.windAttach)
	}
	if len(stage.applied) < 2 {
		t.Fatalf("ApplyWeather calls = %d", len(stage.applied))
	}
	if last := stage.applied[len(stage.applied)-1]; !last.HasRain {
		t.Error("rainy params without rain")
	}
}

func TestLoadAsset_PublishesBundle(t *testing.T) {
	dir := t.TempDir()
	path := writeTriangleGLB(t, dir, "panel.glb")
	stage := &fakeStage{}
	s := testSession(t, stage, newMemStore(), catalog.Entry{
		Name: "Panel", URL: path,
		Width: "2000", Height: "1000", Thickness: "500", Unit: "mm",
	})

	s.LoadAsset(0)
	if !s.Loading() {
		t.Fatal("loading flag not set")
	}
	pump(t, s)

	b := s.Bundle()
	if b == nil {
		t.Fatal("no bundle after load")
	}
	if s.ActiveIndex() != 0 {
		t.Errorf("active index = %d", s.ActiveIndex())
	}
	if !b.Dimensions.Authoritative {
		t.Error("catalog dimensions not authoritative")
	}
	if b.Dimensions.WidthMM != 2000 {
		t.Errorf("width = %v mm", b.Dimensions.WidthMM)
	}
	if stage.loadedMesh != b.Mesh {
		t.Error("stage did not receive the published mesh")
	}
	if s.Overlay() == nil || stage.overlay != s.Overlay() {
		t.Error("overlay not published to stage")
	}
	if s.Camera.Target.Y == 0 && s.Camera.Distance == 220 {
		t.Error("camera not reframed to model bounds")
	}
}

func TestLoadAsset_InferredDimensions(t *testing.T) {
	dir := t.TempDir()
	path := writeTriangleGLB(t, dir, "panel.glb")
	store := newMemStore()
	s := testSession(t, &fakeStage{}, store, catalog.Entry{Name: "Panel", URL: path})

	s.LoadAsset(0)
	pump(t, s)

	b := s.Bundle()
	if b == nil {
		t.Fatal("no bundle after load")
	}
	if b.Dimensions.Authoritative {
		t.Error("dimensions authoritative without a catalog spec")
	}
	// Raw size 2 units under the assumed meter scale.
	if gomath.Abs(b.Dimensions.WidthMM-2000) > 1 {
		t.Errorf("inferred width = %v mm, want 2000", b.Dimensions.WidthMM)
	}
}

func TestLoadAsset_FailureKeepsPreviousBundle(t *testing.T) {
	dir := t.TempDir()
	path := writeTriangleGLB(t, dir, "panel.glb")
	s := testSession(t, &fakeStage{}, nil,
		catalog.Entry{Name: "Good", URL: path},
		catalog.Entry{Name: "Missing", URL: filepath.Join(dir, "nope.glb")},
	)

	s.LoadAsset(0)
	pump(t, s)
	prev := s.Bundle()
	if prev == nil {
		t.Fatal("first load failed")
	}

	s.LoadAsset(1)
	pump(t, s)

	if s.Loading() {
		t.Error("loading flag stuck after failure")
	}
	if s.Bundle() != prev {
		t.Error("failed load replaced the previous bundle")
	}
	if s.ActiveIndex() != 0 {
		t.Errorf("active index = %d after failed load", s.ActiveIndex())
	}
}

// A document whose node references a nonexistent mesh must fail the
// load like any other bad asset, not take the process down.
func TestLoadAsset_MalformedDocumentFails(t *testing.T) {
	dir := t.TempDir()
	good := writeTriangleGLB(t, dir, "good.glb")
	bad := writeGLB(t, dir, "bad.glb", map[string]any{
		"asset":  map[string]any{"version": "2.0"},
		"meshes": []any{},
		"nodes":  []any{map[string]any{"name": "root", "mesh": 5}},
	}, nil)
	s := testSession(t, &fakeStage{}, nil,
		catalog.Entry{Name: "Good", URL: good},
		catalog.Entry{Name: "Bad", URL: bad},
	)

	s.LoadAsset(0)
	pump(t, s)
	prev := s.Bundle()
	if prev == nil {
		t.Fatal("first load failed")
	}

	s.LoadAsset(1)
	pump(t, s)

	if s.Loading() {
		t.Error("loading flag stuck after malformed asset")
	}
	if s.Bundle() != prev {
		t.Error("malformed asset replaced the previous bundle")
	}
}

func TestLoadAsset_NewerRequestWins(t *testing.T) {
	dir := t.TempDir()
	first := writeTriangleGLB(t, dir, "first.glb")
	second := writeTriangleGLB(t, dir, "second.glb")
	s := testSession(t, &fakeStage{}, nil,
		catalog.Entry{Name: "First", URL: first},
		catalog.Entry{Name: "Second", URL: second},
	)

	s.LoadAsset(0)
	s.LoadAsset(1)
	pump(t, s)
	// Drain any straggler result.
	for i := 0; i < 10; i++ {
		s.Frame(0.016)
		time.Sleep(2 * time.Millisecond)
	}

	b := s.Bundle()
	if b == nil {
		t.Fatal("no bundle after loads")
	}
	if b.Entry.Name != "Second" {
		t.Errorf("published %q, want the newer request", b.Entry.Name)
	}
}

func TestSetDisplayUnit_LabelsOnly(t *testing.T) {
	dir := t.TempDir()
	path := writeTriangleGLB(t, dir, "panel.glb")
	s := testSession(t, &fakeStage{}, nil, catalog.Entry{
		Name: "Panel", URL: path,
		Width: "2000", Height: "1000", Thickness: "500", Unit: "mm",
	})
	s.LoadAsset(0)
	pump(t, s)

	overlay := s.Overlay()
	s.SetDisplayUnit(measure.Meter)

	if s.Overlay() != overlay {
		t.Error("display unit change rebuilt the overlay")
	}
	if overlay.Rebuilds() != 1 {
		t.Errorf("rebuilds = %d", overlay.Rebuilds())
	}
	if got := overlay.Annotations[measure.AxisWidth].LabelText; got != "2.00 m" {
		t.Errorf("width label = %q", got)
	}
}

func TestSetAssumedUnit_PersistsAndReresolves(t *testing.T) {
	dir := t.TempDir()
	path := writeTriangleGLB(t, dir, "panel.glb")
	store := newMemStore()
	s := testSession(t, &fakeStage{}, store, catalog.Entry{Name: "Panel", URL: path})
	s.LoadAsset(0)
	pump(t, s)

	s.SetAssumedUnit(measure.Centimeter)

	if store.sets != 1 {
		t.Errorf("store sets = %d", store.sets)
	}
	if got := store.units[path]; got != measure.Centimeter {
		t.Errorf("persisted unit = %q", got)
	}
	// Raw width 2 re-read as centimeters.
	if got := s.Bundle().Dimensions.WidthMM; gomath.Abs(got-20) > 0.01 {
		t.Errorf("re-resolved width = %v mm, want 20", got)
	}
}

func TestStoredAssumedUnitAppliesOnLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeTriangleGLB(t, dir, "panel.glb")
	store := newMemStore()
	store.units[path] = measure.Centimeter
	s := testSession(t, &fakeStage{}, store, catalog.Entry{Name: "Panel", URL: path})

	s.LoadAsset(0)
	pump(t, s)

	if s.AssumedUnit() != measure.Centimeter {
		t.Errorf("assumed unit = %q", s.AssumedUnit())
	}
	if got := s.Bundle().Dimensions.WidthMM; gomath.Abs(got-20) > 0.01 {
		t.Errorf("width = %v mm under stored cm unit", got)
	}
}

func TestToggleOverlay(t *testing.T) {
	stage := &fakeStage{}
	s := testSession(t, stage, nil)

	s.ToggleOverlay()
	if s.OverlayVisible() || stage.overlayFlag {
		t.Error("overlay still visible after toggle")
	}
	s.ToggleOverlay()
	if !s.OverlayVisible() || !stage.overlayFlag {
		t.Error("overlay not restored")
	}
}

func TestNextPrevAsset_Wraps(t *testing.T) {
	dir := t.TempDir()
	a := writeTriangleGLB(t, dir, "a.glb")
	b := writeTriangleGLB(t, dir, "b.glb")
	s := testSession(t, &fakeStage{}, nil,
		catalog.Entry{Name: "A", URL: a},
		catalog.Entry{Name: "B", URL: b},
	)

	s.NextAsset()
	pump(t, s)
	if s.ActiveIndex() != 0 {
		t.Fatalf("first next landed on %d", s.ActiveIndex())
	}

	s.NextAsset()
	pump(t, s)
	if s.ActiveIndex() != 1 {
		t.Fatalf("second next landed on %d", s.ActiveIndex())
	}

	s.NextAsset()
	pump(t, s)
	if s.ActiveIndex() != 0 {
		t.Errorf("next did not wrap, index = %d", s.ActiveIndex())
	}

	s.PrevAsset()
	pump(t, s)
	if s.ActiveIndex() != 1 {
		t.Errorf("prev did not wrap, index = %d", s.ActiveIndex())
	}
}

func TestAddLocalAsset(t *testing.T) {
	s := testSession(t, &fakeStage{}, nil, catalog.Entry{Name: "A", URL: "a.glb"})

	idx := s.AddLocalAsset("/tmp/local.glb", "Local")
	if idx != 1 {
		t.Errorf("index = %d", idx)
	}
	if got := s.Entries()[idx]; got.URL != "/tmp/local.glb" || got.Name != "Local" {
		t.Errorf("entry = %+v", got)
	}
}

func TestFrame_SyncsParticlesOnHeavyStep(t *testing.T) {
	stage := &fakeStage{}
	s := testSession(t, stage, nil)
	s.SetWeather(weather.Rainy)

	interval := s.Quality.HeavyStepInterval()
	for i := 0; i < interval*3; i++ {
		s.Frame(0.016)
	}
	if stage.syncs != 3 {
		t.Errorf("syncs = %d over %d frames", stage.syncs, interval*3)
	}
}

// A worker whose result slot is occupied must not stay blocked on send
// after the session closes.
func TestClose_ReleasesPendingLoadWorker(t *testing.T) {
	s := testSession(t, &fakeStage{}, nil)
	s.results <- loadResult{} // occupy the single slot

	done := make(chan struct{})
	go func() {
		s.deliver(loadResult{})
		close(done)
	}()

	s.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("load worker still blocked after Close")
	}
}

func TestClose_Idempotent(t *testing.T) {
	stage := &fakeStage{}
	s := New(Options{
		Quality: profile.New(8, 1),
		Stage:   stage,
		Weather: weather.Rainy,
	})

	s.Close()
	s.Close()

	if stage.destroyed != 1 {
		t.Errorf("stage destroyed %d times", stage.destroyed)
	}
	if stage.cleared != 1 {
		t.Errorf("mesh cleared %d times", stage.cleared)
	}
	if s.Frame(0.016) {
		t.Error("frame loop still running after close")
	}
	if s.Simulator.Rain != nil || s.Simulator.Wind != nil {
		t.Error("particle systems survive close")
	}
}
