// Vitrine - a real-time 3D product showcase with weather simulation
// and live measurement overlays.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/AllenDang/cimgui-go/backend"
	"github.com/AllenDang/cimgui-go/backend/sdlbackend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/vitrine3d/vitrine/internal/catalog"
	"github.com/vitrine3d/vitrine/internal/config"
	"github.com/vitrine3d/vitrine/internal/engine/audio"
	"github.com/vitrine3d/vitrine/internal/engine/debug"
	"github.com/vitrine3d/vitrine/internal/engine/measure"
	"github.com/vitrine3d/vitrine/internal/engine/profile"
	"github.com/vitrine3d/vitrine/internal/engine/scene"
	"github.com/vitrine3d/vitrine/internal/engine/session"
	"github.com/vitrine3d/vitrine/internal/engine/weather"
	"github.com/vitrine3d/vitrine/internal/logger"
	"github.com/vitrine3d/vitrine/internal/store"
)

func main() {
	runtime.LockOSThread()

	config.ParseFlags()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Vitrine ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	app, err := NewApp(cfg)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	app.Run()
}

// App owns the window, the stage, and the active viewer session.
type App struct {
	backend backend.Backend[sdlbackend.SDLWindowFlags]
	cfg     *config.Config

	quality  profile.Profile
	stage    *scene.Scene
	session  *session.Session
	ambience *audio.Ambience

	// UI state
	showBounds   bool
	muted        bool
	lastMousePos imgui.Vec2
	frameTimer   frameTimer

	snapshots         *debug.SnapshotWriter
	snapshotRequested bool

	// File dialog result, processed on the main thread.
	pendingAssetPath string
}

// NewApp builds the window, GL context, stage, and session from config.
func NewApp(cfg *config.Config) (*App, error) {
	app := &App{cfg: cfg, muted: cfg.Audio.Muted}
	app.snapshots = debug.NewSnapshotWriter(filepath.Join(os.TempDir(), "vitrine"), "stage")

	cores := cfg.Device.Cores
	if cores <= 0 {
		cores = runtime.NumCPU()
	}
	dpr := cfg.Device.PixelRatio
	if dpr <= 0 {
		dpr = 1.0
	}
	app.quality = profile.New(cores, dpr)
	logger.Info("capability profile",
		zap.String("tier", app.quality.Tier.String()),
		zap.Int("cores", cores),
		zap.Float32("factor", app.quality.PerformanceFactor))

	var err error
	app.backend, err = backend.CreateBackend(sdlbackend.NewSDLBackend())
	if err != nil {
		return nil, fmt.Errorf("creating backend: %w", err)
	}

	app.backend.SetBgColor(imgui.NewVec4(0.1, 0.1, 0.12, 1.0))
	app.backend.CreateWindow("Vitrine", cfg.Graphics.Width, cfg.Graphics.Height)

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}

	app.stage, err = scene.New(scene.Config{
		Width:   int32(cfg.Graphics.Width),
		Height:  int32(cfg.Graphics.Height),
		Quality: app.quality,
	})
	if err != nil {
		return nil, fmt.Errorf("creating stage: %w", err)
	}

	cat := loadCatalog(cfg.Data.CatalogPath)

	units, err := store.Open(cfg.UnitStorePath())
	if err != nil {
		logger.Warn("unit store unavailable", zap.Error(err))
	}

	var ambience session.Ambience
	if cfg.Audio.Enabled {
		amb := audio.NewAmbience()
		if err := amb.Init(); err != nil {
			logger.Warn("audio unavailable", zap.Error(err))
		} else {
			app.ambience = amb
			ambience = amb
		}
	}

	opts := session.Options{
		Quality:     app.quality,
		Catalog:     cat,
		Stage:       app.stage,
		Ambience:    ambience,
		DisplayUnit: measure.ParseUnit(cfg.Viewer.DisplayUnit),
		Weather:     weather.ParseKind(cfg.Viewer.Weather),
	}
	if units != nil {
		opts.Units = units
	}
	app.session = session.New(opts)
	app.session.SetOverlayVisible(cfg.Viewer.ShowOverlay)
	app.session.SetMuted(app.muted)

	if len(app.session.Entries()) > 0 {
		app.session.LoadAsset(0)
	}

	return app, nil
}

// loadCatalog reads the product catalog, returning an empty one when
// the file is absent so the viewer still opens for local files.
func loadCatalog(path string) *catalog.Catalog {
	cat, err := catalog.LoadFile(path)
	if err != nil {
		logger.Warn("catalog unavailable",
			zap.String("path", path),
			zap.Error(err))
		return &catalog.Catalog{}
	}
	return cat
}

// Close tears down the session and window.
func (app *App) Close() {
	if app.session != nil {
		app.session.Close()
		app.session = nil
		app.stage = nil // destroyed by the session
		app.ambience = nil
	}
}

// Run starts the main loop.
func (app *App) Run() {
	app.backend.Run(app.render)
}

// openAssetDialog shows a native file dialog for a local model file.
// SDL window operations must happen on the main thread, so the result
// is queued and picked up in render.
func (app *App) openAssetDialog() {
	go func() {
		filename, err := dialog.File().
			Filter("Model Files", "glb").
			Filter("All Files", "*").
			Title("Open Model").
			Load()

		if err != nil {
			if err != dialog.ErrCancelled {
				logger.Warn("file dialog", zap.Error(err))
			}
			return
		}
		app.pendingAssetPath = filename
	}()
}
