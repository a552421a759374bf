package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}

	if !cfg.Audio.Enabled {
		t.Error("expected audio enabled by default")
	}
	if cfg.Audio.Muted {
		t.Error("expected audio unmuted by default")
	}

	if cfg.Viewer.Weather != "sunny" {
		t.Errorf("expected weather 'sunny', got %s", cfg.Viewer.Weather)
	}
	if cfg.Viewer.DisplayUnit != "mm" {
		t.Errorf("expected display unit 'mm', got %s", cfg.Viewer.DisplayUnit)
	}
	if !cfg.Viewer.ShowOverlay {
		t.Error("expected overlay shown by default")
	}

	if cfg.Device.Cores != 0 || cfg.Device.PixelRatio != 0 {
		t.Error("expected device hints to default to autodetect")
	}

	if cfg.Data.CatalogPath != "catalog.yaml" {
		t.Errorf("expected catalog path 'catalog.yaml', got %s", cfg.Data.CatalogPath)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  vsync: false
  fps_limit: 144

audio:
  enabled: false
  muted: true

viewer:
  weather: "rainy"
  display_unit: "cm"
  show_overlay: false
  show_fps: true

device:
  cores: 2
  pixel_ratio: 2.0

data:
  catalog_path: "showroom.yaml"
  unit_store_path: "/var/lib/vitrine/units.yaml"

logging:
  level: "debug"
  log_file: "viewer.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 1080 {
		t.Errorf("expected height 1080, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync to be false")
	}
	if cfg.Graphics.FPSLimit != 144 {
		t.Errorf("expected fps limit 144, got %d", cfg.Graphics.FPSLimit)
	}

	if cfg.Audio.Enabled {
		t.Error("expected audio disabled")
	}
	if !cfg.Audio.Muted {
		t.Error("expected muted to be true")
	}

	if cfg.Viewer.Weather != "rainy" {
		t.Errorf("expected weather 'rainy', got %s", cfg.Viewer.Weather)
	}
	if cfg.Viewer.DisplayUnit != "cm" {
		t.Errorf("expected display unit 'cm', got %s", cfg.Viewer.DisplayUnit)
	}
	if cfg.Viewer.ShowOverlay {
		t.Error("expected overlay hidden")
	}
	if !cfg.Viewer.ShowFPS {
		t.Error("expected show_fps to be true")
	}

	if cfg.Device.Cores != 2 {
		t.Errorf("expected cores 2, got %d", cfg.Device.Cores)
	}
	if cfg.Device.PixelRatio != 2.0 {
		t.Errorf("expected pixel ratio 2.0, got %f", cfg.Device.PixelRatio)
	}

	if cfg.Data.CatalogPath != "showroom.yaml" {
		t.Errorf("expected catalog path 'showroom.yaml', got %s", cfg.Data.CatalogPath)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "viewer.log" {
		t.Errorf("expected log file 'viewer.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestUnitStorePath(t *testing.T) {
	cfg := Default()
	if got := cfg.UnitStorePath(); !strings.HasSuffix(got, "units.yaml") {
		t.Errorf("default unit store path = %s", got)
	}

	cfg.Data.UnitStorePath = "/tmp/custom-units.yaml"
	if got := cfg.UnitStorePath(); got != "/tmp/custom-units.yaml" {
		t.Errorf("explicit unit store path = %s", got)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				if !cfg.Viewer.ShowFPS {
					t.Error("expected show_fps to be enabled with debug flag")
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "catalog flag",
			setup: func() {
				*flagCatalog = "/srv/products.yaml"
			},
			verify: func(cfg *Config) {
				if cfg.Data.CatalogPath != "/srv/products.yaml" {
					t.Errorf("expected catalog /srv/products.yaml, got %s", cfg.Data.CatalogPath)
				}
			},
			teardown: func() {
				*flagCatalog = ""
			},
		},
		{
			name: "weather and unit flags",
			setup: func() {
				*flagWeather = "foggy"
				*flagUnit = "m"
			},
			verify: func(cfg *Config) {
				if cfg.Viewer.Weather != "foggy" {
					t.Errorf("expected weather 'foggy', got %s", cfg.Viewer.Weather)
				}
				if cfg.Viewer.DisplayUnit != "m" {
					t.Errorf("expected unit 'm', got %s", cfg.Viewer.DisplayUnit)
				}
			},
			teardown: func() {
				*flagWeather = ""
				*flagUnit = ""
			},
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(cfg *Config) {
				if cfg.Graphics.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Graphics.Width)
				}
				if cfg.Graphics.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name: "device override flags",
			setup: func() {
				*flagCores = 2
				*flagDPR = 2.0
			},
			verify: func(cfg *Config) {
				if cfg.Device.Cores != 2 {
					t.Errorf("expected cores 2, got %d", cfg.Device.Cores)
				}
				if cfg.Device.PixelRatio != 2.0 {
					t.Errorf("expected pixel ratio 2.0, got %f", cfg.Device.PixelRatio)
				}
			},
			teardown: func() {
				*flagCores = 0
				*flagDPR = 0
			},
		},
		{
			name: "mute flag",
			setup: func() {
				*flagMute = true
			},
			verify: func(cfg *Config) {
				if !cfg.Audio.Muted {
					t.Error("expected muted with mute flag")
				}
			},
			teardown: func() {
				*flagMute = false
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}

	// Height should be from file (900) since no flag override
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}
