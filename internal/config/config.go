// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Audio    AudioConfig    `yaml:"audio"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Device   DeviceConfig   `yaml:"device"`
	Data     DataConfig     `yaml:"data"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width    int  `yaml:"width"`
	Height   int  `yaml:"height"`
	VSync    bool `yaml:"vsync"`
	FPSLimit int  `yaml:"fps_limit"`
}

// AudioConfig holds weather ambience settings.
type AudioConfig struct {
	Enabled bool `yaml:"enabled"`
	Muted   bool `yaml:"muted"`
}

// ViewerConfig holds presentation settings.
type ViewerConfig struct {
	Weather     string `yaml:"weather"`      // sunny, rainy, night, foggy
	DisplayUnit string `yaml:"display_unit"` // mm, cm, m
	ShowOverlay bool   `yaml:"show_overlay"`
	ShowFPS     bool   `yaml:"show_fps"`
}

// DeviceConfig overrides the detected capability hints. Zero values
// mean autodetect.
type DeviceConfig struct {
	Cores      int     `yaml:"cores"`
	PixelRatio float32 `yaml:"pixel_ratio"`
}

// DataConfig holds asset and state file paths.
type DataConfig struct {
	CatalogPath   string `yaml:"catalog_path"`
	UnitStorePath string `yaml:"unit_store_path"` // empty means the config dir
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:    1280,
			Height:   720,
			VSync:    true,
			FPSLimit: 0,
		},
		Audio: AudioConfig{
			Enabled: true,
			Muted:   false,
		},
		Viewer: ViewerConfig{
			Weather:     "sunny",
			DisplayUnit: "mm",
			ShowOverlay: true,
			ShowFPS:     false,
		},
		Data: DataConfig{
			CatalogPath: "catalog.yaml",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
