package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagCatalog = flag.String("catalog", "", "Path to product catalog")
	flagWeather = flag.String("weather", "", "Initial weather profile (sunny, rainy, night, foggy)")
	flagUnit    = flag.String("unit", "", "Measurement display unit (mm, cm, m)")
	flagWidth   = flag.Int("width", 0, "Window width")
	flagHeight  = flag.Int("height", 0, "Window height")
	flagCores   = flag.Int("cores", 0, "Override detected core count")
	flagDPR     = flag.Float64("dpr", 0, "Override detected device pixel ratio")
	flagMute    = flag.Bool("mute", false, "Start with the ambience muted")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Viewer.ShowFPS = true
	}
	if *flagCatalog != "" {
		cfg.Data.CatalogPath = *flagCatalog
	}
	if *flagWeather != "" {
		cfg.Viewer.Weather = *flagWeather
	}
	if *flagUnit != "" {
		cfg.Viewer.DisplayUnit = *flagUnit
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagCores > 0 {
		cfg.Device.Cores = *flagCores
	}
	if *flagDPR > 0 {
		cfg.Device.PixelRatio = float32(*flagDPR)
	}
	if *flagMute {
		cfg.Audio.Muted = true
	}
}
