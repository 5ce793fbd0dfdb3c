package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagScene   = flag.String("scene", "", "Path to scene snapshot")
	flagLevel   = flag.Int("level", -1, "Level index to process")
	flagSpacing = flag.Float64("spacing", 0, "Probe spacing")
	flagWorkers = flag.Int("workers", 0, "Objects processed in parallel")
	flagSaveTo  = flag.String("save-config", "", "Write the effective config to this path and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SaveConfigPath returns the --save-config target, if any.
func SaveConfigPath() string {
	return *flagSaveTo
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Generation.StrictChecks = true
	}
	if *flagScene != "" {
		cfg.Scene.Path = *flagScene
	}
	if *flagLevel >= 0 {
		cfg.Scene.Level = *flagLevel
	}
	if *flagSpacing > 0 {
		cfg.Generation.Spacing = float32(*flagSpacing)
	}
	if *flagWorkers > 0 {
		cfg.Generation.Workers = *flagWorkers
	}
}
