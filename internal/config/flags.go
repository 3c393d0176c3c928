package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagBackend    = flag.String("backend", "", "Backend URL (switches to the websocket backend)")
	flagFrames     = flag.Int("frames", 0, "Frame count hint for generation")
	flagFrameStep  = flag.Float64("step", 0, "Seconds between played frames")
	flagSession    = flag.String("session", "", "Stored session name")
	flagSelectDist = flag.Float64("select-range", 0, "Max click distance to start an edit")
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
	}
	if *flagBackend != "" {
		cfg.Backend.Kind = "websocket"
		cfg.Backend.URL = *flagBackend
	}
	if *flagFrames > 0 {
		cfg.Backend.FrameCount = *flagFrames
	}
	if *flagFrameStep > 0 {
		cfg.Playback.FrameStep = *flagFrameStep
	}
	if *flagSession != "" {
		cfg.Storage.Session = *flagSession
	}
	if *flagSelectDist > 0 {
		cfg.Editor.SelectRange = float32(*flagSelectDist)
	}
}
