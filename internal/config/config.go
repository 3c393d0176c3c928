// Package config handles editor configuration loading and management.
package config

import "time"

// Config holds all editor settings.
type Config struct {
	Editor   EditorConfig   `yaml:"editor" toml:"editor"`
	Playback PlaybackConfig `yaml:"playback" toml:"playback"`
	Backend  BackendConfig  `yaml:"backend" toml:"backend"`
	Storage  StorageConfig  `yaml:"storage" toml:"storage"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// EditorConfig holds path editing settings.
type EditorConfig struct {
	SelectRange float32 `yaml:"select_range" toml:"select_range"` // Max click distance to start an edit
	GridWidth   int     `yaml:"grid_width" toml:"grid_width"`
	GridHeight  int     `yaml:"grid_height" toml:"grid_height"`
	CellSize    float32 `yaml:"cell_size" toml:"cell_size"`
}

// PlaybackConfig holds animation playback settings.
type PlaybackConfig struct {
	FrameStep float64 `yaml:"frame_step" toml:"frame_step"` // Seconds between frames
}

// BackendConfig selects and configures the animation generator.
type BackendConfig struct {
	Kind       string   `yaml:"kind" toml:"kind"` // "local" or "websocket"
	URL        string   `yaml:"url" toml:"url"`
	FrameCount int      `yaml:"frame_count" toml:"frame_count"` // Hint, 0 = one frame per path point
	Timeout    Duration `yaml:"timeout" toml:"timeout"`
}

// StorageConfig holds session persistence settings.
type StorageConfig struct {
	AppName string `yaml:"app_name" toml:"app_name"`
	Session string `yaml:"session" toml:"session"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			SelectRange: 3.0,
			GridWidth:   100,
			GridHeight:  100,
			CellSize:    1,
		},
		Playback: PlaybackConfig{
			FrameStep: 0.1,
		},
		Backend: BackendConfig{
			Kind:       "local",
			URL:        "ws://127.0.0.1:7800/generate",
			FrameCount: 0,
			Timeout:    Duration(30 * time.Second),
		},
		Storage: StorageConfig{
			AppName: "loa-editor",
			Session: "default",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Duration is a time.Duration written as text ("30s") so YAML and TOML
// files share one syntax.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
