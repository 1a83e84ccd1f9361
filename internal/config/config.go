// Package config loads the editor configuration from YAML, overlaying the
// file's values onto built-in defaults.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Project  ProjectConfig  `yaml:"project"`
	Timeline TimelineConfig `yaml:"timeline"`
	Follow   FollowConfig   `yaml:"follow"`
	Autosave AutosaveConfig `yaml:"autosave"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"` // empty disables file logging
}

type ProjectConfig struct {
	Path string `yaml:"path"` // empty uses the per-user default
}

type TimelineConfig struct {
	TrackHeight float64 `yaml:"track_height"` // terminal rows per lane
	DefaultZoom float64 `yaml:"default_zoom"` // cells per second
	MinZoom     float64 `yaml:"min_zoom"`
	MaxZoom     float64 `yaml:"max_zoom"`
	SnapEnabled bool    `yaml:"snap_enabled"`
}

type FollowConfig struct {
	Enabled    bool    `yaml:"enabled"`
	EdgeMargin float64 `yaml:"edge_margin"` // fraction of viewport width
	Tau        float64 `yaml:"tau"`         // smoothing time constant, seconds
	FPS        int     `yaml:"fps"`
}

type AutosaveConfig struct {
	Enabled bool `yaml:"enabled"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level: "info",
			Path:  "",
		},
		Project: ProjectConfig{
			Path: "",
		},
		Timeline: TimelineConfig{
			TrackHeight: 2,
			DefaultZoom: 10,
			MinZoom:     1,
			MaxZoom:     200,
			SnapEnabled: true,
		},
		Follow: FollowConfig{
			Enabled:    true,
			EdgeMargin: 0.2,
			Tau:        0.15,
			FPS:        30,
		},
		Autosave: AutosaveConfig{
			Enabled: true,
		},
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
