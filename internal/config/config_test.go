package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Timeline.DefaultZoom != 10 || cfg.Timeline.TrackHeight != 2 {
		t.Errorf("Timeline defaults = %+v", cfg.Timeline)
	}
	if !cfg.Timeline.SnapEnabled {
		t.Error("snapping not enabled by default")
	}
	if !cfg.Follow.Enabled || cfg.Follow.EdgeMargin != 0.2 || cfg.Follow.Tau != 0.15 {
		t.Errorf("Follow defaults = %+v", cfg.Follow)
	}
	if !cfg.Autosave.Enabled {
		t.Error("autosave not enabled by default")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timeline.MaxZoom != 200 {
		t.Errorf("Timeline.MaxZoom = %v, want 200", cfg.Timeline.MaxZoom)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cutline.yaml")
	data := `
logging:
  level: debug
  path: /tmp/cutline.log
timeline:
  default_zoom: 25
  snap_enabled: false
follow:
  fps: 60
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.Path != "/tmp/cutline.log" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Timeline.DefaultZoom != 25 {
		t.Errorf("DefaultZoom = %v, want 25", cfg.Timeline.DefaultZoom)
	}
	if cfg.Timeline.SnapEnabled {
		t.Error("snap_enabled: false not applied")
	}
	// Keys the file omits keep their defaults.
	if cfg.Timeline.TrackHeight != 2 {
		t.Errorf("TrackHeight = %v, want default 2", cfg.Timeline.TrackHeight)
	}
	if cfg.Follow.FPS != 60 || cfg.Follow.Tau != 0.15 {
		t.Errorf("Follow = %+v", cfg.Follow)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("timeline: [not a map"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
