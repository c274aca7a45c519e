package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1280 || cfg.Window.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Window.VSync {
		t.Error("expected vsync to be true by default")
	}
	if cfg.Window.MSAA != 4 {
		t.Errorf("expected msaa 4, got %d", cfg.Window.MSAA)
	}

	if cfg.Renderer.Exposure != 1.0 {
		t.Errorf("expected exposure 1.0, got %f", cfg.Renderer.Exposure)
	}
	if !cfg.Renderer.Shadows {
		t.Error("expected shadows to be enabled by default")
	}

	if cfg.Scene.ModelPath != "models/suzanne.gltf" {
		t.Errorf("expected default model path, got %s", cfg.Scene.ModelPath)
	}
	if cfg.Scene.ModelFormat != FormatGLTF {
		t.Errorf("expected gltf format, got %s", cfg.Scene.ModelFormat)
	}

	if cfg.Controls.DampingFactor != 0.05 {
		t.Errorf("expected damping factor 0.05, got %f", cfg.Controls.DampingFactor)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
window:
  title: "Scratch"
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  fps_limit: 144
  msaa: 8

renderer:
  exposure: 1.5
  shadows: false
  max_pixel_ratio: 2

scene:
  model_path: "assets/robot.fbx"
  model_format: "fbx"

controls:
  damping_factor: 0.1

logging:
  level: "debug"
  log_file: "sketch.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Title != "Scratch" {
		t.Errorf("expected title Scratch, got %s", cfg.Window.Title)
	}
	if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if !cfg.Window.Fullscreen || cfg.Window.VSync {
		t.Errorf("unexpected window flags: %+v", cfg.Window)
	}
	if cfg.Window.FPSLimit != 144 || cfg.Window.MSAA != 8 {
		t.Errorf("unexpected window limits: %+v", cfg.Window)
	}
	if cfg.Renderer.Exposure != 1.5 || cfg.Renderer.Shadows || cfg.Renderer.MaxPixelRatio != 2 {
		t.Errorf("unexpected renderer config: %+v", cfg.Renderer)
	}
	if cfg.Scene.ModelPath != "assets/robot.fbx" || cfg.Scene.ModelFormat != FormatFBX {
		t.Errorf("unexpected scene config: %+v", cfg.Scene)
	}
	if cfg.Controls.DampingFactor != 0.1 {
		t.Errorf("expected damping factor 0.1, got %f", cfg.Controls.DampingFactor)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "sketch.log" {
		t.Errorf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"negative height", func(c *Config) { c.Window.Height = -1 }},
		{"unknown format", func(c *Config) { c.Scene.ModelFormat = "obj" }},
		{"zero damping", func(c *Config) { c.Controls.DampingFactor = 0 }},
		{"damping above one", func(c *Config) { c.Controls.DampingFactor = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Fatal("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Window.Fullscreen {
					t.Error("expected fullscreen with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Fullscreen {
					t.Error("expected windowed mode with windowed flag")
				}
			},
			teardown: func() { *flagWindowed = false },
		},
		{
			name: "size flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Width != 2560 || cfg.Window.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Window.Width, cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name: "model flags",
			setup: func() {
				*flagModel = "assets/robot.fbx"
				*flagFormat = FormatFBX
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Scene.ModelPath != "assets/robot.fbx" || cfg.Scene.ModelFormat != FormatFBX {
					t.Errorf("unexpected scene config: %+v", cfg.Scene)
				}
			},
			teardown: func() {
				*flagModel = ""
				*flagFormat = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := `
window:
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

	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}

func TestLoadRejectsInvalidFormat(t *testing.T) {
	*flagFormat = "obj"
	defer func() { *flagFormat = "" }()

	if _, err := Load(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Scene.ModelPath = "models/teapot.glb"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Scene.ModelPath != "models/teapot.glb" {
		t.Errorf("expected saved model path, got %s", loaded.Scene.ModelPath)
	}
}
