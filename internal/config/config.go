// Package config handles sketch configuration loading and management.
package config

// Config holds all sketch settings.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Renderer RendererConfig `yaml:"renderer"`
	Scene    SceneConfig    `yaml:"scene"`
	Controls ControlsConfig `yaml:"controls"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// WindowConfig holds host window settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	FPSLimit   int    `yaml:"fps_limit"` // 0 = uncapped (vsync paced)
	MSAA       int    `yaml:"msaa"`      // multisample count, 0 disables antialiasing
}

// RendererConfig holds rendering surface settings.
type RendererConfig struct {
	Exposure      float32 `yaml:"exposure"`
	Shadows       bool    `yaml:"shadows"`
	MaxPixelRatio float32 `yaml:"max_pixel_ratio"` // 0 = device ratio, uncapped
}

// SceneConfig selects the model loaded into the default scene.
type SceneConfig struct {
	ModelPath   string `yaml:"model_path"`
	ModelFormat string `yaml:"model_format"` // "gltf" or "fbx"
}

// ControlsConfig holds orbit control tuning.
type ControlsConfig struct {
	DampingFactor float32 `yaml:"damping_factor"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Model formats accepted by SceneConfig.ModelFormat.
const (
	FormatGLTF = "gltf"
	FormatFBX  = "fbx"
)

// Default returns a Config with the sketch's stock values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Sketch",
			Width:  1280,
			Height: 720,
			VSync:  true,
			MSAA:   4,
		},
		Renderer: RendererConfig{
			Exposure: 1.0,
			Shadows:  true,
		},
		Scene: SceneConfig{
			ModelPath:   "models/suzanne.gltf",
			ModelFormat: FormatGLTF,
		},
		Controls: ControlsConfig{
			DampingFactor: 0.05,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
