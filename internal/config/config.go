// Package config handles asset pipeline configuration loading and management.
package config

// Config holds all settings.
type Config struct {
	Assets  AssetsConfig  `yaml:"assets"`
	Render  RenderConfig  `yaml:"render"`
	Logging LoggingConfig `yaml:"logging"`
}

// AssetsConfig holds asset loading settings.
type AssetsConfig struct {
	// ModelDirs are searched in order when an asset path is not found
	// relative to the working directory.
	ModelDirs []string `yaml:"model_dirs"`
	// TexturePOTResize rescales textures to power-of-two dimensions on
	// load, required by legacy fixed-function renderers.
	TexturePOTResize bool `yaml:"texture_pot_resize"`
}

// RenderConfig holds display hints consumed by the render backend.
type RenderConfig struct {
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	VSync  bool `yaml:"vsync"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Assets: AssetsConfig{
			ModelDirs:        []string{"assets/models"},
			TexturePOTResize: true,
		},
		Render: RenderConfig{
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
