// Package config loads editor settings from defaults, an optional YAML file
// and STACKER_ environment variables.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"image-stacker/pkg/colorutil"
)

// AppName is used for the config directory and log names.
const AppName = "image-stacker"

// EnvPrefix prefixes every environment override, e.g. STACKER_SURFACE_MAX_WIDTH.
const EnvPrefix = "STACKER"

// Config holds application configuration.
type Config struct {
	Surface SurfaceConfig `mapstructure:"surface" yaml:"surface"`
	Render  RenderConfig  `mapstructure:"render" yaml:"render"`
	Export  ExportConfig  `mapstructure:"export" yaml:"export"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// SurfaceConfig describes the drawing surface.
type SurfaceConfig struct {
	MaxWidth      float64 `mapstructure:"max_width" yaml:"max_width"`
	InitialHeight float64 `mapstructure:"initial_height" yaml:"initial_height"`
	Background    string  `mapstructure:"background" yaml:"background"`
}

// RenderConfig holds compositor settings.
type RenderConfig struct {
	HandleColor string `mapstructure:"handle_color" yaml:"handle_color"`
}

// ExportConfig holds export settings.
type ExportConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("surface.max_width", 1200)
	v.SetDefault("surface.initial_height", 800)
	v.SetDefault("surface.background", "#00000000")
	v.SetDefault("render.handle_color", "#ff0000")
	v.SetDefault("export.dir", "")
	v.SetDefault("logging.console.level", "normal")
	v.SetDefault("logging.console.destination", "")
	v.SetDefault("logging.console.mode", "")
	v.SetDefault("logging.file.level", "none")
	v.SetDefault("logging.file.destination", filepath.Join(os.TempDir(), AppName+".log"))
	v.SetDefault("logging.file.mode", "overwrite")
}

// Default returns the built-in configuration.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	// Defaults always decode.
	_ = v.Unmarshal(&c)
	return c
}

// Path returns the config file used when none is given explicitly:
// $STACKER_CONFIG, or config.yaml in the user config directory.
func Path() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, AppName, "config.yaml")
}

// Load reads configuration. An explicit path must exist; the default location
// is optional. Environment variables override both.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")

	explicit := path != ""
	if !explicit {
		path = Path()
	}
	if path != "" {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
			if explicit || !missing {
				return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks value ranges and colours.
func (c Config) Validate() error {
	if c.Surface.MaxWidth <= 0 {
		return fmt.Errorf("surface.max_width must be positive, got %v", c.Surface.MaxWidth)
	}
	if c.Surface.InitialHeight <= 0 {
		return fmt.Errorf("surface.initial_height must be positive, got %v", c.Surface.InitialHeight)
	}
	if _, err := colorutil.ParseHex(c.Surface.Background); err != nil {
		return fmt.Errorf("surface.background: %w", err)
	}
	if _, err := colorutil.ParseHex(c.Render.HandleColor); err != nil {
		return fmt.Errorf("render.handle_color: %w", err)
	}
	for name, l := range map[string]LoggerConfig{"console": c.Logging.ConsoleLogger, "file": c.Logging.FileLogger} {
		switch l.Level {
		case "none", "normal", "debug":
		default:
			return fmt.Errorf("logging.%s.level must be one of none, normal, debug, got %q", name, l.Level)
		}
	}
	return nil
}

// BackgroundColor returns the parsed surface background.
func (c Config) BackgroundColor() color.RGBA {
	col, err := colorutil.ParseHex(c.Surface.Background)
	if err != nil {
		return colorutil.Transparent
	}
	return col
}

// HandleColor returns the parsed trim affordance colour.
func (c Config) HandleColor() color.RGBA {
	col, err := colorutil.ParseHex(c.Render.HandleColor)
	if err != nil {
		return colorutil.Red
	}
	return col
}

// YAML renders the configuration as a YAML document.
func (c Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}
