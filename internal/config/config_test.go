package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"image-stacker/pkg/colorutil"
)

// isolate points the default config location at an empty directory.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("STACKER_CONFIG", "")
}

func TestDefault(t *testing.T) {
	c := Default()
	require.Equal(t, 1200.0, c.Surface.MaxWidth)
	require.Equal(t, 800.0, c.Surface.InitialHeight)
	require.Equal(t, "#00000000", c.Surface.Background)
	require.Equal(t, "#ff0000", c.Render.HandleColor)
	require.Equal(t, "normal", c.Logging.ConsoleLogger.Level)
	require.Equal(t, "none", c.Logging.FileLogger.Level)
	require.NoError(t, c.Validate())

	require.Equal(t, colorutil.Transparent, c.BackgroundColor())
	require.Equal(t, colorutil.Red, c.HandleColor())
}

func TestLoadWithoutFile(t *testing.T) {
	isolate(t)

	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), c)
}

func TestLoadFromFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `surface:
  max_width: 900
  background: "#ffffff"
render:
  handle_color: "#00ff00"
logging:
  console:
    level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 900.0, c.Surface.MaxWidth)
	require.Equal(t, 800.0, c.Surface.InitialHeight)
	require.Equal(t, colorutil.White, c.BackgroundColor())
	require.Equal(t, "debug", c.Logging.ConsoleLogger.Level)
}

func TestLoadDefaultLocation(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("STACKER_CONFIG", "")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, AppName), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, AppName, "config.yaml"),
		[]byte("export:\n  dir: /tmp/out\n"), 0o644))

	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "/tmp/out", c.Export.Dir)
}

func TestLoadEnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("STACKER_SURFACE_MAX_WIDTH", "640")
	t.Setenv("STACKER_RENDER_HANDLE_COLOR", "#0000ff")

	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 640.0, c.Surface.MaxWidth)
	require.Equal(t, "#0000ff", c.Render.HandleColor)
}

func TestLoadEnvConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("surface:\n  initial_height: 300\n"), 0o644))
	t.Setenv("STACKER_CONFIG", path)

	require.Equal(t, path, Path())
	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 300.0, c.Surface.InitialHeight)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	isolate(t)
	for _, content := range []string{
		"surface:\n  max_width: 0\n",
		"surface:\n  initial_height: -5\n",
		"surface:\n  background: pink\n",
		"render:\n  handle_color: \"#12\"\n",
		"logging:\n  file:\n    level: loud\n",
	} {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		_, err := Load(path)
		require.Error(t, err, content)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	c := Default()
	c.Export.Dir = "/srv/stacks"

	data, err := c.YAML()
	require.NoError(t, err)

	var back Config
	require.NoError(t, yaml.Unmarshal(data, &back))
	require.Equal(t, c, back)
}

func TestPrepareLogger(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "stacker.log")
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "debug", Destination: dest},
	}

	log, err := conf.Prepare()
	require.NoError(t, err)
	log.Debug("hello from the test")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Contains(t, string(data), "hello from the test")
}

func TestPrepareLoggerRedirectsUnwritableFile(t *testing.T) {
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "normal", Destination: filepath.Join(t.TempDir(), "missing", "dir", "x.log")},
	}
	log, err := conf.Prepare()
	require.NoError(t, err)
	require.NotNil(t, log)
}
