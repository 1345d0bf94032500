package cli

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"image-stacker/internal/config"
)

// run executes the root command with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("STACKER_CONFIG", "")
	t.Setenv("STACKER_LOGGING_CONSOLE_LEVEL", "none")

	cfgFile = ""
	composeOutput = ""
	composeMaxWidth = 0
	composeTrims = nil
	composeOffsets = nil
	composeSort = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := Execute(context.Background())
	return out.String(), err
}

func writePNG(t *testing.T, dir, name string, w, h int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func readPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func rgba(c color.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

var (
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
)

func TestCommands(t *testing.T) {
	require.Equal(t, "stackcli", rootCmd.Use)
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	require.True(t, names["compose"])
	require.True(t, names["config"])
	require.True(t, names["version"])
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "stackcli "))
}

func TestConfigPrintsYAML(t *testing.T) {
	t.Setenv("STACKER_SURFACE_MAX_WIDTH", "640")
	out, err := run(t, "config")
	require.NoError(t, err)

	var c config.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &c))
	require.Equal(t, 640.0, c.Surface.MaxWidth)
	require.Equal(t, "#ff0000", c.Render.HandleColor)
}

func TestComposeStacksInOrder(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", 100, 40, red)
	b := writePNG(t, dir, "b.png", 100, 60, green)
	target := filepath.Join(dir, "out.png")

	out, err := run(t, "compose", a, b, "-o", target)
	require.NoError(t, err)
	require.Equal(t, target, strings.TrimSpace(out))

	img := readPNG(t, target)
	require.Equal(t, image.Rect(0, 0, 1200, 100), img.Bounds())
	require.Equal(t, red, rgba(img.At(50, 20)))
	require.Equal(t, green, rgba(img.At(50, 70)))
	require.Zero(t, rgba(img.At(500, 20)).A)
}

func TestComposeDownscales(t *testing.T) {
	dir := t.TempDir()
	wide := writePNG(t, dir, "wide.png", 400, 100, blue)
	target := filepath.Join(dir, "out.png")

	_, err := run(t, "compose", wide, "--max-width", "200", "-o", target)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 200, 50), readPNG(t, target).Bounds())
}

func TestComposeTrimAndOffset(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", 100, 200, red)
	b := writePNG(t, dir, "b.png", 100, 150, green)
	target := filepath.Join(dir, "out.png")

	// a shows 200-50 = 150 rows; b starts there, shifted down by 10,
	// and loses 20 rows at the top.
	_, err := run(t, "compose", a, b,
		"--trim", "0:bottom=50",
		"--offset", "1:10",
		"--trim", "1:top=20",
		"-o", target)
	require.NoError(t, err)

	img := readPNG(t, target)
	require.Equal(t, 290, img.Bounds().Dy())
	require.Equal(t, red, rgba(img.At(50, 140)))
	require.Zero(t, rgba(img.At(50, 155)).A)
	require.Equal(t, green, rgba(img.At(50, 165)))
	require.Equal(t, green, rgba(img.At(50, 285)))
}

func TestComposeNaturalSort(t *testing.T) {
	dir := t.TempDir()
	p10 := writePNG(t, dir, "img10.png", 10, 10, blue)
	p2 := writePNG(t, dir, "img2.png", 10, 10, green)
	p1 := writePNG(t, dir, "img1.png", 10, 10, red)
	target := filepath.Join(dir, "out.png")

	_, err := run(t, "compose", p10, p2, p1, "--sort", "--max-width", "10", "-o", target)
	require.NoError(t, err)

	img := readPNG(t, target)
	require.Equal(t, red, rgba(img.At(5, 5)))
	require.Equal(t, green, rgba(img.At(5, 15)))
	require.Equal(t, blue, rgba(img.At(5, 25)))
}

func TestComposeDefaultName(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "My Shot.png", 10, 10, red)
	t.Setenv("STACKER_EXPORT_DIR", dir)

	out, err := run(t, "compose", a)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "my-shot-stacked.png"), strings.TrimSpace(out))
}

func TestComposeStdout(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", 10, 10, red)

	out, err := run(t, "compose", a, "--max-width", "10", "-o", "-")
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(strings.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 10, cfg.Width)
}

func TestComposeErrors(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", 10, 10, red)
	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("hello"), 0o644))

	_, err := run(t, "compose")
	require.Error(t, err)

	_, err = run(t, "compose", a, notes, "-o", filepath.Join(dir, "x.png"))
	require.Error(t, err)

	for _, flag := range [][]string{
		{"--trim", "3:top=5"},
		{"--trim", "0:left=5"},
		{"--trim", "0:top"},
		{"--trim", "top=5"},
		{"--offset", "0:down"},
	} {
		_, err = run(t, append([]string{"compose", a, "-o", filepath.Join(dir, "y.png")}, flag...)...)
		require.Error(t, err, flag)
	}
}

func TestParseEdits(t *testing.T) {
	edits, err := parseEdits([]string{"1:top=5,bottom=7"}, []string{"1:-3", "0:4", "1:1"}, 2)
	require.NoError(t, err)
	require.Equal(t, 5.0, *edits[1].top)
	require.Equal(t, 7.0, *edits[1].bottom)
	require.Equal(t, -2.0, edits[1].dy)
	require.Equal(t, 4.0, edits[0].dy)
	require.Nil(t, edits[0].top)
}
