package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/maruel/natural"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"image-stacker/internal/export"
	"image-stacker/internal/intake"
	"image-stacker/internal/render"
	"image-stacker/internal/stack"
)

var (
	composeOutput   string
	composeMaxWidth float64
	composeTrims    []string
	composeOffsets  []string
	composeSort     bool
)

var composeCmd = &cobra.Command{
	Use:   "compose <file>...",
	Short: "Stack image files into one PNG",
	Long: `Stack the given images top to bottom and write the result as PNG.

Images are placed in argument order (or natural file name order with
--sort). Before the next image is added the current one can be edited:

  --trim i:top=N,bottom=M   cut N units from the top and M from the bottom
                            of image i (zero-based). The top trim always
                            leaves at least 100 units visible.
  --offset i:DY             move image i down by DY units (negative moves up).

Units are those of the scaled image on the surface.

Examples:
  stackcli compose a.png b.png -o out.png
  stackcli compose shots/*.png --sort --max-width 800
  stackcli compose a.png b.png --trim 1:top=40 --offset 1:-20 -o -`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompose,
}

func init() {
	composeCmd.Flags().StringVarP(&composeOutput, "output", "o", "", `output file, "-" for stdout (default: named after the first image)`)
	composeCmd.Flags().Float64Var(&composeMaxWidth, "max-width", 0, "surface width (default: surface.max_width)")
	composeCmd.Flags().StringArrayVar(&composeTrims, "trim", nil, "trim an image, i:top=N,bottom=M (repeatable)")
	composeCmd.Flags().StringArrayVar(&composeOffsets, "offset", nil, "shift an image vertically, i:DY (repeatable)")
	composeCmd.Flags().BoolVar(&composeSort, "sort", false, "order files by natural name order")

	rootCmd.AddCommand(composeCmd)
}

// edit collects the adjustments requested for one image.
type edit struct {
	top, bottom *float64
	dy          float64
}

func runCompose(cmd *cobra.Command, args []string) error {
	paths := append([]string(nil), args...)
	if composeSort {
		sort.Sort(natural.StringSlice(paths))
	}

	edits, err := parseEdits(composeTrims, composeOffsets, len(paths))
	if err != nil {
		return err
	}

	width := cfg.Surface.MaxWidth
	if composeMaxWidth > 0 {
		width = composeMaxWidth
	}

	sources := make([]intake.Source, len(paths))
	for i, p := range paths {
		sources[i] = intake.FileSource(p)
	}
	images, err := intake.DecodeAll(cmd.Context(), logger, sources)
	if err != nil {
		return fmt.Errorf("failed to read images: %w", err)
	}

	s := stack.New(width, cfg.Surface.InitialHeight)
	for i, img := range images {
		e := s.Add(img.Name, img.Image)
		if ed, ok := edits[i]; ok {
			applyEdit(s, e, ed)
		}
		s.Fix(i)
		logger.Debug("Placed", zap.String("name", e.Name), zap.Float64("y", e.Y),
			zap.Float64("visible", e.VisibleHeight()))
	}

	comp, err := render.NewCompositor(cfg.BackgroundColor(), cfg.HandleColor())
	if err != nil {
		return err
	}
	exp := export.New(logger, comp, cfg.Export.Dir)

	if composeOutput == "-" {
		return exp.Write(cmd.OutOrStdout(), s)
	}
	path, err := exp.Save(composeOutput, s)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func applyEdit(s *stack.Stack, e *stack.Entity, ed edit) {
	if ed.dy != 0 {
		e.Y += ed.dy
		s.GrowToFit(e.Y + e.Height)
	}
	if ed.top != nil {
		stack.SetTrimTop(e, *ed.top)
	}
	if ed.bottom != nil {
		stack.SetTrimBottom(e, *ed.bottom)
	}
}

// parseEdits turns --trim and --offset values into per-image edits.
func parseEdits(trims, offsets []string, n int) (map[int]edit, error) {
	edits := make(map[int]edit)

	for _, raw := range trims {
		i, rest, err := splitIndex(raw, n)
		if err != nil {
			return nil, fmt.Errorf("--trim %q: %w", raw, err)
		}
		ed := edits[i]
		for _, part := range strings.Split(rest, ",") {
			key, val, ok := strings.Cut(strings.TrimSpace(part), "=")
			if !ok {
				return nil, fmt.Errorf("--trim %q: expected key=value, got %q", raw, part)
			}
			v, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return nil, fmt.Errorf("--trim %q: %w", raw, err)
			}
			switch key {
			case "top":
				ed.top = &v
			case "bottom":
				ed.bottom = &v
			default:
				return nil, fmt.Errorf("--trim %q: unknown edge %q", raw, key)
			}
		}
		edits[i] = ed
	}

	for _, raw := range offsets {
		i, rest, err := splitIndex(raw, n)
		if err != nil {
			return nil, fmt.Errorf("--offset %q: %w", raw, err)
		}
		dy, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			return nil, fmt.Errorf("--offset %q: %w", raw, err)
		}
		ed := edits[i]
		ed.dy += dy
		edits[i] = ed
	}
	return edits, nil
}

// splitIndex parses the "i:" prefix of an edit flag.
func splitIndex(raw string, n int) (int, string, error) {
	idx, rest, ok := strings.Cut(raw, ":")
	if !ok {
		return 0, "", fmt.Errorf("expected index:value")
	}
	i, err := strconv.Atoi(strings.TrimSpace(idx))
	if err != nil {
		return 0, "", fmt.Errorf("bad image index: %w", err)
	}
	if i < 0 || i >= n {
		return 0, "", fmt.Errorf("image index %d out of range [0, %d)", i, n)
	}
	return i, rest, nil
}
