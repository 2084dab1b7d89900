package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/heights"
	pio "github.com/matzehuels/pinboard/pkg/io"
	"github.com/matzehuels/pinboard/pkg/masonry"
)

// boardFlags are the layout flags shared by every command that reads a
// board file. Only flags the user set override the file's config.
type boardFlags struct {
	columns  int
	padding  float64
	width    float64
	fallback float64
	policy   string
	noImages bool
	noCache  bool
}

func (f *boardFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.IntVarP(&f.columns, "columns", "c", masonry.DefaultColumns, "number of columns")
	fl.Float64Var(&f.padding, "padding", masonry.DefaultPadding, "padding around each item")
	fl.Float64VarP(&f.width, "width", "w", 0, "container width")
	fl.Float64Var(&f.fallback, "fallback-height", masonry.DefaultFallbackHeight, "height for items with unknown height")
	fl.StringVar(&f.policy, "policy", "round-robin", "column policy: round-robin, shortest")
	fl.BoolVar(&f.noImages, "no-images", false, "do not read image files for item heights")
	fl.BoolVar(&f.noCache, "no-cache", false, "disable the image dimensions cache")
}

func (f *boardFlags) apply(cmd *cobra.Command, cfg *board.Config) {
	fl := cmd.Flags()
	if fl.Changed("columns") {
		cfg.Columns = f.columns
	}
	if fl.Changed("padding") {
		cfg.Padding = f.padding
	}
	if fl.Changed("width") {
		cfg.Width = f.width
	}
	if fl.Changed("fallback-height") {
		cfg.FallbackHeight = f.fallback
	}
	if fl.Changed("policy") {
		cfg.Policy = f.policy
	}
}

// loadedBoard is a board together with the file it came from.
type loadedBoard struct {
	*board.Board
	file  *pio.File
	stats heights.Stats
}

// loadBoard reads a board file, applies flag overrides and resolves image
// heights unless disabled.
func (c *CLI) loadBoard(ctx context.Context, cmd *cobra.Command, path string, flags *boardFlags) (*loadedBoard, error) {
	f, err := pio.ImportBoard(path, c.config.Board)
	if err != nil {
		return nil, fmt.Errorf("load board %s: %w", path, err)
	}
	flags.apply(cmd, &f.Config)
	f.Config.Logger = c.Logger

	b, err := f.Board()
	if err != nil {
		return nil, fmt.Errorf("board %s: %w", path, err)
	}
	lb := &loadedBoard{Board: b, file: f}
	if flags.noImages || !hasImages(f.Items) {
		return lb, nil
	}

	store, keyer, err := c.newCache(ctx, flags.noCache)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	ctx = withLogger(ctx, c.Logger)
	resolver := heights.NewResolver(
		heights.WithCache(store, keyer),
		heights.WithLogger(loggerFromContext(ctx)),
	)

	spinner := newSpinnerWithContext(ctx, "Reading image sizes...")
	spinner.Start()
	stats, err := resolver.ResolveBoard(ctx, b, f.ImagePath)
	if err != nil {
		spinner.StopWithError("Reading image sizes failed")
		return nil, err
	}
	spinner.Stop()
	lb.stats = stats
	return lb, nil
}

func hasImages(items []board.Item) bool {
	for _, it := range items {
		if it.Image != "" && it.Height == nil {
			return true
		}
	}
	return false
}

// outputPath derives an output file next to the input when none is given.
func outputPath(input, output, suffix string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

// viewportFlags select a vertical slice of the board.
type viewportFlags struct {
	top    float64
	height float64
}

func (v *viewportFlags) register(cmd *cobra.Command, defaultHeight float64) {
	cmd.Flags().Float64Var(&v.top, "top", 0, "viewport top edge (scroll offset)")
	cmd.Flags().Float64Var(&v.height, "view-height", defaultHeight, "viewport height")
}

// rect spans the board's content width.
func (v viewportFlags) rect(b *board.Board) masonry.Rect {
	return masonry.NewRect(0, v.top, b.ContentWidth(), v.height)
}
