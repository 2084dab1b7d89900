package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	perrors "github.com/matzehuels/pinboard/pkg/errors"
	"github.com/matzehuels/pinboard/pkg/render/svg"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string  // output file path, "-" for stdout
	top        float64 // viewport top edge; only used with height > 0
	height     float64 // viewport height; 0 renders the whole board
	fill       string  // fill for items without a color
	stroke     string  // item outline
	background string  // page background
	noLabels   bool    // omit item titles
}

// renderCommand creates the render command for writing SVG.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		opts  = renderOpts{background: "#ffffff"}
		flags boardFlags
	)

	cmd := &cobra.Command{
		Use:   "render [board.json|board.toml]",
		Short: "Render a board layout to SVG",
		Long: `Render a board layout to SVG.

Each item is drawn at its padded frame and labelled with its title. With
--view-height the output is cropped to that viewport and only items visible
in it are drawn.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), cmd, args[0], opts, &flags)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.svg)")
	cmd.Flags().Float64Var(&opts.top, "top", 0, "viewport top edge")
	cmd.Flags().Float64Var(&opts.height, "view-height", 0, "viewport height (default: whole board)")
	cmd.Flags().StringVar(&opts.fill, "fill", "", "fill color for items without one")
	cmd.Flags().StringVar(&opts.stroke, "stroke", "", "outline color for items")
	cmd.Flags().StringVar(&opts.background, "background", opts.background, `background color ("" for none)`)
	cmd.Flags().BoolVar(&opts.noLabels, "no-labels", false, "omit item labels")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, cmd *cobra.Command, input string, opts renderOpts, flags *boardFlags) error {
	for _, col := range []string{opts.fill, opts.stroke, opts.background} {
		if err := perrors.ValidateColor(col); err != nil {
			return err
		}
	}

	b, err := c.loadBoard(ctx, cmd, input, flags)
	if err != nil {
		return err
	}

	layout := b.Snapshot()
	if opts.height > 0 {
		layout = b.SnapshotVisible(viewportFlags{top: opts.top, height: opts.height}.rect(b.Board))
	}

	svgOpts := []svg.Option{svg.WithBackground(opts.background)}
	if opts.fill != "" {
		svgOpts = append(svgOpts, svg.WithFill(opts.fill))
	}
	if cmd.Flags().Changed("stroke") {
		svgOpts = append(svgOpts, svg.WithStroke(opts.stroke))
	}
	if opts.noLabels {
		svgOpts = append(svgOpts, svg.WithoutLabels())
	}
	data := svg.Render(layout, svgOpts...)

	if opts.output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	path := outputPath(input, opts.output, ".svg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}

	printSuccess("Rendered %d of %d items", len(layout.Items), layout.ItemCount)
	printFile(path)
	return nil
}
