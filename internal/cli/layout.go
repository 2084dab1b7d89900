package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	pio "github.com/matzehuels/pinboard/pkg/io"
)

// layoutCommand creates the layout command for computing board layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		flags  boardFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [board.json|board.toml]",
		Short: "Compute the masonry layout of a board",
		Long: `Compute the masonry layout of a board.

The layout command reads a board file (JSON or TOML), assigns every item a
frame and writes the placed layout as JSON. Items that reference an image
and have no height take the image's aspect ratio at the column width.

Use -o - to write to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), cmd, args[0], output, &flags)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	flags.register(cmd)

	return cmd
}

// runLayout loads the board, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, cmd *cobra.Command, input, output string, flags *boardFlags) error {
	prog := newProgress(c.Logger)
	b, err := c.loadBoard(ctx, cmd, input, flags)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	layout := b.Snapshot()
	if output == "-" {
		return pio.WriteLayout(layout, os.Stdout)
	}

	path := outputPath(input, output, ".layout.json")
	if err := pio.ExportLayout(layout, path); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	prog.done(fmt.Sprintf("Laid out %d items", layout.ItemCount))

	printSuccess("Layout complete")
	printFile(path)
	printStats(layout, b.stats)
	printNewline()
	printNextStep("Render", "pinboard render "+input)

	return nil
}
