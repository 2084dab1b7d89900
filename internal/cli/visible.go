package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pinboard/pkg/board"
	pio "github.com/matzehuels/pinboard/pkg/io"
)

// visibleCommand lists the items that intersect a viewport.
func (c *CLI) visibleCommand() *cobra.Command {
	var (
		asJSON bool
		flags  boardFlags
		view   viewportFlags
	)

	cmd := &cobra.Command{
		Use:   "visible [board.json|board.toml]",
		Short: "List the items visible in a viewport",
		Long: `List the items whose frames overlap a viewport.

The viewport spans the board's content width, starts at --top and is
--view-height tall. Items that only touch the viewport edge are not listed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runVisible(cmd.Context(), cmd, args[0], &flags, &view, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the visible layout as JSON")
	view.register(cmd, 640)
	flags.register(cmd)

	return cmd
}

func (c *CLI) runVisible(ctx context.Context, cmd *cobra.Command, input string, flags *boardFlags, view *viewportFlags, asJSON bool) error {
	if view.height < 0 {
		return fmt.Errorf("--view-height must be >= 0")
	}
	b, err := c.loadBoard(ctx, cmd, input, flags)
	if err != nil {
		return err
	}

	layout := b.SnapshotVisible(view.rect(b.Board))
	if asJSON {
		return pio.WriteLayout(layout, os.Stdout)
	}

	printInfo("%d of %d items visible in y %.0f to %.0f", len(layout.Items), layout.ItemCount, view.top, view.top+view.height)
	if len(layout.Items) > 0 {
		fmt.Println(itemTable(layout.Items, -1))
	}
	return nil
}

// itemTable renders placed items as a table. The row at index cursor is
// highlighted; pass -1 for none.
func itemTable(items []board.Placed, cursor int) string {
	rows := make([][]string, 0, len(items))
	for _, p := range items {
		title := p.Title
		if title == "" {
			title = "—"
		}
		rows = append(rows, []string{
			fmt.Sprint(p.Index),
			p.ID,
			fmt.Sprint(p.Column),
			fmt.Sprintf("%.0f", p.Frame.Y),
			fmt.Sprintf("%.0f", p.Frame.Height),
			title,
		})
	}
	return renderTable([]string{"#", "ID", "Col", "Y", "Height", "Title"}, rows, cursor)
}
