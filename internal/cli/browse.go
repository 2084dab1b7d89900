package cli

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/masonry"
)

var browseHelpStyle = lipgloss.NewStyle().Foreground(colorDim)

// browseCommand opens an interactive viewport over a board.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		flags boardFlags
		view  viewportFlags
		step  float64
	)

	cmd := &cobra.Command{
		Use:   "browse [board.json|board.toml]",
		Short: "Scroll through a board in the terminal",
		Long: `Scroll through a board in the terminal.

The table lists the items visible in a viewport of --view-height layout
units. j/k scroll by --step, space/b by a page, g/G jump to the ends.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(cmd.Context(), cmd, args[0], &flags, view, step)
		},
	}

	view.register(cmd, 640)
	cmd.Flags().Float64Var(&step, "step", 80, "scroll distance per key press")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, cmd *cobra.Command, input string, flags *boardFlags, view viewportFlags, step float64) error {
	b, err := c.loadBoard(ctx, cmd, input, flags)
	if err != nil {
		return err
	}
	m := newBrowseModel(b.Board, input, view.rect(b.Board), step)
	_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

// =============================================================================
// browseModel - scrolling viewport over a board
// =============================================================================

// browseModel scrolls a fixed-size viewport down a board and lists the
// items the engine reports visible in it.
type browseModel struct {
	board    *board.Board
	title    string
	viewport masonry.Rect
	step     float64
	rows     int // table rows that fit the terminal
	cursor   int // highlighted row within visible
	visible  []board.Placed
}

func newBrowseModel(b *board.Board, title string, viewport masonry.Rect, step float64) browseModel {
	m := browseModel{board: b, title: title, viewport: viewport, step: step, rows: 15}
	m.refresh()
	return m
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "down", "j":
			m.scroll(m.step)
		case "up", "k":
			m.scroll(-m.step)
		case " ", "pgdown", "f":
			m.scroll(m.viewport.Height)
		case "pgup", "b":
			m.scroll(-m.viewport.Height)
		case "home", "g":
			m.scroll(-math.Inf(1))
		case "end", "G":
			m.scroll(math.Inf(1))
		case "tab":
			if len(m.visible) > 0 {
				m.cursor = (m.cursor + 1) % len(m.visible)
			}
		}
	case tea.WindowSizeMsg:
		m.rows = max(5, msg.Height-8)
	}
	return m, nil
}

// scroll moves the viewport by dy, clamped to the content.
func (m *browseModel) scroll(dy float64) {
	maxTop := math.Max(0, m.board.ContentSize().Height-m.viewport.Height)
	top := math.Min(maxTop, math.Max(0, m.viewport.Y+dy))
	m.viewport = m.viewport.Offset(0, top-m.viewport.Y)
	m.refresh()
}

func (m *browseModel) refresh() {
	m.visible = m.board.SnapshotVisible(m.viewport).Items
	if m.cursor >= len(m.visible) {
		m.cursor = 0
	}
}

func (m browseModel) View() string {
	var sb strings.Builder

	size := m.board.ContentSize()
	sb.WriteString(StyleTitle.Render(m.title))
	sb.WriteString("\n")
	sb.WriteString(browseHelpStyle.Render("j/k scroll  space/b page  g/G ends  tab select  q quit"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("y %s to %s of %s  %s visible of %s\n",
		StyleNumber.Render(fmt.Sprintf("%.0f", m.viewport.Y)),
		StyleNumber.Render(fmt.Sprintf("%.0f", m.viewport.MaxY())),
		StyleNumber.Render(fmt.Sprintf("%.0f", size.Height)),
		StyleNumber.Render(fmt.Sprint(len(m.visible))),
		StyleNumber.Render(fmt.Sprint(m.board.ItemCount()))))

	if len(m.visible) == 0 {
		sb.WriteString(browseHelpStyle.Render("  nothing in view"))
		return sb.String()
	}

	shown := m.visible
	if len(shown) > m.rows {
		shown = shown[:m.rows]
	}
	sb.WriteString(itemTable(shown, m.cursor))
	if len(shown) < len(m.visible) {
		sb.WriteString("\n")
		sb.WriteString(browseHelpStyle.Render(fmt.Sprintf("  … %d more", len(m.visible)-len(shown))))
	}
	return sb.String()
}
