package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/giftgrid/internal/catalog"
	"github.com/muurk/giftgrid/internal/grid"
)

// TileState marks how a tile is highlighted
type TileState int

const (
	TileNormal TileState = iota
	TileCursor
	TileEditing
	TileDragSource
	TileDropTarget
)

// Palette looks up the backdrop colors of a cell
type Palette func(c grid.Cell) (catalog.Colors, bool)

// TileOptions controls how one cell is drawn
type TileOptions struct {
	State      TileState
	Colors     catalog.Colors
	HasColors  bool
	ShowRibbon bool
	Pulse      bool
}

const tileInner = TileWidth - 2

// RenderTile draws one cell as a bordered box of TileWidth columns
func RenderTile(c grid.Cell, opts TileOptions) string {
	var lines []string
	if c.IsEmpty {
		lines = []string{
			EmptyTileTextStyle.Render(truncate("+ empty", tileInner)),
			"",
			"",
			EmptyTileTextStyle.Render(truncate(string(c.ID), tileInner)),
		}
	} else {
		lines = []string{
			lipgloss.NewStyle().Bold(true).Render(truncate(c.Gift, tileInner)),
			truncate(orDash(c.Model), tileInner),
			truncate(orDash(c.Backdrop)+" · "+orDash(c.Pattern), tileInner),
			"",
		}
		if opts.ShowRibbon && c.RibbonText != "" {
			lines[3] = RibbonStyle.Render(truncate(c.RibbonText, tileInner))
		}
	}

	style := lipgloss.NewStyle().
		Width(tileInner).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor)

	if opts.HasColors && !c.IsEmpty {
		style = style.
			Background(lipgloss.Color(opts.Colors.Center)).
			Foreground(lipgloss.Color(opts.Colors.Text)).
			BorderForeground(lipgloss.Color(opts.Colors.Edge))
	}

	switch opts.State {
	case TileCursor:
		style = style.Border(lipgloss.ThickBorder()).BorderForeground(PrimaryColor)
	case TileEditing:
		style = style.Border(lipgloss.DoubleBorder()).BorderForeground(PrimaryColor)
	case TileDragSource:
		style = style.Border(lipgloss.DoubleBorder()).BorderForeground(WarningColor).Faint(true)
	case TileDropTarget:
		style = style.Border(lipgloss.ThickBorder()).BorderForeground(SuccessColor)
	}
	if opts.Pulse && opts.State == TileNormal {
		style = style.BorderForeground(SuccessColor)
	}

	return style.Render(strings.Join(lines, "\n"))
}

// GridOptions controls RenderGrid
type GridOptions struct {
	Palette    Palette
	ShowRibbon bool
	Pulse      bool

	// State overrides the highlight of individual cells
	State map[grid.CellID]TileState
}

// RenderGrid draws the whole grid, one row of tiles per grid row
func RenderGrid(g grid.Grid, opts GridOptions) string {
	rows := make([]string, 0, g.Rows())
	for r := 0; r < g.Rows(); r++ {
		tiles := make([]string, 0, g.Cols())
		for c := 0; c < g.Cols(); c++ {
			cell, err := g.At(r, c)
			if err != nil {
				continue
			}
			to := TileOptions{
				State:      opts.State[cell.ID],
				ShowRibbon: opts.ShowRibbon,
				Pulse:      opts.Pulse,
			}
			if opts.Palette != nil && !cell.IsEmpty {
				to.Colors, to.HasColors = opts.Palette(cell)
			}
			tiles = append(tiles, RenderTile(cell, to))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, tiles...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > n {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
