package grid

import (
	"fmt"
	"strings"
)

// Summary returns a one-line summary of the grid
func (g Grid) Summary() string {
	return fmt.Sprintf("%d×%d grid, %d of %d cells filled", g.Rows(), g.Cols(), g.FilledCount(), g.Rows()*g.Cols())
}

// FormatTable renders the grid as a plain-text table, one line per cell
func (g Grid) FormatTable() string {
	var b strings.Builder

	b.WriteString("=== Grid ===\n")
	b.WriteString(g.Summary() + "\n")
	for _, c := range g.Cells() {
		b.WriteString(fmt.Sprintf("  (%d,%d) %-6s %s", c.Row, c.Col, c.ID, c.Attributes.String()))
		if c.RibbonText != "" {
			b.WriteString(fmt.Sprintf("  [%s]", c.RibbonText))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// FormatCell returns a multi-line description of one cell
func FormatCell(c Cell) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Cell %s at (%d,%d)\n", c.ID, c.Row, c.Col))
	if c.IsEmpty {
		b.WriteString("  (empty)\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("  Gift:     %s\n", c.Gift))
	b.WriteString(fmt.Sprintf("  Model:    %s\n", orDash(c.Model)))
	b.WriteString(fmt.Sprintf("  Backdrop: %s\n", orDash(c.Backdrop)))
	b.WriteString(fmt.Sprintf("  Pattern:  %s\n", orDash(c.Pattern)))
	if c.RibbonText != "" {
		b.WriteString(fmt.Sprintf("  Ribbon:   %s\n", c.RibbonText))
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
