package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ResetPhrase must be typed to confirm a full reset
const ResetPhrase = "RESET"

// Confirmation describes a destructive operation that needs a typed phrase
// before it runs
type Confirmation struct {
	Title      string
	Warnings   []string
	Disclaimer string
	Phrase     string
	Width      int
}

// Render returns the warning box shown before the prompt
func (c Confirmation) Render() string {
	width := c.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	lines := []string{
		"",
		StepRunningStyle.Bold(true).Render(fmt.Sprintf("   ⚠  WARNING  ─  %s", c.Title)),
		"",
	}
	bullet := lipgloss.NewStyle().Foreground(TextColor)
	for _, w := range c.Warnings {
		lines = append(lines, bullet.Render("   • "+w))
	}
	lines = append(lines, "")

	if c.Disclaimer != "" {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true).
			Width(width-12).
			PaddingLeft(3).
			Render(c.Disclaimer), "")
	}

	return WarningBoxStyle(width).Render(strings.Join(lines, "\n"))
}

// Ask prints the warning box and reads one line from in. It returns true
// only if the line is exactly the confirmation phrase.
func (c Confirmation) Ask(in io.Reader, out io.Writer) bool {
	_, _ = fmt.Fprintln(out, c.Render())
	_, _ = fmt.Fprintln(out)

	prompt := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
	_, _ = fmt.Fprint(out, prompt.Render(fmt.Sprintf("To proceed, type %q and press Enter: ", c.Phrase)))

	input, err := bufio.NewReader(in).ReadString('\n')
	_, _ = fmt.Fprintln(out)
	if err != nil && input == "" {
		return false
	}
	if strings.TrimSpace(input) == c.Phrase {
		return true
	}

	_, _ = fmt.Fprintln(out, lipgloss.NewStyle().Foreground(MutedColor).Render("  Operation cancelled."))
	_, _ = fmt.Fprintln(out)
	return false
}

// FullResetConfirmation is the prompt shown before a grid is wiped
func FullResetConfirmation(workspace string) Confirmation {
	return Confirmation{
		Title: "FULL RESET",
		Warnings: []string{
			"Every cell of the grid will be cleared",
			"The grid goes back to its default size",
			fmt.Sprintf("The saved copy of workspace %q will be deleted", workspace),
		},
		Disclaimer: "This cannot be undone. Copy anything you want to keep before proceeding.",
		Phrase:     ResetPhrase,
		Width:      GetTerminalWidth(),
	}
}
