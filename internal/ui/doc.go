// Package ui provides terminal output components for the giftgrid CLI.
//
// The components follow a "print once" pattern: they render styled output
// with Lipgloss but do not take over the terminal. The interactive editor
// lives in package tui and reuses the tile rendering from here.
//
// # Components
//
//   - Header: command banner showing the operation and its parameters
//   - Progress and Runner: numbered steps with a result box at the end
//   - Result: success, warning and failure boxes
//   - Confirmation: warning box plus a typed phrase for destructive actions
//   - RenderTile and RenderGrid: cells drawn on their backdrop colors,
//     with the rarity ribbon when known
//
// Example:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:     "Catalog warm-up",
//	    Command:   "giftgrid warm",
//	    StepNames: []string{"Gift list", "Backdrops"},
//	})
//	_, err := runner.Run(func(onStep ui.StepCallback) (map[string]string, error) {
//	    onStep(1, ui.StepRunning, "")
//	    // ... do work ...
//	    onStep(1, ui.StepComplete, "42 gifts")
//	    return nil, nil
//	})
//
// # Logging Integration
//
// zap logging is silent unless GIFTGRID_LOG_LEVEL or --log-level asks for
// it, so the curated output here is not interleaved with log lines.
package ui
