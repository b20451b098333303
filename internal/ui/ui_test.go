package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/muurk/giftgrid/internal/catalog"
	"github.com/muurk/giftgrid/internal/grid"
)

func TestConfirmationAsk(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"exact phrase", "RESET\n", true},
		{"surrounding space", "  RESET  \n", true},
		{"phrase without newline", "RESET", true},
		{"lowercase", "reset\n", false},
		{"other text", "yes\n", false},
		{"no input", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := FullResetConfirmation("default")
			if got := c.Ask(strings.NewReader(tt.input), &out); got != tt.want {
				t.Errorf("Ask(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), "FULL RESET") {
				t.Errorf("output missing title:\n%s", out.String())
			}
			if !tt.want && tt.input != "" && !strings.Contains(out.String(), "Operation cancelled") {
				t.Errorf("refusal not reported:\n%s", out.String())
			}
		})
	}
}

func TestRenderTile(t *testing.T) {
	empty := grid.Cell{ID: "c3", IsEmpty: true}
	out := RenderTile(empty, TileOptions{})
	if !strings.Contains(out, "+ empty") || !strings.Contains(out, "c3") {
		t.Errorf("empty tile = \n%s", out)
	}

	full := grid.Cell{
		ID:         "c1",
		Attributes: grid.Attributes{Gift: "Desk Calendar", Model: "Sunrise", Backdrop: "Onyx", Pattern: "Stars"},
		RibbonText: "1 of 83",
	}
	out = RenderTile(full, TileOptions{
		ShowRibbon: true,
		HasColors:  true,
		Colors:     catalog.Colors{Center: "#333333", Edge: "#111111", Text: "#ffffff"},
	})
	for _, want := range []string{"Desk Calendar", "Sunrise", "1 of 83"} {
		if !strings.Contains(out, want) {
			t.Errorf("tile missing %q:\n%s", want, out)
		}
	}

	out = RenderTile(full, TileOptions{ShowRibbon: false})
	if strings.Contains(out, "1 of 83") {
		t.Errorf("ribbon shown when disabled:\n%s", out)
	}
}

func TestRenderGridShape(t *testing.T) {
	g := grid.New(2, 3, grid.NewSequence(0))
	out := RenderGrid(g, GridOptions{})

	// Each tile is 6 lines tall: border, four content lines, border
	if lines := strings.Count(out, "\n") + 1; lines != 12 {
		t.Errorf("grid has %d lines, want 12", lines)
	}
	for _, id := range []string{"c1", "c6"} {
		if !strings.Contains(out, id) {
			t.Errorf("grid missing %s", id)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"Onyx", 10, "Onyx"},
		{"Astral Shard", 8, "Astral …"},
		{"", 4, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestResultDetailsSorted(t *testing.T) {
	r := NewSuccessResult("Grid saved", map[string]string{"Workspace": "default", "Cells": "9"}).SetWidth(80)
	out := r.Render()
	if strings.Index(out, "Cells") > strings.Index(out, "Workspace") {
		t.Errorf("details not sorted:\n%s", out)
	}
}

func TestRunner(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRunner(RunnerConfig{
			Title:     "Catalog warm-up",
			Command:   "giftgrid warm",
			StepNames: []string{"Gift list", "Backdrops"},
			Output:    &out,
		})
		details, err := r.Run(func(onStep StepCallback) (map[string]string, error) {
			onStep(1, StepRunning, "")
			onStep(1, StepComplete, "2 gifts")
			onStep(2, StepSkipped, "")
			return map[string]string{"Gifts": "2"}, nil
		})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if details["Duration"] == "" {
			t.Error("Duration not added to details")
		}
		for _, want := range []string{"CATALOG WARM-UP", "Gift list", "(2 gifts)", "Catalog warm-up complete"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("output missing %q:\n%s", want, out.String())
			}
		}
	})

	t.Run("failure", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRunner(RunnerConfig{
			Title:           "Catalog warm-up",
			Output:          &out,
			Troubleshooting: func(error) []string { return []string{"Check your network"} },
		})
		_, err := r.Run(func(StepCallback) (map[string]string, error) {
			return nil, errors.New("boom")
		})
		if err == nil {
			t.Fatal("Run() error = nil")
		}
		for _, want := range []string{"FAILED", "boom", "Check your network"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("output missing %q:\n%s", want, out.String())
			}
		}
	})
}
