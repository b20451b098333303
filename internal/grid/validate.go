package grid

import (
	"errors"
	"fmt"
)

// Validate checks the structural invariants of a snapshot:
//   - at least MinRows rows, all of the same non-zero width
//   - every cell id is non-empty and unique
//   - Row/Col of each cell match its position
//   - IsEmpty is true exactly when the gift is unset
//   - RibbonText is empty when the gift is unset
//
// All violations are joined into one error wrapping ErrInvalidGrid.
func Validate(g Grid) error {
	var errs []error

	if g.Rows() < MinRows {
		errs = append(errs, fmt.Errorf("grid has %d rows, minimum is %d", g.Rows(), MinRows))
	}

	width := g.Cols()
	if width == 0 {
		errs = append(errs, fmt.Errorf("grid has no columns"))
	}

	seen := make(map[CellID]struct{}, g.Rows()*width)
	for r, row := range g.rows {
		if len(row) != width {
			errs = append(errs, fmt.Errorf("row %d has %d cells, want %d", r, len(row), width))
		}
		for c, cell := range row {
			errs = append(errs, validateCell(cell, r, c)...)
			if cell.ID == "" {
				continue
			}
			if _, dup := seen[cell.ID]; dup {
				errs = append(errs, fmt.Errorf("duplicate cell id %s", cell.ID))
			}
			seen[cell.ID] = struct{}{}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidGrid, errors.Join(errs...))
}

func validateCell(cell Cell, r, c int) []error {
	var errs []error
	if cell.ID == "" {
		errs = append(errs, fmt.Errorf("cell at (%d,%d) has no id", r, c))
	}
	if cell.Row != r || cell.Col != c {
		errs = append(errs, fmt.Errorf("cell %s claims (%d,%d) but sits at (%d,%d)", cell.ID, cell.Row, cell.Col, r, c))
	}
	if cell.IsEmpty != !cell.HasGift() {
		errs = append(errs, fmt.Errorf("cell %s isEmpty=%v disagrees with gift %q", cell.ID, cell.IsEmpty, cell.Gift))
	}
	if !cell.HasGift() && cell.RibbonText != "" {
		errs = append(errs, fmt.Errorf("cell %s has ribbon text without a gift", cell.ID))
	}
	return errs
}
