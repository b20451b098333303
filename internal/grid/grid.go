package grid

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	// DefaultRows is the number of rows in a fresh grid
	DefaultRows = 3

	// DefaultCols is the number of columns in every row
	DefaultCols = 3

	// MinRows is the floor below which RemoveRow is a no-op
	MinRows = 3
)

var (
	// ErrOutOfRange is returned when a position lies outside the grid
	ErrOutOfRange = errors.New("grid: position out of range")

	// ErrInvalidGrid is returned when a snapshot breaks a structural invariant
	ErrInvalidGrid = errors.New("grid: invalid snapshot")

	// ErrResetNotConfirmed is returned by a full reset that was not confirmed
	ErrResetNotConfirmed = errors.New("grid: full reset requires confirmation")
)

// Edge selects the top or bottom row
type Edge int

const (
	EdgeBottom Edge = iota
	EdgeTop
)

// String returns "top" or "bottom"
func (e Edge) String() string {
	if e == EdgeTop {
		return "top"
	}
	return "bottom"
}

// ParseEdge parses "top" or "bottom"
func ParseEdge(s string) (Edge, error) {
	switch s {
	case "top":
		return EdgeTop, nil
	case "bottom", "":
		return EdgeBottom, nil
	default:
		return EdgeBottom, fmt.Errorf("unknown edge %q (expected top or bottom)", s)
	}
}

// Grid is an immutable snapshot of the cell store. Mutating functions
// return a new Grid and never touch the rows of the receiver.
type Grid struct {
	rows [][]Cell
}

// New builds a fresh grid of empty cells, minting ids from seq
func New(rows, cols int, seq *Sequence) Grid {
	out := make([][]Cell, rows)
	for r := range out {
		out[r] = newRow(r, cols, seq)
	}
	return Grid{rows: out}
}

// FromRows builds a grid from explicit rows. The rows are copied.
func FromRows(rows [][]Cell) Grid {
	out := make([][]Cell, len(rows))
	for r, row := range rows {
		out[r] = append([]Cell(nil), row...)
	}
	return Grid{rows: out}
}

func newRow(r, cols int, seq *Sequence) []Cell {
	row := make([]Cell, cols)
	for c := range row {
		row[c] = emptyCell(seq.Next(), r, c)
	}
	return row
}

// Rows returns the number of rows
func (g Grid) Rows() int {
	return len(g.rows)
}

// Cols returns the width of the first row (all rows are the same width)
func (g Grid) Cols() int {
	if len(g.rows) == 0 {
		return 0
	}
	return len(g.rows[0])
}

// At returns the cell at (row, col)
func (g Grid) At(row, col int) (Cell, error) {
	if row < 0 || row >= len(g.rows) || col < 0 || col >= len(g.rows[row]) {
		return Cell{}, fmt.Errorf("%w: (%d,%d)", ErrOutOfRange, row, col)
	}
	return g.rows[row][col], nil
}

// Find returns the cell with the given id
func (g Grid) Find(id CellID) (Cell, bool) {
	r, c, ok := g.locate(id)
	if !ok {
		return Cell{}, false
	}
	return g.rows[r][c], true
}

func (g Grid) locate(id CellID) (int, int, bool) {
	for r, row := range g.rows {
		for c, cell := range row {
			if cell.ID == id {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

// Cells returns all cells in reading order
func (g Grid) Cells() []Cell {
	out := make([]Cell, 0, g.Rows()*g.Cols())
	for _, row := range g.rows {
		out = append(out, row...)
	}
	return out
}

// RowsCopy returns a deep copy of the rows
func (g Grid) RowsCopy() [][]Cell {
	return FromRows(g.rows).rows
}

// FilledCount returns the number of cells with a gift
func (g Grid) FilledCount() int {
	n := 0
	for _, c := range g.Cells() {
		if !c.IsEmpty {
			n++
		}
	}
	return n
}

// Equal reports whether two snapshots hold the same cells
func (g Grid) Equal(other Grid) bool {
	if g.Rows() != other.Rows() {
		return false
	}
	for r := range g.rows {
		if len(g.rows[r]) != len(other.rows[r]) {
			return false
		}
		for c := range g.rows[r] {
			if g.rows[r][c] != other.rows[r][c] {
				return false
			}
		}
	}
	return true
}

// clone copies the outer slice and every row so the result can be edited
func (g Grid) clone() Grid {
	return FromRows(g.rows)
}

// MarshalJSON encodes the grid as an array of rows
func (g Grid) MarshalJSON() ([]byte, error) {
	rows := g.rows
	if rows == nil {
		rows = [][]Cell{}
	}
	return json.Marshal(rows)
}

// UnmarshalJSON decodes an array of rows
func (g *Grid) UnmarshalJSON(data []byte) error {
	var rows [][]Cell
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	g.rows = rows
	return nil
}
