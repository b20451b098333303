package grid

// The functions in this file are the pure form of every grid mutation. They
// take a snapshot and return a new one plus a changed flag; on invalid input
// they return the input unchanged and false.

// AddRow inserts a row of empty cells at the given edge. Inserting at the top
// shifts every existing cell down one row.
func AddRow(g Grid, edge Edge, seq *Sequence) Grid {
	cols := g.Cols()
	if cols == 0 {
		cols = DefaultCols
	}

	out := make([][]Cell, 0, g.Rows()+1)
	if edge == EdgeTop {
		out = append(out, newRow(0, cols, seq))
		for _, row := range g.rows {
			shifted := append([]Cell(nil), row...)
			for i := range shifted {
				shifted[i].Row++
			}
			out = append(out, shifted)
		}
		return Grid{rows: out}
	}

	for _, row := range g.rows {
		out = append(out, append([]Cell(nil), row...))
	}
	out = append(out, newRow(len(g.rows), cols, seq))
	return Grid{rows: out}
}

// RemoveRow drops the row at the given edge. It is a no-op at or below
// MinRows.
func RemoveRow(g Grid, edge Edge) (Grid, bool) {
	if g.Rows() <= MinRows {
		return g, false
	}

	if edge == EdgeTop {
		out := make([][]Cell, 0, g.Rows()-1)
		for _, row := range g.rows[1:] {
			shifted := append([]Cell(nil), row...)
			for i := range shifted {
				shifted[i].Row--
			}
			out = append(out, shifted)
		}
		return Grid{rows: out}, true
	}

	return FromRows(g.rows[:g.Rows()-1]), true
}

// SwapCells exchanges the contents of two cells. Ids and positions stay
// where they are, so swapping twice restores the original snapshot.
func SwapCells(g Grid, a, b CellID) (Grid, bool) {
	if a == b {
		return g, false
	}
	ar, ac, ok := g.locate(a)
	if !ok {
		return g, false
	}
	br, bc, ok := g.locate(b)
	if !ok {
		return g, false
	}

	out := g.clone()
	ca, cb := out.rows[ar][ac], out.rows[br][bc]
	out.rows[ar][ac] = swapContent(ca, cb)
	out.rows[br][bc] = swapContent(cb, ca)
	return out, true
}

// swapContent returns dst carrying the content of src
func swapContent(dst, src Cell) Cell {
	dst.Attributes = src.Attributes
	dst.IsEmpty = src.IsEmpty
	dst.RibbonText = src.RibbonText
	return dst
}

// ApplyAttributes overwrites all four fields of a cell atomically. Applying
// the attributes a cell already holds changes nothing.
func ApplyAttributes(g Grid, id CellID, attrs Attributes) (Grid, bool) {
	r, c, ok := g.locate(id)
	if !ok || g.rows[r][c].Attributes == attrs {
		return g, false
	}
	out := g.clone()
	out.rows[r][c] = out.rows[r][c].withAttributes(attrs)
	return out, true
}

// ResetCell clears every field of a cell
func ResetCell(g Grid, id CellID) (Grid, bool) {
	return ApplyAttributes(g, id, Attributes{})
}

// Annotate sets the ribbon text of a cell, but only while the cell still
// holds exactly attrs. Late results for a cell that has since changed are
// dropped.
func Annotate(g Grid, id CellID, attrs Attributes, ribbon string) (Grid, bool) {
	r, c, ok := g.locate(id)
	if !ok {
		return g, false
	}
	cell := g.rows[r][c]
	if cell.Attributes != attrs || !attrs.HasGift() || cell.RibbonText == ribbon {
		return g, false
	}
	out := g.clone()
	out.rows[r][c].RibbonText = ribbon
	return out, true
}
