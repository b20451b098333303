// Package grid holds the gift grid: its cells, the store that owns the
// current snapshot, and every mutation that can be applied to it.
//
// # Snapshots
//
// A Grid is an immutable snapshot. The pure functions in mutate.go (AddRow,
// RemoveRow, SwapCells, ApplyAttributes, ResetCell, Annotate) return a new
// snapshot and never modify the one they were given. The Store installs
// snapshots atomically and rejects any that fail Validate.
//
// # Identity
//
// Cell ids ("c1", "c2", ...) come from a Sequence owned by the Store. Ids
// are stable: rows and columns are recomputed on structural change, ids are
// not. A swap exchanges content and leaves ids in place.
//
// # Usage
//
//	store := grid.NewDefaultStore()
//	m := grid.NewMutator(store, nil)
//	m.AddRow(grid.EdgeBottom)
//	c, _ := store.Get(0, 0)
//	m.ApplyAttributes(c.ID, grid.Attributes{Gift: "Desk Calendar"})
//
// # Drag sessions
//
// DragSession is a small state machine (idle, pressed, dragging, hovering,
// committed, cancelled) shared by every input modality. Thresholds decide
// when a press becomes a drag; a committed release yields the pair of cells
// to pass to SwapCells.
package grid
