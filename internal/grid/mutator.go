package grid

import "time"

// DefaultPulseDelay is how long after the last structural growth the render
// pulse fires
const DefaultPulseDelay = 50 * time.Millisecond

// Mutator applies structural and content changes to a Store. Invalid input
// is a silent no-op; every method reports whether the grid changed.
type Mutator struct {
	store *Store
	pulse *Pulser
}

// NewMutator creates a mutator over store. pulse may be nil.
func NewMutator(store *Store, pulse *Pulser) *Mutator {
	return &Mutator{store: store, pulse: pulse}
}

// Store returns the store the mutator writes to
func (m *Mutator) Store() *Store {
	return m.store
}

// AddRow appends a row of empty cells at the given edge and schedules the
// render pulse
func (m *Mutator) AddRow(edge Edge) bool {
	changed := m.store.update(ChangeAddRow, nil, func(g Grid, seq *Sequence) (Grid, bool) {
		return AddRow(g, edge, seq), true
	})
	if changed && m.pulse != nil {
		m.pulse.Trigger()
	}
	return changed
}

// RemoveRow drops the row at the given edge, keeping at least MinRows
func (m *Mutator) RemoveRow(edge Edge) bool {
	return m.store.update(ChangeRemoveRow, nil, func(g Grid, _ *Sequence) (Grid, bool) {
		return RemoveRow(g, edge)
	})
}

// SwapCells exchanges the contents of two cells
func (m *Mutator) SwapCells(a, b CellID) bool {
	return m.store.update(ChangeSwap, []CellID{a, b}, func(g Grid, _ *Sequence) (Grid, bool) {
		return SwapCells(g, a, b)
	})
}

// ApplyAttributes overwrites the four fields of a cell
func (m *Mutator) ApplyAttributes(id CellID, attrs Attributes) bool {
	return m.store.update(ChangeApply, []CellID{id}, func(g Grid, _ *Sequence) (Grid, bool) {
		return ApplyAttributes(g, id, attrs)
	})
}

// ResetCell clears a cell
func (m *Mutator) ResetCell(id CellID) bool {
	return m.store.update(ChangeResetCell, []CellID{id}, func(g Grid, _ *Sequence) (Grid, bool) {
		return ResetCell(g, id)
	})
}

// Annotate sets the ribbon text of a cell that still holds attrs
func (m *Mutator) Annotate(id CellID, attrs Attributes, ribbon string) bool {
	return m.store.update(ChangeAnnotate, []CellID{id}, func(g Grid, _ *Sequence) (Grid, bool) {
		return Annotate(g, id, attrs, ribbon)
	})
}

// FullReset discards the whole grid and the id sequence. It refuses to run
// unless confirmed is true.
func (m *Mutator) FullReset(confirmed bool) error {
	if !confirmed {
		return ErrResetNotConfirmed
	}
	m.store.reset(DefaultRows, DefaultCols)
	return nil
}
