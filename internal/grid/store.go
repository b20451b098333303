package grid

import (
	"sync"

	"github.com/muurk/giftgrid/internal/logging"
	"go.uber.org/zap"
)

// ChangeKind names the mutation that produced a snapshot
type ChangeKind string

const (
	ChangeAddRow    ChangeKind = "add_row"
	ChangeRemoveRow ChangeKind = "remove_row"
	ChangeSwap      ChangeKind = "swap"
	ChangeApply     ChangeKind = "apply"
	ChangeResetCell ChangeKind = "reset_cell"
	ChangeAnnotate  ChangeKind = "annotate"
	ChangeReplace   ChangeKind = "replace"
	ChangeFullReset ChangeKind = "full_reset"
)

// Change describes one installed snapshot
type Change struct {
	Kind  ChangeKind
	Grid  Grid
	Cells []CellID // cells touched by the change, if any
}

// Listener receives every installed snapshot. Listeners run while the store
// lock is held and must not call back into the store.
type Listener func(Change)

// Store holds the current grid snapshot and the id sequence that feeds it.
// Every mutation installs a whole new snapshot.
type Store struct {
	mu        sync.RWMutex
	grid      Grid
	seq       *Sequence
	listeners []Listener
}

// NewStore creates a store holding a fresh rows×cols grid
func NewStore(rows, cols int) *Store {
	seq := NewSequence(0)
	return &Store{grid: New(rows, cols, seq), seq: seq}
}

// NewDefaultStore creates a store holding a fresh 3×3 grid
func NewDefaultStore() *Store {
	return NewStore(DefaultRows, DefaultCols)
}

// RestoreStore creates a store from a persisted snapshot and id counter.
// The snapshot must pass Validate.
func RestoreStore(g Grid, counter uint64) (*Store, error) {
	if err := Validate(g); err != nil {
		return nil, err
	}
	seq := NewSequence(counter)
	seq.Observe(g)
	return &Store{grid: g.clone(), seq: seq}, nil
}

// Subscribe registers a listener for installed snapshots
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Snapshot returns the current grid
func (s *Store) Snapshot() Grid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid
}

// Counter returns the id counter that must be persisted with the grid
func (s *Store) Counter() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq.Counter()
}

// Get returns the cell at (row, col)
func (s *Store) Get(row, col int) (Cell, error) {
	return s.Snapshot().At(row, col)
}

// Find returns the cell with the given id
func (s *Store) Find(id CellID) (Cell, bool) {
	return s.Snapshot().Find(id)
}

// ReplaceAll installs g wholesale after validating it
func (s *Store) ReplaceAll(g Grid) error {
	if err := Validate(g); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq.Observe(g)
	s.install(Change{Kind: ChangeReplace, Grid: g.clone()})
	return nil
}

// update runs fn against the current snapshot and installs the result when
// fn reports a change. The whole read-compute-install step is atomic.
func (s *Store) update(kind ChangeKind, cells []CellID, fn func(Grid, *Sequence) (Grid, bool)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := fn(s.grid, s.seq)
	if !changed {
		return false
	}
	if err := Validate(next); err != nil {
		logging.Error("Rejected grid snapshot",
			zap.String("change", string(kind)),
			zap.Error(err),
		)
		return false
	}
	s.install(Change{Kind: kind, Grid: next, Cells: cells})
	return true
}

// reset replaces grid and sequence with fresh ones
func (s *Store) reset(rows, cols int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = NewSequence(0)
	s.install(Change{Kind: ChangeFullReset, Grid: New(rows, cols, s.seq)})
}

// install must be called with s.mu held
func (s *Store) install(ch Change) {
	s.grid = ch.Grid
	logging.LogGridChange(string(ch.Kind), ch.Grid.Rows(), ch.Grid.FilledCount())
	for _, l := range s.listeners {
		l(ch)
	}
}
