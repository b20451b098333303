package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/giftgrid/internal/grid"
	"github.com/muurk/giftgrid/internal/logging"
)

const (
	// GridKey holds the serialized grid
	GridKey = "grid"

	// CounterKey holds the id counter as a decimal string
	CounterKey = "counter"

	// SnapshotVersion is the format written by Save
	SnapshotVersion = 1
)

// ErrNoSnapshot is returned by Load when nothing was saved
var ErrNoSnapshot = errors.New("no saved grid")

// Snapshot is the persisted form of a grid
type Snapshot struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"savedAt"`
	Grid    grid.Grid `json:"grid"`
	Counter uint64    `json:"-"`
}

// Gateway saves and restores one grid and its id counter. Several gateways
// can share a KV under different namespaces.
type Gateway struct {
	kv        KV
	namespace string
	now       func() time.Time
}

// NewGateway creates a gateway writing under namespace. An empty namespace
// uses the bare keys.
func NewGateway(kv KV, namespace string) *Gateway {
	return &Gateway{kv: kv, namespace: strings.Trim(namespace, "/"), now: time.Now}
}

// Namespace returns the key prefix of the gateway
func (g *Gateway) Namespace() string {
	return g.namespace
}

func (g *Gateway) key(name string) string {
	if g.namespace == "" {
		return name
	}
	return g.namespace + "/" + name
}

// Save writes grid and counter, replacing any previous snapshot
func (g *Gateway) Save(gr grid.Grid, counter uint64) error {
	data, err := json.Marshal(Snapshot{Version: SnapshotVersion, SavedAt: g.now().UTC(), Grid: gr})
	if err != nil {
		return fmt.Errorf("failed to encode grid: %w", err)
	}
	if err := g.kv.Write(g.key(GridKey), data); err != nil {
		return fmt.Errorf("failed to save grid: %w", err)
	}
	if err := g.kv.Write(g.key(CounterKey), []byte(strconv.FormatUint(counter, 10))); err != nil {
		return fmt.Errorf("failed to save id counter: %w", err)
	}
	logging.Debug("Grid saved",
		zap.String("namespace", g.namespace),
		zap.Int("rows", gr.Rows()),
		zap.Uint64("counter", counter),
	)
	return nil
}

// Load reads the saved snapshot. It returns ErrNoSnapshot when nothing was
// saved and a wrapped error when the snapshot cannot be used.
func (g *Gateway) Load() (Snapshot, error) {
	if !g.kv.Has(g.key(GridKey)) {
		return Snapshot{}, ErrNoSnapshot
	}
	data, err := g.kv.Read(g.key(GridKey))
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read grid: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode grid: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return Snapshot{}, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	if err := grid.Validate(snap.Grid); err != nil {
		return Snapshot{}, err
	}

	// A missing or unreadable counter is recovered from the ids themselves.
	if raw, err := g.kv.Read(g.key(CounterKey)); err == nil {
		if n, err := strconv.ParseUint(strings.TrimSpace(string(raw)), 10, 64); err == nil {
			snap.Counter = n
		}
	}
	return snap, nil
}

// Restore returns the saved grid and counter, or false when there is none or
// it is unusable. The caller starts from a fresh grid in that case.
func (g *Gateway) Restore() (grid.Grid, uint64, bool) {
	snap, err := g.Load()
	if err != nil {
		if !errors.Is(err, ErrNoSnapshot) {
			logging.Debug("Ignoring saved grid",
				zap.String("namespace", g.namespace),
				zap.Error(err),
			)
		}
		return grid.Grid{}, 0, false
	}
	return snap.Grid, snap.Counter, true
}

// RestoreStore returns a store holding the saved grid, or a fresh default
// store when nothing usable was saved
func (g *Gateway) RestoreStore() (*grid.Store, bool) {
	gr, counter, ok := g.Restore()
	if !ok {
		return grid.NewDefaultStore(), false
	}
	store, err := grid.RestoreStore(gr, counter)
	if err != nil {
		return grid.NewDefaultStore(), false
	}
	return store, true
}

// Clear removes the saved snapshot
func (g *Gateway) Clear() error {
	var errs []error
	for _, name := range []string{GridKey, CounterKey} {
		if err := g.kv.Erase(g.key(name)); err != nil {
			errs = append(errs, fmt.Errorf("failed to erase %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
