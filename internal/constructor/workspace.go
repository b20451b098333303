package constructor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/giftgrid/internal/grid"
	"github.com/muurk/giftgrid/internal/logging"
	"github.com/muurk/giftgrid/internal/nft"
	"github.com/muurk/giftgrid/internal/persist"
	"github.com/muurk/giftgrid/internal/resolver"
	"github.com/muurk/giftgrid/internal/session"
)

// DefaultResolveTimeout bounds one background catalog lookup
const DefaultResolveTimeout = 15 * time.Second

var (
	// ErrNotReady is returned for cell edits before the catalog preload
	// succeeded
	ErrNotReady = errors.New("catalog not loaded yet")

	// ErrUnknownCell is returned when a cell id is not in the grid
	ErrUnknownCell = errors.New("unknown cell")

	// ErrUnknownGift is returned when a gift name is not in the catalog
	ErrUnknownGift = errors.New("unknown gift")

	// ErrNoStorage is returned by Save when the workspace has no gateway
	ErrNoStorage = errors.New("no storage configured")

	// ErrClosed is returned after Close
	ErrClosed = errors.New("workspace closed")

	// ErrNoNFT is returned by ImportNFT when no collectible resolver is set
	ErrNoNFT = errors.New("collectible import not configured")

	// ErrSessionChanged is returned when the edited cell changed while a
	// lookup was running
	ErrSessionChanged = errors.New("editing session changed")
)

// NFTResolver resolves collectible slugs. *nft.Client satisfies it.
type NFTResolver interface {
	Resolve(ctx context.Context, slug string) (nft.Gift, error)
}

// Config configures a Workspace
type Config struct {
	ID       string
	Resolver *resolver.Resolver

	// Gateway persists the grid. When nil the grid lives only in memory
	// and Save fails with ErrNoStorage.
	Gateway *persist.Gateway

	// NFT enables ImportNFT
	NFT NFTResolver

	PulseDelay     time.Duration
	ResolveTimeout time.Duration
}

// Workspace owns one grid and everything that edits it: the mutator, the
// editing session, the clipboard and the background lookups. Every
// operation runs to completion under one lock, and results of background
// lookups are delivered through the same lock, so callers never observe a
// half-applied change.
type Workspace struct {
	id string

	mu        sync.Mutex
	store     *grid.Store
	mutator   *grid.Mutator
	pulse     *grid.Pulser
	session   *session.Session
	resolver  *resolver.Resolver
	gateway   *persist.Gateway
	nft       NFTResolver
	ref       *persist.Reference
	inflight  map[session.Request]bool
	timeout   time.Duration
	restored  bool
	createdAt time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	subsMu     sync.Mutex
	subs       map[int]chan Event
	nextSub    int
	subsClosed bool
}

// New creates a workspace, restoring the saved grid when the gateway has
// a usable one
func New(cfg Config) *Workspace {
	if cfg.PulseDelay <= 0 {
		cfg.PulseDelay = grid.DefaultPulseDelay
	}
	if cfg.ResolveTimeout <= 0 {
		cfg.ResolveTimeout = DefaultResolveTimeout
	}

	store := grid.NewDefaultStore()
	restored := false
	if cfg.Gateway != nil {
		store, restored = cfg.Gateway.RestoreStore()
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Workspace{
		id:        cfg.ID,
		store:     store,
		session:   session.New(&grid.Clipboard{}),
		resolver:  cfg.Resolver,
		gateway:   cfg.Gateway,
		nft:       cfg.NFT,
		inflight:  make(map[session.Request]bool),
		timeout:   cfg.ResolveTimeout,
		restored:  restored,
		createdAt: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
		subs:      make(map[int]chan Event),
	}
	w.pulse = grid.NewPulser(cfg.PulseDelay, func() {
		w.publish(Event{Kind: EventPulse})
	})
	w.mutator = grid.NewMutator(store, w.pulse)
	store.Subscribe(w.onChange)

	logging.Info("Workspace created",
		zap.String("workspace", w.id),
		zap.Bool("restored", restored),
		zap.Int("rows", store.Snapshot().Rows()),
	)
	return w
}

// ID returns the workspace id
func (w *Workspace) ID() string {
	return w.id
}

// CreatedAt returns when the workspace was created
func (w *Workspace) CreatedAt() time.Time {
	return w.createdAt
}

// Restored reports whether the grid came from a saved snapshot
func (w *Workspace) Restored() bool {
	return w.restored
}

// Snapshot returns the current grid
func (w *Workspace) Snapshot() grid.Grid {
	return w.store.Snapshot()
}

// Resolver returns the attribute resolver used by the workspace
func (w *Workspace) Resolver() *resolver.Resolver {
	return w.resolver
}

// onChange runs for every installed snapshot, under the store lock
func (w *Workspace) onChange(ch grid.Change) {
	g := ch.Grid
	w.publish(Event{Kind: EventGrid, Change: ch.Kind, Grid: &g})

	if ch.Kind != grid.ChangeApply {
		return
	}
	for _, id := range ch.Cells {
		if cell, ok := g.Find(id); ok && cell.HasGift() && cell.Backdrop != "" {
			w.annotate(cell.ID, cell.Attributes)
		}
	}
}

// annotate resolves the ribbon text of a cell in the background. Callers
// hold w.mu.
func (w *Workspace) annotate(id grid.CellID, attrs grid.Attributes) {
	if w.ctx.Err() != nil {
		return
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ctx, cancel := context.WithTimeout(w.ctx, w.timeout)
		ribbon := w.resolver.RibbonTextFor(ctx, attrs.Gift, attrs.Backdrop)
		cancel()

		w.mu.Lock()
		defer w.mu.Unlock()
		if w.ctx.Err() != nil {
			return
		}
		w.mutator.Annotate(id, attrs, ribbon)
	}()
}

// Wait blocks until every background lookup started so far has been
// delivered
func (w *Workspace) Wait() {
	w.wg.Wait()
}

// Close stops background work and ends all subscriptions
func (w *Workspace) Close() {
	w.mu.Lock()
	w.cancel()
	w.mu.Unlock()

	w.pulse.Stop()
	w.wg.Wait()
	w.closeSubscribers()
	logging.Info("Workspace closed", zap.String("workspace", w.id))
}

func (w *Workspace) closed() bool {
	return w.ctx.Err() != nil
}

// Preload loads the catalog reference data. Cell edits are refused until it
// succeeds; a failed preload can be retried by calling Preload again.
func (w *Workspace) Preload(ctx context.Context) error {
	if w.Ready() {
		return nil
	}
	ref, err := persist.Preload(ctx, w.resolver)
	if err != nil {
		logging.Warn("Catalog preload failed", zap.String("workspace", w.id), zap.Error(err))
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.ref = &ref
	logging.Info("Catalog preloaded",
		zap.String("workspace", w.id),
		zap.Int("gifts", len(ref.Gifts)),
		zap.Int("backdrops", len(ref.Backdrops)),
	)
	return nil
}

// Ready reports whether the catalog preload succeeded
func (w *Workspace) Ready() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ref != nil
}

// Reference returns the preloaded catalog data
func (w *Workspace) Reference() (persist.Reference, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ref == nil {
		return persist.Reference{}, false
	}
	return *w.ref, true
}

// AddRow inserts a row of empty cells at edge
func (w *Workspace) AddRow(edge grid.Edge) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mutator.AddRow(edge)
}

// RemoveRow drops the row at edge unless the grid is at its minimum height.
// An editing session on a removed cell is closed.
func (w *Workspace) RemoveRow(edge grid.Edge) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	changed := w.mutator.RemoveRow(edge)
	if changed {
		w.syncSessionLocked()
	}
	return changed
}

// Swap exchanges the contents of two cells. This is the commit action of a
// drag.
func (w *Workspace) Swap(a, b grid.CellID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	changed := w.mutator.SwapCells(a, b)
	if changed && (w.session.CellID() == a || w.session.CellID() == b) {
		w.syncSessionLocked()
	}
	return changed
}

// Drop commits a finished drag session
func (w *Workspace) Drop(d *grid.DragSession) bool {
	if d.State() != grid.DragCommitted {
		return false
	}
	return w.Swap(d.Source(), d.Target())
}

// ApplyAttributes writes all four fields of a cell at once
func (w *Workspace) ApplyAttributes(id grid.CellID, attrs grid.Attributes) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkGiftLocked(attrs.Gift); err != nil {
		return false, err
	}
	changed := w.mutator.ApplyAttributes(id, attrs)
	if changed && w.session.CellID() == id {
		w.syncSessionLocked()
	}
	return changed, nil
}

// ResetCell clears a cell
func (w *Workspace) ResetCell(id grid.CellID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	changed := w.mutator.ResetCell(id)
	if changed && w.session.CellID() == id {
		w.syncSessionLocked()
	}
	return changed
}

// Save persists the grid and its id counter
func (w *Workspace) Save() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gateway == nil {
		return ErrNoStorage
	}
	if err := w.gateway.Save(w.store.Snapshot(), w.store.Counter()); err != nil {
		w.notify(NoticeWarning, "Could not save the grid")
		return err
	}
	w.notify(NoticeInfo, "Grid saved")
	return nil
}

// FullReset replaces the grid with a fresh default one and clears the saved
// copy. It refuses to run unless confirmed is true.
func (w *Workspace) FullReset(confirmed bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.mutator.FullReset(confirmed); err != nil {
		return err
	}
	w.session.Close()
	clear(w.inflight)
	w.publishSessionLocked()

	if w.gateway != nil {
		if err := w.gateway.Clear(); err != nil {
			w.notify(NoticeWarning, "Grid reset, but the saved copy could not be removed")
			return fmt.Errorf("grid reset but saved copy not cleared: %w", err)
		}
	}
	w.notify(NoticeInfo, "Grid reset")
	return nil
}

// checkGiftLocked rejects gift names missing from the preloaded catalog.
// The empty gift is always allowed.
func (w *Workspace) checkGiftLocked(gift string) error {
	if gift == "" || w.ref == nil {
		return nil
	}
	if !slices.Contains(w.ref.Gifts, gift) {
		return fmt.Errorf("%w: %q", ErrUnknownGift, gift)
	}
	return nil
}
