package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/giftgrid/internal/constructor"
	"github.com/muurk/giftgrid/internal/logging"
	"github.com/muurk/giftgrid/internal/persist"
	"github.com/muurk/giftgrid/internal/resolver"
)

// preloadTimeout bounds the catalog preload started for a new workspace
const preloadTimeout = 30 * time.Second

// Manager owns the workspaces served by the API. Each workspace saves under
// its own namespace of a shared store, so a workspace id survives a server
// restart.
type Manager struct {
	mu         sync.Mutex
	workspaces map[string]*constructor.Workspace
	closed     bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	kv       persist.KV
	resolver *resolver.Resolver
	nft      constructor.NFTResolver
}

// NewManager creates a manager saving into kv
func NewManager(kv persist.KV, res *resolver.Resolver, nft constructor.NFTResolver) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		workspaces: make(map[string]*constructor.Workspace),
		ctx:        ctx,
		cancel:     cancel,
		kv:         kv,
		resolver:   res,
		nft:        nft,
	}
}

func namespace(id string) string {
	return "grids/" + id
}

// Create starts a new workspace with a fresh grid
func (m *Manager) Create() (*constructor.Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, constructor.ErrClosed
	}
	id := uuid.NewString()
	return m.openLocked(id), nil
}

// Get returns the workspace with id, reopening it from the store when it
// was saved earlier
func (m *Manager) Get(id string) (*constructor.Workspace, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, false
	}
	if ws, ok := m.workspaces[id]; ok {
		return ws, true
	}
	if !m.kv.Has(namespace(id) + "/" + persist.GridKey) {
		return nil, false
	}
	return m.openLocked(id), true
}

func (m *Manager) openLocked(id string) *constructor.Workspace {
	ws := constructor.New(constructor.Config{
		ID:       id,
		Resolver: m.resolver,
		Gateway:  persist.NewGateway(m.kv, namespace(id)),
		NFT:      m.nft,
	})
	m.workspaces[id] = ws

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(m.ctx, preloadTimeout)
		defer cancel()
		_ = ws.Preload(ctx)
	}()
	return ws
}

// Remove closes a workspace and forgets it. Its saved grid stays.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	ws, ok := m.workspaces[id]
	delete(m.workspaces, id)
	m.mu.Unlock()
	if !ok {
		return false
	}
	ws.Close()
	logging.Info("Workspace removed", zap.String("workspace", id))
	return true
}

// Len returns the number of open workspaces
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workspaces)
}

// Close closes every workspace
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	open := m.workspaces
	m.workspaces = make(map[string]*constructor.Workspace)
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
	for _, ws := range open {
		ws.Close()
	}
}
