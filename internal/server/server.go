package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/giftgrid/internal/catalog"
	"github.com/muurk/giftgrid/internal/config"
	"github.com/muurk/giftgrid/internal/discovery"
	"github.com/muurk/giftgrid/internal/logging"
	"github.com/muurk/giftgrid/internal/nft"
	"github.com/muurk/giftgrid/internal/persist"
	"github.com/muurk/giftgrid/internal/proxy"
	"github.com/muurk/giftgrid/internal/resolver"
	"github.com/muurk/giftgrid/internal/urls"
	"github.com/muurk/giftgrid/internal/version"
)

// shutdownTimeout bounds how long Shutdown waits for connections to drain
const shutdownTimeout = 10 * time.Second

// NFTSource resolves collectibles and gift supply. *nft.Client satisfies it.
type NFTSource interface {
	Resolve(ctx context.Context, slug string) (nft.Gift, error)
	SupplyFor(ctx context.Context, gift string) (nft.Supply, error)
}

// Config holds the server configuration
type Config struct {
	Host     string
	Port     int
	LogLevel string

	// Upstream hosts for the catalog client and the proxy
	APIBase      string
	CDNBase      string
	TelegramBase string

	// StoreDir holds saved grids. Empty keeps them in memory.
	StoreDir string

	CacheTTL      time.Duration
	CacheEntries  int
	ClientTimeout time.Duration

	// Advertise announces the server over mDNS as InstanceName
	Advertise    bool
	InstanceName string

	// ConfigPath is watched for log level changes. Empty disables watching.
	ConfigPath string

	// Source, NFT and KV replace the default backends when set
	Source resolver.Source
	NFT    NFTSource
	KV     persist.KV
}

// Server serves the catalog proxy, the grid API and the event stream
type Server struct {
	config     *Config
	httpServer *http.Server
	listener   net.Listener
	handler    http.Handler
	proxy      *proxy.Handler
	resolver   *resolver.Resolver
	nft        NFTSource
	workspaces *Manager
	advert     *discovery.Advertisement

	ctx    context.Context
	cancel context.CancelFunc

	wg          sync.WaitGroup
	mu          sync.Mutex
	activeConns map[*websocket.Conn]string
}

// New creates a new Server instance
func New(cfg *Config) (*Server, error) {
	if err := logging.Initialize(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	applyDefaults(cfg)

	upstreams, err := buildUpstreams(cfg)
	if err != nil {
		return nil, err
	}
	px := proxy.New(upstreams...)

	cache := resolver.NewCache(cfg.CacheTTL, resolver.WithMaxEntries(cfg.CacheEntries))

	src := cfg.Source
	if src == nil {
		client := catalog.NewClientWithURLs(cfg.APIBase, cfg.CDNBase)
		client.SetTimeout(cfg.ClientTimeout)
		src = client
	}
	res := resolver.New(src, resolver.WithCache(cache))

	nftSrc := cfg.NFT
	if nftSrc == nil {
		nftSrc = nft.NewClient(cfg.TelegramBase, cache)
	}

	kv := cfg.KV
	if kv == nil {
		if cfg.StoreDir != "" {
			kv = persist.NewDiskKV(cfg.StoreDir)
		} else {
			kv = persist.NewMemoryKV()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:      cfg,
		proxy:       px,
		resolver:    res,
		nft:         nftSrc,
		workspaces:  NewManager(kv, res, nftSrc),
		ctx:         ctx,
		cancel:      cancel,
		activeConns: make(map[*websocket.Conn]string),
	}
	s.handler = s.routes()
	return s, nil
}

func applyDefaults(cfg *Config) {
	if cfg.APIBase == "" {
		cfg.APIBase = urls.CatalogAPI
	}
	if cfg.CDNBase == "" {
		cfg.CDNBase = urls.CatalogCDN
	}
	if cfg.TelegramBase == "" {
		cfg.TelegramBase = urls.TelegramNFT
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = resolver.DefaultTTL
	}
	if cfg.ClientTimeout <= 0 {
		cfg.ClientTimeout = catalog.DefaultTimeout
	}
}

func buildUpstreams(cfg *Config) ([]proxy.Upstream, error) {
	var out []proxy.Upstream
	for _, u := range []struct{ name, prefix, target string }{
		{"api", "/api", cfg.APIBase},
		{"cdn", "/cdn", cfg.CDNBase},
		{"tg", "/tg", telegramHost(cfg.TelegramBase)},
	} {
		up, err := proxy.NewUpstream(u.name, u.prefix, u.target)
		if err != nil {
			return nil, err
		}
		out = append(out, up)
	}
	return out, nil
}

// telegramHost strips the collectible path so /tg/nft/<slug> maps onto the
// page
func telegramHost(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return base
	}
	return u.Scheme + "://" + u.Host
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Workspaces returns the workspace manager
func (s *Server) Workspaces() *Manager {
	return s.workspaces
}

// Start starts the server and blocks until shutdown
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	logging.Info("Starting giftgrid server",
		zap.String("addr", addr),
		zap.String("api", s.config.APIBase),
		zap.String("cdn", s.config.CDNBase),
		zap.String("store", storeLabel(s.config.StoreDir)),
		zap.String("version", version.Full()),
	)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if s.config.Advertise {
		port := listener.Addr().(*net.TCPAddr).Port
		advert, err := discovery.Advertise(s.config.InstanceName, port, version.Version)
		if err != nil {
			logging.Warn("mDNS advertisement failed", zap.Error(err))
		} else {
			s.advert = advert
			logging.Info("Advertising over mDNS", zap.String("service", discovery.ServiceType), zap.Int("port", port))
		}
	}

	if s.config.ConfigPath != "" {
		s.watchConfig()
	}

	logging.Info("Server listening for connections", zap.String("addr", listener.Addr().String()))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		err := s.httpServer.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errChan <- err
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

func storeLabel(dir string) string {
	if dir == "" {
		return "memory"
	}
	return dir
}

// watchConfig applies log level changes from the config file
func (s *Server) watchConfig() {
	updates, err := config.Watch(s.ctx, s.config.ConfigPath)
	if err != nil {
		logging.Warn("Config watch disabled", zap.String("path", s.config.ConfigPath), zap.Error(err))
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for u := range updates {
			if u.Err != nil {
				logging.Warn("Ignoring config change", zap.Error(u.Err))
				continue
			}
			if lvl := u.Registry.LogLevel; lvl != "" && lvl != logging.Level() {
				logging.SetLevel(lvl)
				logging.Info("Log level changed", zap.String("level", lvl))
			}
		}
	}()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")
	s.cancel()

	if s.advert != nil {
		s.advert.Shutdown()
	}

	if s.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			logging.Error("Error closing listener", zap.Error(err))
		}
		cancel()
	}

	// Hijacked websocket connections are not closed by http.Server
	s.mu.Lock()
	for conn, addr := range s.activeConns {
		logging.Info("Closing active connection", zap.String("remote_addr", addr))
		_ = conn.Close()
	}
	s.mu.Unlock()

	s.workspaces.Close()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All connections closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	case <-time.After(shutdownTimeout):
		logging.Warn("Shutdown timeout after 10 seconds, forcing close")
	}

	logging.Sync()
	return nil
}

// GetActiveConnections returns the number of open event streams
func (s *Server) GetActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeConns)
}
