package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/muurk/giftgrid/internal/urls"
)

// CurrentVersion is the config file format version
const CurrentVersion = 1

// Registry represents the entire user configuration file.
type Registry struct {
	Version     int            `yaml:"version"`
	LogLevel    string         `yaml:"log_level,omitempty"` // debug, info, warn, error; empty = silent
	Upstreams   *Upstreams     `yaml:"upstreams,omitempty"`
	Server      *ServerPrefs   `yaml:"server,omitempty"`
	Resolver    *ResolverPrefs `yaml:"resolver,omitempty"`
	Preferences *Preferences   `yaml:"preferences,omitempty"`
}

// Upstreams are the remote hosts the catalog client and proxy talk to
type Upstreams struct {
	API      string `yaml:"api_base"`
	CDN      string `yaml:"cdn_base"`
	Telegram string `yaml:"telegram_base"`
}

// ServerPrefs configures giftgrid-server
type ServerPrefs struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Advertise bool   `yaml:"advertise"`           // Announce over mDNS
	StoreDir  string `yaml:"store_dir,omitempty"` // Empty = <config dir>/store
}

// ResolverPrefs tunes catalog lookups
type ResolverPrefs struct {
	CacheTTL      time.Duration `yaml:"cache_ttl"`
	CacheEntries  int           `yaml:"cache_entries"`
	ClientTimeout time.Duration `yaml:"client_timeout"`
}

// Preferences represents terminal constructor preferences.
type Preferences struct {
	Workspace       string `yaml:"workspace"`        // Namespace of the saved grid
	AutoSave        bool   `yaml:"auto_save"`        // Save the grid when the editor exits
	ShowRibbons     bool   `yaml:"show_ribbons"`     // Render rarity ribbons on cells
	AutoDiscover    bool   `yaml:"auto_discover"`    // Look for a giftgrid server on the LAN at startup
	DiscoverTimeout int    `yaml:"discover_timeout"` // mDNS discovery timeout in seconds
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	r := &Registry{Version: CurrentVersion}
	r.applyDefaults()
	return r
}

func defaultUpstreams() *Upstreams {
	return &Upstreams{API: urls.CatalogAPI, CDN: urls.CatalogCDN, Telegram: urls.TelegramNFT}
}

func defaultServer() *ServerPrefs {
	return &ServerPrefs{Host: "", Port: 8787, Advertise: true}
}

func defaultResolver() *ResolverPrefs {
	return &ResolverPrefs{CacheTTL: 5 * time.Minute, CacheEntries: 512, ClientTimeout: 5 * time.Second}
}

func defaultPreferences() *Preferences {
	return &Preferences{Workspace: "default", ShowRibbons: true, DiscoverTimeout: 3}
}

// applyDefaults fills sections and zero fields missing from a loaded file
func (r *Registry) applyDefaults() {
	if r.Upstreams == nil {
		r.Upstreams = defaultUpstreams()
	} else {
		d := defaultUpstreams()
		if r.Upstreams.API == "" {
			r.Upstreams.API = d.API
		}
		if r.Upstreams.CDN == "" {
			r.Upstreams.CDN = d.CDN
		}
		if r.Upstreams.Telegram == "" {
			r.Upstreams.Telegram = d.Telegram
		}
	}
	if r.Server == nil {
		r.Server = defaultServer()
	} else if r.Server.Port == 0 {
		r.Server.Port = defaultServer().Port
	}
	if r.Resolver == nil {
		r.Resolver = defaultResolver()
	} else {
		d := defaultResolver()
		if r.Resolver.CacheTTL <= 0 {
			r.Resolver.CacheTTL = d.CacheTTL
		}
		if r.Resolver.CacheEntries <= 0 {
			r.Resolver.CacheEntries = d.CacheEntries
		}
		if r.Resolver.ClientTimeout <= 0 {
			r.Resolver.ClientTimeout = d.ClientTimeout
		}
	}
	if r.Preferences == nil {
		r.Preferences = defaultPreferences()
	} else {
		if r.Preferences.Workspace == "" {
			r.Preferences.Workspace = "default"
		}
		if r.Preferences.DiscoverTimeout <= 0 {
			r.Preferences.DiscoverTimeout = defaultPreferences().DiscoverTimeout
		}
	}
}

// Validate checks values that would make the binaries fail later
func (r *Registry) Validate() error {
	if r.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", r.Version, CurrentVersion)
	}
	switch strings.ToLower(r.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log_level %q", r.LogLevel)
	}
	if r.Server != nil && (r.Server.Port < 0 || r.Server.Port > 65535) {
		return fmt.Errorf("invalid server port %d", r.Server.Port)
	}
	for name, base := range map[string]string{
		"api_base":      r.Upstreams.API,
		"cdn_base":      r.Upstreams.CDN,
		"telegram_base": r.Upstreams.Telegram,
	} {
		if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
			return fmt.Errorf("invalid %s %q: must start with http:// or https://", name, base)
		}
	}
	return nil
}

// ListenAddr returns the server listen address
func (r *Registry) ListenAddr() string {
	return fmt.Sprintf("%s:%d", r.Server.Host, r.Server.Port)
}

// SetLogLevel updates the log level
func (r *Registry) SetLogLevel(level string) {
	r.LogLevel = strings.ToLower(level)
}

// SetWorkspace selects the saved grid namespace used by the terminal
// constructor
func (r *Registry) SetWorkspace(name string) {
	r.Preferences.Workspace = name
}
