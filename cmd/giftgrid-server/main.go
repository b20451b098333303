// Giftgrid-server is the catalog proxy and grid API for giftgrid clients.
//
// It forwards catalog and collectible requests for browsers and terminals
// that cannot reach the upstream hosts directly, adding CORS headers, and
// serves grid workspaces over HTTP with a websocket change feed. It can
// announce itself over mDNS so the terminal constructor finds it.
//
// Usage:
//
//	giftgrid-server server [flags]
//
// See 'giftgrid-server server --help' for available options.
package main

import (
	"fmt"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/muurk/giftgrid/internal/config"
	"github.com/muurk/giftgrid/internal/server"
	"github.com/muurk/giftgrid/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "giftgrid-server",
	Short: "Giftgrid Catalog Proxy and Grid Server",
	Long: `A standalone server for giftgrid clients.

It proxies the gift catalog, its asset CDN and the public collectible pages
with permissive CORS headers, and serves grid workspaces over HTTP with a
websocket change feed.

Note: For editing grids in the terminal, use the 'giftgrid' utility.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(versionCmd)
}

// Server command and flags
var (
	configPath   string
	host         string
	port         int
	logLevel     string
	storeDir     string
	memoryStore  bool
	advertise    bool
	instanceName string
	apiBase      string
	cdnBase      string
	telegramBase string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the server",
	Long: `Start the giftgrid server.

Settings come from the configuration file (see 'giftgrid config path');
flags given on the command line take precedence. Grids are saved under the
store directory unless --memory is set.

Changes to log_level in the configuration file apply without a restart.`,
	Example: `  # Start with the configured settings
  giftgrid-server server

  # Custom port with debug logging
  giftgrid-server server --port 9000 --log-level debug

  # Keep grids in memory and stay off mDNS
  giftgrid-server server --memory --advertise=false

  # Use a mirror of the catalog
  giftgrid-server server --api-base https://catalog.example.com`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().StringVar(&configPath, "config", "", "Config file path (default per-OS location)")
	serverCmd.Flags().StringVar(&host, "host", "", "Listen address (empty = all interfaces)")
	serverCmd.Flags().IntVar(&port, "port", 8787, "Server port")
	serverCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	serverCmd.Flags().StringVar(&storeDir, "store-dir", "", "Directory for saved grids (default next to the config file)")
	serverCmd.Flags().BoolVar(&memoryStore, "memory", false, "Keep grids in memory only")
	serverCmd.Flags().BoolVar(&advertise, "advertise", true, "Announce the server over mDNS")
	serverCmd.Flags().StringVar(&instanceName, "name", "", "mDNS instance name (default \"giftgrid on <host>\")")
	serverCmd.Flags().StringVar(&apiBase, "api-base", "", "Catalog API host")
	serverCmd.Flags().StringVar(&cdnBase, "cdn-base", "", "Catalog CDN host")
	serverCmd.Flags().StringVar(&telegramBase, "telegram-base", "", "Collectible page prefix")
}

func runServer(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		p, err := config.GetConfigPath()
		if err != nil {
			return fmt.Errorf("failed to locate config: %w", err)
		}
		path = p
	}
	reg, err := config.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		reg.Server.Host = host
	}
	if flags.Changed("port") {
		reg.Server.Port = port
	}
	if flags.Changed("advertise") {
		reg.Server.Advertise = advertise
	}
	if flags.Changed("store-dir") {
		reg.Server.StoreDir = storeDir
	}
	if flags.Changed("log-level") || reg.LogLevel == "" {
		reg.SetLogLevel(logLevel)
	}
	if apiBase != "" {
		reg.Upstreams.API = apiBase
	}
	if cdnBase != "" {
		reg.Upstreams.CDN = cdnBase
	}
	if telegramBase != "" {
		reg.Upstreams.Telegram = telegramBase
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	dir := ""
	if !memoryStore {
		if dir, err = reg.StoreDir(); err != nil {
			return fmt.Errorf("failed to locate store: %w", err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create store directory: %w", err)
		}
	}

	name := instanceName
	if name == "" {
		name = defaultInstanceName()
	}

	cfg := &server.Config{
		Host:          reg.Server.Host,
		Port:          reg.Server.Port,
		LogLevel:      reg.LogLevel,
		APIBase:       reg.Upstreams.API,
		CDNBase:       reg.Upstreams.CDN,
		TelegramBase:  reg.Upstreams.Telegram,
		StoreDir:      dir,
		CacheTTL:      reg.Resolver.CacheTTL,
		CacheEntries:  reg.Resolver.CacheEntries,
		ClientTimeout: reg.Resolver.ClientTimeout,
		Advertise:     reg.Server.Advertise,
		InstanceName:  name,
		ConfigPath:    path,
	}

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

func defaultInstanceName() string {
	if h, err := os.Hostname(); err == nil && h != "" {
		return "giftgrid on " + h
	}
	if u, err := user.Current(); err == nil {
		return "giftgrid of " + u.Username
	}
	return "giftgrid"
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("giftgrid-server %s (commit: %s)\n", version.Version, version.Commit)
	},
}
