package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/muurk/giftgrid/internal/catalog"
	"github.com/muurk/giftgrid/internal/config"
	"github.com/muurk/giftgrid/internal/constructor"
	"github.com/muurk/giftgrid/internal/discovery"
	"github.com/muurk/giftgrid/internal/grid"
	"github.com/muurk/giftgrid/internal/logging"
	"github.com/muurk/giftgrid/internal/nft"
	"github.com/muurk/giftgrid/internal/persist"
	"github.com/muurk/giftgrid/internal/resolver"
	"github.com/muurk/giftgrid/internal/tui"
	"github.com/muurk/giftgrid/internal/ui"
	"github.com/muurk/giftgrid/internal/urls"
)

// Command flags
var (
	workspaceName string
	serverAddr    string
	configPath    string
	logLevel      string
	discover      bool

	outputFormat string
	cellID       string
	assumeYes    bool
	scanTimeout  int
	scanFirst    bool
	warmGifts    []string
	warmAll      bool
	assetModel   string
	assetPattern string
	assetDir     string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspaceName, "workspace", "w", "", "Saved grid to use (default from config)")
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "", "giftgrid-server address, host[:port] (skips discovery)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default per-OS location)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); empty = silent")
	rootCmd.Flags().BoolVar(&discover, "discover", false, "Look for a giftgrid server on the network first")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(warmCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(nftCmd)
	rootCmd.AddCommand(assetsCmd)
	rootCmd.AddCommand(configCmd)
}

// setup loads the configuration, applies command line overrides and
// starts logging
func setup() (*config.Registry, error) {
	var reg *config.Registry
	var err error
	if configPath != "" {
		reg, err = config.LoadFile(configPath)
	} else {
		reg, err = config.LoadRegistry()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if workspaceName != "" {
		reg.SetWorkspace(workspaceName)
	}
	if logLevel != "" {
		reg.SetLogLevel(logLevel)
	}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := logging.Initialize(reg.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return reg, nil
}

// serverFromFlag returns the server named by --server, or nil
func serverFromFlag() (*discovery.Server, error) {
	if serverAddr == "" {
		return nil, nil
	}
	srv, err := tui.ParseServerAddress(serverAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid --server: %w", err)
	}
	return srv, nil
}

// backends builds the catalog resolver and the collectible client, going
// through server when one is given
func backends(reg *config.Registry, server *discovery.Server) (*resolver.Resolver, *nft.Client) {
	tgBase := reg.Upstreams.Telegram
	if server != nil {
		tgBase = server.TelegramBase()
	}
	cache := resolver.NewCache(reg.Resolver.CacheTTL, resolver.WithMaxEntries(reg.Resolver.CacheEntries))
	return resolver.New(catalogClient(reg, server), resolver.WithCache(cache)), nft.NewClient(tgBase, cache)
}

func catalogClient(reg *config.Registry, server *discovery.Server) *catalog.Client {
	apiBase, cdnBase := reg.Upstreams.API, reg.Upstreams.CDN
	if server != nil {
		apiBase, cdnBase = server.APIBase(), server.CDNBase()
	}
	client := catalog.NewClientWithURLs(apiBase, cdnBase)
	client.SetTimeout(reg.Resolver.ClientTimeout)
	return client
}

// openWorkspace opens the configured saved grid
func openWorkspace(reg *config.Registry, server *discovery.Server) (*constructor.Workspace, error) {
	dir, err := reg.StoreDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate store: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store directory %s is not writable: %w", dir, err)
	}

	res, nftClient := backends(reg, server)
	name := reg.Preferences.Workspace
	return constructor.New(constructor.Config{
		ID:       name,
		Resolver: res,
		Gateway:  persist.NewGateway(persist.NewDiskKV(dir), name),
		NFT:      nftClient,
	}), nil
}

func troubleshoot(err error) []string {
	tips := []string{catalog.GetTroubleshootingHint(err)}
	if catalog.IsNetworkError(err) {
		tips = append(tips,
			"Check your network connection",
			"Use --server to go through a giftgrid-server on your network",
		)
	}
	return append(tips, "See "+urls.TroubleshootingGuide)
}

func runEditor(cmd *cobra.Command, args []string) error {
	reg, err := setup()
	if err != nil {
		return err
	}
	server, err := serverFromFlag()
	if err != nil {
		return err
	}

	prefs := reg.Preferences
	opts := tui.Options{
		Workspace:   prefs.Workspace,
		ShowRibbons: prefs.ShowRibbons,
		Discover:    server == nil && (discover || prefs.AutoDiscover),
		ScanTimeout: time.Duration(prefs.DiscoverTimeout) * time.Second,
		AutoSave:    prefs.AutoSave,
		Open: func(chosen *discovery.Server) (*constructor.Workspace, error) {
			if chosen == nil {
				chosen = server
			}
			return openWorkspace(reg, chosen)
		},
	}
	return tui.Run(opts)
}

// showCmd prints the saved grid
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved grid",
	Long: `Print the saved grid of the current workspace without opening the editor.

Cells are drawn as tiles by default. The table and json formats are meant
for scripting.`,
	Example: `  # Show the default workspace
  giftgrid show

  # Show another workspace as a table
  giftgrid show --workspace wall --format table

  # Show one cell
  giftgrid show --cell c5

  # JSON output for scripting
  giftgrid show --format json`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&outputFormat, "format", "tiles", "Output format (tiles, table, json)")
	showCmd.Flags().StringVar(&cellID, "cell", "", "Show a single cell by id")
}

func runShow(cmd *cobra.Command, args []string) error {
	reg, err := setup()
	if err != nil {
		return err
	}
	ws, err := openWorkspace(reg, nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	g := ws.Snapshot()
	if cellID != "" {
		c, ok := g.Find(grid.CellID(cellID))
		if !ok {
			return fmt.Errorf("%w: %s", constructor.ErrUnknownCell, cellID)
		}
		fmt.Print(grid.FormatCell(c))
		return nil
	}

	switch outputFormat {
	case "table":
		fmt.Print(g.FormatTable())
	case "json":
		data, err := json.MarshalIndent(g, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
	case "tiles":
		fallthrough
	default:
		p := ui.NewPrinter(os.Stdout)
		p.PrintHeader("Grid", "giftgrid show", map[string]string{"Workspace": ws.ID()})
		p.PrintGrid(g, ui.GridOptions{ShowRibbon: reg.Preferences.ShowRibbons})
		p.Newline()
		if !ws.Restored() {
			p.PrintWarning("No saved grid yet", map[string]string{
				"Workspace": ws.ID(),
				"Showing":   g.Summary(),
			})
			return nil
		}
		p.Println(g.Summary())
	}
	return nil
}

// resetCmd wipes the saved grid
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the saved grid",
	Long: `Clear every cell, restore the default grid size and delete the saved
copy of the workspace.

You are asked to type RESET before anything is changed.`,
	Example: `  # Reset the default workspace
  giftgrid reset

  # Reset without asking (for scripts)
  giftgrid reset --workspace scratch --yes`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runReset(cmd *cobra.Command, args []string) error {
	reg, err := setup()
	if err != nil {
		return err
	}
	ws, err := openWorkspace(reg, nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	if !assumeYes && !ui.FullResetConfirmation(ws.ID()).Ask(os.Stdin, os.Stdout) {
		return nil
	}

	if err := ws.FullReset(true); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	ui.NewPrinter(os.Stdout).PrintSuccess("Grid reset", map[string]string{
		"Workspace": ws.ID(),
		"Grid":      ws.Snapshot().Summary(),
	})
	return nil
}

// warmCmd loads catalog data ahead of time
var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Check the catalog and load choice lists",
	Long: `Fetch the gift list, the backdrop table and the gift id table, then the
model, backdrop and pattern lists of the selected gifts.

Useful to check connectivity to the catalog, directly or through a server.`,
	Example: `  # Check the catalog
  giftgrid warm

  # Load the choices of two gifts
  giftgrid warm --gift "Plush Pepe" --gift "Desk Calendar"

  # Load everything through a server
  giftgrid warm --all --server studio.local`,
	RunE: runWarm,
}

func init() {
	warmCmd.Flags().StringArrayVar(&warmGifts, "gift", nil, "Gift whose choice lists to load (repeatable)")
	warmCmd.Flags().BoolVar(&warmAll, "all", false, "Load the choice lists of every gift")
}

func runWarm(cmd *cobra.Command, args []string) error {
	reg, err := setup()
	if err != nil {
		return err
	}
	server, err := serverFromFlag()
	if err != nil {
		return err
	}
	res, _ := backends(reg, server)

	params := map[string]string{"API": reg.Upstreams.API}
	if server != nil {
		params = map[string]string{"Server": server.BaseURL()}
	}

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   "Catalog warm-up",
		Command: "giftgrid warm",
		Params:  params,
		StepNames: []string{
			"Load gift list",
			"Load backdrops",
			"Load gift id table",
			"Load choice lists",
		},
		Troubleshooting: troubleshoot,
	})

	_, err = runner.Run(func(onStep ui.StepCallback) (map[string]string, error) {
		return warm(cmd.Context(), res, onStep)
	})
	return err
}

func warm(ctx context.Context, res *resolver.Resolver, onStep ui.StepCallback) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	onStep(1, ui.StepRunning, "")
	gifts, err := res.Gifts(ctx)
	if err != nil {
		onStep(1, ui.StepFailed, catalog.GetShortErrorMessage(err))
		return nil, err
	}
	onStep(1, ui.StepComplete, fmt.Sprintf("%d gifts", len(gifts)))

	onStep(2, ui.StepRunning, "")
	backdrops, err := res.AllBackdrops(ctx)
	if err != nil {
		onStep(2, ui.StepFailed, catalog.GetShortErrorMessage(err))
		return nil, err
	}
	onStep(2, ui.StepComplete, fmt.Sprintf("%d backdrops", len(backdrops)))

	// The id table only maps numeric ids in imported data
	onStep(3, ui.StepRunning, "")
	if ids, err := res.IDToName(ctx); err != nil {
		onStep(3, ui.StepSkipped, catalog.GetShortErrorMessage(err))
	} else {
		onStep(3, ui.StepComplete, fmt.Sprintf("%d ids", len(ids)))
	}

	targets := warmGifts
	if warmAll {
		targets = gifts
	}
	for _, g := range targets {
		if !slices.Contains(gifts, g) {
			onStep(4, ui.StepFailed, "unknown gift "+strconv.Quote(g))
			return nil, fmt.Errorf("%w: %s", constructor.ErrUnknownGift, g)
		}
	}
	if len(targets) == 0 {
		onStep(4, ui.StepSkipped, "use --gift or --all")
	} else {
		onStep(4, ui.StepRunning, "")
		failed := 0
		for _, g := range targets {
			opts := res.OptionsFor(ctx, g)
			if opts.ModelsErr != nil || opts.BackdropsErr != nil || opts.PatternsErr != nil {
				failed++
			}
		}
		msg := fmt.Sprintf("%d gifts", len(targets))
		if failed > 0 {
			msg += fmt.Sprintf(", %d incomplete", failed)
		}
		onStep(4, ui.StepComplete, msg)
	}

	return map[string]string{
		"Gifts":          strconv.Itoa(len(gifts)),
		"Backdrops":      strconv.Itoa(len(backdrops)),
		"Cached entries": strconv.Itoa(res.Cache().Len()),
	}, nil
}

// discoverCmd lists giftgrid servers on the network
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find giftgrid servers on the network",
	Long: `Find giftgrid-server instances using mDNS/DNS-SD discovery.

A server proxies the catalog for machines that cannot reach it directly.`,
	Example: `  # Scan for 3 seconds (default)
  giftgrid discover

  # Longer scan for busy networks
  giftgrid discover --timeout 10

  # Edit through the first server found
  giftgrid --server "$(giftgrid discover --first)"`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&scanTimeout, "timeout", int(discovery.DefaultScanTimeout/time.Second), "Scan timeout in seconds")
	discoverCmd.Flags().BoolVar(&scanFirst, "first", false, "Print only the address of the first server that answers")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if _, err := setup(); err != nil {
		return err
	}
	timeout := time.Duration(scanTimeout) * time.Second

	if scanFirst {
		scanner := discovery.NewScanner()
		scanner.Timeout = timeout
		srv, err := scanner.First(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(net.JoinHostPort(srv.IP, strconv.Itoa(srv.Port)))
		return nil
	}

	p := ui.NewPrinter(os.Stdout)
	p.PrintPleaseWait("Scanning for giftgrid servers", timeout.String())
	p.Newline()

	servers, err := discovery.Scan(cmd.Context(), timeout)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(servers) == 0 {
		fmt.Println("No servers found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure giftgrid-server is running with advertising enabled")
		fmt.Println("  - Check that both machines are on the same network")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Use --server to give the address manually if discovery fails")
		return nil
	}

	fmt.Printf("Found %d server(s):\n\n", len(servers))
	for i, srv := range servers {
		fmt.Printf("%d. %s\n", i+1, srv.Instance)
		fmt.Printf("   Address: %s\n", srv.BaseURL())
		if srv.Version != "" {
			fmt.Printf("   Version: %s\n", srv.Version)
		}
		fmt.Println()
	}

	fmt.Println("Use 'giftgrid --server <host:port>' to edit through a server")
	return nil
}

// nftCmd looks up one collectible
var nftCmd = &cobra.Command{
	Use:   "nft <slug-or-link>",
	Short: "Look up a collectible gift",
	Long: `Resolve a collectible from its public page and print its gift, model,
backdrop, pattern and supply.`,
	Example: `  giftgrid nft PlushPepe-42
  giftgrid nft https://t.me/nft/DeskCalendar-7`,
	Args: cobra.ExactArgs(1),
	RunE: runNFT,
}

func runNFT(cmd *cobra.Command, args []string) error {
	reg, err := setup()
	if err != nil {
		return err
	}
	server, err := serverFromFlag()
	if err != nil {
		return err
	}
	_, client := backends(reg, server)

	ctx, cancel := context.WithTimeout(cmd.Context(), nft.DefaultTimeout)
	defer cancel()

	p := ui.NewPrinter(os.Stdout)
	gift, err := client.Resolve(ctx, args[0])
	if err != nil {
		p.PrintError("Collectible lookup failed", err, troubleshoot(err))
		return err
	}

	details := map[string]string{
		"Gift":     gift.Gift,
		"Number":   "#" + strconv.Itoa(gift.Number),
		"Model":    orDash(gift.Model),
		"Backdrop": orDash(gift.Backdrop),
		"Pattern":  orDash(gift.Pattern),
	}
	if gift.Owner != "" {
		details["Owner"] = gift.Owner
	}
	if gift.AvailabilityTotal > 0 {
		details["Supply"] = fmt.Sprintf("%d of %d", gift.AvailabilityIssued, gift.AvailabilityTotal)
	}
	p.PrintSuccess(gift.Slug, details)
	return nil
}

// assetsCmd locates or downloads the artwork of a gift
var assetsCmd = &cobra.Command{
	Use:   "assets <gift>",
	Short: "Show or download gift artwork",
	Long: `Print the CDN addresses of a gift's model animation and pattern image.

With --out the files are downloaded into the given directory.`,
	Example: `  # Original animation of a gift
  giftgrid assets "Desk Calendar"

  # Download a model animation and a pattern image
  giftgrid assets "Plush Pepe" --model "Cozy Frog" --pattern Stars --out ./art`,
	Args: cobra.ExactArgs(1),
	RunE: runAssets,
}

func init() {
	assetsCmd.Flags().StringVar(&assetModel, "model", "", "Model name (default: the original animation)")
	assetsCmd.Flags().StringVar(&assetPattern, "pattern", "", "Pattern name")
	assetsCmd.Flags().StringVarP(&assetDir, "out", "o", "", "Download into this directory")
}

func runAssets(cmd *cobra.Command, args []string) error {
	reg, err := setup()
	if err != nil {
		return err
	}
	server, err := serverFromFlag()
	if err != nil {
		return err
	}
	client := catalogClient(reg, server)
	gift := args[0]

	details := map[string]string{"Animation": client.ModelAnimationURL(gift, assetModel)}
	if assetPattern != "" {
		details["Pattern"] = client.PatternImageURL(gift, assetPattern)
	}

	p := ui.NewPrinter(os.Stdout)
	if assetDir == "" {
		p.PrintSuccess(gift, details)
		return nil
	}

	if err := os.MkdirAll(assetDir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", assetDir, err)
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	model := assetModel
	if model == "" {
		model = "Original"
	}
	anim, err := client.ModelAnimation(ctx, gift, assetModel)
	if err != nil {
		p.PrintError("Download failed", err, troubleshoot(err))
		return err
	}
	animPath := filepath.Join(assetDir, gift+" - "+model+".json")
	if err := os.WriteFile(animPath, anim, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", animPath, err)
	}
	details["Animation"] = animPath

	if assetPattern != "" {
		img, err := client.PatternImage(ctx, gift, assetPattern)
		if err != nil {
			p.PrintError("Download failed", err, troubleshoot(err))
			return err
		}
		imgPath := filepath.Join(assetDir, gift+" - "+assetPattern+".png")
		if err := os.WriteFile(imgPath, img, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", imgPath, err)
		}
		details["Pattern"] = imgPath
	}

	p.PrintSuccess("Downloaded "+gift, details)
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// configCmd manages the configuration file
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with every default",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.CreateDefaultConfig()
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := setup()
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(reg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
}
