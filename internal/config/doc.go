// Package config provides user configuration management for giftgrid.
//
// This package manages a YAML configuration file shared by the terminal
// constructor and giftgrid-server: upstream catalog hosts, server listen
// settings, resolver cache tuning, the log level and constructor
// preferences. Missing sections and fields fall back to defaults.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/giftgrid/config.yaml or $HOME/.config/giftgrid/config.yaml
//   - macOS: $HOME/.config/giftgrid/config.yaml
//   - Windows: %LOCALAPPDATA%\giftgrid\config.yaml
//
// Saved grids live in a "store" directory next to the file unless
// server.store_dir says otherwise.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	registry.SetWorkspace("office")
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Live Reload
//
// Watch streams a freshly parsed Registry each time the file changes;
// giftgrid-server uses it to apply log level changes without a restart.
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
