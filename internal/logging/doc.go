// Package logging provides structured logging for the giftgrid binaries.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the server and the terminal constructor. It provides
// both general logging functions and domain-specific helpers.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (grid changes, cache hits, upstream timings)
//   - Info: Normal operations (requests, subscribers, startup)
//   - Warn: Non-fatal issues (upstream failures, dropped events)
//   - Error: Fatal issues (startup failures, rejected snapshots)
//
// The level is held in a zap.AtomicLevel, so SetLevel can change it while
// the server runs.
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Workspace created",
//	    zap.String("workspace", id),
//	    zap.Int("rows", g.Rows()),
//	)
//
// # Specialized Logging
//
//	logging.LogConnection(remoteAddr, "subscribed")
//	logging.LogHTTPRequest(remoteAddr, method, path, status, elapsed)
//	logging.LogProxyRequest("api", method, target, status, elapsed, err)
//	logging.LogGridChange("swap", rows, filled)
//	logging.LogResolverFetch("models/Desk Calendar", elapsed, err)
//
// # Configuration
//
//	if err := logging.Initialize("debug"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// When neither a level nor GIFTGRID_LOG_LEVEL is given the logger is a no-op,
// which keeps CLI output and the terminal UI clean.
//
// # Output Format
//
// Logs are written to stderr in console format:
//
//	2026-10-19T10:30:45.123-0800  INFO  HTTP request
//	  remote_addr=192.168.1.100
//	  path=/api/gifts
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
