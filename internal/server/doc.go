// Package server implements giftgrid-server: a catalog proxy for browser
// clients plus an HTTP API over grid workspaces.
//
// # Routes
//
//	GET  /health                          liveness, version and workspace count
//	ANY  /api/*, /cdn/*, /tg/*, /proxy    catalog passthrough (see package proxy)
//	GET  /v1/nft/resolve?slug=            collectible attributes
//	GET  /v1/gifts/supply?gift=           issued/total supply of a gift
//	GET  /v1/catalog/gifts                every gift name
//	GET  /v1/catalog/options?gift=        model, backdrop and pattern choices
//	GET  /v1/catalog/ribbon?gift=&backdrop=  rarity ribbon and backdrop colors
//	POST /v1/grids                        new workspace
//	GET  /v1/grids/{id}                   grid and session
//	GET  /v1/grids/{id}/events            websocket change feed
//
// plus row, swap, cell, save, reset and session endpoints under
// /v1/grids/{id}. Structural operations that do nothing report
// "changed": false and return the unchanged grid. Cell and session edits
// answer 503 until the workspace's catalog preload has succeeded; each such
// request retries the preload.
//
// # Event Stream
//
// The events endpoint sends JSON text messages shaped like
// constructor.Event: {"type":"grid","change":"swap","grid":[...]},
// {"type":"session",...}, {"type":"pulse"} and {"type":"notice",...}. A
// slow client misses events rather than stalling the workspace; each grid
// event carries the full snapshot, so the next one resynchronizes it.
//
// # Usage Example
//
//	srv, err := server.New(&server.Config{Port: 8787, StoreDir: "/var/lib/giftgrid"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// Start blocks until SIGINT/SIGTERM or a listener error
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Shutdown stops the listener, closes event streams, closes every
// workspace and waits up to 10 seconds for goroutines to finish.
package server
