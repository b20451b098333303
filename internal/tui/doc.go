// Package tui is the interactive terminal editor for gift grids.
//
// The application starts either on the server picker, which browses
// giftgrid-server instances announced over mDNS, or directly on the grid
// editor. The editor drives a constructor.Workspace: every key press maps to
// one workspace operation, and the screen mirrors the workspace through its
// event feed so background results (attribute choices, rarity ribbons,
// collectible imports) show up as they arrive.
//
// # Keys
//
// On the grid, arrows or hjkl move the cursor, enter opens the cell, space
// picks a cell up and drops it on another (a swap), a and d add and remove
// rows, s saves and R asks for a typed confirmation before a full reset.
// While a cell is open, enter shows the choices for the selected field, c
// and v copy and paste, p copies the previous filled cell and n imports a
// collectible by link or slug.
//
// # Usage Example
//
//	err := tui.Run(tui.Options{
//	    Open:      func(*discovery.Server) (*constructor.Workspace, error) { return ws, nil },
//	    Workspace: "default",
//	})
package tui
