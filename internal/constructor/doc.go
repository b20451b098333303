// Package constructor ties the grid, the editing session, the attribute
// resolver and persistence into one Workspace.
//
// A Workspace owns a single grid. Structural operations (AddRow,
// RemoveRow, Swap, Drop, ResetCell, FullReset) go through the copy-on-write
// mutator; cell editing goes through the session, whose background lookups
// of models, backdrops and patterns are started and delivered by the
// workspace. Every operation runs under one lock, so a lookup that finishes
// after its cell was closed or changed is dropped rather than applied.
//
// Cell and session edits return ErrNotReady until Preload has fetched the
// gift list and backdrop table. Structural operations work before that.
//
// # Events
//
// Subscribe returns a channel of Events: grid snapshots after each change,
// session views, the delayed "pulse" that follows a grid change, and short
// notices for the user. Slow subscribers miss events; a grid event always
// carries the whole snapshot.
//
// # Usage Example
//
//	ws := constructor.New(constructor.Config{
//	    ID:       "default",
//	    Resolver: resolver.New(catalog.NewClient()),
//	    Gateway:  persist.NewGateway(persist.NewDiskKV(dir), "default"),
//	})
//	defer ws.Close()
//	if err := ws.Preload(ctx); err != nil {
//	    return err
//	}
//	_ = ws.OpenAt(0, 0)
//	_ = ws.Edit(session.FieldGift, "Plush Pepe")
package constructor
