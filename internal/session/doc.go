// Package session implements the editing session: the working copy of the
// one cell being edited and the rules for turning edits into grid commands.
//
// The session never holds a reference to the grid. Each operation returns
// the Apply or Reset commands the owner must run through a grid.Mutator:
//
//	s := session.New(clipboard)
//	s.Open(cell)
//	cmds, _ := s.Edit(session.FieldGift, "Desk Calendar")
//	for _, cmd := range cmds { ... }
//
// Choice lists arrive asynchronously. Pending reports the lookup the session
// is waiting for and OptionsResolved delivers it; resolutions for a cell or
// gift that is no longer being edited are dropped.
package session
