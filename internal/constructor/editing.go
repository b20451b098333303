package constructor

import (
	"context"

	"go.uber.org/zap"

	"github.com/muurk/giftgrid/internal/grid"
	"github.com/muurk/giftgrid/internal/logging"
	"github.com/muurk/giftgrid/internal/nft"
	"github.com/muurk/giftgrid/internal/session"
)

// Open starts editing a cell, replacing any open session
func (w *Workspace) Open(id grid.CellID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed() {
		return ErrClosed
	}
	if w.ref == nil {
		return ErrNotReady
	}
	cell, ok := w.store.Find(id)
	if !ok {
		return ErrUnknownCell
	}
	w.session.Open(cell)
	w.afterSessionLocked(nil)
	return nil
}

// OpenAt starts editing the cell at (row, col)
func (w *Workspace) OpenAt(row, col int) error {
	cell, err := w.store.Get(row, col)
	if err != nil {
		return err
	}
	return w.Open(cell.ID)
}

// Edit sets one field of the working copy
func (w *Workspace) Edit(field session.Field, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if field == session.FieldGift {
		if err := w.checkGiftLocked(value); err != nil {
			return err
		}
	}
	cmds, err := w.session.Edit(field, value)
	if err != nil {
		return err
	}
	w.afterSessionLocked(cmds)
	return nil
}

// SetAll replaces the whole working copy
func (w *Workspace) SetAll(attrs grid.Attributes) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkGiftLocked(attrs.Gift); err != nil {
		return err
	}
	cmds, err := w.session.SetAll(attrs)
	if err != nil {
		return err
	}
	w.afterSessionLocked(cmds)
	return nil
}

// Copy puts the working copy on the clipboard
func (w *Workspace) Copy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	ok := w.session.CopyToClipboard()
	if ok {
		w.publishSessionLocked()
	}
	return ok
}

// Paste bulk-sets the working copy from the clipboard
func (w *Workspace) Paste() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	cmds, ok := w.session.PasteFromClipboard()
	if ok {
		w.afterSessionLocked(cmds)
	}
	return ok
}

// CopyPrevious bulk-sets the working copy from the first other filled cell
func (w *Workspace) CopyPrevious() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	cmds, ok := w.session.CopyFrom(w.store.Snapshot())
	if ok {
		w.afterSessionLocked(cmds)
	}
	return ok
}

// CloseSession ends editing. Edits were applied as they were made.
func (w *Workspace) CloseSession() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.session.Close()
	w.publishSessionLocked()
}

// ResetAndClose clears the edited cell and ends editing
func (w *Workspace) ResetAndClose() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	cmds, err := w.session.ResetAndClose()
	if err != nil {
		return err
	}
	w.afterSessionLocked(cmds)
	return nil
}

// SessionView returns the editing session as seen by a renderer
func (w *Workspace) SessionView() session.View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session.View(w.store.Snapshot())
}

// ImportNFT fills the working copy from a collectible page. The lookup runs
// without holding the workspace; if the edited cell changed meanwhile the
// result is not applied.
func (w *Workspace) ImportNFT(ctx context.Context, slug string) (nft.Gift, error) {
	if w.nft == nil {
		return nft.Gift{}, ErrNoNFT
	}

	w.mu.Lock()
	if w.session.State() != session.Open {
		w.mu.Unlock()
		return nft.Gift{}, session.ErrNotOpen
	}
	cell := w.session.CellID()
	w.mu.Unlock()

	g, err := w.nft.Resolve(ctx, slug)
	if err != nil {
		return nft.Gift{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session.State() != session.Open || w.session.CellID() != cell {
		return g, ErrSessionChanged
	}
	if err := w.checkGiftLocked(g.Gift); err != nil {
		return g, err
	}
	cmds, err := w.session.SetAll(g.Attributes())
	if err != nil {
		return g, err
	}
	w.afterSessionLocked(cmds)
	return g, nil
}

// afterSessionLocked runs the commands a session operation produced,
// starts any lookup the session now waits for and publishes its new view
func (w *Workspace) afterSessionLocked(cmds []session.Command) {
	w.runLocked(cmds)
	w.requestOptionsLocked()
	w.publishSessionLocked()
}

func (w *Workspace) runLocked(cmds []session.Command) {
	for _, cmd := range cmds {
		switch c := cmd.(type) {
		case session.Apply:
			w.mutator.ApplyAttributes(c.CellID, c.Attrs)
		case session.Reset:
			w.mutator.ResetCell(c.CellID)
		}
	}
}

func (w *Workspace) publishSessionLocked() {
	v := w.session.View(w.store.Snapshot())
	w.publish(Event{Kind: EventSession, Session: &v})
}

// requestOptionsLocked starts the lookup the session waits for, once per
// request
func (w *Workspace) requestOptionsLocked() {
	req, ok := w.session.Pending()
	if !ok || w.inflight[req] || w.closed() {
		return
	}
	w.inflight[req] = true

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ctx, cancel := context.WithTimeout(w.ctx, w.timeout)
		opts := w.resolver.OptionsFor(ctx, req.Gift)
		cancel()
		w.deliver(session.Resolution{Request: req, Options: opts})
	}()
}

// deliver hands a finished lookup to the session. Answers for a cell or
// gift no longer being edited are dropped.
func (w *Workspace) deliver(res session.Resolution) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inflight, res.Request)
	if w.closed() {
		return
	}

	cmds, ok := w.session.OptionsResolved(res)
	if !ok {
		logging.Debug("Discarding stale options",
			zap.String("workspace", w.id),
			zap.String("cell", string(res.CellID)),
			zap.String("gift", res.Gift),
		)
		return
	}
	w.runLocked(cmds)
	w.publishSessionLocked()
}

// syncSessionLocked follows the edited cell after a structural change:
// the session closes when its cell is gone and reloads when the cell's
// content moved
func (w *Workspace) syncSessionLocked() {
	if w.session.State() != session.Open {
		return
	}
	cell, ok := w.store.Find(w.session.CellID())
	if !ok {
		w.session.Close()
	} else {
		w.session.Open(cell)
		w.requestOptionsLocked()
	}
	w.publishSessionLocked()
}
