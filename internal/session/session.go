package session

import (
	"errors"
	"fmt"
	"slices"

	"github.com/muurk/giftgrid/internal/grid"
	"github.com/muurk/giftgrid/internal/resolver"
)

// ErrNotOpen is returned by operations that need an open session
var ErrNotOpen = errors.New("no cell is being edited")

// State is the editing session state
type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Field names one of the four assignable attributes
type Field int

const (
	FieldGift Field = iota
	FieldModel
	FieldBackdrop
	FieldPattern
)

// Fields lists every field in form order
var Fields = []Field{FieldGift, FieldModel, FieldBackdrop, FieldPattern}

func (f Field) String() string {
	switch f {
	case FieldGift:
		return "gift"
	case FieldModel:
		return "model"
	case FieldBackdrop:
		return "backdrop"
	case FieldPattern:
		return "pattern"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// ParseField parses a field name
func ParseField(s string) (Field, error) {
	for _, f := range Fields {
		if f.String() == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown field %q", s)
}

// Get returns the value of f in attrs
func (f Field) Get(attrs grid.Attributes) string {
	switch f {
	case FieldGift:
		return attrs.Gift
	case FieldModel:
		return attrs.Model
	case FieldBackdrop:
		return attrs.Backdrop
	case FieldPattern:
		return attrs.Pattern
	}
	return ""
}

func (f Field) set(attrs *grid.Attributes, value string) {
	switch f {
	case FieldGift:
		attrs.Gift = value
	case FieldModel:
		attrs.Model = value
	case FieldBackdrop:
		attrs.Backdrop = value
	case FieldPattern:
		attrs.Pattern = value
	}
}

// Command is an instruction for the grid produced by the session
type Command interface {
	isCommand()
}

// Apply writes Attrs to a cell
type Apply struct {
	CellID grid.CellID
	Attrs  grid.Attributes
}

// Reset clears a cell
type Reset struct {
	CellID grid.CellID
}

func (Apply) isCommand() {}
func (Reset) isCommand() {}

// Request asks for the choice lists of Gift on behalf of the open cell
type Request struct {
	CellID grid.CellID
	Gift   string
}

// Resolution is the answer to a Request
type Resolution struct {
	Request
	Options resolver.Options
}

// Session is the working copy of the cell being edited. It never touches the
// grid itself: every change it wants made is returned as a Command.
//
// Session is not safe for concurrent use; the owner serializes access.
type Session struct {
	clipboard *grid.Clipboard

	state    State
	cell     grid.CellID
	working  grid.Attributes
	options  resolver.Options
	resolved bool
}

// New creates a closed session sharing clipboard
func New(clipboard *grid.Clipboard) *Session {
	if clipboard == nil {
		clipboard = &grid.Clipboard{}
	}
	return &Session{clipboard: clipboard}
}

// Clipboard returns the clipboard the session copies to and pastes from
func (s *Session) Clipboard() *grid.Clipboard {
	return s.clipboard
}

// State returns the current state
func (s *Session) State() State {
	return s.state
}

// CellID returns the cell being edited, or "" when closed
func (s *Session) CellID() grid.CellID {
	return s.cell
}

// Working returns the working copy
func (s *Session) Working() grid.Attributes {
	return s.working
}

// Open starts editing cell. An open session is replaced.
func (s *Session) Open(cell grid.Cell) {
	s.state = Open
	s.cell = cell.ID
	s.working = cell.Attributes
	s.clearOptions()
}

// Pending returns the lookup the session is waiting for, if any
func (s *Session) Pending() (Request, bool) {
	if s.state != Open || !s.working.HasGift() || s.resolved {
		return Request{}, false
	}
	return Request{CellID: s.cell, Gift: s.working.Gift}, true
}

// Edit sets a single field. Choosing a different gift clears model, backdrop
// and pattern. The working copy is applied to the grid once a gift is set and
// either the gift itself changed or a model is chosen.
func (s *Session) Edit(field Field, value string) ([]Command, error) {
	if s.state != Open {
		return nil, ErrNotOpen
	}

	next := s.working
	field.set(&next, value)
	if field == FieldGift && resolver.NeedsDependentReset(s.working.Gift, value) {
		next.Model, next.Backdrop, next.Pattern = "", "", ""
	}
	s.setWorking(next)

	if next.HasGift() && (next.Model != "" || field == FieldGift) {
		return s.apply(), nil
	}
	return nil, nil
}

// SetAll replaces all four fields at once without the dependent reset
func (s *Session) SetAll(attrs grid.Attributes) ([]Command, error) {
	if s.state != Open {
		return nil, ErrNotOpen
	}
	s.setWorking(attrs)
	if attrs.HasGift() {
		return s.apply(), nil
	}
	return nil, nil
}

// CopyToClipboard stores the working copy. Nothing is copied without a gift.
func (s *Session) CopyToClipboard() bool {
	if s.state != Open || !s.working.HasGift() {
		return false
	}
	s.clipboard.Copy(s.working)
	return true
}

// PasteFromClipboard bulk-sets the working copy from the clipboard
func (s *Session) PasteFromClipboard() ([]Command, bool) {
	if s.state != Open || !s.clipboard.HasData() {
		return nil, false
	}
	attrs, _ := s.clipboard.Paste()
	cmds, _ := s.SetAll(attrs)
	return cmds, true
}

// Previous returns the first cell with a gift in reading order, skipping the
// open cell
func (s *Session) Previous(g grid.Grid) (grid.Cell, bool) {
	if s.state != Open {
		return grid.Cell{}, false
	}
	for _, c := range g.Cells() {
		if c.ID != s.cell && c.HasGift() {
			return c, true
		}
	}
	return grid.Cell{}, false
}

// CopyFrom bulk-sets the working copy from the first other filled cell of g
func (s *Session) CopyFrom(g grid.Grid) ([]Command, bool) {
	prev, ok := s.Previous(g)
	if !ok {
		return nil, false
	}
	cmds, _ := s.SetAll(prev.Attributes)
	return cmds, true
}

// OptionsResolved stores the choice lists of a finished lookup. A resolution
// for another cell or an older gift is dropped and reported as false. When
// patterns are known and the working pattern is not one of them, the first
// pattern is selected and applied immediately.
func (s *Session) OptionsResolved(res Resolution) ([]Command, bool) {
	if s.state != Open || res.CellID != s.cell || res.Gift != s.working.Gift || !s.working.HasGift() {
		return nil, false
	}
	s.options = res.Options
	s.resolved = true

	patterns := res.Options.Patterns
	if len(patterns) == 0 || slices.Contains(patterns, s.working.Pattern) {
		return nil, true
	}
	s.working.Pattern = patterns[0]
	return s.apply(), true
}

// Close discards the working copy. Edits were already applied.
func (s *Session) Close() {
	s.state = Closed
	s.cell = ""
	s.working = grid.Attributes{}
	s.clearOptions()
}

// ResetAndClose clears the open cell and closes
func (s *Session) ResetAndClose() ([]Command, error) {
	if s.state != Open {
		return nil, ErrNotOpen
	}
	id := s.cell
	s.Close()
	return []Command{Reset{CellID: id}}, nil
}

// setWorking installs next, dropping resolved options when the gift changed
func (s *Session) setWorking(next grid.Attributes) {
	if next.Gift != s.working.Gift {
		s.clearOptions()
	}
	s.working = next
}

func (s *Session) clearOptions() {
	s.options = resolver.Options{}
	s.resolved = false
}

func (s *Session) apply() []Command {
	return []Command{Apply{CellID: s.cell, Attrs: s.working}}
}
