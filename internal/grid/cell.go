package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// CellID is the stable identity of a cell. It is minted once and never
// reused, even when the cell moves to another row.
type CellID string

// Attributes is the four-field tuple that decorates a cell.
// An empty string means "unset".
type Attributes struct {
	Gift     string `json:"gift"`
	Model    string `json:"model"`
	Backdrop string `json:"backdrop"`
	Pattern  string `json:"pattern"`
}

// IsZero reports whether no field is set
func (a Attributes) IsZero() bool {
	return a == Attributes{}
}

// HasGift reports whether the gift is set. Sub-attributes are only
// meaningful when it is.
func (a Attributes) HasGift() bool {
	return a.Gift != ""
}

// String returns a compact human-readable form, e.g. "Desk Calendar / Stripes"
func (a Attributes) String() string {
	if !a.HasGift() {
		return "(empty)"
	}
	parts := []string{a.Gift}
	for _, v := range []string{a.Model, a.Backdrop, a.Pattern} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " / ")
}

// Cell is one slot of the grid.
type Cell struct {
	ID  CellID `json:"id"`
	Row int    `json:"row"`
	Col int    `json:"col"`

	Attributes

	// IsEmpty is derived from the gift and recomputed on every mutation.
	IsEmpty bool `json:"isEmpty"`

	// RibbonText is the rarity label for (gift, backdrop). Empty when the
	// gift is unset or the label has not been resolved yet.
	RibbonText string `json:"ribbonText,omitempty"`
}

// emptyCell returns an unset cell at the given position
func emptyCell(id CellID, row, col int) Cell {
	return Cell{ID: id, Row: row, Col: col, IsEmpty: true}
}

// withAttributes returns a copy of c carrying attrs, with derived fields reset
func (c Cell) withAttributes(attrs Attributes) Cell {
	c.Attributes = attrs
	c.IsEmpty = !attrs.HasGift()
	c.RibbonText = ""
	return c
}

// Sequence mints cell ids. The zero value starts at c1.
type Sequence struct {
	last uint64
}

// NewSequence returns a sequence whose next id follows counter
func NewSequence(counter uint64) *Sequence {
	return &Sequence{last: counter}
}

// Next mints a fresh id
func (s *Sequence) Next() CellID {
	s.last++
	return CellID(fmt.Sprintf("c%d", s.last))
}

// Counter returns the number of the last minted id
func (s *Sequence) Counter() uint64 {
	return s.last
}

// Observe bumps the sequence past every id already present in g, so
// restored grids never collide with newly minted ids.
func (s *Sequence) Observe(g Grid) {
	for _, c := range g.Cells() {
		if n, ok := idNumber(c.ID); ok && n > s.last {
			s.last = n
		}
	}
}

func idNumber(id CellID) (uint64, bool) {
	str := string(id)
	if !strings.HasPrefix(str, "c") {
		return 0, false
	}
	n, err := strconv.ParseUint(str[1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
