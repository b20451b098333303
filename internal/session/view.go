package session

import "github.com/muurk/giftgrid/internal/grid"

// View is a read-only projection of the session for renderers
type View struct {
	State   string          `json:"state"`
	CellID  grid.CellID     `json:"cellId,omitempty"`
	Working grid.Attributes `json:"working"`

	Models    []string `json:"models"`
	Backdrops []string `json:"backdrops"`
	Patterns  []string `json:"patterns"`

	// Loading is true while the choice lists of the working gift are unknown
	Loading bool `json:"loading"`

	// Unavailable marks lists whose lookup failed
	Unavailable map[string]bool `json:"unavailable,omitempty"`

	CanPaste    bool `json:"canPaste"`
	HasPrevious bool `json:"hasPrevious"`
}

// View projects the session. g is used to tell whether a previous filled
// cell exists.
func (s *Session) View(g grid.Grid) View {
	v := View{
		State:     s.state.String(),
		CellID:    s.cell,
		Working:   s.working,
		Models:    []string{},
		Backdrops: []string{},
		Patterns:  []string{},
	}
	if s.state != Open {
		return v
	}

	v.CanPaste = s.clipboard.HasData()
	_, v.HasPrevious = s.Previous(g)

	if !s.working.HasGift() {
		return v
	}
	if !s.resolved {
		v.Loading = true
		return v
	}

	opts := s.options
	v.Models = nonNil(opts.Models)
	v.Backdrops = nonNil(opts.Backdrops)
	v.Patterns = nonNil(opts.Patterns)

	unavailable := map[string]bool{}
	if opts.ModelsErr != nil {
		unavailable[FieldModel.String()] = true
	}
	if opts.BackdropsErr != nil {
		unavailable[FieldBackdrop.String()] = true
	}
	if opts.PatternsErr != nil {
		unavailable[FieldPattern.String()] = true
	}
	if len(unavailable) > 0 {
		v.Unavailable = unavailable
	}
	return v
}

// IsUnavailable reports whether the choice list of f failed to load
func (v View) IsUnavailable(f Field) bool {
	return v.Unavailable[f.String()]
}

// Choices returns the choice list for f. Gift choices come from the catalog
// preload and are not part of the view.
func (v View) Choices(f Field) []string {
	switch f {
	case FieldModel:
		return v.Models
	case FieldBackdrop:
		return v.Backdrops
	case FieldPattern:
		return v.Patterns
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
