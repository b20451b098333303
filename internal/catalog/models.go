package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Attribute is a named gift attribute (model, pattern or backdrop) with its
// rarity in permille. RarityPermille is 0 when the catalog does not know it.
type Attribute struct {
	Name           string `json:"name"`
	RarityPermille int    `json:"rarityPermille,omitempty"`
}

// BackdropHex carries the backdrop colors as preformatted "#rrggbb" strings
type BackdropHex struct {
	CenterColor  string `json:"centerColor,omitempty"`
	EdgeColor    string `json:"edgeColor,omitempty"`
	PatternColor string `json:"patternColor,omitempty"`
	TextColor    string `json:"textColor,omitempty"`
}

// Backdrop is a backdrop record. The numeric colors are 24-bit RGB values;
// Hex, when present, takes precedence.
type Backdrop struct {
	Attribute
	CenterColor  int         `json:"centerColor,omitempty"`
	EdgeColor    int         `json:"edgeColor,omitempty"`
	PatternColor int         `json:"patternColor,omitempty"`
	TextColor    int         `json:"textColor,omitempty"`
	Hex          BackdropHex `json:"hex,omitempty"`
}

// Colors is the resolved palette of a backdrop
type Colors struct {
	Center  string `json:"center"`
	Edge    string `json:"edge"`
	Pattern string `json:"pattern"`
	Text    string `json:"text"`
}

// Colors resolves the palette, preferring the hex strings and falling back
// to the numeric values
func (b Backdrop) Colors() Colors {
	return Colors{
		Center:  pickColor(b.Hex.CenterColor, b.CenterColor),
		Edge:    pickColor(b.Hex.EdgeColor, b.EdgeColor),
		Pattern: pickColor(b.Hex.PatternColor, b.PatternColor),
		Text:    pickColor(b.Hex.TextColor, b.TextColor),
	}
}

func pickColor(hex string, n int) string {
	if hex != "" {
		return hex
	}
	return NumberToHex(n)
}

// NumberToHex formats a 24-bit RGB value as "#rrggbb"
func NumberToHex(n int) string {
	if n < 0 {
		n = 0
	}
	return fmt.Sprintf("#%06x", n&0xffffff)
}

// UnmarshalJSON accepts either a bare name or a full record
func (a *Attribute) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &a.Name)
	}
	type plain Attribute
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = Attribute(p)
	return nil
}

// UnmarshalJSON accepts either a bare name or a full record
func (b *Backdrop) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*b = Backdrop{}
		return json.Unmarshal(data, &b.Name)
	}
	type plain struct {
		Name           string      `json:"name"`
		RarityPermille int         `json:"rarityPermille"`
		CenterColor    int         `json:"centerColor"`
		EdgeColor      int         `json:"edgeColor"`
		PatternColor   int         `json:"patternColor"`
		TextColor      int         `json:"textColor"`
		Hex            BackdropHex `json:"hex"`
	}
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*b = Backdrop{
		Attribute:    Attribute{Name: p.Name, RarityPermille: p.RarityPermille},
		CenterColor:  p.CenterColor,
		EdgeColor:    p.EdgeColor,
		PatternColor: p.PatternColor,
		TextColor:    p.TextColor,
		Hex:          p.Hex,
	}
	return nil
}

// Names returns the names of attrs in order, skipping blanks
func Names(attrs []Attribute) []string {
	out := make([]string, 0, len(attrs))
	for _, a := range attrs {
		if a.Name != "" {
			out = append(out, a.Name)
		}
	}
	return out
}

// BackdropNames returns the names of backdrops in order, skipping blanks
func BackdropNames(backdrops []Backdrop) []string {
	out := make([]string, 0, len(backdrops))
	for _, b := range backdrops {
		if b.Name != "" {
			out = append(out, b.Name)
		}
	}
	return out
}

// FindBackdrop returns the backdrop named name
func FindBackdrop(backdrops []Backdrop, name string) (Backdrop, bool) {
	for _, b := range backdrops {
		if b.Name == name {
			return b, true
		}
	}
	return Backdrop{}, false
}

// FindAttribute returns the attribute named name
func FindAttribute(attrs []Attribute, name string) (Attribute, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}
