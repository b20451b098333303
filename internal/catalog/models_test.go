package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestBackdropColors(t *testing.T) {
	var backdrops []Backdrop
	if err := json.Unmarshal([]byte(mockBackdrops), &backdrops); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	tests := []struct {
		name string
		want Colors
	}{
		{name: "Onyx", want: Colors{Center: "#333333", Edge: "#111111", Pattern: "#000000", Text: "#ffffff"}},
		{name: "Ruby", want: Colors{Center: "#e0115f", Edge: "#9b111e", Pattern: "#000000", Text: "#000000"}},
		{name: "Plain", want: Colors{Center: "#000000", Edge: "#000000", Pattern: "#000000", Text: "#000000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ok := FindBackdrop(backdrops, tt.name)
			if !ok {
				t.Fatalf("FindBackdrop(%s) not found", tt.name)
			}
			if got := b.Colors(); got != tt.want {
				t.Errorf("Colors() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNumberToHex(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "#000000"},
		{255, "#0000ff"},
		{16777215, "#ffffff"},
		{-4, "#000000"},
	}
	for _, tt := range tests {
		if got := NumberToHex(tt.in); got != tt.want {
			t.Errorf("NumberToHex(%d) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestAttributeUnmarshalMixed(t *testing.T) {
	var attrs []Attribute
	if err := json.Unmarshal([]byte(`["Stripes", {"name":"Dots","rarityPermille":3}, {"name":""}]`), &attrs); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(attrs) != 3 {
		t.Fatalf("len = %d, want 3", len(attrs))
	}
	if attrs[1].RarityPermille != 3 {
		t.Errorf("RarityPermille = %d, want 3", attrs[1].RarityPermille)
	}
	if names := Names(attrs); len(names) != 2 {
		t.Errorf("Names() = %v, want blanks skipped", names)
	}
	if _, ok := FindAttribute(attrs, "Dots"); !ok {
		t.Error("FindAttribute(Dots) not found")
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
		notFound  bool
		short     string
	}{
		{name: "404", err: NewHTTPError(http.StatusNotFound, "/models/x"), notFound: true, short: "not in catalog"},
		{name: "502", err: NewHTTPError(http.StatusBadGateway, "/gifts"), retryable: true, short: "catalog error (HTTP 502)"},
		{name: "429", err: NewHTTPError(http.StatusTooManyRequests, "/gifts"), retryable: true, short: "catalog error (HTTP 429)"},
		{name: "400", err: NewHTTPError(http.StatusBadRequest, "/gifts"), short: "catalog error (HTTP 400)"},
		{name: "parse", err: NewParseError("bad", errors.New("eof")), short: "unexpected catalog response"},
		{name: "network", err: NewNetworkError("down", errors.New("reset")), retryable: true, short: "catalog unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.retryable)
			}
			if got := IsNotFound(tt.err); got != tt.notFound {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.notFound)
			}
			if got := GetShortErrorMessage(tt.err); got != tt.short {
				t.Errorf("GetShortErrorMessage() = %q, want %q", got, tt.short)
			}
			if GetTroubleshootingHint(tt.err) == "" {
				t.Error("GetTroubleshootingHint() is empty")
			}
		})
	}
}
