package nft

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/giftgrid/internal/grid"
)

const tablePage = `<!DOCTYPE html><html><head>
<meta property="og:title" content="Plush Pepe #42">
<meta name="twitter:description" content="Model: Ignored&#10;Backdrop: Ignored">
</head><body><table class="tgme_gift_table">
<tr><th>Owner</th><td><a href="/x">Alice &amp; Bob</a></td></tr>
<tr><th>Model</th><td>Cozy Frog <mark>1.2%</mark></td></tr>
<tr><th>Backdrop</th><td>Onyx Black <mark>2%</mark></td></tr>
<tr><th>Symbol</th><td>Stars <mark>0.5%</mark></td></tr>
<tr><th>Quantity</th><td>14&nbsp;046/14&nbsp;278 issued</td></tr>
</table></body></html>`

const metaOnlyPage = `<html><head>
<meta property="og:title" content="Desk Calendar">
<meta name="twitter:description" content="Model: Neon
Backdrop: Ruby
Symbol: Hearts">
</head><body></body></html>`

func TestParseSlug(t *testing.T) {
	tests := []struct {
		slug    string
		gift    string
		num     int
		wantErr bool
	}{
		{slug: "PlushPepe-42", gift: "PlushPepe", num: 42},
		{slug: " Jelly-Bunny-7 ", gift: "Jelly-Bunny", num: 7},
		{slug: "https://t.me/nft/PlushPepe-42", gift: "PlushPepe", num: 42},
		{slug: "t.me/nft/PlushPepe-42/?start=1", gift: "PlushPepe", num: 42},
		{slug: "PlushPepe", wantErr: true},
		{slug: "PlushPepe-", wantErr: true},
		{slug: "-5", wantErr: true},
		{slug: "PlushPepe-0", wantErr: true},
		{slug: "PlushPepe-x", wantErr: true},
	}
	for _, tt := range tests {
		gift, num, err := ParseSlug(tt.slug)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSlug(%q) error = %v, wantErr %v", tt.slug, err, tt.wantErr)
			continue
		}
		if gift != tt.gift || num != tt.num {
			t.Errorf("ParseSlug(%q) = %q, %d; want %q, %d", tt.slug, gift, num, tt.gift, tt.num)
		}
	}
}

func TestParseTable(t *testing.T) {
	g, err := Parse(tablePage, "PlushPepe-42")
	require.NoError(t, err)

	assert.Equal(t, Gift{
		Slug:               "PlushPepe-42",
		Gift:               "Plush Pepe",
		Number:             42,
		Model:              "Cozy Frog",
		Backdrop:           "Onyx Black",
		Pattern:            "Stars",
		Owner:              "Alice & Bob",
		AvailabilityIssued: 14046,
		AvailabilityTotal:  14278,
	}, g)
	assert.Equal(t, grid.Attributes{Gift: "Plush Pepe", Model: "Cozy Frog", Backdrop: "Onyx Black", Pattern: "Stars"}, g.Attributes())
}

func TestParseDescriptionFallback(t *testing.T) {
	g, err := Parse(metaOnlyPage, "DeskCalendar-3")
	require.NoError(t, err)
	assert.Equal(t, "Desk Calendar", g.Gift)
	assert.Equal(t, "Neon", g.Model)
	assert.Equal(t, "Ruby", g.Backdrop)
	assert.Equal(t, "Hearts", g.Pattern)
}

func TestParseEmptyPage(t *testing.T) {
	_, err := Parse("<html><body>nothing</body></html>", "PlushPepe-1")
	assert.ErrorIs(t, err, ErrNoAttributes)

	_, err = Parse(tablePage, "bad")
	assert.ErrorIs(t, err, ErrInvalidSlug)
}

func TestGiftSlug(t *testing.T) {
	assert.Equal(t, "PlushPepe", GiftSlug("Plush Pepe"))
	assert.Equal(t, "JackintheBox", GiftSlug(" Jack-in-the-Box "))
	assert.Empty(t, GiftSlug("  "))
}

func TestClientResolve(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/nft/PlushPepe-42":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(tablePage))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := NewClient(server.URL+"/nft", nil)
	ctx := context.Background()

	g, err := c.Resolve(ctx, "PlushPepe-42")
	require.NoError(t, err)
	assert.Equal(t, "Cozy Frog", g.Model)

	_, err = c.Resolve(ctx, "PlushPepe-42")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "second resolve is served from cache")

	_, err = c.Resolve(ctx, "PlushPepe-43")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "not found"))

	_, err = c.Resolve(ctx, "nope")
	assert.ErrorIs(t, err, ErrInvalidSlug)
}

func TestClientSupplyFor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/PlushPepe-2" {
			_, _ = w.Write([]byte(tablePage))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	c := NewClient(server.URL, nil)
	s, err := c.SupplyFor(context.Background(), "Plush Pepe")
	require.NoError(t, err)
	assert.Equal(t, Supply{Slug: "PlushPepe", Gift: "Plush Pepe", Issued: 14046, Total: 14278}, s)
}
