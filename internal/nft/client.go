package nft

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/muurk/giftgrid/internal/catalog"
	"github.com/muurk/giftgrid/internal/resolver"
	"github.com/muurk/giftgrid/internal/urls"
	"github.com/muurk/giftgrid/internal/version"
)

const (
	// DefaultTimeout bounds one page fetch
	DefaultTimeout = 12 * time.Second

	// DefaultTTL is how long resolved collectibles are kept
	DefaultTTL = 15 * time.Minute

	// maxPageSize caps how much of a page is read
	maxPageSize = 2 << 20

	// supplyProbes is how many collectible numbers SupplyFor tries
	supplyProbes = 10
)

// Client resolves collectibles from their public pages
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	cache      *resolver.Cache
}

// NewClient creates a client for the public collectible pages. cache may be
// nil, in which case a private DefaultTTL cache is used.
func NewClient(baseURL string, cache *resolver.Cache) *Client {
	if baseURL == "" {
		baseURL = urls.TelegramNFT
	}
	if cache == nil {
		cache = resolver.NewCache(DefaultTTL)
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/") + "/",
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		cache:      cache,
	}
}

// Resolve returns the collectible behind slug, e.g. "PlushPepe-42"
func (c *Client) Resolve(ctx context.Context, slug string) (Gift, error) {
	slug = NormalizeSlug(slug)
	if _, _, err := ParseSlug(slug); err != nil {
		return Gift{}, err
	}
	v, err := c.cache.Do(ctx, "nft/"+slug, func(ctx context.Context) (any, error) {
		body, err := c.fetch(ctx, slug)
		if err != nil {
			return nil, err
		}
		return Parse(body, slug)
	})
	if err != nil {
		return Gift{}, err
	}
	return v.(Gift), nil
}

// Supply reports how many collectibles of a gift were issued out of the
// total, read from the first existing page among its low numbers
type Supply struct {
	Slug   string `json:"slug"`
	Gift   string `json:"gift"`
	Issued int    `json:"issued"`
	Total  int    `json:"total"`
}

// SupplyFor probes the first collectible pages of gift for its supply
func (c *Client) SupplyFor(ctx context.Context, gift string) (Supply, error) {
	base := GiftSlug(gift)
	if base == "" {
		return Supply{}, fmt.Errorf("invalid gift %q", gift)
	}
	for n := 1; n <= supplyProbes; n++ {
		if err := ctx.Err(); err != nil {
			return Supply{}, err
		}
		g, err := c.Resolve(ctx, fmt.Sprintf("%s-%d", base, n))
		if err != nil {
			continue
		}
		if g.AvailabilityIssued > 0 && g.AvailabilityTotal > 0 {
			return Supply{Slug: base, Gift: gift, Issued: g.AvailabilityIssued, Total: g.AvailabilityTotal}, nil
		}
	}
	return Supply{}, fmt.Errorf("no supply found for %s", gift)
}

// GiftSlug turns a gift name into its slug form: "Plush Pepe" -> "PlushPepe"
func GiftSlug(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (c *Client) fetch(ctx context.Context, slug string) (string, error) {
	target := c.BaseURL + url.PathEscape(slug)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "text/html")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", catalog.ClassifyNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return "", catalog.NewHTTPError(resp.StatusCode, target)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return "", catalog.NewNetworkError("failed to read page", err)
	}
	return string(body), nil
}
