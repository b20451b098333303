package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/muurk/giftgrid/internal/urls"
	"github.com/muurk/giftgrid/internal/version"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 5 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for failed requests
	DefaultMaxRetries = 2

	// DefaultRetryDelay is the default delay between retry attempts
	DefaultRetryDelay = 300 * time.Millisecond

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 5 * time.Second

	// maxBodySize caps how much of a response is read into memory
	maxBodySize = 16 << 20
)

// Client talks to the catalog API host and the asset CDN
type Client struct {
	// APIBase is the base URL of the catalog API (e.g., "https://api.changes.tg")
	APIBase string

	// CDNBase is the base URL of the asset CDN (e.g., "https://cdn.changes.tg")
	CDNBase string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// MaxRetries is the maximum number of retry attempts for failed requests
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts
	RetryDelay time.Duration

	// MaxRetryDelay is the maximum delay for exponential backoff
	MaxRetryDelay time.Duration

	// UseExponentialBackoff enables exponential backoff for retries
	UseExponentialBackoff bool
}

// NewClient creates a client for the public catalog hosts
func NewClient() *Client {
	return NewClientWithURLs(urls.CatalogAPI, urls.CatalogCDN)
}

// NewClientWithURLs creates a client for custom hosts, such as a giftgrid
// server acting as proxy ("http://host:8080/api", "http://host:8080/cdn")
func NewClientWithURLs(apiBase, cdnBase string) *Client {
	return &Client{
		APIBase:               strings.TrimRight(apiBase, "/"),
		CDNBase:               strings.TrimRight(cdnBase, "/"),
		HTTPClient:            &http.Client{Timeout: DefaultTimeout},
		MaxRetries:            DefaultMaxRetries,
		RetryDelay:            DefaultRetryDelay,
		MaxRetryDelay:         DefaultMaxRetryDelay,
		UseExponentialBackoff: true,
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// SetRetry configures retry behavior
func (c *Client) SetRetry(maxRetries int, retryDelay time.Duration) {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
}

// Ping checks that the catalog API answers
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.fetchAttempt(ctx, c.APIBase+"/gifts")
	return err
}

// Gifts returns every gift name
func (c *Client) Gifts(ctx context.Context) ([]string, error) {
	var names []Attribute
	if err := c.getJSON(ctx, c.apiURL("gifts"), &names); err != nil {
		return nil, err
	}
	return Names(names), nil
}

// Backdrops returns every backdrop with its colors, sorted ascending
func (c *Client) Backdrops(ctx context.Context) ([]Backdrop, error) {
	var out []Backdrop
	if err := c.getJSON(ctx, c.apiURL("backdrops")+"?sort=asc", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BackdropsFor returns the backdrops available for gift, with rarity
func (c *Client) BackdropsFor(ctx context.Context, gift string) ([]Backdrop, error) {
	var out []Backdrop
	if err := c.getJSON(ctx, c.apiURL("backdrops", gift), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ModelsFor returns the models available for gift, with rarity
func (c *Client) ModelsFor(ctx context.Context, gift string) ([]Attribute, error) {
	var out []Attribute
	if err := c.getJSON(ctx, c.apiURL("models", gift), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PatternsFor returns the patterns available for gift, with rarity
func (c *Client) PatternsFor(ctx context.Context, gift string) ([]Attribute, error) {
	var out []Attribute
	if err := c.getJSON(ctx, c.apiURL("patterns", gift), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IDToName returns the table mapping gift ids to gift names
func (c *Client) IDToName(ctx context.Context) (map[string]string, error) {
	out := map[string]string{}
	if err := c.getJSON(ctx, c.cdnURL("gifts", "id-to-name.json"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ModelAnimationURL returns the CDN URL of a model's animation. An empty
// model selects the gift's original animation.
func (c *Client) ModelAnimationURL(gift, model string) string {
	if model == "" {
		model = "Original"
	}
	return c.cdnURL("gifts", "models", gift, "lottie", model+".json")
}

// PatternImageURL returns the CDN URL of a pattern image
func (c *Client) PatternImageURL(gift, pattern string) string {
	return c.cdnURL("gifts", "patterns", gift, "png", pattern+".png")
}

// ModelAnimation downloads a model's animation document
func (c *Client) ModelAnimation(ctx context.Context, gift, model string) ([]byte, error) {
	return c.fetch(ctx, c.ModelAnimationURL(gift, model))
}

// PatternImage downloads a pattern image
func (c *Client) PatternImage(ctx context.Context, gift, pattern string) ([]byte, error) {
	return c.fetch(ctx, c.PatternImageURL(gift, pattern))
}

func (c *Client) apiURL(segments ...string) string {
	return joinURL(c.APIBase, segments...)
}

func (c *Client) cdnURL(segments ...string) string {
	return joinURL(c.CDNBase, segments...)
}

// joinURL escapes every path segment; gift names contain spaces
func joinURL(base string, segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return base + "/" + strings.Join(escaped, "/")
}

// getJSON fetches target and decodes it into v
func (c *Client) getJSON(ctx context.Context, target string, v any) error {
	body, err := c.fetch(ctx, target)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return NewParseError(fmt.Sprintf("failed to parse response from %s", target), err)
	}
	return nil
}

// fetch performs a GET with retries and exponential backoff
func (c *Client) fetch(ctx context.Context, target string) ([]byte, error) {
	var lastErr error
	currentDelay := c.RetryDelay

	// Retry loop with exponential backoff
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, NewNetworkError("request cancelled", ctx.Err())
			case <-time.After(currentDelay):
			}

			// Exponential backoff
			if c.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > c.MaxRetryDelay {
					currentDelay = c.MaxRetryDelay
				}
			}
		}

		body, err := c.fetchAttempt(ctx, target)
		if err == nil {
			return body, nil
		}

		lastErr = err

		// Don't retry non-retryable errors or abandoned requests
		if !IsRetryable(err) || ctx.Err() != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

// fetchAttempt performs a single GET
func (c *Client) fetchAttempt(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, NewNetworkError("failed to create GET request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, NewNetworkError("GET request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewHTTPError(resp.StatusCode, target)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, NewNetworkError("failed to read response body", err)
	}
	return body, nil
}
