package proxy

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/muurk/giftgrid/internal/logging"
	"github.com/muurk/giftgrid/internal/version"
)

// DefaultTimeout bounds one upstream round trip
const DefaultTimeout = 30 * time.Second

// maxBodySize caps forwarded request bodies
const maxBodySize = 1 << 20

// Upstream maps a path prefix onto a remote host
type Upstream struct {
	Name   string // short label used in logs, e.g. "api"
	Prefix string // e.g. "/api"
	Target *url.URL
}

// NewUpstream parses target and builds an Upstream
func NewUpstream(name, prefix, target string) (Upstream, error) {
	u, err := url.Parse(strings.TrimRight(target, "/"))
	if err != nil {
		return Upstream{}, fmt.Errorf("invalid %s upstream %q: %w", name, target, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Upstream{}, fmt.Errorf("invalid %s upstream %q: scheme must be http or https", name, target)
	}
	return Upstream{Name: name, Prefix: "/" + strings.Trim(prefix, "/"), Target: u}, nil
}

// Handler forwards requests to fixed upstream hosts and adds permissive
// cross-origin headers. It never retries or caches.
type Handler struct {
	upstreams []Upstream
	client    *http.Client
}

// New creates a proxy over upstreams
func New(upstreams ...Upstream) *Handler {
	return &Handler{
		upstreams: upstreams,
		client:    &http.Client{Timeout: DefaultTimeout},
	}
}

// SetTimeout changes the upstream timeout
func (h *Handler) SetTimeout(timeout time.Duration) {
	h.client.Timeout = timeout
}

// Upstreams returns the configured upstreams
func (h *Handler) Upstreams() []Upstream {
	return h.upstreams
}

// ErrorBody is the JSON body of proxy failures
type ErrorBody struct {
	Error      string `json:"error"`
	Message    string `json:"message,omitempty"`
	Status     int    `json:"status,omitempty"`
	StatusText string `json:"statusText,omitempty"`
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	SetCORSHeaders(w.Header())
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.URL.Path == "/proxy" {
		h.serveURL(w, r)
		return
	}

	for _, up := range h.upstreams {
		if rest, ok := matchPrefix(r.URL.Path, up.Prefix); ok {
			target := *up.Target
			target.Path = up.Target.Path + rest
			target.RawPath = ""
			target.RawQuery = r.URL.RawQuery
			h.forward(w, r, up.Name, &target)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, ErrorBody{Error: "Not found", Message: "no upstream for " + r.URL.Path})
}

// serveURL forwards to the absolute URL in the "url" query parameter. Only
// hosts of configured upstreams are allowed.
func (h *Handler) serveURL(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, ErrorBody{Error: "URL parameter is required"})
		return
	}
	target, err := url.Parse(raw)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") {
		writeJSON(w, http.StatusBadRequest, ErrorBody{Error: "Invalid URL", Message: raw})
		return
	}
	for _, up := range h.upstreams {
		if strings.EqualFold(target.Host, up.Target.Host) {
			h.forward(w, r, up.Name, target)
			return
		}
	}
	writeJSON(w, http.StatusForbidden, ErrorBody{Error: "Host not allowed", Message: target.Host})
}

// matchPrefix reports whether path is prefix or below it, returning the rest
func matchPrefix(path, prefix string) (string, bool) {
	if path == prefix {
		return "", true
	}
	if strings.HasPrefix(path, prefix+"/") {
		return path[len(prefix):], true
	}
	return "", false
}

func (h *Handler) forward(w http.ResponseWriter, r *http.Request, name string, target *url.URL) {
	start := time.Now()

	var body io.Reader
	if r.Body != nil && r.Method != http.MethodGet && r.Method != http.MethodHead {
		body = io.LimitReader(r.Body, maxBodySize)
	}
	req, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), body)
	if err != nil {
		logging.LogProxyRequest(name, r.Method, target.String(), 0, time.Since(start), err)
		writeJSON(w, http.StatusBadGateway, ErrorBody{Error: "Proxy error", Message: err.Error()})
		return
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", version.UserAgent())
	if ct := r.Header.Get("Content-Type"); ct != "" {
		req.Header.Set("Content-Type", ct)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		logging.LogProxyRequest(name, r.Method, target.String(), 0, time.Since(start), err)
		writeJSON(w, http.StatusBadGateway, ErrorBody{Error: "Proxy error", Message: err.Error()})
		return
	}
	defer resp.Body.Close()

	logging.LogProxyRequest(name, r.Method, target.String(), resp.StatusCode, time.Since(start), nil)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		writeJSON(w, http.StatusBadGateway, ErrorBody{
			Error:      "Failed to fetch data",
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
		})
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}

// SetCORSHeaders adds permissive cross-origin headers
func SetCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

// CORS wraps next with permissive cross-origin headers and preflight
// handling
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		SetCORSHeaders(w.Header())
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
