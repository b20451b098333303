package proxy

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUpstreamServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gifts":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`["Desk Calendar"]`))
		case "/echo":
			body, _ := io.ReadAll(r.Body)
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte(r.Method + " " + r.URL.RawQuery + " " + string(body)))
		case "/gifts/patterns/Desk Calendar/png/Stars.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newProxy(t *testing.T, upstream string) *Handler {
	t.Helper()
	api, err := NewUpstream("api", "/api", upstream)
	require.NoError(t, err)
	cdn, err := NewUpstream("cdn", "/cdn/", upstream+"/")
	require.NoError(t, err)
	return New(api, cdn)
}

func TestProxyForwards(t *testing.T) {
	up := newUpstreamServer(t)
	h := newProxy(t, up.URL)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantType   string
		wantBody   string
	}{
		{name: "json", method: http.MethodGet, path: "/api/gifts", wantStatus: 200, wantType: "application/json", wantBody: `["Desk Calendar"]`},
		{name: "query and body", method: http.MethodPost, path: "/api/echo?sort=asc", body: "hello", wantStatus: 200, wantType: "text/plain", wantBody: "POST sort=asc hello"},
		{name: "binary via cdn", method: http.MethodGet, path: "/cdn/gifts/patterns/Desk%20Calendar/png/Stars.png", wantStatus: 200, wantType: "image/png", wantBody: "\x89PNG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantType, rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestProxyPreflight(t *testing.T) {
	h := newProxy(t, "http://127.0.0.1:1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/gifts", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "OPTIONS")
}

func TestProxyUpstreamStatus(t *testing.T) {
	up := newUpstreamServer(t)
	h := newProxy(t, up.URL)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/missing", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusNotFound, body.Status)
	assert.Equal(t, "Not Found", body.StatusText)
	assert.NotEmpty(t, body.Error)
}

func TestProxyTransportFailure(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	h := newProxy(t, deadURL)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/gifts", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Proxy error", body.Error)
	assert.NotEmpty(t, body.Message)
	assert.Zero(t, body.Status)
}

func TestProxyURLParameter(t *testing.T) {
	up := newUpstreamServer(t)
	h := newProxy(t, up.URL)

	tests := []struct {
		name       string
		target     string
		wantStatus int
	}{
		{name: "allowed host", target: up.URL + "/gifts", wantStatus: http.StatusOK},
		{name: "missing", target: "", wantStatus: http.StatusBadRequest},
		{name: "bad scheme", target: "ftp://example.com/x", wantStatus: http.StatusBadRequest},
		{name: "foreign host", target: "https://example.com/gifts", wantStatus: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := "/proxy"
			if tt.target != "" {
				path += "?url=" + tt.target
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestProxyUnknownPrefix(t *testing.T) {
	h := newProxy(t, "http://127.0.0.1:1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/apix/gifts", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewUpstreamRejectsBadTargets(t *testing.T) {
	_, err := NewUpstream("api", "/api", "ftp://example.com")
	assert.Error(t, err)
	_, err = NewUpstream("api", "/api", "://bad")
	assert.Error(t, err)
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := CORS(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
