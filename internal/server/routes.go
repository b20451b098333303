package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/muurk/giftgrid/internal/catalog"
	"github.com/muurk/giftgrid/internal/constructor"
	"github.com/muurk/giftgrid/internal/grid"
	"github.com/muurk/giftgrid/internal/logging"
	"github.com/muurk/giftgrid/internal/nft"
	"github.com/muurk/giftgrid/internal/proxy"
	"github.com/muurk/giftgrid/internal/session"
	"github.com/muurk/giftgrid/internal/version"
)

// maxRequestBody caps JSON request bodies
const maxRequestBody = 64 << 10

// lookupTimeout bounds catalog and collectible lookups made for a request
const lookupTimeout = 30 * time.Second

type ctxKey int

const workspaceKey ctxKey = iota

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logRequests)
	r.Use(middleware.Recoverer)
	r.Use(proxy.CORS)

	r.Get("/health", s.handleHealth)

	// Catalog passthrough for browser clients
	r.Handle("/api/*", s.proxy)
	r.Handle("/cdn/*", s.proxy)
	r.Handle("/tg/*", s.proxy)
	r.Handle("/proxy", s.proxy)

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(lookupTimeout))
			r.Get("/nft/resolve", s.handleResolveNFT)
			r.Get("/gifts/supply", s.handleSupply)
			r.Get("/catalog/gifts", s.handleGifts)
			r.Get("/catalog/options", s.handleOptions)
			r.Get("/catalog/ribbon", s.handleRibbon)
		})

		r.Route("/grids", func(r chi.Router) {
			r.Post("/", s.handleCreateGrid)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(s.withWorkspace)
				r.Get("/", s.handleGetGrid)
				r.Delete("/", s.handleCloseGrid)
				r.Get("/events", s.handleEvents)

				r.Post("/rows", s.handleAddRow)
				r.Delete("/rows", s.handleRemoveRow)
				r.Post("/swap", s.handleSwap)
				r.Put("/cells/{cell}", s.handleApplyCell)
				r.Delete("/cells/{cell}", s.handleResetCell)
				r.Post("/save", s.handleSave)
				r.Post("/reset", s.handleFullReset)

				r.Route("/session", func(r chi.Router) {
					r.Get("/", s.handleSessionView)
					r.Post("/open", s.handleSessionOpen)
					r.Post("/edit", s.handleSessionEdit)
					r.Post("/set", s.handleSessionSet)
					r.Post("/copy", s.handleSessionCopy)
					r.Post("/paste", s.handleSessionPaste)
					r.Post("/previous", s.handleSessionPrevious)
					r.Post("/import", s.handleSessionImport)
					r.Post("/close", s.handleSessionClose)
					r.Post("/reset", s.handleSessionReset)
				})
			})
		})
	})

	return r
}

// logRequests logs every request with its final status
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}

func (s *Server) withWorkspace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, ok := s.workspaces.Get(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "unknown grid")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), workspaceKey, ws)))
	})
}

func workspaceFrom(r *http.Request) *constructor.Workspace {
	return r.Context().Value(workspaceKey).(*constructor.Workspace)
}

// errorResponse is the body of every failed API call
type errorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

// gridResponse describes a workspace after an operation
type gridResponse struct {
	ID       string       `json:"id"`
	Ready    bool         `json:"ready"`
	Restored bool         `json:"restored"`
	Created  time.Time    `json:"created"`
	Changed  *bool        `json:"changed,omitempty"`
	Grid     grid.Grid    `json:"grid"`
	Session  session.View `json:"session"`
}

func describe(ws *constructor.Workspace) gridResponse {
	return gridResponse{
		ID:       ws.ID(),
		Ready:    ws.Ready(),
		Restored: ws.Restored(),
		Created:  ws.CreatedAt(),
		Grid:     ws.Snapshot(),
		Session:  ws.SessionView(),
	}
}

func describeChange(ws *constructor.Workspace, changed bool) gridResponse {
	resp := describe(ws)
	resp.Changed = &changed
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeFailure maps a domain error onto an HTTP status
func writeFailure(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	resp := errorResponse{Error: err.Error()}

	switch {
	case errors.Is(err, constructor.ErrUnknownCell), errors.Is(err, grid.ErrOutOfRange):
		status = http.StatusNotFound
	case errors.Is(err, constructor.ErrUnknownGift),
		errors.Is(err, grid.ErrResetNotConfirmed),
		errors.Is(err, nft.ErrInvalidSlug),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, constructor.ErrNotReady):
		status = http.StatusServiceUnavailable
	case errors.Is(err, session.ErrNotOpen), errors.Is(err, constructor.ErrSessionChanged):
		status = http.StatusConflict
	case errors.Is(err, constructor.ErrClosed):
		status = http.StatusGone
	case errors.Is(err, constructor.ErrNoStorage), errors.Is(err, constructor.ErrNoNFT):
		status = http.StatusNotImplemented
	case errors.Is(err, nft.ErrNoAttributes), catalog.IsNotFound(err):
		status = http.StatusNotFound
		resp.Hint = catalog.GetTroubleshootingHint(err)
	case catalog.IsNetworkError(err), catalog.StatusCode(err) != 0, catalog.IsParseError(err):
		status = http.StatusBadGateway
		resp.Error = catalog.GetShortErrorMessage(err)
		resp.Hint = catalog.GetTroubleshootingHint(err)
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	writeJSON(w, status, resp)
}

var errBadRequest = errors.New("bad request")

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errors.Join(errBadRequest, err)
	}
	return nil
}

// ensureReady retries the catalog preload when it has not succeeded yet.
// Cell edits are refused until it does.
func ensureReady(w http.ResponseWriter, r *http.Request, ws *constructor.Workspace) bool {
	if ws.Ready() {
		return true
	}
	ctx, cancel := context.WithTimeout(r.Context(), lookupTimeout)
	defer cancel()
	if err := ws.Preload(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error: "catalog not loaded yet",
			Hint:  catalog.GetTroubleshootingHint(err),
		})
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"time":       time.Now().UTC().Format(time.RFC3339),
		"version":    version.Version,
		"workspaces": s.workspaces.Len(),
	})
}

func (s *Server) handleResolveNFT(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		writeError(w, http.StatusBadRequest, "missing slug")
		return
	}
	g, err := s.nft.Resolve(r.Context(), slug)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleSupply(w http.ResponseWriter, r *http.Request) {
	gift := r.URL.Query().Get("gift")
	if gift == "" {
		writeError(w, http.StatusBadRequest, "missing gift")
		return
	}
	supply, err := s.nft.SupplyFor(r.Context(), gift)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, supply)
}

func (s *Server) handleGifts(w http.ResponseWriter, r *http.Request) {
	gifts, err := s.resolver.Gifts(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gifts)
}

// optionsResponse carries the choice lists of a gift. A list whose lookup
// failed is empty and named in Unavailable.
type optionsResponse struct {
	Gift        string   `json:"gift"`
	Models      []string `json:"models"`
	Backdrops   []string `json:"backdrops"`
	Patterns    []string `json:"patterns"`
	Unavailable []string `json:"unavailable,omitempty"`
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	gift := r.URL.Query().Get("gift")
	if gift == "" {
		writeError(w, http.StatusBadRequest, "missing gift")
		return
	}
	opts := s.resolver.OptionsFor(r.Context(), gift)
	resp := optionsResponse{
		Gift:      gift,
		Models:    orEmpty(opts.Models),
		Backdrops: orEmpty(opts.Backdrops),
		Patterns:  orEmpty(opts.Patterns),
	}
	if opts.ModelsErr != nil {
		resp.Unavailable = append(resp.Unavailable, session.FieldModel.String())
	}
	if opts.BackdropsErr != nil {
		resp.Unavailable = append(resp.Unavailable, session.FieldBackdrop.String())
	}
	if opts.PatternsErr != nil {
		resp.Unavailable = append(resp.Unavailable, session.FieldPattern.String())
	}
	writeJSON(w, http.StatusOK, resp)
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (s *Server) handleRibbon(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	gift, backdrop := q.Get("gift"), q.Get("backdrop")
	resp := map[string]any{
		"gift":     gift,
		"backdrop": backdrop,
		"ribbon":   s.resolver.RibbonTextFor(r.Context(), gift, backdrop),
	}
	if colors, ok := s.resolver.BackdropColors(r.Context(), gift, backdrop); ok {
		resp["colors"] = colors
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateGrid(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspaces.Create()
	if err != nil {
		writeFailure(w, err)
		return
	}
	w.Header().Set("Location", "/v1/grids/"+ws.ID())
	writeJSON(w, http.StatusCreated, describe(ws))
}

func (s *Server) handleGetGrid(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, describe(workspaceFrom(r)))
}

func (s *Server) handleCloseGrid(w http.ResponseWriter, r *http.Request) {
	s.workspaces.Remove(workspaceFrom(r).ID())
	w.WriteHeader(http.StatusNoContent)
}

func edgeParam(r *http.Request) (grid.Edge, error) {
	edge := r.URL.Query().Get("edge")
	if edge == "" {
		return grid.EdgeBottom, nil
	}
	e, err := grid.ParseEdge(edge)
	if err != nil {
		return e, errors.Join(errBadRequest, err)
	}
	return e, nil
}

func (s *Server) handleAddRow(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	edge, err := edgeParam(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, describeChange(ws, ws.AddRow(edge)))
}

func (s *Server) handleRemoveRow(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	edge, err := edgeParam(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, describeChange(ws, ws.RemoveRow(edge)))
}

type swapRequest struct {
	A grid.CellID `json:"a"`
	B grid.CellID `json:"b"`
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	var req swapRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, describeChange(ws, ws.Swap(req.A, req.B)))
}

func (s *Server) handleApplyCell(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	if !ensureReady(w, r, ws) {
		return
	}
	var attrs grid.Attributes
	if err := decode(r, &attrs); err != nil {
		writeFailure(w, err)
		return
	}
	changed, err := ws.ApplyAttributes(grid.CellID(chi.URLParam(r, "cell")), attrs)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, describeChange(ws, changed))
}

func (s *Server) handleResetCell(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	writeJSON(w, http.StatusOK, describeChange(ws, ws.ResetCell(grid.CellID(chi.URLParam(r, "cell")))))
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	if err := ws.Save(); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, describe(ws))
}

type resetRequest struct {
	Confirm bool `json:"confirm"`
}

func (s *Server) handleFullReset(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	var req resetRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	if err := ws.FullReset(req.Confirm); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, describe(ws))
}

func (s *Server) handleSessionView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, workspaceFrom(r).SessionView())
}

type openRequest struct {
	Cell grid.CellID `json:"cell,omitempty"`
	Row  *int        `json:"row,omitempty"`
	Col  *int        `json:"col,omitempty"`
}

func (s *Server) handleSessionOpen(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	if !ensureReady(w, r, ws) {
		return
	}
	var req openRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, err)
		return
	}

	var err error
	switch {
	case req.Cell != "":
		err = ws.Open(req.Cell)
	case req.Row != nil && req.Col != nil:
		err = ws.OpenAt(*req.Row, *req.Col)
	default:
		writeError(w, http.StatusBadRequest, "cell or row and col required")
		return
	}
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ws.SessionView())
}

type editRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (s *Server) handleSessionEdit(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	if !ensureReady(w, r, ws) {
		return
	}
	var req editRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	field, err := session.ParseField(req.Field)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := ws.Edit(field, req.Value); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ws.SessionView())
}

func (s *Server) handleSessionSet(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	if !ensureReady(w, r, ws) {
		return
	}
	var attrs grid.Attributes
	if err := decode(r, &attrs); err != nil {
		writeFailure(w, err)
		return
	}
	if err := ws.SetAll(attrs); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ws.SessionView())
}

// sessionResult reports whether a clipboard-style action did anything
type sessionResult struct {
	OK      bool         `json:"ok"`
	Session session.View `json:"session"`
}

func (s *Server) handleSessionCopy(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	ok := ws.Copy()
	writeJSON(w, http.StatusOK, sessionResult{OK: ok, Session: ws.SessionView()})
}

func (s *Server) handleSessionPaste(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	if !ensureReady(w, r, ws) {
		return
	}
	ok := ws.Paste()
	writeJSON(w, http.StatusOK, sessionResult{OK: ok, Session: ws.SessionView()})
}

func (s *Server) handleSessionPrevious(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	if !ensureReady(w, r, ws) {
		return
	}
	ok := ws.CopyPrevious()
	writeJSON(w, http.StatusOK, sessionResult{OK: ok, Session: ws.SessionView()})
}

type importRequest struct {
	Slug string `json:"slug"`
}

func (s *Server) handleSessionImport(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	if !ensureReady(w, r, ws) {
		return
	}
	var req importRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	if req.Slug == "" {
		writeError(w, http.StatusBadRequest, "missing slug")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), lookupTimeout)
	defer cancel()
	if _, err := ws.ImportNFT(ctx, req.Slug); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ws.SessionView())
}

func (s *Server) handleSessionClose(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	ws.CloseSession()
	writeJSON(w, http.StatusOK, ws.SessionView())
}

func (s *Server) handleSessionReset(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	if err := ws.ResetAndClose(); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, describe(ws))
}
