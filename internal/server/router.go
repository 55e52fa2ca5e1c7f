package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/minerops/launchspec/internal/history"
	"github.com/minerops/launchspec/internal/metrics"
	"github.com/minerops/launchspec/internal/render"
	"github.com/minerops/launchspec/internal/spec"
	"github.com/minerops/launchspec/internal/store"
)

// Router provides embeddable HTTP handlers for the spec registry.
// Endpoints:
//   POST   {basePath}/validate              body: Spec JSON
//   POST   {basePath}/specs                 body: Spec JSON (register/update)
//   GET    {basePath}/specs                 list all records
//   GET    {basePath}/specs/:name           single record
//   DELETE {basePath}/specs/:name           unregister
//   GET    {basePath}/specs/:name/revisions revision history
//   GET    {basePath}/specs/:name/render    query: format=pm2|supervisord
//   GET    {basePath}/healthz
//   GET    {basePath}/metrics
// basePath may be empty or start with '/'; no trailing slash.

type Router struct {
	store    store.Store
	sink     history.Sink // optional, nil disables audit events
	logger   *slog.Logger
	basePath string
}

// NewRouter constructs a new Router with configurable basePath.
// Example basePath: "/api" results in /api/specs, /api/validate, ...
func NewRouter(st store.Store, sink history.Sink, logger *slog.Logger, basePath string) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{store: st, sink: sink, logger: logger, basePath: sanitizeBase(basePath)}
}

// Handler returns an http.Handler powered by gin that can be mounted in any server/mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.POST("/validate", r.handleValidate)
	group.POST("/specs", r.handleRegister)
	group.GET("/specs", r.handleList)
	group.GET("/specs/:name", r.handleGet)
	group.DELETE("/specs/:name", r.handleDelete)
	group.GET("/specs/:name/revisions", r.handleRevisions)
	group.GET("/specs/:name/render", r.handleRender)
	group.GET("/healthz", r.handleHealthz)
	group.GET("/metrics", gin.WrapH(metrics.Handler()))
	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
// Call Close or Shutdown on the returned server to stop it.
func NewServer(addr, basePath string, st store.Store, sink history.Sink, logger *slog.Logger) (*http.Server, error) {
	r := NewRouter(st, sink, logger, basePath)
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return server, nil
}

// --- Handlers ---

type errorResp struct {
	Error string `json:"error"`
}

type okResp struct {
	OK bool `json:"ok"`
}

type validateResp struct {
	OK         bool             `json:"ok"`
	Violations []spec.Violation `json:"violations,omitempty"`
}

type registerResp struct {
	OK       bool   `json:"ok"`
	Name     string `json:"name"`
	Revision string `json:"revision"`
}

func (r *Router) emit(ctx context.Context, e history.Event) {
	if r.sink == nil {
		return
	}
	e.OccurredAt = time.Now().UTC()
	if err := r.sink.Send(ctx, e); err != nil {
		metrics.IncHistorySendFailure()
		r.logger.Warn("history sink send failed", "event", string(e.Type), "name", e.Name, "error", err)
	}
}

// bindSpec decodes and sanity-checks the request body. The spec is
// normalized but not yet validated.
func bindSpec(c *gin.Context) (spec.Spec, bool) {
	var s spec.Spec
	if err := c.ShouldBindJSON(&s); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return s, false
	}
	s.Normalize()
	// Path-like fields must not be usable for traversal when the registry
	// later renders them into files.
	for field, p := range map[string]string{
		"cwd": s.Cwd, "pid_file": s.PIDFile,
		"out_file": s.OutFile, "error_file": s.ErrorFile, "log_file": s.LogFile,
	} {
		if !isSafeAbsPath(p) {
			writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid " + field + ": must be absolute path without traversal"})
			return s, false
		}
	}
	return s, true
}

func (r *Router) handleValidate(c *gin.Context) {
	s, ok := bindSpec(c)
	if !ok {
		return
	}
	if err := s.Validate(); err != nil {
		metrics.IncValidation(false)
		var verr *spec.ValidationError
		if errors.As(err, &verr) {
			writeJSON(c, http.StatusUnprocessableEntity, validateResp{OK: false, Violations: verr.Violations})
			return
		}
		writeJSON(c, http.StatusUnprocessableEntity, errorResp{Error: err.Error()})
		return
	}
	metrics.IncValidation(true)
	r.emit(c.Request.Context(), history.Event{Type: history.EventValidated, Name: s.Name, OK: true})
	writeJSON(c, http.StatusOK, validateResp{OK: true})
}

func (r *Router) handleRegister(c *gin.Context) {
	s, ok := bindSpec(c)
	if !ok {
		return
	}
	if err := s.Validate(); err != nil {
		metrics.IncValidation(false)
		var verr *spec.ValidationError
		if errors.As(err, &verr) {
			writeJSON(c, http.StatusUnprocessableEntity, validateResp{OK: false, Violations: verr.Violations})
			return
		}
		writeJSON(c, http.StatusUnprocessableEntity, errorResp{Error: err.Error()})
		return
	}
	metrics.IncValidation(true)

	ctx := c.Request.Context()
	_, existedErr := r.store.Get(ctx, s.Name)
	rev, err := r.store.Put(ctx, s)
	if err != nil {
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	metrics.IncRegistration(s.Name)
	if n, err := r.store.Count(ctx); err == nil {
		metrics.SetStoredSpecs(n)
	}
	evType := history.EventRegistered
	if existedErr == nil {
		evType = history.EventUpdated
	}
	r.emit(ctx, history.Event{Type: evType, Name: s.Name, Revision: rev.ID, OK: true})
	writeJSON(c, http.StatusOK, registerResp{OK: true, Name: s.Name, Revision: rev.ID})
}

func (r *Router) handleList(c *gin.Context) {
	recs, err := r.store.List(c.Request.Context())
	if err != nil {
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, recs)
}

func (r *Router) handleGet(c *gin.Context) {
	name := c.Param("name")
	if !spec.IsSafeName(name) {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid name"})
		return
	}
	rec, err := r.store.Get(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(c, http.StatusNotFound, errorResp{Error: err.Error()})
			return
		}
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, rec)
}

func (r *Router) handleDelete(c *gin.Context) {
	name := c.Param("name")
	if !spec.IsSafeName(name) {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid name"})
		return
	}
	ctx := c.Request.Context()
	if err := r.store.Delete(ctx, name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(c, http.StatusNotFound, errorResp{Error: err.Error()})
			return
		}
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	metrics.IncDeletion(name)
	if n, err := r.store.Count(ctx); err == nil {
		metrics.SetStoredSpecs(n)
	}
	r.emit(ctx, history.Event{Type: history.EventDeleted, Name: name, OK: true})
	writeJSON(c, http.StatusOK, okResp{OK: true})
}

func (r *Router) handleRevisions(c *gin.Context) {
	name := c.Param("name")
	if !spec.IsSafeName(name) {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid name"})
		return
	}
	revs, err := r.store.Revisions(c.Request.Context(), name)
	if err != nil {
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	if len(revs) == 0 {
		writeJSON(c, http.StatusNotFound, errorResp{Error: store.ErrNotFound.Error()})
		return
	}
	writeJSON(c, http.StatusOK, revs)
}

func (r *Router) handleRender(c *gin.Context) {
	name := c.Param("name")
	if !spec.IsSafeName(name) {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid name"})
		return
	}
	format := c.DefaultQuery("format", "pm2")
	ctx := c.Request.Context()
	rec, err := r.store.Get(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(c, http.StatusNotFound, errorResp{Error: err.Error()})
			return
		}
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}

	var out []byte
	var contentType string
	switch format {
	case "pm2":
		out, err = render.PM2([]spec.Spec{rec.Spec})
		contentType = "application/json"
	case "supervisord":
		out, err = render.Supervisord([]spec.Spec{rec.Spec})
		contentType = "text/plain; charset=utf-8"
	default:
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "unknown format: " + format + " (want pm2 or supervisord)"})
		return
	}
	if err != nil {
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	metrics.IncRender(format)
	r.emit(ctx, history.Event{Type: history.EventRendered, Name: name, Revision: rec.Revision, OK: true, Detail: format})
	c.Data(http.StatusOK, contentType, out)
}

func (r *Router) handleHealthz(c *gin.Context) {
	if _, err := r.store.Count(c.Request.Context()); err != nil {
		writeJSON(c, http.StatusServiceUnavailable, errorResp{Error: "store unavailable: " + err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, okResp{OK: true})
}
