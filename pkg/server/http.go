package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/bastiangx/seekbench/internal/logger"
	"github.com/bastiangx/seekbench/pkg/match"
	charmlog "github.com/charmbracelet/log"
	"github.com/julienschmidt/httprouter"
)

// maxBodyBytes caps request bodies on top of the text and pattern limits.
const maxBodyBytes = 8 << 20

// HTTPServer serves compare and trace requests as JSON.
type HTTPServer struct {
	srv    *Server
	router *httprouter.Router
	server *http.Server
	addr   string
	log    *charmlog.Logger
}

type compareRequest struct {
	Text    *string `json:"text"`
	Pattern *string `json:"pattern"`
}

type traceRequest struct {
	Text      *string `json:"text"`
	Pattern   *string `json:"pattern"`
	Algorithm string  `json:"algorithm"`
	From      int     `json:"from"`
	Count     int     `json:"count"`
}

type errorBody struct {
	Error string `json:"error"`
}

// NewHTTPServer wires the routes. addr comes from the [http] config
// section unless given. The CORS origin is read per response, so a config
// reload changes it without a restart.
func NewHTTPServer(srv *Server, addr string) *HTTPServer {
	if addr == "" {
		addr = srv.Config().HTTP.Addr
	}
	h := &HTTPServer{
		srv:    srv,
		router: httprouter.New(),
		addr:   addr,
		log:    logger.New("http"),
	}
	h.setupRoutes()
	return h
}

func (h *HTTPServer) setupRoutes() {
	h.router.GET("/health", h.handleHealth)
	h.router.POST("/api/compare", h.handleCompare)
	h.router.POST("/api/trace", h.handleTrace)

	h.router.GlobalOPTIONS = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.setCORS(w)
		w.WriteHeader(http.StatusNoContent)
	})
}

// Handler returns the router, for tests and for embedding.
func (h *HTTPServer) Handler() http.Handler {
	return h.router
}

// Start listens until Stop is called.
func (h *HTTPServer) Start() error {
	h.server = &http.Server{
		Addr:              h.addr,
		Handler:           h.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	h.log.Infof("Listening on %s", h.addr)
	if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the listener down, waiting up to five seconds for requests in flight.
func (h *HTTPServer) Stop() error {
	if h.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return h.server.Shutdown(ctx)
}

func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
		"cache":  h.srv.cache.Stats(),
	})
}

// handleCompare rejects a missing or empty text and a missing pattern with
// the same message; an empty pattern reaches the runner and fails there.
func (h *HTTPServer) handleCompare(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.srv.countRequest()

	var req compareRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Text == nil || *req.Text == "" || req.Pattern == nil {
		h.writeError(w, http.StatusBadRequest, "Text and pattern are required")
		return
	}

	report, err := h.srv.Compare(*req.Text, *req.Pattern)
	if err != nil {
		h.writeError(w, statusCode(err), err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *HTTPServer) handleTrace(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.srv.countRequest()

	var req traceRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Text == nil || *req.Text == "" || req.Pattern == nil {
		h.writeError(w, http.StatusBadRequest, "Text and pattern are required")
		return
	}
	if req.Algorithm == "" {
		req.Algorithm = match.KMP.String()
	}

	page, err := h.srv.TracePage(req.Algorithm, *req.Text, *req.Pattern, req.From, req.Count)
	if err != nil {
		h.writeError(w, statusCode(err), err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, page)
}

func (h *HTTPServer) setCORS(w http.ResponseWriter) {
	origin := h.srv.Config().HTTP.AllowOrigin
	if origin == "" {
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func (h *HTTPServer) writeJSON(w http.ResponseWriter, status int, v any) {
	h.setCORS(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorf("Encoding response: %v", err)
	}
}

func (h *HTTPServer) writeError(w http.ResponseWriter, status int, msg string) {
	if status >= http.StatusInternalServerError {
		h.log.Error(msg)
	}
	h.writeJSON(w, status, errorBody{Error: msg})
}
