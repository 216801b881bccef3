package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync"

	"people-crud/internal/automation"
	"people-crud/internal/records"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// ServerOption configures the web server.
type ServerOption func(*Server)

// WithAllowedOrigins sets the origins allowed for cross-origin API calls and WebSocket upgrades.
// "*" allows any origin.
func WithAllowedOrigins(origins []string) ServerOption {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithVersion sets the application version string shown in the UI.
func WithVersion(v string) ServerOption {
	return func(s *Server) {
		s.version = v
	}
}

// WithHooks enables the read-only hooks API.
func WithHooks(mgr *automation.Manager, engine *automation.Engine) ServerOption {
	return func(s *Server) {
		s.scriptMgr = mgr
		s.autoEngine = engine
	}
}

// Server is the HTTP server for the record API and the web interface.
type Server struct {
	svc            *records.Service
	index          *template.Template
	wsHub          *WSHub
	logger         *slog.Logger
	mux            *http.ServeMux
	allowedOrigins []string
	version        string
	scriptMgr      *automation.Manager
	autoEngine     *automation.Engine
	wg             sync.WaitGroup
	unsubEvents    func()
}

// NewServer creates a new web server.
func NewServer(svc *records.Service, logger *slog.Logger, opts ...ServerOption) (*Server, error) {
	index, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}

	s := &Server{
		svc:    svc,
		index:  index,
		logger: logger.With("component", "web"),
		mux:    http.NewServeMux(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.wsHub = NewWSHub(s.logger)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.wsHub.Run()
	}()

	// Mirror record events to WebSocket observers.
	s.unsubEvents = svc.Events().OnAll(func(event records.Event) {
		s.wsHub.Broadcast(event)
	})

	s.routes()
	return s, nil
}

// Stop gracefully shuts down the WebSocket hub and waits for goroutines.
func (s *Server) Stop() {
	if s.unsubEvents != nil {
		s.unsubEvents()
	}
	s.wsHub.Stop()
	s.wg.Wait()
}

func (s *Server) routes() {
	s.mux.Handle("GET /static/", http.FileServer(http.FS(staticFS)))
	s.mux.HandleFunc("GET /{$}", s.handleIndex)

	// Record API
	s.mux.HandleFunc("GET /getUsers", s.handleListRecords)
	s.mux.HandleFunc("POST /addUser", s.handleCreateRecord)
	s.mux.HandleFunc("PUT /updateUser/{id}", s.handleUpdateRecord)
	s.mux.HandleFunc("DELETE /deleteUser/{id}", s.handleDeleteRecord)
	s.mux.HandleFunc("GET /version", s.handleVersion)

	// Hook scripts
	s.mux.HandleFunc("GET /hooks", s.handleListHooks)
	s.mux.HandleFunc("GET /hooks/{id}", s.handleGetHook)

	s.mux.HandleFunc("GET /ws", s.handleWS)
}

// ServeHTTP implements http.Handler, applying the CORS policy.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin != "" && len(s.allowedOrigins) > 0 {
		allowed := s.isOriginAllowed(origin)
		if r.Method == http.MethodOptions {
			if !allowed {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "3600")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		} else if r.Method != http.MethodGet {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
	}
	s.mux.ServeHTTP(w, r)
}

// isOriginAllowed checks if the origin matches any allowed origin pattern.
func (s *Server) isOriginAllowed(origin string) bool {
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"Title":   "CRUD Application",
		"Version": s.version,
	}
	// Render to a buffer first, so partial write failures don't corrupt the response.
	var buf bytes.Buffer
	if err := s.index.Execute(&buf, data); err != nil {
		s.logger.Error("render index", "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Debug("write index response", "err", err)
	}
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}
