package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ChrisRuff/obsidian-localai/internal/application"
	"github.com/ChrisRuff/obsidian-localai/internal/domain"
	"github.com/ChrisRuff/obsidian-localai/internal/infra/editor"
	"github.com/ChrisRuff/obsidian-localai/internal/settings"
)

const maxSelectionBytes = 10 * 1024 * 1024

// CommandRunner is the plugin as seen by the bridge.
type CommandRunner interface {
	Commands() []application.Command
	Execute(ctx context.Context, id string, ed application.Editor) error
}

type Observer interface {
	ObserveBridge(route string, status int)
}

type Config struct {
	Addr               string
	AuthToken          string
	RateLimitPerMinute int
}

// Server exposes the plugin commands and settings panel over HTTP so an
// external editor can drive them.
type Server struct {
	cfg      Config
	runner   CommandRunner
	panel    *settings.Panel
	observer Observer
	logger   *slog.Logger
	router   chi.Router

	mu      sync.Mutex
	server  *http.Server
	addr    string
	running bool
}

func NewServer(cfg Config, runner CommandRunner, panel *settings.Panel, metricsHandler http.Handler, observer Observer, logger *slog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		runner:   runner,
		panel:    panel,
		observer: observer,
		logger:   logger,
	}

	limiter := NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/health", s.handleHealth)
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Use(limiter.Middleware)

		r.Get("/commands", s.handleListCommands)
		r.Post("/commands/{id}", s.handleExecute)
		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings/{key}", s.handleSetSetting)
	})

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the listener and serves in the background. Bind errors are
// returned to the caller.
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}

	s.server = &http.Server{
		Handler:     s.router,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	s.addr = ln.Addr().String()

	go func() {
		s.logger.Info("bridge listening", "addr", s.addr)
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("bridge server error", "error", err)
		}
	}()

	s.running = true
	return nil
}

// Addr is the bound listen address, empty until Start succeeds.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Warn("graceful shutdown failed, forcing close", "error", err)
		if err := s.server.Close(); err != nil {
			return fmt.Errorf("closing server: %w", err)
		}
	}

	s.running = false
	return nil
}

type executeRequest struct {
	Selection string          `json:"selection"`
	From      domain.Position `json:"from"`
	To        domain.Position `json:"to"`
}

type executeResponse struct {
	Changed bool            `json:"changed"`
	Text    string          `json:"text,omitempty"`
	From    domain.Position `json:"from"`
	To      domain.Position `json:"to"`
}

type commandInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleListCommands(w http.ResponseWriter, r *http.Request) {
	cmds := s.runner.Commands()
	result := make([]commandInfo, 0, len(cmds))
	for _, c := range cmds {
		result = append(result, commandInfo{ID: c.ID, Name: c.Name})
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req executeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxSelectionBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ed := editor.NewDetached(req.Selection, req.From, req.To)
	err := s.runner.Execute(r.Context(), id, ed)
	switch {
	case errors.Is(err, application.ErrUnknownCommand):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, executeResponse{
		Changed: ed.Replaced,
		Text:    ed.Replacement,
		From:    req.From,
		To:      req.To,
	})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.panel.Fields())
}

func (s *Server) handleSetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	value, err := io.ReadAll(io.LimitReader(r.Body, 4096))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	err = s.panel.Set(key, string(value))
	switch {
	case errors.Is(err, settings.ErrUnknownField):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		s.logger.Error("saving setting", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	s.logger.Info("setting updated", "key", key)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"commands": len(s.runner.Commands()),
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AuthToken != "" {
			token := r.Header.Get("X-Auth-Token")
			if token == "" {
				token = r.URL.Query().Get("token")
			}
			if token != s.cfg.AuthToken {
				s.logger.Warn("unauthorized bridge request", "remote_addr", r.RemoteAddr)
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		if s.observer == nil {
			return
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.observer.ObserveBridge(route, status)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
