// Package server exposes trees, roadmaps and progress toggles over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhisek/skilltree/internal/logging"
	"github.com/abhisek/skilltree/internal/progress"
	"github.com/abhisek/skilltree/internal/render"
	"github.com/abhisek/skilltree/internal/store"
)

// Trees lists and describes trees.
type Trees interface {
	List(ctx context.Context) ([]store.Tree, error)
	Get(ctx context.Context, id int) (store.Tree, error)
}

// Users resolves API tokens.
type Users interface {
	ByToken(ctx context.Context, token string) (store.User, error)
}

// Tracker resolves roadmaps and applies progress toggles.
type Tracker interface {
	Roadmap(ctx context.Context, userID, treeID int) (*progress.Roadmap, error)
	ToggleDone(ctx context.Context, userID, nodeID int) (bool, error)
	ToggleIgnore(ctx context.Context, userID, nodeID int) (bool, error)
}

// Server holds the handler dependencies.
type Server struct {
	trees   Trees
	users   Users
	tracker Tracker
	logger  *slog.Logger
	metrics *Metrics
	gather  prometheus.Gatherer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRegistry registers the server metrics on reg and serves reg on /metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.metrics = NewMetrics(reg)
		s.gather = reg
	}
}

// New creates a server. Without WithRegistry metrics are kept on a private
// registry.
func New(trees Trees, users Users, tracker Tracker, opts ...Option) *Server {
	s := &Server{
		trees:   trees,
		users:   users,
		tracker: tracker,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		reg := prometheus.NewRegistry()
		s.metrics = NewMetrics(reg)
		s.gather = reg
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.Use(s.authenticate)

	r.Get("/healthz", s.health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gather, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/trees", s.listTrees)
		r.Get("/trees/{treeID}", s.roadmap)
		r.Get("/trees/{treeID}/graph", s.graph)
		r.Post("/nodes/{nodeID}/toggle", s.toggleDone)
		r.Post("/nodes/{nodeID}/toggle-done", s.toggleDone)
		r.Post("/nodes/{nodeID}/toggle-ignore", s.toggleIgnore)
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type treeSummary struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	IntroVideoURL string `json:"intro_video_url,omitempty"`
	IsFree        bool   `json:"is_free"`
}

func (s *Server) listTrees(w http.ResponseWriter, r *http.Request) {
	trees, err := s.trees.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]treeSummary, len(trees))
	for i, t := range trees {
		out[i] = treeSummary{
			ID:            t.ID,
			Title:         t.Title,
			Description:   t.Description,
			IntroVideoURL: t.IntroVideoURL,
			IsFree:        t.IsFree,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) roadmap(w http.ResponseWriter, r *http.Request) {
	treeID, ok := s.pathID(w, r, "treeID")
	if !ok {
		return
	}
	tree, err := s.trees.Get(r.Context(), treeID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rm, err := s.tracker.Roadmap(r.Context(), userFrom(r.Context()), treeID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, render.Roadmap(rm, tree.Title))
}

func (s *Server) graph(w http.ResponseWriter, r *http.Request) {
	treeID, ok := s.pathID(w, r, "treeID")
	if !ok {
		return
	}
	rm, err := s.tracker.Roadmap(r.Context(), userFrom(r.Context()), treeID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, render.Graph(rm))
}

func (s *Server) toggleDone(w http.ResponseWriter, r *http.Request) {
	nodeID, ok := s.pathID(w, r, "nodeID")
	if !ok {
		return
	}
	done, err := s.tracker.ToggleDone(r.Context(), userFrom(r.Context()), nodeID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.toggles.WithLabelValues("done", strconv.FormatBool(done)).Inc()
	writeJSON(w, http.StatusOK, map[string]bool{"done": done})
}

func (s *Server) toggleIgnore(w http.ResponseWriter, r *http.Request) {
	nodeID, ok := s.pathID(w, r, "nodeID")
	if !ok {
		return
	}
	ignored, err := s.tracker.ToggleIgnore(r.Context(), userFrom(r.Context()), nodeID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.toggles.WithLabelValues("ignore", strconv.FormatBool(ignored)).Inc()
	writeJSON(w, http.StatusOK, map[string]bool{"ignored": ignored})
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// fail maps domain errors to HTTP statuses.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, progress.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
