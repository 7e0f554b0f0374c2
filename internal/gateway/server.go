// Package gateway exposes the app-side HTTP surface: generation submissions,
// task and asset queries, the event history, and the canvas WebSocket
// channel.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/SweetRetry/seedkit-ai/internal/events"
	"github.com/SweetRetry/seedkit-ai/internal/gateway/ws"
	"github.com/SweetRetry/seedkit-ai/internal/store"
	"github.com/SweetRetry/seedkit-ai/internal/tasks"
)

// Server is the seedcanvas gateway HTTP server.
type Server struct {
	httpServer *http.Server
	hub        *ws.Hub
	bus        *events.Bus
	store      *store.Store
	queue      *tasks.Queue
	host       string
	port       int
}

// NewServer creates a new gateway server.
func NewServer(bus *events.Bus, st *store.Store, queue *tasks.Queue, host string, port int) *Server {
	hub := ws.NewHub(bus)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	s := &Server{
		hub:   hub,
		bus:   bus,
		store: st,
		queue: queue,
		host:  host,
		port:  port,
	}

	// Routes
	r.Get("/api/health", s.handleHealth)
	r.Get("/api/ws", hub.ServeWS)
	r.Get("/api/events", s.handleEvents)

	r.Post("/api/generate/image", s.handleGenerateImage)
	r.Post("/api/generate/video", s.handleGenerateVideo)
	r.Get("/api/tasks/{taskID}", s.handleTaskStatus)

	r.Get("/api/assets", s.handleAssets)
	r.Get("/api/stats/assets", s.handleAssetStats)
	r.Get("/api/stats/usage", s.handleUsageStats)

	r.Delete("/api/projects/{projectID}", s.handleDeleteProject)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", host, port),
		Handler: r,
	}

	return s
}

// Handler returns the underlying HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening. It blocks until the server is stopped.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	slog.Info("gateway: listening", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}

	history := s.bus.History(limit)

	type eventJSON struct {
		ID        string             `json:"id"`
		Type      string             `json:"type"`
		Timestamp string             `json:"timestamp"`
		Source    events.EventSource `json:"source"`
		Payload   map[string]any     `json:"payload"`
	}

	result := make([]eventJSON, len(history))
	for i, e := range history {
		result[i] = eventJSON{
			ID:        e.ID,
			Type:      string(e.Type),
			Timestamp: e.Timestamp.Format(time.RFC3339Nano),
			Source:    e.Source,
			Payload:   e.Payload,
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGenerateImage(w http.ResponseWriter, r *http.Request) {
	var params tasks.ImageParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	taskID, err := s.queue.SubmitImage(params)
	if err != nil {
		writeSubmitError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"taskId": taskID})
}

func (s *Server) handleGenerateVideo(w http.ResponseWriter, r *http.Request) {
	var params tasks.VideoParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	taskID, err := s.queue.SubmitVideo(params)
	if err != nil {
		writeSubmitError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"taskId": taskID})
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	task, err := s.queue.GetTask(taskID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if task == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"taskId": taskID,
			"status": "not_found",
		})
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	filter := store.AssetFilter{
		ProjectID: r.URL.Query().Get("project_id"),
		Kind:      r.URL.Query().Get("type"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		filter.Limit = limit
	}

	assets, err := s.store.ListAssets(filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if assets == nil {
		assets = []*store.AssetRow{}
	}
	writeJSON(w, http.StatusOK, assets)
}

func (s *Server) handleAssetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetAssetStats()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleUsageStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetUsageStats()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	if err := s.store.DeleteProjectData(projectID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func writeSubmitError(w http.ResponseWriter, err error) {
	var verr *tasks.ValidationError
	if errors.As(err, &verr) {
		http.Error(w, verr.Error(), http.StatusBadRequest)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
