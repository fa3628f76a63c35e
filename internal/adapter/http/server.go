package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/ferry-services/internal/domain"
	"github.com/couchcryptid/ferry-services/internal/view"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 4 << 10

// Server exposes the view snapshots as JSON plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	screens    *view.Screens
	dateLoc    *time.Location
	logger     *slog.Logger
}

// NewServer creates an HTTP server. Dates posted to the timetable are
// interpreted in loc.
func NewServer(addr string, screens *view.Screens, loc *time.Location, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		screens: screens,
		dateLoc: loc,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(screens))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/services/{id}", s.handleService)
	mux.HandleFunc("POST /api/services/{id}/refresh", s.handleRefresh)
	mux.HandleFunc("POST /api/services/{id}/locations/{index}/retry", s.handleRetryWeather)

	mux.HandleFunc("GET /api/timetable", s.handleTimetable)
	mux.HandleFunc("POST /api/timetable/date", s.handleSetDate)
	mux.HandleFunc("POST /api/timetable/toggle", s.handleToggle)
	mux.HandleFunc("POST /api/timetable/select", s.handleSelect)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) serviceFor(w http.ResponseWriter, r *http.Request) (*view.ServiceDetail, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid service id")
		return nil, false
	}
	sd, err := s.screens.Service(r.Context(), id)
	if err != nil {
		s.writeViewError(w, err)
		return nil, false
	}
	return sd, true
}

func (s *Server) handleService(w http.ResponseWriter, r *http.Request) {
	sd, ok := s.serviceFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sd.Snapshot())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	sd, ok := s.serviceFor(w, r)
	if !ok {
		return
	}
	started, err := sd.Refresh(r.Context())
	if err != nil {
		s.writeViewError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"started": started})
}

func (s *Server) handleRetryWeather(w http.ResponseWriter, r *http.Request) {
	sd, ok := s.serviceFor(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid location index")
		return
	}
	if err := sd.RetryWeather(r.Context(), index); err != nil {
		s.writeViewError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]int{"index": index})
}

func (s *Server) handleTimetable(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.screens.Timetable().Snapshot())
}

type setDateRequest struct {
	Date string `json:"date"`
}

func (s *Server) handleSetDate(w http.ResponseWriter, r *http.Request) {
	var req setDateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	date, err := time.ParseInLocation(time.DateOnly, req.Date, s.dateLoc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	tt := s.screens.Timetable()
	if err := tt.SetDate(r.Context(), date); err != nil {
		s.writeViewError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tt.Snapshot())
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	tt := s.screens.Timetable()
	if err := tt.ToggleExpanded(r.Context()); err != nil {
		s.writeViewError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tt.Snapshot())
}

type selectRequest struct {
	Section int `json:"section"`
	Row     int `json:"row"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	toggled, err := s.screens.Timetable().Select(r.Context(), req.Section, req.Row)
	if err != nil {
		s.writeViewError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"toggled": toggled})
}

func (s *Server) writeViewError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, view.ErrUnknownService),
		errors.Is(err, view.ErrNoSuchLocation),
		errors.Is(err, view.ErrNoSuchRow):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidLocation):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error("view request failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "view unavailable")
	}
}

// decodeBody decodes a JSON request body of at most maxBodyBytes, writing
// the error response itself when it fails.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return false
	}
	writeError(w, http.StatusBadRequest, "invalid request body")
	return false
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	sharedobs.WriteJSON(w, status, v)
}
