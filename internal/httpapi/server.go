// Package httpapi serves the calculation service over HTTP for browser
// front ends.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"unprompted-mcp/internal/api"
	"unprompted-mcp/internal/model"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// maxBodyBytes caps the request body. A full request is well under 1 KiB.
const maxBodyBytes = 64 << 10

// SimulateBody is the POST /api/simulate payload. It uses the browser-facing
// field names and is translated into an api.Request.
type SimulateBody struct {
	Config          *api.RawConfig `json:"config"`
	NumDays         *int           `json:"num_days_to_simulate,omitempty"`
	BinsPer24h      *int           `json:"bins_per_24h,omitempty"`
	CalculationType string         `json:"calculation_type,omitempty"`
}

// Request converts the body into the core request envelope.
func (b SimulateBody) Request() api.Request {
	return api.Request{
		UserConfig:      b.Config,
		NumDays:         b.NumDays,
		Bins:            b.BinsPer24h,
		CalculationType: b.CalculationType,
	}
}

// Server is the HTTP front of an api.Service.
type Server struct {
	service *api.Service
	router  *mux.Router
	srv     *http.Server
}

// NewServer wires the routes for service and prepares a listener on addr.
func NewServer(service *api.Service, addr string) *Server {
	s := &Server{service: service}
	s.router = s.setupRouter()
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(logRequests)

	router.HandleFunc("/api/simulate", s.handleSimulate).Methods(http.MethodPost)
	router.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)

	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, model.Errorf(model.InvalidRequestShape, "", "method %s not allowed on %s", r.Method, r.URL.Path))
	})

	return router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.srv.Addr).Msg("HTTP server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down the HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var body SimulateBody
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, api.DecodeError(err, "config"))
		return
	}

	res, err := s.service.Handle(r.Context(), body.Request())
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch model.KindOf(err) {
	case model.InvalidConfiguration, model.InvalidRequestShape, model.InvalidInput, model.LimitExceeded:
		return http.StatusBadRequest
	case model.Timeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, api.NewErrorBody(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Dur("elapsed", time.Since(start)).Msg("HTTP request")
	})
}
