// Package server exposes the platform over HTTP: a JSON API for simulations
// and studies, a websocket stream for study progress and the prometheus
// scrape endpoint.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/cheatbot1234/thrust-vector-forge/internal/metrics"
	"github.com/cheatbot1234/thrust-vector-forge/internal/platform"
)

const drainTimeout = 5 * time.Second

type Config struct {
	Forge   *platform.Forge
	Metrics *metrics.Sink
}

type Server struct {
	forge    *platform.Forge
	sink     *metrics.Sink
	router   *mux.Router
	upgrader websocket.Upgrader
}

func New(cfg Config) (*Server, error) {
	if cfg.Forge == nil {
		return nil, fmt.Errorf("forge is required")
	}
	s := &Server{
		forge: cfg.Forge,
		sink:  cfg.Metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	router := mux.NewRouter()
	router.Use(corsMiddleware, loggingMiddleware)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/simulate", s.handleSimulate).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/simulations", s.handleSimulations).Methods(http.MethodGet)
	api.HandleFunc("/simulations/{id}", s.handleGetSimulation).Methods(http.MethodGet)
	api.HandleFunc("/studies", s.handleCreateStudy).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/studies", s.handleListStudies).Methods(http.MethodGet)
	api.HandleFunc("/studies/{id}", s.handleGetStudy).Methods(http.MethodGet)
	api.HandleFunc("/studies/{id}", s.handleDeleteStudy).Methods(http.MethodDelete, http.MethodOptions)
	api.HandleFunc("/studies/{id}/run", s.handleRunStudy).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/studies/{id}/continue", s.handleContinueStudy).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/studies/{id}/stop", s.handleStopStudy).Methods(http.MethodPost, http.MethodOptions)

	router.HandleFunc("/ws/studies/{id}", s.handleStudySocket).Methods(http.MethodGet)
	router.Handle("/metrics", s.sink.Handler()).Methods(http.MethodGet)

	s.router = router
}

// Router returns the handler tree, mainly for tests.
func (s *Server) Router() http.Handler { return s.router }

// Run serves until the context is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	log.WithFields(log.Fields{"addr": addr}).Info("http server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		log.Info("http server draining")
		return httpServer.Shutdown(shutdownCtx)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   recorder.status,
			"duration": time.Since(start).String(),
		}).Info("request handled")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack keeps websocket upgrades working through the logging wrapper.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}
