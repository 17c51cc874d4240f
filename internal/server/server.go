// Package server exposes the simulator over HTTP.
package server

import (
	"arduinosim/internal/metrics"
	"arduinosim/internal/sensor"
	"arduinosim/internal/sketch"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

type (
	Server struct {
		logger    *log.Logger
		sensors   *sensor.Generator
		scanner   *sketch.Scanner
		metrics   *metrics.Metrics
		accessLog io.Writer
		running   atomic.Bool
	}

	Option func(*Server)
)

func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics records request metrics and serves them on /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithAccessLog writes an Apache combined log line per request to w.
func WithAccessLog(w io.Writer) Option {
	return func(s *Server) {
		s.accessLog = w
	}
}

func New(sensors *sensor.Generator, opts ...Option) *Server {
	s := &Server{
		logger:  log.Default(),
		sensors: sensors,
		scanner: sketch.NewScanner(sensors),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetRunning sets the simulator_running flag reported by the health check.
func (s *Server) SetRunning(running bool) {
	s.running.Store(running)
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.requestID, s.recoverPanics, s.metrics.Middleware)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/simulate", s.simulate).Methods(http.MethodPost)
	// 18 digits always fit in an int; longer pins do not match the route.
	api.HandleFunc("/sensor/{sensor_type}/{pin:[0-9]{1,18}}", s.sensorReading).Methods(http.MethodGet)
	api.HandleFunc("/health", s.health).Methods(http.MethodGet)

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	var h http.Handler = r
	if s.accessLog != nil {
		h = handlers.CombinedLoggingHandler(s.accessLog, h)
	}

	return handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", requestIDHeader}),
		handlers.ExposedHeaders([]string{requestIDHeader}),
	)(h)
}
