// Package server exposes the speaker capability layer as a small JSON API
// for LAN controllers. It holds no state of its own: every request runs
// the protocol flow end to end against the device.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/w4/soncon/internal/api"
	"github.com/w4/soncon/internal/config"
	"github.com/w4/soncon/internal/discovery"
	"github.com/w4/soncon/internal/soap"
	"github.com/w4/soncon/internal/speaker"
	"github.com/w4/soncon/internal/topology"
)

// Service wires the protocol clients together per request.
type Service struct {
	soap      *soap.Client
	resolver  *topology.Resolver
	discovery *discovery.Service
	logger    *zap.Logger
}

// NewService builds the protocol clients from configuration.
func NewService(cfg config.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		soap:      soap.NewClient(cfg.SonosTimeout(), logger),
		resolver:  topology.NewResolver(cfg.SonosTimeout(), logger),
		discovery: discovery.NewService(cfg.SSDPWindow(), cfg.SonosTimeout(), cfg.StaticDeviceIPs, logger),
		logger:    logger,
	}
}

// Discover runs a full discovery scan.
func (s *Service) Discover(ctx context.Context) ([]*discovery.Identity, error) {
	return s.discovery.Discover(ctx)
}

// SpeakerAt loads the identity of the device at ip and binds a speaker to
// it.
func (s *Service) SpeakerAt(ctx context.Context, ip string) (*speaker.Speaker, error) {
	identity, err := s.discovery.Loader().Identity(ctx, ip)
	if err != nil {
		return nil, err
	}
	return speaker.New(identity, s.soap, s.resolver, s.logger), nil
}

// NewHandler builds the HTTP handler.
func NewHandler(cfg config.Config, logger *zap.Logger) http.Handler {
	service := NewService(cfg, logger)

	router := chi.NewRouter()
	router.Use(api.RequestIDMiddleware)
	router.Use(api.RecovererMiddleware(logger))
	router.Use(requestLoggerMiddleware(logger))

	RegisterRoutes(router, service)
	return router
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// requestLoggerMiddleware logs all incoming HTTP requests.
func requestLoggerMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)
			logger.Info("request",
				zap.String("request_id", api.GetRequestID(r)),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", wrapped.status),
				zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)))
		})
	}
}
