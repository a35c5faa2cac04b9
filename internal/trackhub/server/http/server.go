// Package http serves the hub's REST API, the WebSocket live feed, and
// the health and metrics endpoints.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fleetglass/fleetglass/internal/trackhub/core/service"
	"github.com/fleetglass/fleetglass/pkg/log"
	"github.com/fleetglass/fleetglass/pkg/options"
)

type Server struct {
	server  *http.Server
	options *options.HttpOptions
	svc     *service.Service
}

func NewServer(opts *options.HttpOptions, svc *service.Service) *Server {
	s := &Server{
		options: opts,
		svc:     svc,
	}

	router := mux.NewRouter()

	// Liveness and Readiness Probes
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Handle("/metrics", promhttp.Handler())

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/telemetry", s.handleSubmitTelemetry).Methods(http.MethodPost)
	api.HandleFunc("/vehicles", s.handleListVehicles).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}", s.handleGetVehicle).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}/history", s.handleVehicleHistory).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}/commands", s.handleIssueCommand).Methods(http.MethodPost)
	api.HandleFunc("/vehicles/{id}/commands/next", s.handlePollCommand).Methods(http.MethodGet)

	router.HandleFunc("/ws", s.handleWebSocket)

	s.server = &http.Server{
		Addr:    opts.Addr,
		Handler: router,
	}
	return s
}

// Handler exposes the routing tree for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start(ctx context.Context) error {
	log.Info("Starting HTTP Server", "addr", s.server.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}
