package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stealthcompany.com/rdfload/internal/metrics"
)

// SetupRoutes configures and returns the HTTP router
func (s *Server) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	// Add metrics middleware to all routes
	r.Use(metrics.Middleware)

	// Routes
	r.HandleFunc("/notify", s.notifyHandler).Methods("POST")
	r.HandleFunc("/load", s.loadHandler).Methods("POST")
	r.HandleFunc("/check", s.checkHandler).Methods("POST")
	r.HandleFunc("/health", healthHandler).Methods("GET")

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.HandlerFor(
		metrics.GetInstance().Registry(),
		promhttp.HandlerOpts{},
	)).Methods("GET")

	return r
}
