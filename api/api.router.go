// FilePath: api/api.router.go
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/meteosense/hub/api/middleware"
	"github.com/meteosense/hub/api/resources"
	"github.com/meteosense/hub/internal/config"
	"github.com/meteosense/hub/internal/metricservice"
	"github.com/meteosense/hub/internal/monitoring"
)

type Router struct {
	router    *mux.Router
	ratelimit *middleware.RateLimitMiddleware
	resources *resources.Resources
}

func NewRouter(svc *metricservice.Service, rateLimitCfg config.RateLimitConfig, mon *monitoring.Service) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		ratelimit: middleware.NewRateLimitMiddleware(rateLimitCfg, mon),
		resources: resources.NewResources(svc),
	}
	r.resources.SetMonitoring(mon.Handler())

	r.setupRoutes()
	return r
}

// Resources exposes the handler set so the server can attach the health check
func (r *Router) Resources() *resources.Resources {
	return r.resources
}

func (r *Router) setupRoutes() {
	// API version prefix
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Operational routes, never rate limited
	api.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		if r.resources.HealthCheck != nil {
			r.resources.HealthCheck(w, req)
		}
	}).Methods(http.MethodGet)
	api.Handle("/monitoring/prometheus", r.resources.Monitoring).Methods(http.MethodGet)

	// Measurements
	metrics := api.PathPrefix("/metrics").Subrouter()
	metrics.Use(r.ratelimit.Limit)
	metrics.HandleFunc("", r.resources.Metrics.IngestMetric).Methods(http.MethodPost)
	metrics.HandleFunc("/async", r.resources.Metrics.IngestMetricAsync).Methods(http.MethodPost)
	metrics.HandleFunc("/batch", r.resources.Metrics.IngestMetricsBatch).Methods(http.MethodPost)
	metrics.HandleFunc("/query", r.resources.Metrics.QueryMetrics).Methods(http.MethodPost)

	// Sensors
	sensors := api.PathPrefix("/sensors").Subrouter()
	sensors.HandleFunc("", r.resources.Sensors.ListSensors).Methods(http.MethodGet)
	sensors.HandleFunc("", r.resources.Sensors.CreateSensor).Methods(http.MethodPost)
	sensors.HandleFunc("/{id}", r.resources.Sensors.GetSensor).Methods(http.MethodGet)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
