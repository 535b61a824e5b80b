// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/shopspring/decimal"
	nuts "github.com/vaudience/go-nuts"

	"github.com/meteosense/hub/api"
	"github.com/meteosense/hub/internal/config"
	"github.com/meteosense/hub/internal/database"
	"github.com/meteosense/hub/internal/events"
	"github.com/meteosense/hub/internal/executor"
	"github.com/meteosense/hub/internal/metricservice"
	"github.com/meteosense/hub/internal/monitoring"
	"github.com/meteosense/hub/internal/repository/postgres"
)

// Temperature readings above this value trigger an alert log line
var temperatureAlertThreshold = decimal.NewFromInt(50)

// Server represents our HTTP server
type Server struct {
	config     *config.Config
	srv        *http.Server
	service    *metricservice.Service
	monitoring *monitoring.Service
	db         database.DB
	bus        *events.Bus
	redisPub   *events.RedisPublisher
	sensors    *postgres.SensorRepo
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	return &Server{config: cfg}
}

// Start wires up the service and begins listening for requests. It blocks
// until an interrupt or termination signal arrives, then shuts down
// gracefully: HTTP first, then the ingestion pool drain, then the event bus.
func (s *Server) Start() error {
	if err := s.initialize(); err != nil {
		return err
	}

	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

func (s *Server) initialize() error {
	db, err := database.NewPostgresDB(s.config.Database.Metrics)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	sensors, err := postgres.NewSensorRepository(db)
	if err != nil {
		return err
	}
	s.sensors = sensors

	metricData, err := postgres.NewMetricDataRepository(db)
	if err != nil {
		return err
	}

	s.bus = events.NewBus(256)
	events.RegisterAuditListener(s.bus)
	events.RegisterTemperatureAlertListener(s.bus, temperatureAlertThreshold)

	if s.config.Redis.Enabled {
		redisPub, err := events.NewRedisPublisher(s.config.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		redisPub.Register(s.bus)
		s.redisPub = redisPub
	}

	s.monitoring = monitoring.NewService()
	s.service = metricservice.NewService(sensors, metricData, s.bus, s.monitoring, executor.Config{
		CoreWorkers:   s.config.Ingest.CoreWorkers,
		MaxWorkers:    s.config.Ingest.MaxWorkers,
		QueueCapacity: s.config.Ingest.QueueCapacity,
		KeepAlive:     s.config.Ingest.KeepAlive,
	})

	router := api.NewRouter(s.service, s.config.RateLimit, s.monitoring)
	router.Resources().SetHealthCheck(s.handleHealth())

	handler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(router)
	handler = handlers.CombinedLoggingHandler(os.Stdout, handler)

	s.srv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler:      handler,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}
	return nil
}

// waitForShutdown waits for interrupt signal and gracefully shuts down
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	// Drain queued async ingestions before closing downstream components
	s.service.Shutdown(s.config.Ingest.DrainTimeout)
	s.bus.Close()
	if s.redisPub != nil {
		if err := s.redisPub.Close(); err != nil {
			nuts.L.Errorf("[Server] Error closing redis publisher: %v", err)
		}
	}
	if err := s.db.Close(); err != nil {
		nuts.L.Errorf("[Server] Error closing database: %v", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

// handleHealth reports liveness plus a couple of cheap readiness signals
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := "ok"
		code := http.StatusOK
		if err := s.db.Ping(ctx); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		activeSensors, err := s.service.CountActiveSensors(ctx)
		if err != nil {
			activeSensors = -1
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		fmt.Fprintf(w, `{"status":%q,"version":%q,"active_sensors":%d}`,
			status, nuts.GetVersion(), activeSensors)
	}
}
