// FilePath: internal/metricservice/metricservice.go
package metricservice

import (
	"context"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/meteosense/hub/internal/events"
	"github.com/meteosense/hub/internal/executor"
	"github.com/meteosense/hub/internal/monitoring"
	"github.com/meteosense/hub/internal/repository"
)

// Ingestion modes as reported in events and metrics labels.
const (
	ModeSync  = "sync"
	ModeAsync = "async"
	ModeBatch = "batch"
)

// Service coordinates measurement ingestion and aggregation queries. Async
// ingestion runs on an internal worker pool; the pool applies backpressure by
// executing on the submitting goroutine when saturated.
type Service struct {
	sensors repository.SensorRepository
	metrics repository.MetricDataRepository
	pool    *executor.Pool
	bus     events.Publisher
	mon     *monitoring.Service

	now func() time.Time
}

func NewService(sensors repository.SensorRepository, metrics repository.MetricDataRepository, bus events.Publisher, mon *monitoring.Service, poolCfg executor.Config) *Service {
	s := &Service{
		sensors: sensors,
		metrics: metrics,
		bus:     bus,
		mon:     mon,
		now:     time.Now,
	}
	s.pool = executor.New(poolCfg, s.handleAsyncItem)
	return s
}

func (s *Service) handleAsyncItem(ctx context.Context, item *executor.WorkItem) error {
	_, err := s.persist(ctx, &item.Request, ModeAsync)
	if err != nil {
		nuts.L.Errorf("[MetricService] Async ingestion failed for sensor(%s): %v", item.Request.SensorID, err)
	}
	return err
}

// Shutdown stops the worker pool, draining already-queued work for up to
// drainTimeout
func (s *Service) Shutdown(drainTimeout time.Duration) {
	s.pool.Shutdown(drainTimeout)
}
