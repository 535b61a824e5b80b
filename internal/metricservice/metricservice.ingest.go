// FilePath: internal/metricservice/metricservice.ingest.go
package metricservice

import (
	"context"
	"fmt"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/meteosense/hub/internal/errors"
	"github.com/meteosense/hub/internal/events"
	"github.com/meteosense/hub/internal/executor"
	"github.com/meteosense/hub/internal/models"
)

// Ingest validates and persists a single measurement synchronously. The
// referenced sensor must exist.
func (s *Service) Ingest(ctx context.Context, req *models.MetricDataRequest) (*models.MetricPoint, error) {
	if err := req.Validate(s.now()); err != nil {
		s.mon.RecordIngestionError(ModeSync)
		return nil, err
	}

	point, err := s.persist(ctx, req, ModeSync)
	if err != nil {
		s.mon.RecordIngestionError(ModeSync)
		return nil, err
	}
	return point, nil
}

// IngestAsync validates the measurement up front, then hands it to the worker
// pool. The returned future resolves once the point has been persisted; the
// caller is not obliged to wait on it.
func (s *Service) IngestAsync(ctx context.Context, req *models.MetricDataRequest) (*executor.Future, error) {
	if err := req.Validate(s.now()); err != nil {
		s.mon.RecordIngestionError(ModeAsync)
		return nil, err
	}

	future, err := s.pool.Submit(&executor.WorkItem{
		Request:     *req,
		SubmittedAt: s.now(),
	})
	if err != nil {
		s.mon.RecordIngestionError(ModeAsync)
		return nil, err
	}
	return future, nil
}

// IngestBatch persists a batch of measurements all-or-nothing: every request
// is validated and every referenced sensor resolved before anything is
// written, and all points land in a single transaction.
func (s *Service) IngestBatch(ctx context.Context, reqs []*models.MetricDataRequest) ([]*models.MetricPoint, error) {
	if len(reqs) == 0 {
		return nil, errors.NewValidationError("batch must contain at least one measurement", nil)
	}

	now := s.now()
	sensorCodes := make(map[string]string)

	for i, req := range reqs {
		if err := req.Validate(now); err != nil {
			s.mon.RecordIngestionError(ModeBatch)
			if apiErr := errors.AsAPIError(err); apiErr != nil {
				return nil, apiErr.WithDetails(fmt.Sprintf("batch index %d", i))
			}
			return nil, err
		}
		if _, seen := sensorCodes[req.SensorID]; seen {
			continue
		}
		sensor, err := s.sensors.Get(ctx, req.SensorID)
		if err != nil {
			s.mon.RecordIngestionError(ModeBatch)
			if errors.IsNotFound(err) {
				return nil, errors.NewNotFoundError(
					fmt.Sprintf("sensor not found: %s (batch index %d)", req.SensorID, i), err)
			}
			return nil, err
		}
		sensorCodes[req.SensorID] = sensor.Code
	}

	points := make([]*models.MetricPoint, len(reqs))
	for i, req := range reqs {
		points[i] = &models.MetricPoint{
			SensorID:   req.SensorID,
			SensorCode: sensorCodes[req.SensorID],
			MetricType: req.MetricType,
			Value:      req.Value,
			Unit:       req.MetricType.Unit(),
			ObservedAt: req.ObservedAt,
		}
	}

	if err := s.metrics.SaveAll(ctx, points); err != nil {
		s.mon.RecordIngestionError(ModeBatch)
		return nil, err
	}

	for _, point := range points {
		s.mon.RecordIngestion(ModeBatch, string(point.MetricType))
		s.publish(point, ModeBatch)
	}
	s.mon.RecordBatch(len(points))

	nuts.L.Infof("[MetricService] Batch ingested %d points from %d sensors", len(points), len(sensorCodes))
	return points, nil
}

// persist is the shared write path behind the sync and async modes
func (s *Service) persist(ctx context.Context, req *models.MetricDataRequest, mode string) (*models.MetricPoint, error) {
	sensor, err := s.sensors.Get(ctx, req.SensorID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewNotFoundError("sensor not found: "+req.SensorID, err)
		}
		return nil, err
	}

	point := &models.MetricPoint{
		SensorID:   sensor.ID,
		SensorCode: sensor.Code,
		MetricType: req.MetricType,
		Value:      req.Value,
		Unit:       req.MetricType.Unit(),
		ObservedAt: req.ObservedAt,
	}

	if err := s.metrics.Save(ctx, point); err != nil {
		return nil, err
	}

	s.mon.RecordIngestion(mode, string(point.MetricType))
	s.publish(point, mode)
	return point, nil
}

func (s *Service) publish(point *models.MetricPoint, mode string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.MetricIngested{
		Point:      *point,
		Mode:       mode,
		OccurredAt: time.Now().UTC(),
	})
}
