// FilePath: internal/metricservice/metricservice.sensors.go
package metricservice

import (
	"context"

	nuts "github.com/vaudience/go-nuts"

	"github.com/meteosense/hub/internal/errors"
	"github.com/meteosense/hub/internal/models"
)

// CreateSensor registers a new sensor. The code must be unique; status
// defaults to ACTIVE when omitted.
func (s *Service) CreateSensor(ctx context.Context, sensor *models.Sensor) error {
	if sensor.Code == "" {
		return errors.NewValidationError("sensor code is required", nil)
	}
	if sensor.Status == "" {
		sensor.Status = models.SensorStatusActive
	}
	if !sensor.Status.Valid() {
		return errors.NewValidationError("unknown sensor status: "+string(sensor.Status), nil)
	}

	if _, err := s.sensors.GetByCode(ctx, sensor.Code); err == nil {
		return errors.NewValidationError("sensor code already in use: "+sensor.Code, nil)
	} else if !errors.IsNotFound(err) {
		return err
	}

	if err := s.sensors.Create(ctx, sensor); err != nil {
		return err
	}

	nuts.L.Infof("[MetricService] Registered sensor(%s) code(%s)", sensor.ID, sensor.Code)
	return nil
}

func (s *Service) GetSensor(ctx context.Context, id string) (*models.Sensor, error) {
	return s.sensors.Get(ctx, id)
}

func (s *Service) ListSensors(ctx context.Context, filters models.SensorFilters, offset, limit int) ([]*models.Sensor, error) {
	return s.sensors.List(ctx, filters, offset, limit)
}

// CountActiveSensors is used by the health endpoint
func (s *Service) CountActiveSensors(ctx context.Context) (int64, error) {
	return s.sensors.CountByStatus(ctx, models.SensorStatusActive)
}
