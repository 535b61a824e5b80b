// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"errors"

	"github.com/meteosense/hub/internal/database"
	"github.com/meteosense/hub/internal/models"
)

var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicate indicates that a resource already exists
	ErrDuplicate = errors.New("resource already exists")
)

// SensorRepository defines the interface for sensor data operations
type SensorRepository interface {
	database.Repository
	Create(ctx context.Context, sensor *models.Sensor) error
	Get(ctx context.Context, id string) (*models.Sensor, error)
	GetByCode(ctx context.Context, code string) (*models.Sensor, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filters models.SensorFilters, offset, limit int) ([]*models.Sensor, error)
	CountByStatus(ctx context.Context, status models.SensorStatus) (int64, error)
}

// MetricDataRepository defines the interface for measurement persistence and
// aggregation. Save and SaveAll assign the point ID and RecordedAt on the
// passed-in points.
type MetricDataRepository interface {
	database.Repository
	Save(ctx context.Context, point *models.MetricPoint) error
	SaveAll(ctx context.Context, points []*models.MetricPoint) error
	AggregateByMetricType(ctx context.Context, filter models.MetricFilter, statistic models.StatisticType) ([]models.AggregatedValue, error)
	Count(ctx context.Context, filter models.MetricFilter) (int64, error)
}
