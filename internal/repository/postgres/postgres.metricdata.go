// FilePath: internal/repository/postgres/postgres.metricdata.go
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	nuts "github.com/vaudience/go-nuts"

	"github.com/meteosense/hub/internal/database"
	"github.com/meteosense/hub/internal/errors"
	"github.com/meteosense/hub/internal/models"
)

type MetricDataRepo struct {
	PostgresBaseRepo
}

func NewMetricDataRepository(db database.DB) (*MetricDataRepo, error) {
	repo := &MetricDataRepo{PostgresBaseRepo: PostgresBaseRepo{db: db}}
	if err := repo.initializeSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MetricDataRepo) initializeSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS metric_data (
			id TEXT PRIMARY KEY,
			sensor_id TEXT NOT NULL REFERENCES sensors(id),
			metric_type TEXT NOT NULL,
			value NUMERIC(10,2) NOT NULL,
			observed_at TIMESTAMPTZ NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_metric_data_composite
			ON metric_data(sensor_id, metric_type, observed_at)`,
	}

	for _, query := range queries {
		if _, err := r.db.GetDB().Exec(query); err != nil {
			return errors.NewDatabaseError("failed to initialize metric_data schema", err)
		}
	}
	return nil
}

func (r *MetricDataRepo) Save(ctx context.Context, point *models.MetricPoint) error {
	preparePoint(point)

	query := `
		INSERT INTO metric_data (id, sensor_id, metric_type, value, observed_at, recorded_at)
		VALUES (:id, :sensor_id, :metric_type, :value, :observed_at, :recorded_at)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, point)
	if err != nil {
		return errors.NewDatabaseError("failed to save metric point", err)
	}
	return nil
}

// SaveAll persists all points in a single transaction. Either every point
// lands or none does.
func (r *MetricDataRepo) SaveAll(ctx context.Context, points []*models.MetricPoint) error {
	tx, err := r.db.GetDB().BeginTxx(ctx, nil)
	if err != nil {
		return errors.NewDatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO metric_data (id, sensor_id, metric_type, value, observed_at, recorded_at)
		VALUES (:id, :sensor_id, :metric_type, :value, :observed_at, :recorded_at)`

	for _, point := range points {
		preparePoint(point)
		if _, err := tx.NamedExecContext(ctx, query, point); err != nil {
			return errors.NewDatabaseError("failed to save metric point in batch", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewDatabaseError("failed to commit batch", err)
	}

	nuts.L.Debugf("[MetricDataRepo] Batch saved %d metric points", len(points))
	return nil
}

// AggregateByMetricType runs the grouped aggregation in the database and
// returns one row per metric type with at least one matching point.
func (r *MetricDataRepo) AggregateByMetricType(ctx context.Context, filter models.MetricFilter, statistic models.StatisticType) ([]models.AggregatedValue, error) {
	var aggFn string
	switch statistic {
	case models.StatisticMin:
		aggFn = "MIN(value)"
	case models.StatisticMax:
		aggFn = "MAX(value)"
	case models.StatisticSum:
		aggFn = "SUM(value)"
	default:
		aggFn = "AVG(value)"
	}

	where, args := buildFilter(filter)
	query := fmt.Sprintf(
		`SELECT metric_type, %s AS value FROM metric_data WHERE %s GROUP BY metric_type`,
		aggFn, where)

	query, inArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to build aggregation query", err)
	}
	query = r.db.GetDB().Rebind(query)

	results := []models.AggregatedValue{}
	if err := r.db.GetDB().SelectContext(ctx, &results, query, inArgs...); err != nil {
		return nil, errors.NewDatabaseError("failed to aggregate metric data", err)
	}
	return results, nil
}

// Count returns the number of points matching the filter
func (r *MetricDataRepo) Count(ctx context.Context, filter models.MetricFilter) (int64, error) {
	where, args := buildFilter(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM metric_data WHERE %s`, where)

	query, inArgs, err := sqlx.In(query, args...)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to build count query", err)
	}
	query = r.db.GetDB().Rebind(query)

	var count int64
	if err := r.db.GetDB().GetContext(ctx, &count, query, inArgs...); err != nil {
		return 0, errors.NewDatabaseError("failed to count metric data", err)
	}
	return count, nil
}

// buildFilter renders the conjunctive filter as a WHERE clause with sqlx.In
// placeholders. The metric type and time range predicates are always
// present; the sensor predicate only when sensor IDs were given.
func buildFilter(filter models.MetricFilter) (string, []interface{}) {
	clauses := []string{
		"metric_type IN (?)",
		"observed_at BETWEEN ? AND ?",
	}
	args := []interface{}{
		metricTypeStrings(filter.MetricTypes),
		filter.Start,
		filter.End,
	}

	if len(filter.SensorIDs) > 0 {
		clauses = append(clauses, "sensor_id IN (?)")
		args = append(args, filter.SensorIDs)
	}

	return strings.Join(clauses, " AND "), args
}

func metricTypeStrings(types []models.MetricType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

// preparePoint assigns the server-side fields before insert
func preparePoint(point *models.MetricPoint) {
	if point.ID == "" {
		point.ID = nuts.NID("md", 12)
	}
	point.RecordedAt = time.Now().UTC()
}
