// FilePath: internal/metricservice/metricservice.query.go
package metricservice

import (
	"context"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/meteosense/hub/internal/models"
	"github.com/meteosense/hub/internal/validation"
)

// Aggregate runs an aggregation query over the stored measurements. Missing
// range bounds default to the last seven days; the validated window must span
// between one and thirty-one whole days. Metric types with no matching points
// are omitted from the result.
func (s *Service) Aggregate(ctx context.Context, req *models.MetricQueryRequest) ([]models.AggregatedMetricResponse, error) {
	started := time.Now()

	results, err := s.aggregate(ctx, req)
	s.mon.RecordQuery(string(req.Statistic), time.Since(started), err)
	return results, err
}

func (s *Service) aggregate(ctx context.Context, req *models.MetricQueryRequest) ([]models.AggregatedMetricResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rng := validation.NormalizeDateRange(req.StartDate, req.EndDate, s.now())
	if err := validation.ValidateDateRange(rng); err != nil {
		return nil, err
	}

	filter := models.MetricFilter{
		SensorIDs:   req.SensorIDs,
		MetricTypes: req.MetricTypes,
		Start:       rng.Start,
		End:         rng.End,
	}

	rows, err := s.metrics.AggregateByMetricType(ctx, filter, req.Statistic)
	if err != nil {
		return nil, err
	}

	// One count over the whole filter; every result row reports the same
	// total matched population.
	count, err := s.metrics.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	results := make([]models.AggregatedMetricResponse, 0, len(rows))
	for _, row := range rows {
		results = append(results, models.AggregatedMetricResponse{
			MetricType:  row.MetricType,
			Value:       row.Value.Round(2),
			Unit:        row.MetricType.Unit(),
			Statistic:   req.Statistic,
			StartDate:   rng.Start,
			EndDate:     rng.End,
			SensorIDs:   req.SensorIDs,
			SampleCount: count,
		})
	}

	nuts.L.Debugf("[MetricService] %s aggregation over %d types returned %d results",
		req.Statistic, len(req.MetricTypes), len(results))
	return results, nil
}
