// FilePath: internal/models/api.models.metrics.go
package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/meteosense/hub/internal/errors"
)

// Measurement value domain accepted from sensors.
var (
	minMetricValue = decimal.NewFromInt(-100)
	maxMetricValue = decimal.NewFromInt(1000)
)

// MetricDataRequest is the inbound payload for ingesting one measurement
type MetricDataRequest struct {
	SensorID   string          `json:"sensor_id"`
	MetricType MetricType      `json:"metric_type"`
	Value      decimal.Decimal `json:"value"`
	ObservedAt time.Time       `json:"observed_at"`
}

// Validate checks the request against the measurement domain rules
func (r *MetricDataRequest) Validate(now time.Time) error {
	if r.SensorID == "" {
		return errors.NewValidationError("sensor_id is required", nil)
	}
	if !r.MetricType.Valid() {
		return errors.NewValidationError("unknown metric_type: "+string(r.MetricType), nil)
	}
	if r.Value.LessThan(minMetricValue) {
		return errors.NewValidationError("value must be >= -100", nil)
	}
	if r.Value.GreaterThan(maxMetricValue) {
		return errors.NewValidationError("value must be <= 1000", nil)
	}
	if r.ObservedAt.IsZero() {
		return errors.NewValidationError("observed_at is required", nil)
	}
	if r.ObservedAt.After(now) {
		return errors.NewValidationError("observed_at cannot be in the future", nil)
	}
	return nil
}

// MetricQueryRequest is the inbound payload for an aggregation query.
// StartDate and EndDate are optional; defaults are applied by the date range
// validator (last 7 days ending now).
type MetricQueryRequest struct {
	SensorIDs   []string      `json:"sensor_ids,omitempty"`
	MetricTypes []MetricType  `json:"metric_types"`
	Statistic   StatisticType `json:"statistic"`
	StartDate   *time.Time    `json:"start_date,omitempty"`
	EndDate     *time.Time    `json:"end_date,omitempty"`
}

// Validate checks the non-range query criteria
func (r *MetricQueryRequest) Validate() error {
	if len(r.MetricTypes) == 0 {
		return errors.NewValidationError("at least one metric type must be specified", nil)
	}
	for _, mt := range r.MetricTypes {
		if !mt.Valid() {
			return errors.NewValidationError("unknown metric_type: "+string(mt), nil)
		}
	}
	if !r.Statistic.Valid() {
		return errors.NewValidationError("unknown statistic: "+string(r.Statistic), nil)
	}
	return nil
}

// AggregatedMetricResponse is one aggregation result, one per metric type
// with at least one matching point
type AggregatedMetricResponse struct {
	MetricType  MetricType      `json:"metric_type"`
	Value       decimal.Decimal `json:"value"`
	Unit        string          `json:"unit"`
	Statistic   StatisticType   `json:"statistic"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	SensorIDs   []string        `json:"sensor_ids,omitempty"`
	SampleCount int64           `json:"sample_count"`
}
