// FilePath: internal/models/models.metric.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MetricType identifies the kind of weather measurement a point carries
type MetricType string

const (
	MetricTemperature MetricType = "TEMPERATURE"
	MetricHumidity    MetricType = "HUMIDITY"
	MetricWindSpeed   MetricType = "WIND_SPEED"
	MetricPressure    MetricType = "PRESSURE"
)

// Valid reports whether the metric type is one of the known kinds
func (m MetricType) Valid() bool {
	switch m {
	case MetricTemperature, MetricHumidity, MetricWindSpeed, MetricPressure:
		return true
	}
	return false
}

// Unit returns the unit of measurement for the metric type
func (m MetricType) Unit() string {
	switch m {
	case MetricTemperature:
		return "°C"
	case MetricHumidity:
		return "%"
	case MetricWindSpeed:
		return "km/h"
	case MetricPressure:
		return "hPa"
	}
	return ""
}

// DisplayName returns a human readable name for the metric type
func (m MetricType) DisplayName() string {
	switch m {
	case MetricTemperature:
		return "Temperature"
	case MetricHumidity:
		return "Humidity"
	case MetricWindSpeed:
		return "Wind Speed"
	case MetricPressure:
		return "Atmospheric Pressure"
	}
	return string(m)
}

// StatisticType identifies the aggregation applied to matched points
type StatisticType string

const (
	StatisticMin StatisticType = "MIN"
	StatisticMax StatisticType = "MAX"
	StatisticAvg StatisticType = "AVG"
	StatisticSum StatisticType = "SUM"
)

// Valid reports whether the statistic is a supported aggregation
func (s StatisticType) Valid() bool {
	switch s {
	case StatisticMin, StatisticMax, StatisticAvg, StatisticSum:
		return true
	}
	return false
}

// MetricPoint represents a single persisted measurement. Points are immutable
// once recorded; RecordedAt is assigned by the server at persistence time.
type MetricPoint struct {
	ID         string          `json:"id" db:"id"`
	SensorID   string          `json:"sensor_id" db:"sensor_id"`
	SensorCode string          `json:"sensor_code,omitempty" db:"sensor_code"`
	MetricType MetricType      `json:"metric_type" db:"metric_type"`
	Value      decimal.Decimal `json:"value" db:"value"`
	Unit       string          `json:"unit" db:"-"`
	ObservedAt time.Time       `json:"observed_at" db:"observed_at"`
	RecordedAt time.Time       `json:"recorded_at" db:"recorded_at"`
}

// MetricFilter is the storage-agnostic filter the repositories interpret.
// SensorIDs empty means all sensors; MetricTypes is required non-empty;
// the time range is inclusive on both ends.
type MetricFilter struct {
	SensorIDs   []string
	MetricTypes []MetricType
	Start       time.Time
	End         time.Time
}

// AggregatedValue is one (metricType, value) pair returned by the grouped
// aggregation in the storage layer
type AggregatedValue struct {
	MetricType MetricType      `db:"metric_type"`
	Value      decimal.Decimal `db:"value"`
}
