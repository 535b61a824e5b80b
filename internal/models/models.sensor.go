// FilePath: internal/models/models.sensor.go
package models

import "time"

// SensorStatus represents the operational state of a weather sensor
type SensorStatus string

const (
	SensorStatusActive      SensorStatus = "ACTIVE"
	SensorStatusInactive    SensorStatus = "INACTIVE"
	SensorStatusMaintenance SensorStatus = "MAINTENANCE"
)

// Valid reports whether the status is one of the known states
func (s SensorStatus) Valid() bool {
	switch s {
	case SensorStatusActive, SensorStatusInactive, SensorStatusMaintenance:
		return true
	}
	return false
}

// Sensor represents a physical weather sensor. Each sensor has a unique code
// and can report multiple metric types.
type Sensor struct {
	ID        string       `json:"id" db:"id"`
	Code      string       `json:"code" db:"code"`
	Location  string       `json:"location,omitempty" db:"location"`
	Status    SensorStatus `json:"status" db:"status"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}

// SensorFilters defines the available filter options for listing sensors
type SensorFilters struct {
	Status SensorStatus `schema:"status"`
	Code   string       `schema:"code"`
}
