// FilePath: internal/events/events.listeners.go
package events

import (
	"github.com/shopspring/decimal"
	nuts "github.com/vaudience/go-nuts"

	"github.com/meteosense/hub/internal/models"
)

// RegisterAuditListener logs every ingested measurement for audit purposes
func RegisterAuditListener(bus *Bus) {
	bus.Subscribe(func(evt MetricIngested) {
		nuts.L.Infof("[Audit] Metric ingested (%s): sensor=%s type=%s value=%s observed=%s",
			evt.Mode, evt.Point.SensorID, evt.Point.MetricType,
			evt.Point.Value.String(), evt.Point.ObservedAt.Format("2006-01-02T15:04:05"))
	})
}

// RegisterTemperatureAlertListener warns when a temperature reading exceeds
// the given threshold
func RegisterTemperatureAlertListener(bus *Bus, threshold decimal.Decimal) {
	bus.Subscribe(func(evt MetricIngested) {
		if evt.Point.MetricType != models.MetricTemperature {
			return
		}
		if evt.Point.Value.GreaterThan(threshold) {
			nuts.L.Warnf("[Alert] High temperature detected: %s%s at sensor %s",
				evt.Point.Value.String(), evt.Point.MetricType.Unit(), evt.Point.SensorID)
		}
	})
}
