// FilePath: api/resources/resources.go
package resources

import (
	"encoding/json"
	"net/http"

	nuts "github.com/vaudience/go-nuts"

	"github.com/meteosense/hub/internal/errors"
	"github.com/meteosense/hub/internal/metricservice"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Metrics     *MetricHandlers
	Sensors     *SensorHandlers
	HealthCheck func(w http.ResponseWriter, r *http.Request)
	Monitoring  http.Handler
}

// NewResources creates a new Resources instance
func NewResources(svc *metricservice.Service) *Resources {
	return &Resources{
		Metrics: &MetricHandlers{service: svc},
		Sensors: &SensorHandlers{service: svc},
	}
}

// SetHealthCheck sets the health check handler
func (r *Resources) SetHealthCheck(h func(w http.ResponseWriter, r *http.Request)) {
	r.HealthCheck = h
}

// SetMonitoring sets the Prometheus scrape handler
func (r *Resources) SetMonitoring(h http.Handler) {
	r.Monitoring = h
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	nuts.L.Errorf("[API] %s", err.Error())
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

// respondServiceError maps a service error onto the wire, defaulting to a 500
// for anything that is not already an APIError
func respondServiceError(w http.ResponseWriter, err error, requestID string) {
	if apiErr := errors.AsAPIError(err); apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}
	respondWithError(w, errors.NewInternalError("unexpected error", err).WithRequestID(requestID))
}
