// FilePath: api/resources/api.resource.sensors.go
package resources

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	nuts "github.com/vaudience/go-nuts"

	"github.com/meteosense/hub/internal/errors"
	"github.com/meteosense/hub/internal/metricservice"
	"github.com/meteosense/hub/internal/models"
)

var queryDecoder = schema.NewDecoder()

func init() {
	queryDecoder.IgnoreUnknownKeys(true)
}

// SensorHandlers encapsulates the sensor-related HTTP handlers
type SensorHandlers struct {
	service *metricservice.Service
}

// @Summary Register a new sensor
// @Description Register a weather sensor. The code must be unique; status
// defaults to ACTIVE.
// @Tags sensors
// @Accept json
// @Produce json
// @Param sensor body models.Sensor true "Sensor details"
// @Success 201 {object} models.Sensor
// @Failure 400 {object} errors.APIError
// @Router /sensors [post]
func (h *SensorHandlers) CreateSensor(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var sensor models.Sensor
	if err := json.NewDecoder(r.Body).Decode(&sensor); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := h.service.CreateSensor(r.Context(), &sensor); err != nil {
		respondServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusCreated, sensor)
}

// @Summary Get a sensor
// @Tags sensors
// @Produce json
// @Param id path string true "Sensor ID"
// @Success 200 {object} models.Sensor
// @Failure 404 {object} errors.APIError
// @Router /sensors/{id} [get]
func (h *SensorHandlers) GetSensor(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	id := mux.Vars(r)["id"]

	sensor, err := h.service.GetSensor(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, sensor)
}

// @Summary List sensors
// @Description List registered sensors with optional status and code filters
// @Tags sensors
// @Produce json
// @Param status query string false "Sensor status filter"
// @Param code query string false "Sensor code filter"
// @Param offset query int false "Pagination offset"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {array} models.Sensor
// @Router /sensors [get]
func (h *SensorHandlers) ListSensors(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var filters models.SensorFilters
	if err := queryDecoder.Decode(&filters, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	offset, limit := parsePagination(r)
	sensors, err := h.service.ListSensors(r.Context(), filters, offset, limit)
	if err != nil {
		respondServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, sensors)
}

func parsePagination(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return offset, limit
}
