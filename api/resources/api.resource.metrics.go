// FilePath: api/resources/api.resource.metrics.go
package resources

import (
	"encoding/json"
	"net/http"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/meteosense/hub/internal/errors"
	"github.com/meteosense/hub/internal/metricservice"
	"github.com/meteosense/hub/internal/models"
	"github.com/meteosense/hub/internal/validation"
)

// MetricHandlers encapsulates the measurement ingestion and query handlers
type MetricHandlers struct {
	service *metricservice.Service
}

// @Summary Ingest a measurement
// @Description Validate and persist a single sensor measurement synchronously
// @Tags metrics
// @Accept json
// @Produce json
// @Param measurement body models.MetricDataRequest true "Measurement"
// @Success 201 {object} models.MetricPoint
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Failure 429 {object} errors.APIError
// @Router /metrics [post]
func (h *MetricHandlers) IngestMetric(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var req models.MetricDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	point, err := h.service.Ingest(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusCreated, point)
}

// @Summary Ingest a measurement asynchronously
// @Description Accept a measurement for background persistence. The response
// acknowledges acceptance only; the point is written by a worker.
// @Tags metrics
// @Accept json
// @Produce json
// @Param measurement body models.MetricDataRequest true "Measurement"
// @Success 202 {object} map[string]string
// @Failure 400 {object} errors.APIError
// @Failure 429 {object} errors.APIError
// @Failure 503 {object} errors.APIError
// @Router /metrics/async [post]
func (h *MetricHandlers) IngestMetricAsync(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var req models.MetricDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if _, err := h.service.IngestAsync(r.Context(), &req); err != nil {
		respondServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusAccepted, map[string]string{
		"status":  "accepted",
		"message": "measurement queued for processing",
	})
}

// @Summary Ingest a batch of measurements
// @Description Persist a batch of measurements atomically. If any measurement
// is invalid or references an unknown sensor, nothing is persisted.
// @Tags metrics
// @Accept json
// @Produce json
// @Param measurements body []models.MetricDataRequest true "Measurements"
// @Success 201 {array} models.MetricPoint
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Failure 429 {object} errors.APIError
// @Router /metrics/batch [post]
func (h *MetricHandlers) IngestMetricsBatch(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var reqs []*models.MetricDataRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	points, err := h.service.IngestBatch(r.Context(), reqs)
	if err != nil {
		respondServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusCreated, points)
}

// @Summary Query aggregated measurements
// @Description Aggregate stored measurements with MIN, MAX, AVG or SUM per
// metric type. Omitted range bounds default to the last 7 days; the window
// must span 1 to 31 days. Types without matching points are omitted.
// @Tags metrics
// @Accept json
// @Produce json
// @Param query body models.MetricQueryRequest true "Query criteria"
// @Success 200 {array} models.AggregatedMetricResponse
// @Failure 400 {object} errors.APIError
// @Failure 429 {object} errors.APIError
// @Router /metrics/query [post]
func (h *MetricHandlers) QueryMetrics(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var req models.MetricQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	// Reject bad windows at the boundary; the service applies the same rules
	rng := validation.NormalizeDateRange(req.StartDate, req.EndDate, time.Now())
	if err := validation.ValidateDateRange(rng); err != nil {
		respondServiceError(w, err, requestID)
		return
	}

	results, err := h.service.Aggregate(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, results)
}
