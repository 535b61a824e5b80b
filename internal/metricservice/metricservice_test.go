// FilePath: internal/metricservice/metricservice_test.go
package metricservice

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meteosense/hub/internal/database"
	"github.com/meteosense/hub/internal/errors"
	"github.com/meteosense/hub/internal/events"
	"github.com/meteosense/hub/internal/executor"
	"github.com/meteosense/hub/internal/models"
	"github.com/meteosense/hub/internal/monitoring"
)

var testNow = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

type fakeSensorRepo struct {
	sensors map[string]*models.Sensor
}

func (f *fakeSensorRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	return nil, nil
}

func (f *fakeSensorRepo) Create(ctx context.Context, sensor *models.Sensor) error {
	f.sensors[sensor.ID] = sensor
	return nil
}

func (f *fakeSensorRepo) Get(ctx context.Context, id string) (*models.Sensor, error) {
	sensor, ok := f.sensors[id]
	if !ok {
		return nil, errors.NewNotFoundError("sensor not found", nil)
	}
	return sensor, nil
}

func (f *fakeSensorRepo) GetByCode(ctx context.Context, code string) (*models.Sensor, error) {
	for _, sensor := range f.sensors {
		if sensor.Code == code {
			return sensor, nil
		}
	}
	return nil, errors.NewNotFoundError("sensor not found", nil)
}

func (f *fakeSensorRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := f.sensors[id]
	return ok, nil
}

func (f *fakeSensorRepo) List(ctx context.Context, filters models.SensorFilters, offset, limit int) ([]*models.Sensor, error) {
	out := []*models.Sensor{}
	for _, sensor := range f.sensors {
		out = append(out, sensor)
	}
	return out, nil
}

func (f *fakeSensorRepo) CountByStatus(ctx context.Context, status models.SensorStatus) (int64, error) {
	var n int64
	for _, sensor := range f.sensors {
		if sensor.Status == status {
			n++
		}
	}
	return n, nil
}

type fakeMetricRepo struct {
	saved        []*models.MetricPoint
	saveAllCalls int

	aggRows    []models.AggregatedValue
	count      int64
	countCalls int
	countWith  models.MetricFilter
	lastFilter models.MetricFilter
	lastStat   models.StatisticType
}

func (f *fakeMetricRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	return nil, nil
}

func (f *fakeMetricRepo) Save(ctx context.Context, point *models.MetricPoint) error {
	point.ID = fmt.Sprintf("md_%d", len(f.saved))
	point.RecordedAt = testNow
	f.saved = append(f.saved, point)
	return nil
}

func (f *fakeMetricRepo) SaveAll(ctx context.Context, points []*models.MetricPoint) error {
	f.saveAllCalls++
	f.saved = append(f.saved, points...)
	return nil
}

func (f *fakeMetricRepo) AggregateByMetricType(ctx context.Context, filter models.MetricFilter, statistic models.StatisticType) ([]models.AggregatedValue, error) {
	f.lastFilter = filter
	f.lastStat = statistic
	return f.aggRows, nil
}

func (f *fakeMetricRepo) Count(ctx context.Context, filter models.MetricFilter) (int64, error) {
	f.countCalls++
	f.countWith = filter
	return f.count, nil
}

type capturingPublisher struct {
	events []events.MetricIngested
}

func (p *capturingPublisher) Publish(evt events.MetricIngested) {
	p.events = append(p.events, evt)
}

func newTestService(t *testing.T) (*Service, *fakeSensorRepo, *fakeMetricRepo, *capturingPublisher) {
	t.Helper()
	sensors := &fakeSensorRepo{sensors: map[string]*models.Sensor{
		"sn_1": {ID: "sn_1", Code: "WS-BERLIN-01", Status: models.SensorStatusActive},
		"sn_2": {ID: "sn_2", Code: "WS-HAMBURG-01", Status: models.SensorStatusActive},
	}}
	metrics := &fakeMetricRepo{}
	pub := &capturingPublisher{}
	svc := NewService(sensors, metrics, pub, monitoring.NewService(), executor.Config{
		CoreWorkers:   2,
		MaxWorkers:    4,
		QueueCapacity: 16,
		KeepAlive:     time.Second,
	})
	svc.now = func() time.Time { return testNow }
	t.Cleanup(func() { svc.Shutdown(time.Second) })
	return svc, sensors, metrics, pub
}

func validRequest(sensorID string, value float64) *models.MetricDataRequest {
	return &models.MetricDataRequest{
		SensorID:   sensorID,
		MetricType: models.MetricTemperature,
		Value:      decimal.NewFromFloat(value),
		ObservedAt: testNow.Add(-time.Hour),
	}
}

func TestIngest_PersistsAndPublishes(t *testing.T) {
	svc, _, metrics, pub := newTestService(t)

	point, err := svc.Ingest(context.Background(), validRequest("sn_1", 21.5))
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if point.SensorCode != "WS-BERLIN-01" {
		t.Errorf("expected sensor code WS-BERLIN-01, got %q", point.SensorCode)
	}
	if point.Unit != "°C" {
		t.Errorf("expected unit °C, got %q", point.Unit)
	}
	if len(metrics.saved) != 1 {
		t.Fatalf("expected 1 saved point, got %d", len(metrics.saved))
	}
	if len(pub.events) != 1 || pub.events[0].Mode != ModeSync {
		t.Errorf("expected one sync event, got %+v", pub.events)
	}
}

func TestIngest_SensorNotFound(t *testing.T) {
	svc, _, metrics, _ := newTestService(t)

	_, err := svc.Ingest(context.Background(), validRequest("sn_missing", 21.5))
	if !errors.IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if len(metrics.saved) != 0 {
		t.Errorf("nothing should have been persisted, got %d points", len(metrics.saved))
	}
}

func TestIngest_RejectsFutureObservation(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	req := validRequest("sn_1", 21.5)
	req.ObservedAt = testNow.Add(time.Hour)

	_, err := svc.Ingest(context.Background(), req)
	if !errors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestIngest_RejectsValueOutsideDomain(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	for _, value := range []float64{-100.01, 1000.01} {
		_, err := svc.Ingest(context.Background(), validRequest("sn_1", value))
		if !errors.IsValidation(err) {
			t.Errorf("value %v: expected validation error, got %v", value, err)
		}
	}
}

func TestIngestAsync_ResolvesFuture(t *testing.T) {
	svc, _, metrics, pub := newTestService(t)

	future, err := svc.IngestAsync(context.Background(), validRequest("sn_1", 21.5))
	if err != nil {
		t.Fatalf("IngestAsync failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := future.Wait(ctx); err != nil {
		t.Fatalf("future resolved with error: %v", err)
	}

	svc.Shutdown(time.Second)
	if len(metrics.saved) != 1 {
		t.Fatalf("expected 1 saved point, got %d", len(metrics.saved))
	}
	if len(pub.events) != 1 || pub.events[0].Mode != ModeAsync {
		t.Errorf("expected one async event, got %+v", pub.events)
	}
}

func TestIngestBatch_AllOrNothing(t *testing.T) {
	svc, _, metrics, pub := newTestService(t)

	reqs := []*models.MetricDataRequest{
		validRequest("sn_1", 21.5),
		validRequest("sn_missing", 18.0),
		validRequest("sn_2", 19.5),
	}

	_, err := svc.IngestBatch(context.Background(), reqs)
	if !errors.IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if metrics.saveAllCalls != 0 || len(metrics.saved) != 0 {
		t.Errorf("batch with unknown sensor must persist nothing, saved %d", len(metrics.saved))
	}
	if len(pub.events) != 0 {
		t.Errorf("no events expected for rejected batch, got %d", len(pub.events))
	}
}

func TestIngestBatch_SavesAllInOneCall(t *testing.T) {
	svc, _, metrics, pub := newTestService(t)

	reqs := []*models.MetricDataRequest{
		validRequest("sn_1", 21.5),
		validRequest("sn_2", 19.5),
	}

	points, err := svc.IngestBatch(context.Background(), reqs)
	if err != nil {
		t.Fatalf("IngestBatch failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if metrics.saveAllCalls != 1 {
		t.Errorf("expected a single SaveAll call, got %d", metrics.saveAllCalls)
	}
	if points[1].SensorCode != "WS-HAMBURG-01" {
		t.Errorf("sensor code not resolved for second point: %q", points[1].SensorCode)
	}
	if len(pub.events) != 2 {
		t.Errorf("expected one event per point, got %d", len(pub.events))
	}
}

func TestIngestBatch_RejectsEmpty(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.IngestBatch(context.Background(), nil)
	if !errors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func queryRequest(statistic models.StatisticType) *models.MetricQueryRequest {
	return &models.MetricQueryRequest{
		MetricTypes: []models.MetricType{models.MetricTemperature},
		Statistic:   statistic,
	}
}

func TestAggregate_RoundsToTwoDecimals(t *testing.T) {
	svc, _, metrics, _ := newTestService(t)
	metrics.count = 3
	metrics.aggRows = []models.AggregatedValue{
		{MetricType: models.MetricTemperature, Value: decimal.RequireFromString("23.456")},
	}

	results, err := svc.Aggregate(context.Background(), queryRequest(models.StatisticAvg))
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if got := results[0].Value.String(); got != "23.46" {
		t.Errorf("expected 23.46, got %s", got)
	}
	if results[0].SampleCount != 3 {
		t.Errorf("expected sample count 3, got %d", results[0].SampleCount)
	}
	if results[0].Unit != "°C" {
		t.Errorf("expected unit °C, got %q", results[0].Unit)
	}
}

func TestAggregate_HalfUpAtMidpoint(t *testing.T) {
	svc, _, metrics, _ := newTestService(t)
	metrics.aggRows = []models.AggregatedValue{
		{MetricType: models.MetricHumidity, Value: decimal.RequireFromString("50.005")},
	}

	req := queryRequest(models.StatisticAvg)
	req.MetricTypes = []models.MetricType{models.MetricHumidity}

	results, err := svc.Aggregate(context.Background(), req)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if got := results[0].Value.String(); got != "50.01" {
		t.Errorf("expected 50.01, got %s", got)
	}
}

func TestAggregate_SingleCountSharedAcrossRows(t *testing.T) {
	svc, _, metrics, _ := newTestService(t)
	metrics.count = 8
	metrics.aggRows = []models.AggregatedValue{
		{MetricType: models.MetricTemperature, Value: decimal.NewFromInt(21)},
		{MetricType: models.MetricHumidity, Value: decimal.NewFromInt(55)},
	}

	req := queryRequest(models.StatisticAvg)
	req.MetricTypes = []models.MetricType{models.MetricTemperature, models.MetricHumidity}

	results, err := svc.Aggregate(context.Background(), req)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if metrics.countCalls != 1 {
		t.Errorf("expected exactly one count query, got %d", metrics.countCalls)
	}
	if len(metrics.countWith.MetricTypes) != 2 {
		t.Errorf("count must run over the full filter, got types %v", metrics.countWith.MetricTypes)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, res := range results {
		if res.SampleCount != 8 {
			t.Errorf("%s: expected the total matched count 8 on every row, got %d",
				res.MetricType, res.SampleCount)
		}
	}
}

func TestAggregate_OmitsTypesWithoutMatches(t *testing.T) {
	svc, _, metrics, _ := newTestService(t)
	metrics.aggRows = []models.AggregatedValue{
		{MetricType: models.MetricTemperature, Value: decimal.NewFromInt(21)},
	}

	req := queryRequest(models.StatisticMax)
	req.MetricTypes = []models.MetricType{models.MetricTemperature, models.MetricPressure}

	results, err := svc.Aggregate(context.Background(), req)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected only matched types in result, got %d entries", len(results))
	}
	if results[0].MetricType != models.MetricTemperature {
		t.Errorf("unexpected metric type %s", results[0].MetricType)
	}
}

func TestAggregate_DefaultsToSevenDayWindow(t *testing.T) {
	svc, _, metrics, _ := newTestService(t)

	if _, err := svc.Aggregate(context.Background(), queryRequest(models.StatisticMin)); err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	window := metrics.lastFilter.End.Sub(metrics.lastFilter.Start)
	if window != 7*24*time.Hour {
		t.Errorf("expected 7 day default window, got %v", window)
	}
	if !metrics.lastFilter.End.Equal(testNow) {
		t.Errorf("expected window to end at now, got %v", metrics.lastFilter.End)
	}
}

func TestAggregate_RangeValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	start := testNow.Add(-40 * 24 * time.Hour)
	req := queryRequest(models.StatisticSum)
	req.StartDate = &start

	_, err := svc.Aggregate(context.Background(), req)
	if !errors.IsRangeError(err) {
		t.Fatalf("expected range error for 40 day window, got %v", err)
	}
}

func TestAggregate_RejectsUnknownStatistic(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	req := queryRequest(models.StatisticType("MEDIAN"))
	_, err := svc.Aggregate(context.Background(), req)
	if !errors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
