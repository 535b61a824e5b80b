// FilePath: internal/repository/postgres/postgres.sensor.go
package postgres

import (
	"context"
	"database/sql"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/meteosense/hub/internal/database"
	"github.com/meteosense/hub/internal/errors"
	"github.com/meteosense/hub/internal/models"
)

type SensorRepo struct {
	PostgresBaseRepo
}

func NewSensorRepository(db database.DB) (*SensorRepo, error) {
	repo := &SensorRepo{PostgresBaseRepo: PostgresBaseRepo{db: db}}
	if err := repo.initializeSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *SensorRepo) initializeSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS sensors (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			location TEXT,
			status TEXT NOT NULL DEFAULT 'ACTIVE',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`

	if _, err := r.db.GetDB().Exec(query); err != nil {
		return errors.NewDatabaseError("failed to initialize sensors schema", err)
	}
	return nil
}

func (r *SensorRepo) Create(ctx context.Context, sensor *models.Sensor) error {
	if sensor.ID == "" {
		sensor.ID = nuts.NID("sn", 12)
	}
	if sensor.Status == "" {
		sensor.Status = models.SensorStatusActive
	}
	now := time.Now().UTC()
	sensor.CreatedAt = now
	sensor.UpdatedAt = now

	query := `
		INSERT INTO sensors (id, code, location, status, created_at, updated_at)
		VALUES (:id, :code, :location, :status, :created_at, :updated_at)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, sensor)
	if err != nil {
		return errors.NewDatabaseError("failed to create sensor", err)
	}
	return nil
}

func (r *SensorRepo) Get(ctx context.Context, id string) (*models.Sensor, error) {
	sensor := &models.Sensor{}
	query := `SELECT * FROM sensors WHERE id = $1`

	err := r.db.GetDB().GetContext(ctx, sensor, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("sensor not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get sensor", err)
	}
	return sensor, nil
}

func (r *SensorRepo) GetByCode(ctx context.Context, code string) (*models.Sensor, error) {
	sensor := &models.Sensor{}
	query := `SELECT * FROM sensors WHERE code = $1`

	err := r.db.GetDB().GetContext(ctx, sensor, query, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("sensor not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get sensor", err)
	}
	return sensor, nil
}

func (r *SensorRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM sensors WHERE id = $1)`

	err := r.db.GetDB().GetContext(ctx, &exists, query, id)
	if err != nil {
		return false, errors.NewDatabaseError("failed to check sensor existence", err)
	}
	return exists, nil
}

func (r *SensorRepo) List(ctx context.Context, filters models.SensorFilters, offset, limit int) ([]*models.Sensor, error) {
	sensors := []*models.Sensor{}
	query := `SELECT * FROM sensors WHERE ($1 = '' OR status = $1) AND ($2 = '' OR code = $2)
		ORDER BY created_at DESC OFFSET $3 LIMIT $4`

	err := r.db.GetDB().SelectContext(ctx, &sensors, query,
		string(filters.Status), filters.Code, offset, limit)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list sensors", err)
	}
	return sensors, nil
}

func (r *SensorRepo) CountByStatus(ctx context.Context, status models.SensorStatus) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM sensors WHERE status = $1`

	err := r.db.GetDB().GetContext(ctx, &count, query, string(status))
	if err != nil {
		return 0, errors.NewDatabaseError("failed to count sensors", err)
	}
	return count, nil
}
