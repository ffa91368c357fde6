package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/sentinela/internal/domain"
)

type SensorRepository struct {
	pool PgxPool
}

func NewSensorRepository(pool PgxPool) *SensorRepository {
	return &SensorRepository{pool: pool}
}

func (r *SensorRepository) Create(ctx context.Context, sensor *domain.Sensor) error {
	query := `
		INSERT INTO sensors (device_id, device_type, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		sensor.DeviceID,
		sensor.DeviceType,
	).Scan(&sensor.ID, &sensor.CreatedAt, &sensor.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSensorExists
		}
		return fmt.Errorf("create sensor: %w", err)
	}

	return nil
}

func (r *SensorRepository) GetByDeviceID(ctx context.Context, deviceID string) (*domain.Sensor, error) {
	query := `
		SELECT id, device_id, device_type, created_at, updated_at
		FROM sensors
		WHERE device_id = $1
	`

	var sensor domain.Sensor
	err := r.pool.QueryRow(ctx, query, deviceID).Scan(
		&sensor.ID,
		&sensor.DeviceID,
		&sensor.DeviceType,
		&sensor.CreatedAt,
		&sensor.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSensorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get sensor by device_id: %w", err)
	}

	return &sensor, nil
}

func (r *SensorRepository) List(ctx context.Context, deviceType domain.DeviceType, skip, limit int) ([]domain.Sensor, error) {
	query := `
		SELECT id, device_id, device_type, created_at, updated_at
		FROM sensors
		WHERE ($1 = '' OR device_type = $1)
		ORDER BY id
		OFFSET $2 LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, string(deviceType), skip, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list sensors: %w", err)
	}
	defer rows.Close()

	var sensors []domain.Sensor
	for rows.Next() {
		var sensor domain.Sensor
		if err := rows.Scan(
			&sensor.ID,
			&sensor.DeviceID,
			&sensor.DeviceType,
			&sensor.CreatedAt,
			&sensor.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sensor: %w", err)
		}
		sensors = append(sensors, sensor)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sensors: %w", err)
	}

	return sensors, nil
}

func (r *SensorRepository) UpdateByDeviceID(ctx context.Context, deviceID string, deviceType domain.DeviceType) (*domain.Sensor, error) {
	query := `
		UPDATE sensors
		SET device_type = $2, updated_at = NOW()
		WHERE device_id = $1
		RETURNING id, device_id, device_type, created_at, updated_at
	`

	var sensor domain.Sensor
	err := r.pool.QueryRow(ctx, query, deviceID, deviceType).Scan(
		&sensor.ID,
		&sensor.DeviceID,
		&sensor.DeviceType,
		&sensor.CreatedAt,
		&sensor.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSensorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update sensor: %w", err)
	}

	return &sensor, nil
}

func (r *SensorRepository) DeleteByDeviceID(ctx context.Context, deviceID string) error {
	query := `
		DELETE FROM sensors
		WHERE device_id = $1
	`

	result, err := r.pool.Exec(ctx, query, deviceID)
	if err != nil {
		return fmt.Errorf("delete sensor: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrSensorNotFound
	}

	return nil
}
