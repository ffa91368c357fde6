package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/sentinela/internal/domain"
)

type AlertRepository struct {
	pool PgxPool
}

func NewAlertRepository(pool PgxPool) *AlertRepository {
	return &AlertRepository{pool: pool}
}

func (r *AlertRepository) Create(ctx context.Context, alert *domain.Alert) error {
	query := `
		INSERT INTO alerts (event_id, device_id, alert_type, timestamp, photo_base64, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		alert.EventID,
		alert.DeviceID,
		alert.Type,
		alert.Timestamp,
		alert.PhotoBase64,
	).Scan(&alert.ID, &alert.CreatedAt)

	if err != nil {
		return fmt.Errorf("create alert: %w", err)
	}

	return nil
}

func (r *AlertRepository) List(ctx context.Context, filter domain.AlertFilter, skip, limit int) ([]domain.Alert, error) {
	var (
		conds []string
		args  []interface{}
	)

	query := `
		SELECT id, event_id, device_id, alert_type, timestamp, photo_base64, created_at
		FROM alerts`

	if filter.AlertType != "" {
		args = append(args, string(filter.AlertType))
		conds = append(conds, fmt.Sprintf("alert_type = $%d", len(args)))
	}
	if filter.DeviceID != "" {
		args = append(args, filter.DeviceID)
		conds = append(conds, fmt.Sprintf("device_id = $%d", len(args)))
	}
	if filter.StartTime != nil {
		args = append(args, *filter.StartTime)
		conds = append(conds, fmt.Sprintf("timestamp >= $%d", len(args)))
	}
	if filter.EndTime != nil {
		args = append(args, *filter.EndTime)
		conds = append(conds, fmt.Sprintf("timestamp <= $%d", len(args)))
	}

	if len(conds) > 0 {
		query += "\n\t\tWHERE " + strings.Join(conds, " AND ")
	}

	args = append(args, skip)
	query += fmt.Sprintf("\n\t\tORDER BY timestamp DESC\n\t\tOFFSET $%d", len(args))
	args = append(args, ClampLimit(limit))
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		var alert domain.Alert
		if err := rows.Scan(
			&alert.ID,
			&alert.EventID,
			&alert.DeviceID,
			&alert.Type,
			&alert.Timestamp,
			&alert.PhotoBase64,
			&alert.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}

	return alerts, nil
}

func (r *AlertRepository) GetByID(ctx context.Context, id int64) (*domain.Alert, error) {
	query := `
		SELECT id, event_id, device_id, alert_type, timestamp, photo_base64, created_at
		FROM alerts
		WHERE id = $1
	`

	var alert domain.Alert
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&alert.ID,
		&alert.EventID,
		&alert.DeviceID,
		&alert.Type,
		&alert.Timestamp,
		&alert.PhotoBase64,
		&alert.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAlertNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get alert by id: %w", err)
	}

	return &alert, nil
}
