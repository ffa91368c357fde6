package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/saturnino-fabrica-de-software/sentinela/internal/domain"
)

type EventRepository struct {
	pool PgxPool
}

func NewEventRepository(pool PgxPool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (sensor_id, device_id, timestamp, event_type, data, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	data := event.Data
	if data == nil {
		data = map[string]any{}
	}

	err := r.pool.QueryRow(ctx, query,
		event.SensorID,
		event.DeviceID,
		event.Timestamp,
		event.Type,
		data,
	).Scan(&event.ID, &event.CreatedAt)

	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	return nil
}

// List returns events ordered by event timestamp descending. The
// device_type filter joins the sensor registry.
func (r *EventRepository) List(ctx context.Context, filter domain.EventFilter, skip, limit int) ([]domain.Event, error) {
	var (
		conds []string
		args  []interface{}
	)

	query := `
		SELECT e.id, e.sensor_id, e.device_id, e.timestamp, e.event_type, e.data, e.created_at
		FROM events e`

	if filter.DeviceType != "" {
		query += `
		JOIN sensors s ON s.id = e.sensor_id`
		args = append(args, string(filter.DeviceType))
		conds = append(conds, fmt.Sprintf("s.device_type = $%d", len(args)))
	}
	if filter.StartTime != nil {
		args = append(args, *filter.StartTime)
		conds = append(conds, fmt.Sprintf("e.timestamp >= $%d", len(args)))
	}
	if filter.EndTime != nil {
		args = append(args, *filter.EndTime)
		conds = append(conds, fmt.Sprintf("e.timestamp <= $%d", len(args)))
	}
	if filter.EventType != "" {
		args = append(args, string(filter.EventType))
		conds = append(conds, fmt.Sprintf("e.event_type = $%d", len(args)))
	}

	if len(conds) > 0 {
		query += "\n\t\tWHERE " + strings.Join(conds, " AND ")
	}

	args = append(args, skip)
	query += fmt.Sprintf("\n\t\tORDER BY e.timestamp DESC\n\t\tOFFSET $%d", len(args))
	args = append(args, ClampLimit(limit))
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var event domain.Event
		if err := rows.Scan(
			&event.ID,
			&event.SensorID,
			&event.DeviceID,
			&event.Timestamp,
			&event.Type,
			&event.Data,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return events, nil
}
