package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/Z5Jonathan-maker/Eden-2-sub001/models"
	"github.com/lib/pq"
)

type MetricEventRepository interface {
	Create(ctx context.Context, event *models.MetricEvent) error
	ListByUserAndMetric(ctx context.Context, userID, metricID int, from, to time.Time) ([]*models.MetricEvent, error)
	// SumByUserAndMetric aggregates event values for a user's metric over
	// [from, to), the window used for improvement baselines.
	SumByUserAndMetric(ctx context.Context, userID, metricID int, from, to time.Time) (float64, error)
}

type postgresMetricEventRepository struct {
	db *sql.DB
}

func NewPostgresMetricEventRepository(db *sql.DB) MetricEventRepository {
	return &postgresMetricEventRepository{db: db}
}

func (r *postgresMetricEventRepository) Create(ctx context.Context, e *models.MetricEvent) error {
	query := `
		INSERT INTO metric_events (user_id, metric_id, value, event_type, source_ref, competition_ids)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query,
		e.UserID, e.MetricID, e.Value, e.EventType, e.SourceRef, pq.Array(e.CompetitionIDs),
	).Scan(&e.ID, &e.CreatedAt)
}

func (r *postgresMetricEventRepository) ListByUserAndMetric(ctx context.Context, userID, metricID int, from, to time.Time) ([]*models.MetricEvent, error) {
	query := `
		SELECT id, user_id, metric_id, value, event_type, source_ref, competition_ids, created_at
		FROM metric_events
		WHERE user_id = $1 AND metric_id = $2 AND created_at >= $3 AND created_at < $4
		ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, userID, metricID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*models.MetricEvent, 0)
	for rows.Next() {
		e := &models.MetricEvent{}
		err := rows.Scan(&e.ID, &e.UserID, &e.MetricID, &e.Value, &e.EventType,
			&e.SourceRef, pq.Array(&e.CompetitionIDs), &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *postgresMetricEventRepository) SumByUserAndMetric(ctx context.Context, userID, metricID int, from, to time.Time) (float64, error) {
	query := `
		SELECT COALESCE(SUM(value), 0)
		FROM metric_events
		WHERE user_id = $1 AND metric_id = $2 AND created_at >= $3 AND created_at < $4`
	var sum float64
	err := r.db.QueryRowContext(ctx, query, userID, metricID, from, to).Scan(&sum)
	return sum, err
}
