package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Z5Jonathan-maker/Eden-2-sub001/models"
)

var ErrMetricNotFound = errors.New("metric not found")

type MetricRepository interface {
	GetBySlug(ctx context.Context, slug string) (*models.Metric, error)
	GetByID(ctx context.Context, id int) (*models.Metric, error)
	GetAll(ctx context.Context) ([]models.Metric, error)
}

type postgresMetricRepository struct {
	db *sql.DB
}

func NewPostgresMetricRepository(db *sql.DB) MetricRepository {
	return &postgresMetricRepository{db: db}
}

func (r *postgresMetricRepository) GetBySlug(ctx context.Context, slug string) (*models.Metric, error) {
	query := `SELECT id, slug, name, unit FROM metrics WHERE slug = $1`
	m := &models.Metric{}
	err := r.db.QueryRowContext(ctx, query, slug).Scan(&m.ID, &m.Slug, &m.Name, &m.Unit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMetricNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMetricRepository) GetByID(ctx context.Context, id int) (*models.Metric, error) {
	query := `SELECT id, slug, name, unit FROM metrics WHERE id = $1`
	m := &models.Metric{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.Slug, &m.Name, &m.Unit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMetricNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMetricRepository) GetAll(ctx context.Context) ([]models.Metric, error) {
	query := `SELECT id, slug, name, unit FROM metrics ORDER BY slug`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metrics := make([]models.Metric, 0)
	for rows.Next() {
		var m models.Metric
		if err := rows.Scan(&m.ID, &m.Slug, &m.Name, &m.Unit); err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}
