package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Z5Jonathan-maker/Eden-2-sub001/models"
	"github.com/lib/pq"
)

var (
	ErrCompetitionNotFound      = errors.New("competition not found")
	ErrCompetitionInvalidMetric = errors.New("invalid metric reference")
	ErrCompetitionInvalidSeason = errors.New("invalid season reference")
	ErrCompetitionStatusStale   = errors.New("competition status changed concurrently")
)

type ListCompetitionsFilter struct {
	MetricID *int
	SeasonID *int
	Status   *models.CompetitionStatus
	Limit    int
	Offset   int
}

type CompetitionRepository interface {
	Create(ctx context.Context, competition *models.Competition) error
	GetByID(ctx context.Context, id int) (*models.Competition, error)
	List(ctx context.Context, filter ListCompetitionsFilter) ([]models.Competition, error)
	ListActiveByMetric(ctx context.Context, metricID int) ([]*models.Competition, error)
	ListExpiredActive(ctx context.Context, now time.Time) ([]*models.Competition, error)
	ListCompletedBySeason(ctx context.Context, seasonID int) ([]*models.Competition, error)
	// UpdateStatusIf transitions the status only when the current status
	// matches from (compare-and-set). Returns ErrCompetitionStatusStale when
	// the row exists but the status no longer matches.
	UpdateStatusIf(ctx context.Context, exec SQLExecutor, id int, from, to models.CompetitionStatus) error
	MarkCompleted(ctx context.Context, exec SQLExecutor, id int, evaluatedAt time.Time, qualifiedCount int) error
}

type postgresCompetitionRepository struct {
	db *sql.DB
}

func NewPostgresCompetitionRepository(db *sql.DB) CompetitionRepository {
	return &postgresCompetitionRepository{db: db}
}

func (r *postgresCompetitionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const competitionColumns = `
	id, name, description, metric_id, season_id, status,
	start_date, end_date, evaluated_at, qualified_count, created_at`

func scanCompetition(rowScanner interface{ Scan(...interface{}) error }) (*models.Competition, error) {
	c := &models.Competition{}
	err := rowScanner.Scan(
		&c.ID, &c.Name, &c.Description, &c.MetricID, &c.SeasonID, &c.Status,
		&c.StartDate, &c.EndDate, &c.EvaluatedAt, &c.QualifiedCount, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *postgresCompetitionRepository) Create(ctx context.Context, c *models.Competition) error {
	query := `
		INSERT INTO competitions (name, description, metric_id, season_id, status, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		c.Name, c.Description, c.MetricID, c.SeasonID, c.Status, c.StartDate, c.EndDate,
	).Scan(&c.ID, &c.CreatedAt)
	return r.handleCompetitionError(err)
}

func (r *postgresCompetitionRepository) GetByID(ctx context.Context, id int) (*models.Competition, error) {
	query := `SELECT` + competitionColumns + ` FROM competitions WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	return scanCompetition(row)
}

func (r *postgresCompetitionRepository) List(ctx context.Context, filter ListCompetitionsFilter) ([]models.Competition, error) {
	query := `SELECT` + competitionColumns + ` FROM competitions WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.MetricID != nil {
		query += fmt.Sprintf(" AND metric_id = $%d", argID)
		args = append(args, *filter.MetricID)
		argID++
	}
	if filter.SeasonID != nil {
		query += fmt.Sprintf(" AND season_id = $%d", argID)
		args = append(args, *filter.SeasonID)
		argID++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	competitions := make([]models.Competition, 0)
	for rows.Next() {
		c, errScan := scanCompetition(rows)
		if errScan != nil {
			return nil, errScan
		}
		competitions = append(competitions, *c)
	}
	return competitions, rows.Err()
}

func (r *postgresCompetitionRepository) listPointers(ctx context.Context, query string, args ...interface{}) ([]*models.Competition, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	competitions := make([]*models.Competition, 0)
	for rows.Next() {
		c, errScan := scanCompetition(rows)
		if errScan != nil {
			return nil, errScan
		}
		competitions = append(competitions, c)
	}
	return competitions, rows.Err()
}

func (r *postgresCompetitionRepository) ListActiveByMetric(ctx context.Context, metricID int) ([]*models.Competition, error) {
	query := `SELECT` + competitionColumns + `
		FROM competitions
		WHERE metric_id = $1 AND status = $2
		ORDER BY id`
	return r.listPointers(ctx, query, metricID, models.StatusActive)
}

func (r *postgresCompetitionRepository) ListExpiredActive(ctx context.Context, now time.Time) ([]*models.Competition, error) {
	query := `SELECT` + competitionColumns + `
		FROM competitions
		WHERE status = $1 AND end_date <= $2
		ORDER BY end_date`
	return r.listPointers(ctx, query, models.StatusActive, now)
}

func (r *postgresCompetitionRepository) ListCompletedBySeason(ctx context.Context, seasonID int) ([]*models.Competition, error) {
	query := `SELECT` + competitionColumns + `
		FROM competitions
		WHERE season_id = $1 AND status = $2
		ORDER BY end_date`
	return r.listPointers(ctx, query, seasonID, models.StatusCompleted)
}

func (r *postgresCompetitionRepository) UpdateStatusIf(ctx context.Context, exec SQLExecutor, id int, from, to models.CompetitionStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE competitions SET status = $1 WHERE id = $2 AND status = $3`
	result, err := executor.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		// Distinguish a missing row from a lost compare-and-set.
		var exists bool
		checkErr := executor.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM competitions WHERE id = $1)`, id).Scan(&exists)
		if checkErr != nil {
			return checkErr
		}
		if !exists {
			return ErrCompetitionNotFound
		}
		return ErrCompetitionStatusStale
	}
	return nil
}

func (r *postgresCompetitionRepository) MarkCompleted(ctx context.Context, exec SQLExecutor, id int, evaluatedAt time.Time, qualifiedCount int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE competitions
		SET status = $1, evaluated_at = $2, qualified_count = $3
		WHERE id = $4 AND status = $5`
	result, err := executor.ExecContext(ctx, query,
		models.StatusCompleted, evaluatedAt, qualifiedCount, id, models.StatusEvaluating)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCompetitionStatusStale)
}

func (r *postgresCompetitionRepository) handleCompetitionError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "competitions_metric_id_fkey":
				return ErrCompetitionInvalidMetric
			case "competitions_season_id_fkey":
				return ErrCompetitionInvalidSeason
			}
		}
	}
	return err
}
