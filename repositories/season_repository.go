package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Z5Jonathan-maker/Eden-2-sub001/models"
)

var ErrSeasonNotFound = errors.New("season not found")

type SeasonRepository interface {
	GetByID(ctx context.Context, id int) (*models.Season, error)
}

type SeasonStandingRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, standing *models.SeasonStanding) error
	BatchUpsert(ctx context.Context, exec SQLExecutor, standings []*models.SeasonStanding) error
	ListBySeason(ctx context.Context, seasonID int) ([]*models.SeasonStanding, error)
}

type postgresSeasonRepository struct {
	db *sql.DB
}

func NewPostgresSeasonRepository(db *sql.DB) SeasonRepository {
	return &postgresSeasonRepository{db: db}
}

func (r *postgresSeasonRepository) GetByID(ctx context.Context, id int) (*models.Season, error) {
	query := `SELECT id, name, start_date, end_date, created_at FROM seasons WHERE id = $1`
	s := &models.Season{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Name, &s.StartDate, &s.EndDate, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeasonNotFound
		}
		return nil, err
	}
	return s, nil
}

type postgresSeasonStandingRepository struct {
	db *sql.DB
}

func NewPostgresSeasonStandingRepository(db *sql.DB) SeasonStandingRepository {
	return &postgresSeasonStandingRepository{db: db}
}

func (r *postgresSeasonStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSeasonStandingRepository) Upsert(ctx context.Context, exec SQLExecutor, s *models.SeasonStanding) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO season_standings (season_id, user_id, total_points, competitions_entered, competitions_won, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (season_id, user_id)
		DO UPDATE SET
			total_points = EXCLUDED.total_points,
			competitions_entered = EXCLUDED.competitions_entered,
			competitions_won = EXCLUDED.competitions_won,
			updated_at = NOW()`
	_, err := executor.ExecContext(ctx, query,
		s.SeasonID, s.UserID, s.TotalPoints, s.CompetitionsEntered, s.CompetitionsWon)
	return err
}

func (r *postgresSeasonStandingRepository) BatchUpsert(ctx context.Context, exec SQLExecutor, standings []*models.SeasonStanding) error {
	for _, s := range standings {
		if err := r.Upsert(ctx, exec, s); err != nil {
			return fmt.Errorf("BatchUpsert failed for season %d user %d: %w", s.SeasonID, s.UserID, err)
		}
	}
	return nil
}

func (r *postgresSeasonStandingRepository) ListBySeason(ctx context.Context, seasonID int) ([]*models.SeasonStanding, error) {
	query := `
		SELECT id, season_id, user_id, total_points, competitions_entered, competitions_won, updated_at
		FROM season_standings
		WHERE season_id = $1
		ORDER BY total_points DESC, user_id ASC`
	rows, err := r.db.QueryContext(ctx, query, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]*models.SeasonStanding, 0)
	for rows.Next() {
		s := &models.SeasonStanding{}
		err := rows.Scan(&s.ID, &s.SeasonID, &s.UserID, &s.TotalPoints,
			&s.CompetitionsEntered, &s.CompetitionsWon, &s.UpdatedAt)
		if err != nil {
			return nil, err
		}
		standings = append(standings, s)
	}
	return standings, rows.Err()
}
