package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Z5Jonathan-maker/Eden-2-sub001/models"
)

var ErrResultNotFound = errors.New("result not found")

type ResultRepository interface {
	// BatchCreate inserts settlement results. Inserts are idempotent on
	// (competition_id, user_id, rule_id) so a resumed settlement pass cannot
	// double-award.
	BatchCreate(ctx context.Context, exec SQLExecutor, results []*models.Result) error
	ListByCompetition(ctx context.Context, exec SQLExecutor, competitionID int) ([]*models.Result, error)
	ListByUser(ctx context.Context, userID int) ([]*models.Result, error)
	// ListBySeason returns results of all completed competitions in a season.
	ListBySeason(ctx context.Context, seasonID int) ([]*models.Result, error)
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

func (r *postgresResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const resultColumns = `
	id, competition_id, user_id, rule_id, rule_type, final_rank, final_value,
	points_awarded, badge_id, reward_id, detail, created_at`

func scanResult(rowScanner interface{ Scan(...interface{}) error }) (*models.Result, error) {
	res := &models.Result{}
	err := rowScanner.Scan(
		&res.ID, &res.CompetitionID, &res.UserID, &res.RuleID, &res.RuleType,
		&res.FinalRank, &res.FinalValue, &res.PointsAwarded, &res.BadgeID,
		&res.RewardID, &res.Detail, &res.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}
	return res, nil
}

func (r *postgresResultRepository) BatchCreate(ctx context.Context, exec SQLExecutor, results []*models.Result) error {
	if len(results) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO results
			(competition_id, user_id, rule_id, rule_type, final_rank, final_value,
			 points_awarded, badge_id, reward_id, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (competition_id, user_id, rule_id) DO NOTHING`
	for _, res := range results {
		_, err := executor.ExecContext(ctx, query,
			res.CompetitionID, res.UserID, res.RuleID, res.RuleType, res.FinalRank,
			res.FinalValue, res.PointsAwarded, res.BadgeID, res.RewardID, res.Detail,
		)
		if err != nil {
			return fmt.Errorf("BatchCreate failed for user %d rule %d: %w", res.UserID, res.RuleID, err)
		}
	}
	return nil
}

func (r *postgresResultRepository) ListByCompetition(ctx context.Context, exec SQLExecutor, competitionID int) ([]*models.Result, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + resultColumns + `
		FROM results
		WHERE competition_id = $1
		ORDER BY rule_id, final_rank, user_id`
	return r.list(ctx, executor, query, competitionID)
}

func (r *postgresResultRepository) ListByUser(ctx context.Context, userID int) ([]*models.Result, error) {
	query := `SELECT` + resultColumns + `
		FROM results
		WHERE user_id = $1
		ORDER BY created_at DESC`
	return r.list(ctx, r.db, query, userID)
}

func (r *postgresResultRepository) ListBySeason(ctx context.Context, seasonID int) ([]*models.Result, error) {
	query := `
		SELECT res.id, res.competition_id, res.user_id, res.rule_id, res.rule_type,
		       res.final_rank, res.final_value, res.points_awarded, res.badge_id,
		       res.reward_id, res.detail, res.created_at
		FROM results res
		JOIN competitions c ON res.competition_id = c.id
		WHERE c.season_id = $1 AND c.status = $2
		ORDER BY res.competition_id, res.user_id`
	return r.list(ctx, r.db, query, seasonID, models.StatusCompleted)
}

func (r *postgresResultRepository) list(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]*models.Result, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*models.Result, 0)
	for rows.Next() {
		res, errScan := scanResult(rows)
		if errScan != nil {
			return nil, errScan
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
