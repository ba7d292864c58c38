package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Z5Jonathan-maker/Eden-2-sub001/models"
)

// UserPointsRepository is the cumulative points ledger collaborator.
type UserPointsRepository interface {
	Increment(ctx context.Context, exec SQLExecutor, userID, amount int) error
	GetByUser(ctx context.Context, userID int) (*models.UserPoints, error)
}

type postgresUserPointsRepository struct {
	db *sql.DB
}

func NewPostgresUserPointsRepository(db *sql.DB) UserPointsRepository {
	return &postgresUserPointsRepository{db: db}
}

func (r *postgresUserPointsRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresUserPointsRepository) Increment(ctx context.Context, exec SQLExecutor, userID, amount int) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO user_points (user_id, total_points, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET total_points = user_points.total_points + EXCLUDED.total_points, updated_at = NOW()`
	_, err := executor.ExecContext(ctx, query, userID, amount)
	return err
}

func (r *postgresUserPointsRepository) GetByUser(ctx context.Context, userID int) (*models.UserPoints, error) {
	query := `SELECT user_id, total_points, updated_at FROM user_points WHERE user_id = $1`
	up := &models.UserPoints{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&up.UserID, &up.TotalPoints, &up.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// No awards yet reads as zero points, not an error.
			return &models.UserPoints{UserID: userID}, nil
		}
		return nil, err
	}
	return up, nil
}
