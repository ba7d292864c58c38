package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Z5Jonathan-maker/Eden-2-sub001/models"
)

var ErrBadgeNotFound = errors.New("badge not found")

// BadgeRepository is the badge catalog collaborator.
type BadgeRepository interface {
	GetByID(ctx context.Context, id int) (*models.Badge, error)
}

// UserBadgeRepository tracks earned badges, at most one per (user, badge).
type UserBadgeRepository interface {
	Exists(ctx context.Context, exec SQLExecutor, userID, badgeID int) (bool, error)
	Create(ctx context.Context, exec SQLExecutor, badge *models.UserBadge) error
	ListByUser(ctx context.Context, userID int) ([]*models.UserBadge, error)
}

type postgresBadgeRepository struct {
	db *sql.DB
}

func NewPostgresBadgeRepository(db *sql.DB) BadgeRepository {
	return &postgresBadgeRepository{db: db}
}

func (r *postgresBadgeRepository) GetByID(ctx context.Context, id int) (*models.Badge, error) {
	query := `SELECT id, name, icon, tier FROM badges WHERE id = $1`
	b := &models.Badge{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&b.ID, &b.Name, &b.Icon, &b.Tier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBadgeNotFound
		}
		return nil, err
	}
	return b, nil
}

type postgresUserBadgeRepository struct {
	db *sql.DB
}

func NewPostgresUserBadgeRepository(db *sql.DB) UserBadgeRepository {
	return &postgresUserBadgeRepository{db: db}
}

func (r *postgresUserBadgeRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresUserBadgeRepository) Exists(ctx context.Context, exec SQLExecutor, userID, badgeID int) (bool, error) {
	executor := r.getExecutor(exec)
	query := `SELECT EXISTS(SELECT 1 FROM user_badges WHERE user_id = $1 AND badge_id = $2)`
	var exists bool
	err := executor.QueryRowContext(ctx, query, userID, badgeID).Scan(&exists)
	return exists, err
}

func (r *postgresUserBadgeRepository) Create(ctx context.Context, exec SQLExecutor, ub *models.UserBadge) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO user_badges (user_id, badge_id, competition_id, earned_reason)
		VALUES ($1, $2, $3, $4)
		RETURNING id, earned_at`
	return executor.QueryRowContext(ctx, query,
		ub.UserID, ub.BadgeID, ub.CompetitionID, ub.EarnedReason,
	).Scan(&ub.ID, &ub.EarnedAt)
}

func (r *postgresUserBadgeRepository) ListByUser(ctx context.Context, userID int) ([]*models.UserBadge, error) {
	query := `
		SELECT id, user_id, badge_id, competition_id, earned_reason, earned_at
		FROM user_badges
		WHERE user_id = $1
		ORDER BY earned_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	badges := make([]*models.UserBadge, 0)
	for rows.Next() {
		ub := &models.UserBadge{}
		err := rows.Scan(&ub.ID, &ub.UserID, &ub.BadgeID, &ub.CompetitionID, &ub.EarnedReason, &ub.EarnedAt)
		if err != nil {
			return nil, err
		}
		badges = append(badges, ub)
	}
	return badges, rows.Err()
}
