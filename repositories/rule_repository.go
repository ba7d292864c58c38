package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Z5Jonathan-maker/Eden-2-sub001/models"
	"github.com/lib/pq"
)

var (
	ErrRuleNotFound           = errors.New("rule not found")
	ErrRuleCompetitionInvalid = errors.New("rule competition conflict or invalid")
)

type RuleRepository interface {
	Create(ctx context.Context, rule *models.Rule) error
	GetByID(ctx context.Context, id int) (*models.Rule, error)
	// ListByCompetition returns rules in ascending priority, the evaluation order.
	ListByCompetition(ctx context.Context, exec SQLExecutor, competitionID int) ([]*models.Rule, error)
	FindByType(ctx context.Context, competitionID int, ruleType models.RuleType) (*models.Rule, error)
	UpdateLotterySeed(ctx context.Context, exec SQLExecutor, ruleID int, seed string) error
}

type postgresRuleRepository struct {
	db *sql.DB
}

func NewPostgresRuleRepository(db *sql.DB) RuleRepository {
	return &postgresRuleRepository{db: db}
}

func (r *postgresRuleRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const ruleColumns = `
	id, competition_id, type, priority, points_award,
	badge_id, reward_id, lottery_seed, config, created_at`

func scanRule(rowScanner interface{ Scan(...interface{}) error }) (*models.Rule, error) {
	rule := &models.Rule{}
	err := rowScanner.Scan(
		&rule.ID, &rule.CompetitionID, &rule.Type, &rule.Priority, &rule.PointsAward,
		&rule.BadgeID, &rule.RewardID, &rule.LotterySeed, &rule.RawConfig, &rule.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	if err := rule.DecodeConfig(); err != nil {
		return nil, err
	}
	return rule, nil
}

func (r *postgresRuleRepository) Create(ctx context.Context, rule *models.Rule) error {
	if err := rule.EncodeConfig(); err != nil {
		return err
	}
	query := `
		INSERT INTO rules (competition_id, type, priority, points_award, badge_id, reward_id, lottery_seed, config)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		rule.CompetitionID, rule.Type, rule.Priority, rule.PointsAward,
		rule.BadgeID, rule.RewardID, rule.LotterySeed, rule.RawConfig,
	).Scan(&rule.ID, &rule.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrRuleCompetitionInvalid
		}
		return err
	}
	return nil
}

func (r *postgresRuleRepository) GetByID(ctx context.Context, id int) (*models.Rule, error) {
	query := `SELECT` + ruleColumns + ` FROM rules WHERE id = $1`
	return scanRule(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresRuleRepository) ListByCompetition(ctx context.Context, exec SQLExecutor, competitionID int) ([]*models.Rule, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + ruleColumns + `
		FROM rules
		WHERE competition_id = $1
		ORDER BY priority ASC, id ASC`
	rows, err := executor.QueryContext(ctx, query, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := make([]*models.Rule, 0)
	for rows.Next() {
		rule, errScan := scanRule(rows)
		if errScan != nil {
			return nil, errScan
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *postgresRuleRepository) FindByType(ctx context.Context, competitionID int, ruleType models.RuleType) (*models.Rule, error) {
	query := `SELECT` + ruleColumns + `
		FROM rules
		WHERE competition_id = $1 AND type = $2
		ORDER BY priority ASC
		LIMIT 1`
	return scanRule(r.db.QueryRowContext(ctx, query, competitionID, ruleType))
}

func (r *postgresRuleRepository) UpdateLotterySeed(ctx context.Context, exec SQLExecutor, ruleID int, seed string) error {
	executor := r.getExecutor(exec)
	query := `UPDATE rules SET lottery_seed = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, seed, ruleID)
	if err != nil {
		return fmt.Errorf("failed to persist lottery seed for rule %d: %w", ruleID, err)
	}
	return checkAffectedRows(result, ErrRuleNotFound)
}
