package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Z5Jonathan-maker/Eden-2-sub001/models"
	"github.com/lib/pq"
)

var (
	ErrParticipantNotFound = errors.New("participant not found")
	ErrParticipantConflict = errors.New("participant already enrolled in this competition")
)

type ParticipantRepository interface {
	Create(ctx context.Context, participant *models.Participant) error
	GetByCompetitionAndUser(ctx context.Context, competitionID, userID int) (*models.Participant, error)
	// ListByCompetition returns participants in standing order when
	// orderByValue is set: current_value DESC, user_id ASC. This is the
	// authoritative ranking order.
	ListByCompetition(ctx context.Context, exec SQLExecutor, competitionID int, orderByValue bool) ([]*models.Participant, error)
	// ApplyDelta folds one event into the participant row in a single
	// atomic statement. Returns (nil, nil) when the user is not enrolled.
	ApplyDelta(ctx context.Context, competitionID, userID int, delta float64) (*models.Participant, error)
	UpdateRank(ctx context.Context, exec SQLExecutor, participant *models.Participant) error
	// AddQualifiedRule is an idempotent set-add.
	AddQualifiedRule(ctx context.Context, exec SQLExecutor, participantID, ruleID int) error
	SetMilestoneReached(ctx context.Context, exec SQLExecutor, participantID int, tier string) error
	SetImprovementPercent(ctx context.Context, exec SQLExecutor, participantID int, percent float64) error
	SetLotteryQualifier(ctx context.Context, exec SQLExecutor, participantID int, qualifier bool) error
	SetBaselineValue(ctx context.Context, exec SQLExecutor, participantID int, baseline float64) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const participantColumns = `
	id, competition_id, user_id, current_value, previous_value, peak_value,
	rank, previous_rank, percentile, activity_count, qualified_rules,
	milestone_reached, improvement_percent, baseline_value, is_lottery_qualifier,
	created_at, updated_at`

func scanParticipant(rowScanner interface{ Scan(...interface{}) error }) (*models.Participant, error) {
	p := &models.Participant{}
	err := rowScanner.Scan(
		&p.ID, &p.CompetitionID, &p.UserID, &p.CurrentValue, &p.PreviousValue, &p.PeakValue,
		&p.Rank, &p.PreviousRank, &p.Percentile, &p.ActivityCount, pq.Array(&p.QualifiedRules),
		&p.MilestoneReached, &p.ImprovementPercent, &p.BaselineValue, &p.IsLotteryQualifier,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	query := `
		INSERT INTO participants (competition_id, user_id, qualified_rules)
		VALUES ($1, $2, '{}')
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, p.CompetitionID, p.UserID).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrParticipantConflict
		}
		return err
	}
	return nil
}

func (r *postgresParticipantRepository) GetByCompetitionAndUser(ctx context.Context, competitionID, userID int) (*models.Participant, error) {
	query := `SELECT` + participantColumns + `
		FROM participants
		WHERE competition_id = $1 AND user_id = $2`
	return scanParticipant(r.db.QueryRowContext(ctx, query, competitionID, userID))
}

func (r *postgresParticipantRepository) ListByCompetition(ctx context.Context, exec SQLExecutor, competitionID int, orderByValue bool) ([]*models.Participant, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + participantColumns + `
		FROM participants
		WHERE competition_id = $1`
	if orderByValue {
		// user_id ASC is the documented deterministic tie-break.
		query += ` ORDER BY current_value DESC, user_id ASC`
	} else {
		query += ` ORDER BY user_id ASC`
	}

	rows, err := executor.QueryContext(ctx, query, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		p, errScan := scanParticipant(rows)
		if errScan != nil {
			return nil, errScan
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *postgresParticipantRepository) ApplyDelta(ctx context.Context, competitionID, userID int, delta float64) (*models.Participant, error) {
	// Single-statement read-modify-write: concurrent events for the same
	// participant cannot lose updates.
	query := `
		UPDATE participants
		SET previous_value = current_value,
		    current_value = current_value + $1,
		    peak_value = GREATEST(peak_value, current_value + $1),
		    activity_count = activity_count + 1,
		    updated_at = NOW()
		WHERE competition_id = $2 AND user_id = $3
		RETURNING` + participantColumns
	p, err := scanParticipant(r.db.QueryRowContext(ctx, query, delta, competitionID, userID))
	if err != nil {
		if errors.Is(err, ErrParticipantNotFound) {
			// Not enrolled: the event is silently dropped for this competition.
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresParticipantRepository) UpdateRank(ctx context.Context, exec SQLExecutor, p *models.Participant) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE participants
		SET rank = $1, previous_rank = $2, percentile = $3, updated_at = NOW()
		WHERE id = $4`
	result, err := executor.ExecContext(ctx, query, p.Rank, p.PreviousRank, p.Percentile, p.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) AddQualifiedRule(ctx context.Context, exec SQLExecutor, participantID, ruleID int) error {
	executor := r.getExecutor(exec)
	// The NOT ANY guard makes the append idempotent; zero affected rows for
	// an already-present rule is not an error.
	query := `
		UPDATE participants
		SET qualified_rules = array_append(qualified_rules, $1), updated_at = NOW()
		WHERE id = $2 AND NOT ($1 = ANY(qualified_rules))`
	_, err := executor.ExecContext(ctx, query, ruleID, participantID)
	return err
}

func (r *postgresParticipantRepository) SetMilestoneReached(ctx context.Context, exec SQLExecutor, participantID int, tier string) error {
	executor := r.getExecutor(exec)
	query := `UPDATE participants SET milestone_reached = $1, updated_at = NOW() WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, tier, participantID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) SetImprovementPercent(ctx context.Context, exec SQLExecutor, participantID int, percent float64) error {
	executor := r.getExecutor(exec)
	query := `UPDATE participants SET improvement_percent = $1, updated_at = NOW() WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, percent, participantID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) SetLotteryQualifier(ctx context.Context, exec SQLExecutor, participantID int, qualifier bool) error {
	executor := r.getExecutor(exec)
	query := `UPDATE participants SET is_lottery_qualifier = $1, updated_at = NOW() WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, qualifier, participantID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) SetBaselineValue(ctx context.Context, exec SQLExecutor, participantID int, baseline float64) error {
	executor := r.getExecutor(exec)
	query := `UPDATE participants SET baseline_value = $1, updated_at = NOW() WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, baseline, participantID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}
