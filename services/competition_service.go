package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Z5Jonathan-maker/Eden-2-sub001/models"
	"github.com/Z5Jonathan-maker/Eden-2-sub001/repositories"
	"golang.org/x/sync/errgroup"
)

type RuleInput struct {
	Type        models.RuleType   `json:"type"`
	Priority    int               `json:"priority"`
	PointsAward int               `json:"points_award"`
	BadgeID     *int              `json:"badge_id,omitempty"`
	RewardID    *int              `json:"reward_id,omitempty"`
	LotterySeed *string           `json:"lottery_seed,omitempty"`
	Config      models.RuleConfig `json:"config"`
}

type CreateCompetitionInput struct {
	Name        string      `json:"name"`
	Description *string     `json:"description,omitempty"`
	MetricID    int         `json:"metric_id"`
	SeasonID    *int        `json:"season_id,omitempty"`
	StartDate   time.Time   `json:"start_date"`
	EndDate     time.Time   `json:"end_date"`
	Rules       []RuleInput `json:"rules"`
}

// CompetitionService owns the competition lifecycle up to settlement:
// creation with rules, activation, enrollment and the read side.
type CompetitionService struct {
	competitionRepo repositories.CompetitionRepository
	metricRepo      repositories.MetricRepository
	seasonRepo      repositories.SeasonRepository
	ruleRepo        repositories.RuleRepository
	participantRepo repositories.ParticipantRepository
	standingRepo    repositories.SeasonStandingRepository
	logger          *slog.Logger
}

func NewCompetitionService(
	competitionRepo repositories.CompetitionRepository,
	metricRepo repositories.MetricRepository,
	seasonRepo repositories.SeasonRepository,
	ruleRepo repositories.RuleRepository,
	participantRepo repositories.ParticipantRepository,
	standingRepo repositories.SeasonStandingRepository,
	logger *slog.Logger,
) *CompetitionService {
	return &CompetitionService{
		competitionRepo: competitionRepo,
		metricRepo:      metricRepo,
		seasonRepo:      seasonRepo,
		ruleRepo:        ruleRepo,
		participantRepo: participantRepo,
		standingRepo:    standingRepo,
		logger:          logger,
	}
}

// CreateCompetition creates a draft competition and its rules. A draft
// accepts enrollments but ignores events until activated.
func (s *CompetitionService) CreateCompetition(ctx context.Context, input CreateCompetitionInput) (*models.Competition, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, fmt.Errorf("%w: end_date must be after start_date", ErrValidationFailed)
	}
	if _, err := s.metricRepo.GetByID(ctx, input.MetricID); err != nil {
		if errors.Is(err, repositories.ErrMetricNotFound) {
			return nil, fmt.Errorf("%w: metric %d", ErrMetricNotFound, input.MetricID)
		}
		return nil, err
	}
	if input.SeasonID != nil {
		if _, err := s.seasonRepo.GetByID(ctx, *input.SeasonID); err != nil {
			if errors.Is(err, repositories.ErrSeasonNotFound) {
				return nil, fmt.Errorf("%w: season %d", ErrSeasonNotFound, *input.SeasonID)
			}
			return nil, err
		}
	}
	for i, ruleInput := range input.Rules {
		if err := validateRuleInput(ruleInput); err != nil {
			return nil, fmt.Errorf("%w: rule %d: %s", ErrValidationFailed, i, err)
		}
	}

	competition := &models.Competition{
		Name:        input.Name,
		Description: input.Description,
		MetricID:    input.MetricID,
		SeasonID:    input.SeasonID,
		Status:      models.StatusDraft,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
	}
	if err := s.competitionRepo.Create(ctx, competition); err != nil {
		return nil, fmt.Errorf("failed to create competition: %w", err)
	}

	for _, ruleInput := range input.Rules {
		rule := &models.Rule{
			CompetitionID: competition.ID,
			Type:          ruleInput.Type,
			Priority:      ruleInput.Priority,
			PointsAward:   ruleInput.PointsAward,
			BadgeID:       ruleInput.BadgeID,
			RewardID:      ruleInput.RewardID,
			LotterySeed:   ruleInput.LotterySeed,
			Config:        ruleInput.Config,
		}
		if err := s.ruleRepo.Create(ctx, rule); err != nil {
			return nil, fmt.Errorf("failed to create %s rule for competition %d: %w", rule.Type, competition.ID, err)
		}
		competition.Rules = append(competition.Rules, *rule)
	}

	s.logger.Info("competition created",
		slog.Int("competition_id", competition.ID),
		slog.String("name", competition.Name),
		slog.Int("rules", len(competition.Rules)))
	return competition, nil
}

func validateRuleInput(input RuleInput) error {
	switch input.Type {
	case models.RuleThreshold:
		if input.Config.Threshold == nil || input.Config.Threshold.ThresholdValue <= 0 {
			return errors.New("threshold rule needs a positive threshold_value")
		}
	case models.RuleTopN:
		if input.Config.TopN == nil || input.Config.TopN.TopN <= 0 {
			return errors.New("top_n rule needs a positive top_n")
		}
	case models.RuleMilestone:
		if input.Config.Milestone == nil || len(input.Config.Milestone.Milestones) == 0 {
			return errors.New("milestone rule needs at least one milestone")
		}
	case models.RuleImprovement:
		if input.Config.Improvement == nil || input.Config.Improvement.ImprovementPercent <= 0 {
			return errors.New("improvement rule needs a positive improvement_percent")
		}
	case models.RuleLottery:
		if input.Config.Lottery == nil || input.Config.Lottery.QualifierThreshold <= 0 || input.Config.Lottery.WinnerCount <= 0 {
			return errors.New("lottery rule needs a positive qualifier_threshold and winner_count")
		}
	default:
		return fmt.Errorf("unknown rule type %q", input.Type)
	}
	return nil
}

// Activate opens a draft competition for event processing.
func (s *CompetitionService) Activate(ctx context.Context, competitionID int) (*models.Competition, error) {
	err := s.competitionRepo.UpdateStatusIf(ctx, nil, competitionID, models.StatusDraft, models.StatusActive)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, fmt.Errorf("%w: competition %d", ErrCompetitionNotFound, competitionID)
		}
		if errors.Is(err, repositories.ErrCompetitionStatusStale) {
			return nil, fmt.Errorf("%w: competition %d is not a draft", ErrValidationFailed, competitionID)
		}
		return nil, err
	}
	s.logger.Info("competition activated", slog.Int("competition_id", competitionID))
	return s.competitionRepo.GetByID(ctx, competitionID)
}

// GetCompetition loads a competition with its rules and current standings.
func (s *CompetitionService) GetCompetition(ctx context.Context, competitionID int) (*models.Competition, error) {
	competition, err := s.competitionRepo.GetByID(ctx, competitionID)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, fmt.Errorf("%w: competition %d", ErrCompetitionNotFound, competitionID)
		}
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		metric, err := s.metricRepo.GetByID(gCtx, competition.MetricID)
		if err != nil {
			return err
		}
		competition.Metric = metric
		return nil
	})
	g.Go(func() error {
		rules, err := s.ruleRepo.ListByCompetition(gCtx, nil, competitionID)
		if err != nil {
			return err
		}
		for _, rule := range rules {
			competition.Rules = append(competition.Rules, *rule)
		}
		return nil
	})
	g.Go(func() error {
		participants, err := s.participantRepo.ListByCompetition(gCtx, nil, competitionID, true)
		if err != nil {
			return err
		}
		for _, p := range participants {
			competition.Participants = append(competition.Participants, *p)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load competition %d details: %w", competitionID, err)
	}
	return competition, nil
}

func (s *CompetitionService) ListCompetitions(ctx context.Context, filter repositories.ListCompetitionsFilter) ([]models.Competition, error) {
	return s.competitionRepo.List(ctx, filter)
}

// Enroll registers a user into a draft or active competition. Enrolling
// twice returns the existing row.
func (s *CompetitionService) Enroll(ctx context.Context, competitionID, userID int) (*models.Participant, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user_id is required", ErrValidationFailed)
	}
	competition, err := s.competitionRepo.GetByID(ctx, competitionID)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, fmt.Errorf("%w: competition %d", ErrCompetitionNotFound, competitionID)
		}
		return nil, err
	}
	if competition.Status != models.StatusDraft && competition.Status != models.StatusActive {
		return nil, fmt.Errorf("%w: competition %d has status %q", ErrCompetitionNotActive, competitionID, competition.Status)
	}

	existing, err := s.participantRepo.GetByCompetitionAndUser(ctx, competitionID, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrParticipantNotFound) {
		return nil, err
	}

	participant := &models.Participant{CompetitionID: competitionID, UserID: userID}
	if err := s.participantRepo.Create(ctx, participant); err != nil {
		return nil, fmt.Errorf("failed to enroll user %d in competition %d: %w", userID, competitionID, err)
	}
	s.logger.Info("participant enrolled",
		slog.Int("competition_id", competitionID), slog.Int("user_id", userID))
	return participant, nil
}

// GetStandings returns participants in standing order.
func (s *CompetitionService) GetStandings(ctx context.Context, competitionID int) ([]*models.Participant, error) {
	if _, err := s.competitionRepo.GetByID(ctx, competitionID); err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, fmt.Errorf("%w: competition %d", ErrCompetitionNotFound, competitionID)
		}
		return nil, err
	}
	return s.participantRepo.ListByCompetition(ctx, nil, competitionID, true)
}

// GetSeasonStandings returns the season leaderboard, best first.
func (s *CompetitionService) GetSeasonStandings(ctx context.Context, seasonID int) (*models.Season, []*models.SeasonStanding, error) {
	season, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, nil, fmt.Errorf("%w: season %d", ErrSeasonNotFound, seasonID)
		}
		return nil, nil, err
	}
	standings, err := s.standingRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, nil, err
	}
	return season, standings, nil
}
