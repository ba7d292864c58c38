package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Z5Jonathan-maker/Eden-2-sub001/models"
	"github.com/Z5Jonathan-maker/Eden-2-sub001/repositories"
	"golang.org/x/sync/errgroup"
)

type RecordEventInput struct {
	UserID     int     `json:"user_id"`
	MetricSlug string  `json:"metric_slug"`
	Value      float64 `json:"value"`
	EventType  string  `json:"event_type"`
	SourceRef  *string `json:"source_ref,omitempty"`
}

// RecordEventResult reports what one ingested event touched. An unknown
// metric yields a zero result, never an error: activity ingestion must not
// fail the request path.
type RecordEventResult struct {
	Event        *models.MetricEvent `json:"event,omitempty"`
	Competitions int                 `json:"competitions"`
	Applied      int                 `json:"applied"`
}

// EventService ingests field-activity events and drives the per-competition
// pipeline: ledger apply, rank recompute, incremental rule evaluation.
type EventService struct {
	metricRepo      repositories.MetricRepository
	competitionRepo repositories.CompetitionRepository
	eventRepo       repositories.MetricEventRepository
	participantRepo repositories.ParticipantRepository
	ruleRepo        repositories.RuleRepository
	rankService     *RankService
	ruleService     *RuleService
	locks           *competitionLocks
	hub             StandingsBroadcaster
	logger          *slog.Logger
}

func NewEventService(
	metricRepo repositories.MetricRepository,
	competitionRepo repositories.CompetitionRepository,
	eventRepo repositories.MetricEventRepository,
	participantRepo repositories.ParticipantRepository,
	ruleRepo repositories.RuleRepository,
	rankService *RankService,
	ruleService *RuleService,
	hub StandingsBroadcaster,
	logger *slog.Logger,
) *EventService {
	return &EventService{
		metricRepo:      metricRepo,
		competitionRepo: competitionRepo,
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		ruleRepo:        ruleRepo,
		rankService:     rankService,
		ruleService:     ruleService,
		locks:           newCompetitionLocks(),
		hub:             hub,
		logger:          logger,
	}
}

// RecordEvent persists exactly one MetricEvent stamped with the competitions
// active for its metric, then runs the pipeline for each of them.
// Competitions are processed in parallel; events for the same competition
// serialize on a per-competition lock.
func (s *EventService) RecordEvent(ctx context.Context, input RecordEventInput) (*RecordEventResult, error) {
	if input.UserID == 0 || input.MetricSlug == "" {
		return nil, fmt.Errorf("%w: user_id and metric_slug are required", ErrValidationFailed)
	}
	// Ledger values only grow; a negative delta would let a crossed
	// boundary re-arm and fire again.
	if input.Value < 0 {
		return nil, fmt.Errorf("%w: value must not be negative", ErrValidationFailed)
	}
	if input.Value == 0 {
		input.Value = 1
	}

	metric, err := s.metricRepo.GetBySlug(ctx, input.MetricSlug)
	if err != nil {
		if errors.Is(err, repositories.ErrMetricNotFound) {
			s.logger.Warn("event for unknown metric ignored",
				slog.String("metric_slug", input.MetricSlug), slog.Int("user_id", input.UserID))
			return &RecordEventResult{}, nil
		}
		return nil, fmt.Errorf("failed to resolve metric %q: %w", input.MetricSlug, err)
	}

	competitions, err := s.competitionRepo.ListActiveByMetric(ctx, metric.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active competitions for metric %d: %w", metric.ID, err)
	}

	competitionIDs := make([]int64, len(competitions))
	for i, c := range competitions {
		competitionIDs[i] = int64(c.ID)
	}

	event := &models.MetricEvent{
		UserID:         input.UserID,
		MetricID:       metric.ID,
		Value:          input.Value,
		EventType:      input.EventType,
		SourceRef:      input.SourceRef,
		CompetitionIDs: competitionIDs,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to persist metric event: %w", err)
	}

	applied := make([]bool, len(competitions))
	g, gCtx := errgroup.WithContext(ctx)
	for i, competition := range competitions {
		i, competition := i, competition
		g.Go(func() error {
			ok, err := s.processForCompetition(gCtx, competition, input.UserID, input.Value)
			if err != nil {
				return err
			}
			applied[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &RecordEventResult{Event: event, Competitions: len(competitions)}
	for _, ok := range applied {
		if ok {
			result.Applied++
		}
	}
	return result, nil
}

func (s *EventService) processForCompetition(ctx context.Context, competition *models.Competition, userID int, delta float64) (bool, error) {
	lock := s.locks.get(competition.ID)
	lock.Lock()
	defer lock.Unlock()

	participant, err := s.participantRepo.ApplyDelta(ctx, competition.ID, userID, delta)
	if err != nil {
		return false, fmt.Errorf("failed to apply delta in competition %d: %w", competition.ID, err)
	}
	if participant == nil {
		// Not enrolled; skipped for this competition only.
		return false, nil
	}

	rankResult, err := s.rankService.Recompute(ctx, competition.ID, userID)
	if err != nil {
		return false, err
	}

	rules, err := s.ruleRepo.ListByCompetition(ctx, nil, competition.ID)
	if err != nil {
		return false, fmt.Errorf("failed to load rules for competition %d: %w", competition.ID, err)
	}
	participant.Rank = rankResult.FocusUserRank
	for _, rule := range rules {
		if err := s.ruleService.EvaluateOnUpdate(ctx, rule, participant, participant.PreviousValue, participant.CurrentValue); err != nil {
			return false, err
		}
	}

	if s.hub != nil {
		s.hub.BroadcastToRoom(fmt.Sprintf("competition:%d", competition.ID), "STANDINGS_UPDATED", map[string]interface{}{
			"competition_id": competition.ID,
			"user_id":        userID,
			"current_value":  participant.CurrentValue,
			"rank":           participant.Rank,
			"updated_ranks":  rankResult.UpdatedCount,
		})
	}
	return true, nil
}
