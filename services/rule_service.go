package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Z5Jonathan-maker/Eden-2-sub001/engine"
	"github.com/Z5Jonathan-maker/Eden-2-sub001/models"
	"github.com/Z5Jonathan-maker/Eden-2-sub001/repositories"
)

// Fractions of the qualification target at which courtesy "approaching"
// notifications fire. Signals only, no state change.
const (
	thresholdApproachFraction   = 0.9
	improvementApproachFraction = 0.8
)

// RuleService is the incremental rule evaluator. For every ledger update it
// decides, per rule, whether the update just crossed a qualification
// boundary. All transitions are edge-triggered and recorded in the
// participant's qualified_rules set, so a rule fires at most once per
// participant. Results are never written here; awards happen at settlement.
type RuleService struct {
	participantRepo  repositories.ParticipantRepository
	notificationRepo repositories.NotificationRepository
	logger           *slog.Logger
}

func NewRuleService(
	participantRepo repositories.ParticipantRepository,
	notificationRepo repositories.NotificationRepository,
	logger *slog.Logger,
) *RuleService {
	return &RuleService{
		participantRepo:  participantRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// EvaluateOnUpdate runs one rule against one participant's value transition.
func (s *RuleService) EvaluateOnUpdate(ctx context.Context, rule *models.Rule, p *models.Participant, oldValue, newValue float64) error {
	if p.HasQualified(rule.ID) {
		return nil
	}

	switch rule.Type {
	case models.RuleThreshold:
		return s.evaluateThreshold(ctx, rule, p, oldValue, newValue)
	case models.RuleTopN:
		// Rank-based awards are final-only; nothing to do incrementally.
		return nil
	case models.RuleMilestone:
		return s.evaluateMilestone(ctx, rule, p, newValue)
	case models.RuleImprovement:
		return s.evaluateImprovement(ctx, rule, p, oldValue, newValue)
	case models.RuleLottery:
		return s.evaluateLottery(ctx, rule, p, oldValue, newValue)
	default:
		s.logger.Warn("skipping rule with unknown type",
			slog.Int("rule_id", rule.ID), slog.String("type", string(rule.Type)))
		return nil
	}
}

func (s *RuleService) evaluateThreshold(ctx context.Context, rule *models.Rule, p *models.Participant, oldValue, newValue float64) error {
	cfg := rule.Config.Threshold
	if cfg == nil || cfg.ThresholdValue <= 0 {
		return nil
	}

	if engine.CrossedBoundary(oldValue, newValue, cfg.ThresholdValue) {
		if err := s.qualify(ctx, rule, p); err != nil {
			return err
		}
		return s.notify(ctx, p.UserID, models.NotificationThresholdReached,
			"Threshold reached",
			fmt.Sprintf("You reached %.0f and qualified for a reward.", cfg.ThresholdValue),
			map[string]interface{}{
				"competition_id": rule.CompetitionID,
				"rule_id":        rule.ID,
				"threshold":      cfg.ThresholdValue,
				"current_value":  newValue,
			})
	}

	approachMark := cfg.ThresholdValue * thresholdApproachFraction
	if engine.CrossedBoundary(oldValue, newValue, approachMark) {
		return s.notify(ctx, p.UserID, models.NotificationThresholdApproaching,
			"Almost there",
			fmt.Sprintf("You are at %.0f of %.0f. Keep going!", newValue, cfg.ThresholdValue),
			map[string]interface{}{
				"competition_id": rule.CompetitionID,
				"rule_id":        rule.ID,
				"threshold":      cfg.ThresholdValue,
				"current_value":  newValue,
			})
	}
	return nil
}

func (s *RuleService) evaluateMilestone(ctx context.Context, rule *models.Rule, p *models.Participant, newValue float64) error {
	cfg := rule.Config.Milestone
	if cfg == nil || len(cfg.Milestones) == 0 {
		return nil
	}

	reachedIdx := engine.HighestMilestone(cfg.Milestones, newValue)
	currentIdx := engine.MilestoneIndex(cfg.Milestones, p.MilestoneReached)
	if reachedIdx <= currentIdx {
		return nil
	}
	milestone, ok := engine.MilestoneAt(cfg.Milestones, reachedIdx)
	if !ok {
		return nil
	}

	// Persist the tier immediately so a later event cannot re-trigger a
	// lower one. A jump over several tiers fires a single qualification for
	// the highest tier reached.
	if err := s.participantRepo.SetMilestoneReached(ctx, nil, p.ID, milestone.Tier); err != nil {
		return fmt.Errorf("failed to persist milestone for participant %d: %w", p.ID, err)
	}
	p.MilestoneReached = &milestone.Tier

	if err := s.qualify(ctx, rule, p); err != nil {
		return err
	}
	return s.notify(ctx, p.UserID, models.NotificationMilestoneReached,
		fmt.Sprintf("Milestone unlocked: %s", milestone.Tier),
		fmt.Sprintf("You reached %.0f and unlocked the %s milestone.", milestone.Value, milestone.Tier),
		map[string]interface{}{
			"competition_id": rule.CompetitionID,
			"rule_id":        rule.ID,
			"tier":           milestone.Tier,
			"milestone":      milestone.Value,
			"current_value":  newValue,
		})
}

func (s *RuleService) evaluateImprovement(ctx context.Context, rule *models.Rule, p *models.Participant, oldValue, newValue float64) error {
	cfg := rule.Config.Improvement
	if cfg == nil || cfg.ImprovementPercent <= 0 {
		return nil
	}
	// Baseline is computed out of band; without a positive one the rule is inert.
	if p.BaselineValue == nil || *p.BaselineValue <= 0 {
		return nil
	}
	baseline := *p.BaselineValue

	oldPercent := engine.ImprovementPercent(baseline, oldValue)
	newPercent := engine.ImprovementPercent(baseline, newValue)

	if newPercent >= cfg.ImprovementPercent && oldPercent < cfg.ImprovementPercent {
		if err := s.participantRepo.SetImprovementPercent(ctx, nil, p.ID, newPercent); err != nil {
			return fmt.Errorf("failed to persist improvement for participant %d: %w", p.ID, err)
		}
		p.ImprovementPercent = &newPercent
		if err := s.qualify(ctx, rule, p); err != nil {
			return err
		}
		return s.notify(ctx, p.UserID, models.NotificationImprovementReached,
			"Improvement goal reached",
			fmt.Sprintf("You improved %.1f%% over your baseline.", newPercent),
			map[string]interface{}{
				"competition_id":      rule.CompetitionID,
				"rule_id":             rule.ID,
				"improvement_percent": newPercent,
				"target_percent":      cfg.ImprovementPercent,
				"baseline_value":      baseline,
			})
	}

	approachMark := cfg.ImprovementPercent * improvementApproachFraction
	if newPercent >= approachMark && oldPercent < approachMark {
		return s.notify(ctx, p.UserID, models.NotificationImprovementApproaching,
			"Closing in on your improvement goal",
			fmt.Sprintf("You are at %.1f%% of a %.1f%% target.", newPercent, cfg.ImprovementPercent),
			map[string]interface{}{
				"competition_id":      rule.CompetitionID,
				"rule_id":             rule.ID,
				"improvement_percent": newPercent,
				"target_percent":      cfg.ImprovementPercent,
			})
	}
	return nil
}

func (s *RuleService) evaluateLottery(ctx context.Context, rule *models.Rule, p *models.Participant, oldValue, newValue float64) error {
	cfg := rule.Config.Lottery
	if cfg == nil || cfg.QualifierThreshold <= 0 {
		return nil
	}
	if !engine.CrossedBoundary(oldValue, newValue, cfg.QualifierThreshold) {
		return nil
	}

	// Pool membership only; the winner draw happens at settlement.
	if err := s.participantRepo.SetLotteryQualifier(ctx, nil, p.ID, true); err != nil {
		return fmt.Errorf("failed to flag lottery qualifier %d: %w", p.ID, err)
	}
	p.IsLotteryQualifier = true

	if err := s.qualify(ctx, rule, p); err != nil {
		return err
	}
	return s.notify(ctx, p.UserID, models.NotificationLotteryQualified,
		"You're in the draw",
		fmt.Sprintf("You reached %.0f and entered the prize draw.", cfg.QualifierThreshold),
		map[string]interface{}{
			"competition_id":      rule.CompetitionID,
			"rule_id":             rule.ID,
			"qualifier_threshold": cfg.QualifierThreshold,
			"current_value":       newValue,
		})
}

func (s *RuleService) qualify(ctx context.Context, rule *models.Rule, p *models.Participant) error {
	if err := s.participantRepo.AddQualifiedRule(ctx, nil, p.ID, rule.ID); err != nil {
		return fmt.Errorf("failed to record qualification of rule %d for participant %d: %w", rule.ID, p.ID, err)
	}
	if !p.HasQualified(rule.ID) {
		p.QualifiedRules = append(p.QualifiedRules, int64(rule.ID))
	}
	return nil
}

func (s *RuleService) notify(ctx context.Context, userID int, notificationType, title, body string, data map[string]interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode notification data: %w", err)
	}
	n := &models.Notification{
		UserID: userID,
		Type:   notificationType,
		Title:  title,
		Body:   body,
		Data:   payload,
	}
	if err := s.notificationRepo.Create(ctx, nil, n); err != nil {
		return fmt.Errorf("failed to insert %s notification for user %d: %w", notificationType, userID, err)
	}
	return nil
}
