package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Z5Jonathan-maker/Eden-2-sub001/engine"
	"github.com/Z5Jonathan-maker/Eden-2-sub001/models"
	"github.com/Z5Jonathan-maker/Eden-2-sub001/repositories"
	"github.com/Z5Jonathan-maker/Eden-2-sub001/storage"
	"golang.org/x/sync/errgroup"
)

// LotteryQualifiers is the read-only, pre-draw view of a lottery pool.
type LotteryQualifiers struct {
	Rule       *models.Rule          `json:"rule"`
	Qualifiers []*models.Participant `json:"qualifiers"`
}

type awardKey struct {
	userID int
	ruleID int
}

// SettlementService runs the one-way competition state machine:
// active -> evaluating -> completed. It evaluates every rule over the final
// snapshot, writes immutable results, awards points and badges, queues
// end-of-competition notifications and folds completed competitions into
// season standings.
type SettlementService struct {
	competitionRepo  repositories.CompetitionRepository
	ruleRepo         repositories.RuleRepository
	participantRepo  repositories.ParticipantRepository
	resultRepo       repositories.ResultRepository
	badgeRepo        repositories.BadgeRepository
	userBadgeRepo    repositories.UserBadgeRepository
	notificationRepo repositories.NotificationRepository
	pointsRepo       repositories.UserPointsRepository
	standingRepo     repositories.SeasonStandingRepository
	eventRepo        repositories.MetricEventRepository
	archive          storage.Uploader
	hub              StandingsBroadcaster
	logger           *slog.Logger
}

func NewSettlementService(
	competitionRepo repositories.CompetitionRepository,
	ruleRepo repositories.RuleRepository,
	participantRepo repositories.ParticipantRepository,
	resultRepo repositories.ResultRepository,
	badgeRepo repositories.BadgeRepository,
	userBadgeRepo repositories.UserBadgeRepository,
	notificationRepo repositories.NotificationRepository,
	pointsRepo repositories.UserPointsRepository,
	standingRepo repositories.SeasonStandingRepository,
	eventRepo repositories.MetricEventRepository,
	archive storage.Uploader,
	hub StandingsBroadcaster,
	logger *slog.Logger,
) *SettlementService {
	return &SettlementService{
		competitionRepo:  competitionRepo,
		ruleRepo:         ruleRepo,
		participantRepo:  participantRepo,
		resultRepo:       resultRepo,
		badgeRepo:        badgeRepo,
		userBadgeRepo:    userBadgeRepo,
		notificationRepo: notificationRepo,
		pointsRepo:       pointsRepo,
		standingRepo:     standingRepo,
		eventRepo:        eventRepo,
		archive:          archive,
		hub:              hub,
		logger:           logger,
	}
}

// EndAndEvaluate settles a competition. The status compare-and-set to
// evaluating is the cooperative lock: a second concurrent call, or a call on
// a non-active competition, fails with an invalid-state error naming the
// current status and changes nothing. A failure mid-settlement leaves the
// competition in evaluating; it never silently reverts to active.
func (s *SettlementService) EndAndEvaluate(ctx context.Context, competitionID int) (*models.SettlementSummary, error) {
	competition, err := s.competitionRepo.GetByID(ctx, competitionID)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, fmt.Errorf("%w: competition %d", ErrCompetitionNotFound, competitionID)
		}
		return nil, err
	}
	if competition.Status != models.StatusActive {
		return nil, fmt.Errorf("%w: competition %d has status %q", ErrCompetitionNotActive, competitionID, competition.Status)
	}

	err = s.competitionRepo.UpdateStatusIf(ctx, nil, competitionID, models.StatusActive, models.StatusEvaluating)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionStatusStale) {
			return nil, fmt.Errorf("%w: competition %d was claimed by a concurrent settlement", ErrCompetitionNotActive, competitionID)
		}
		return nil, fmt.Errorf("failed to transition competition %d to evaluating: %w", competitionID, err)
	}
	s.logger.Info("settlement started", slog.Int("competition_id", competitionID))

	var (
		rules        []*models.Rule
		participants []*models.Participant
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var loadErr error
		rules, loadErr = s.ruleRepo.ListByCompetition(gCtx, nil, competitionID)
		return loadErr
	})
	g.Go(func() error {
		var loadErr error
		// current_value DESC, user_id ASC: the authoritative final ranking.
		participants, loadErr = s.participantRepo.ListByCompetition(gCtx, nil, competitionID, true)
		return loadErr
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load settlement snapshot for competition %d: %w", competitionID, err)
	}

	awarded := make(map[awardKey]bool)
	results := make([]*models.Result, 0)
	for _, rule := range rules {
		ruleResults, err := s.evaluateRuleFinal(ctx, rule, participants)
		if err != nil {
			return nil, err
		}
		for _, res := range ruleResults {
			key := awardKey{userID: res.UserID, ruleID: res.RuleID}
			if awarded[key] {
				continue
			}
			awarded[key] = true
			results = append(results, res)
		}
	}

	if err := s.resultRepo.BatchCreate(ctx, nil, results); err != nil {
		return nil, fmt.Errorf("failed to insert results for competition %d: %w", competitionID, err)
	}

	summary := &models.SettlementSummary{CompetitionID: competitionID, ResultsCount: len(results)}
	notifications := make([]*models.Notification, 0, len(participants))
	winners := make(map[int]bool)

	for _, res := range results {
		winners[res.UserID] = true

		if res.PointsAwarded > 0 {
			if err := s.pointsRepo.Increment(ctx, nil, res.UserID, res.PointsAwarded); err != nil {
				return nil, fmt.Errorf("failed to award %d points to user %d: %w", res.PointsAwarded, res.UserID, err)
			}
		}

		if res.BadgeID != nil {
			badgeNotification, badgeAwarded, err := s.awardBadge(ctx, competition, res)
			if err != nil {
				return nil, err
			}
			if badgeAwarded {
				summary.BadgesAwarded++
			}
			if badgeNotification != nil {
				notifications = append(notifications, badgeNotification)
			}
		}

		notifications = append(notifications, resultNotification(competition, res))
	}

	// Everyone who entered but won nothing still hears the competition ended.
	for _, p := range participants {
		if winners[p.UserID] {
			continue
		}
		notifications = append(notifications, endedNotification(competition, p))
	}

	if err := s.notificationRepo.BatchCreate(ctx, nil, notifications); err != nil {
		return nil, fmt.Errorf("failed to insert settlement notifications for competition %d: %w", competitionID, err)
	}
	summary.NotificationsSent = len(notifications)

	evaluatedAt := time.Now().UTC()
	if err := s.competitionRepo.MarkCompleted(ctx, nil, competitionID, evaluatedAt, len(winners)); err != nil {
		return nil, fmt.Errorf("failed to complete competition %d: %w", competitionID, err)
	}
	s.logger.Info("settlement completed",
		slog.Int("competition_id", competitionID),
		slog.Int("results", summary.ResultsCount),
		slog.Int("badges", summary.BadgesAwarded),
		slog.Int("notifications", summary.NotificationsSent))

	if competition.SeasonID != nil {
		if err := s.RebuildSeasonStandings(ctx, *competition.SeasonID); err != nil {
			return nil, fmt.Errorf("failed to rebuild standings for season %d: %w", *competition.SeasonID, err)
		}
	}

	s.archiveSettlement(ctx, competition, rules, results, summary, evaluatedAt)

	if s.hub != nil {
		s.hub.BroadcastToRoom(fmt.Sprintf("competition:%d", competitionID), "COMPETITION_COMPLETED", summary)
	}
	return summary, nil
}

func (s *SettlementService) evaluateRuleFinal(ctx context.Context, rule *models.Rule, participants []*models.Participant) ([]*models.Result, error) {
	switch rule.Type {
	case models.RuleTopN:
		return s.settleTopN(rule, participants), nil
	case models.RuleThreshold:
		return s.settleThreshold(rule, participants), nil
	case models.RuleMilestone:
		return s.settleMilestone(rule, participants), nil
	case models.RuleImprovement:
		return s.settleImprovement(rule, participants), nil
	case models.RuleLottery:
		return s.settleLottery(ctx, rule, participants)
	default:
		s.logger.Warn("skipping rule with unknown type at settlement",
			slog.Int("rule_id", rule.ID), slog.String("type", string(rule.Type)))
		return nil, nil
	}
}

func (s *SettlementService) settleTopN(rule *models.Rule, participants []*models.Participant) []*models.Result {
	cfg := rule.Config.TopN
	if cfg == nil || cfg.TopN <= 0 {
		return nil
	}
	limit := cfg.TopN
	if limit > len(participants) {
		limit = len(participants)
	}

	results := make([]*models.Result, 0, limit)
	for i := 0; i < limit; i++ {
		p := participants[i]
		finalRank := i + 1
		points := rule.PointsAward
		badgeID := rule.BadgeID
		if tier := engine.TierForRank(cfg.RewardTiers, finalRank); tier != nil {
			points = tier.PointsAward
			if tier.BadgeID != nil {
				badgeID = tier.BadgeID
			}
		}
		results = append(results, &models.Result{
			CompetitionID: rule.CompetitionID,
			UserID:        p.UserID,
			RuleID:        rule.ID,
			RuleType:      rule.Type,
			FinalRank:     finalRank,
			FinalValue:    p.CurrentValue,
			PointsAwarded: points,
			BadgeID:       badgeID,
			RewardID:      rule.RewardID,
		})
	}
	return results
}

func (s *SettlementService) settleThreshold(rule *models.Rule, participants []*models.Participant) []*models.Result {
	cfg := rule.Config.Threshold
	if cfg == nil || cfg.ThresholdValue <= 0 {
		return nil
	}

	results := make([]*models.Result, 0)
	for i, p := range participants {
		if p.CurrentValue < cfg.ThresholdValue {
			continue
		}
		if cfg.MaxWinners > 0 && len(results) >= cfg.MaxWinners {
			break
		}
		results = append(results, &models.Result{
			CompetitionID: rule.CompetitionID,
			UserID:        p.UserID,
			RuleID:        rule.ID,
			RuleType:      rule.Type,
			FinalRank:     i + 1,
			FinalValue:    p.CurrentValue,
			PointsAwarded: rule.PointsAward,
			BadgeID:       rule.BadgeID,
			RewardID:      rule.RewardID,
		})
	}
	return results
}

func (s *SettlementService) settleMilestone(rule *models.Rule, participants []*models.Participant) []*models.Result {
	cfg := rule.Config.Milestone
	if cfg == nil || len(cfg.Milestones) == 0 {
		return nil
	}

	results := make([]*models.Result, 0)
	for i, p := range participants {
		if p.MilestoneReached == nil {
			continue
		}
		// The tier carries its own award, not the rule.
		milestone, ok := engine.MilestoneByTier(cfg.Milestones, *p.MilestoneReached)
		if !ok {
			s.logger.Warn("participant reached unknown milestone tier",
				slog.Int("participant_id", p.ID), slog.String("tier", *p.MilestoneReached))
			continue
		}
		detail := milestone.Tier
		results = append(results, &models.Result{
			CompetitionID: rule.CompetitionID,
			UserID:        p.UserID,
			RuleID:        rule.ID,
			RuleType:      rule.Type,
			FinalRank:     i + 1,
			FinalValue:    p.CurrentValue,
			PointsAwarded: milestone.PointsAward,
			BadgeID:       milestone.BadgeID,
			RewardID:      rule.RewardID,
			Detail:        &detail,
		})
	}
	return results
}

func (s *SettlementService) settleImprovement(rule *models.Rule, participants []*models.Participant) []*models.Result {
	cfg := rule.Config.Improvement
	if cfg == nil || cfg.ImprovementPercent <= 0 {
		return nil
	}

	results := make([]*models.Result, 0)
	for i, p := range participants {
		if p.BaselineValue == nil || *p.BaselineValue <= 0 {
			continue
		}
		achieved := engine.ImprovementPercent(*p.BaselineValue, p.CurrentValue)
		if achieved < cfg.ImprovementPercent {
			continue
		}
		detail := fmt.Sprintf("%.1f%%", achieved)
		results = append(results, &models.Result{
			CompetitionID: rule.CompetitionID,
			UserID:        p.UserID,
			RuleID:        rule.ID,
			RuleType:      rule.Type,
			FinalRank:     i + 1,
			FinalValue:    achieved,
			PointsAwarded: rule.PointsAward,
			BadgeID:       rule.BadgeID,
			RewardID:      rule.RewardID,
			Detail:        &detail,
		})
	}
	return results
}

func (s *SettlementService) settleLottery(ctx context.Context, rule *models.Rule, participants []*models.Participant) ([]*models.Result, error) {
	cfg := rule.Config.Lottery
	if cfg == nil || cfg.QualifierThreshold <= 0 || cfg.WinnerCount <= 0 {
		return nil, nil
	}

	pool := make([]*models.Participant, 0)
	poolRank := make([]int, 0)
	for i, p := range participants {
		if p.CurrentValue >= cfg.QualifierThreshold {
			pool = append(pool, p)
			poolRank = append(poolRank, i+1)
		}
	}
	if len(pool) == 0 {
		return nil, nil
	}

	// The seed is persisted on the rule before the draw so the winner set is
	// reproducible for audit.
	seed, err := s.ensureLotterySeed(ctx, rule)
	if err != nil {
		return nil, err
	}

	winnerIndices := engine.NewSampler(seed).Sample(len(pool), cfg.WinnerCount)
	results := make([]*models.Result, 0, len(winnerIndices))
	for _, idx := range winnerIndices {
		p := pool[idx]
		results = append(results, &models.Result{
			CompetitionID: rule.CompetitionID,
			UserID:        p.UserID,
			RuleID:        rule.ID,
			RuleType:      rule.Type,
			FinalRank:     poolRank[idx],
			FinalValue:    p.CurrentValue,
			PointsAwarded: rule.PointsAward,
			BadgeID:       rule.BadgeID,
			RewardID:      rule.RewardID,
		})
	}
	s.logger.Info("lottery drawn",
		slog.Int("rule_id", rule.ID),
		slog.Int("pool_size", len(pool)),
		slog.Int("winners", len(results)))
	return results, nil
}

func (s *SettlementService) ensureLotterySeed(ctx context.Context, rule *models.Rule) (string, error) {
	if rule.LotterySeed != nil && *rule.LotterySeed != "" {
		return *rule.LotterySeed, nil
	}
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate lottery seed: %w", err)
	}
	seed := hex.EncodeToString(raw)
	if err := s.ruleRepo.UpdateLotterySeed(ctx, nil, rule.ID, seed); err != nil {
		return "", err
	}
	rule.LotterySeed = &seed
	return seed, nil
}

func (s *SettlementService) awardBadge(ctx context.Context, competition *models.Competition, res *models.Result) (*models.Notification, bool, error) {
	badgeID := *res.BadgeID
	exists, err := s.userBadgeRepo.Exists(ctx, nil, res.UserID, badgeID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check badge %d for user %d: %w", badgeID, res.UserID, err)
	}
	if exists {
		// Already earned elsewhere; silent no-op, not an error.
		return nil, false, nil
	}

	badge, err := s.badgeRepo.GetByID(ctx, badgeID)
	if err != nil {
		if errors.Is(err, repositories.ErrBadgeNotFound) {
			s.logger.Warn("badge missing from catalog, award skipped",
				slog.Int("badge_id", badgeID), slog.Int("user_id", res.UserID))
			return nil, false, nil
		}
		return nil, false, err
	}

	userBadge := &models.UserBadge{
		UserID:        res.UserID,
		BadgeID:       badgeID,
		CompetitionID: &competition.ID,
		EarnedReason:  fmt.Sprintf("competition:%s", competition.Name),
	}
	if err := s.userBadgeRepo.Create(ctx, nil, userBadge); err != nil {
		return nil, false, fmt.Errorf("failed to insert badge %d for user %d: %w", badgeID, res.UserID, err)
	}

	data, _ := json.Marshal(map[string]interface{}{
		"badge_id":       badge.ID,
		"badge_name":     badge.Name,
		"badge_icon":     badge.Icon,
		"badge_tier":     badge.Tier,
		"competition_id": competition.ID,
	})
	return &models.Notification{
		UserID: res.UserID,
		Type:   models.NotificationBadgeEarned,
		Title:  fmt.Sprintf("Badge earned: %s", badge.Name),
		Body:   fmt.Sprintf("You earned the %s badge in %s.", badge.Name, competition.Name),
		Data:   data,
	}, true, nil
}

func resultNotification(competition *models.Competition, res *models.Result) *models.Notification {
	data, _ := json.Marshal(map[string]interface{}{
		"competition_id": competition.ID,
		"rule_id":        res.RuleID,
		"rule_type":      res.RuleType,
		"final_rank":     res.FinalRank,
		"final_value":    res.FinalValue,
		"points_awarded": res.PointsAwarded,
	})
	return &models.Notification{
		UserID: res.UserID,
		Type:   models.NotificationCompetitionResult,
		Title:  fmt.Sprintf("%s: you placed #%d", competition.Name, res.FinalRank),
		Body:   fmt.Sprintf("You finished rank %d and earned %d points.", res.FinalRank, res.PointsAwarded),
		Data:   data,
	}
}

func endedNotification(competition *models.Competition, p *models.Participant) *models.Notification {
	data, _ := json.Marshal(map[string]interface{}{
		"competition_id": competition.ID,
		"final_rank":     p.Rank,
		"final_value":    p.CurrentValue,
	})
	return &models.Notification{
		UserID: p.UserID,
		Type:   models.NotificationCompetitionEnded,
		Title:  fmt.Sprintf("%s has ended", competition.Name),
		Body:   "Thanks for competing. Check the final standings.",
		Data:   data,
	}
}

// CloseExpired settles every active competition whose end date has passed.
// One failing competition does not stop the sweep.
func (s *SettlementService) CloseExpired(ctx context.Context, now time.Time) error {
	expired, err := s.competitionRepo.ListExpiredActive(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list expired competitions: %w", err)
	}
	for _, competition := range expired {
		if _, err := s.EndAndEvaluate(ctx, competition.ID); err != nil {
			s.logger.Error("auto-close settlement failed",
				slog.Int("competition_id", competition.ID), slog.Any("error", err))
		}
	}
	return nil
}

// GetLotteryQualifiers returns the pre-draw qualifier pool of a
// competition's lottery rule.
func (s *SettlementService) GetLotteryQualifiers(ctx context.Context, competitionID int) (*LotteryQualifiers, error) {
	if _, err := s.competitionRepo.GetByID(ctx, competitionID); err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, fmt.Errorf("%w: competition %d", ErrCompetitionNotFound, competitionID)
		}
		return nil, err
	}

	rule, err := s.ruleRepo.FindByType(ctx, competitionID, models.RuleLottery)
	if err != nil {
		if errors.Is(err, repositories.ErrRuleNotFound) {
			return nil, fmt.Errorf("%w: competition %d", ErrNoLotteryRule, competitionID)
		}
		return nil, err
	}
	cfg := rule.Config.Lottery
	if cfg == nil {
		return nil, fmt.Errorf("%w: competition %d", ErrNoLotteryRule, competitionID)
	}

	participants, err := s.participantRepo.ListByCompetition(ctx, nil, competitionID, true)
	if err != nil {
		return nil, err
	}
	qualifiers := make([]*models.Participant, 0)
	for _, p := range participants {
		if p.CurrentValue >= cfg.QualifierThreshold {
			qualifiers = append(qualifiers, p)
		}
	}
	return &LotteryQualifiers{Rule: rule, Qualifiers: qualifiers}, nil
}

// ComputeBaselines sets each participant's baseline_value from the sum of
// their metric events over the improvement rule's baseline period before the
// competition start. Returns the number of participants updated.
func (s *SettlementService) ComputeBaselines(ctx context.Context, competitionID int) (int, error) {
	competition, err := s.competitionRepo.GetByID(ctx, competitionID)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return 0, fmt.Errorf("%w: competition %d", ErrCompetitionNotFound, competitionID)
		}
		return 0, err
	}

	rule, err := s.ruleRepo.FindByType(ctx, competitionID, models.RuleImprovement)
	if err != nil {
		if errors.Is(err, repositories.ErrRuleNotFound) {
			return 0, fmt.Errorf("%w: competition %d", ErrNoImprovementRule, competitionID)
		}
		return 0, err
	}
	cfg := rule.Config.Improvement
	if cfg == nil || cfg.BaselinePeriodDays <= 0 {
		return 0, fmt.Errorf("%w: competition %d", ErrNoImprovementRule, competitionID)
	}

	from := competition.StartDate.AddDate(0, 0, -cfg.BaselinePeriodDays)
	to := competition.StartDate

	participants, err := s.participantRepo.ListByCompetition(ctx, nil, competitionID, false)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, p := range participants {
		baseline, err := s.eventRepo.SumByUserAndMetric(ctx, p.UserID, competition.MetricID, from, to)
		if err != nil {
			return updated, fmt.Errorf("failed to compute baseline for user %d: %w", p.UserID, err)
		}
		if err := s.participantRepo.SetBaselineValue(ctx, nil, p.ID, baseline); err != nil {
			return updated, err
		}
		updated++
	}
	s.logger.Info("baselines computed",
		slog.Int("competition_id", competitionID), slog.Int("participants", updated))
	return updated, nil
}

// RebuildSeasonStandings recomputes the season projection from scratch:
// points, entries and wins summed over every completed competition's results.
func (s *SettlementService) RebuildSeasonStandings(ctx context.Context, seasonID int) error {
	competitions, err := s.competitionRepo.ListCompletedBySeason(ctx, seasonID)
	if err != nil {
		return fmt.Errorf("failed to load season %d competitions: %w", seasonID, err)
	}
	completed := make(map[int]bool, len(competitions))
	for _, c := range competitions {
		completed[c.ID] = true
	}

	results, err := s.resultRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return fmt.Errorf("failed to load season %d results: %w", seasonID, err)
	}

	type userTotals struct {
		points       int
		competitions map[int]bool
		wins         map[int]bool
	}
	totals := make(map[int]*userTotals)
	for _, res := range results {
		// Rows from a competition still in evaluating belong to an
		// interrupted settlement and stay out of the fold.
		if !completed[res.CompetitionID] {
			continue
		}
		t, ok := totals[res.UserID]
		if !ok {
			t = &userTotals{competitions: make(map[int]bool), wins: make(map[int]bool)}
			totals[res.UserID] = t
		}
		t.points += res.PointsAwarded
		t.competitions[res.CompetitionID] = true
		if res.FinalRank == 1 {
			t.wins[res.CompetitionID] = true
		}
	}

	standings := make([]*models.SeasonStanding, 0, len(totals))
	for userID, t := range totals {
		standings = append(standings, &models.SeasonStanding{
			SeasonID:            seasonID,
			UserID:              userID,
			TotalPoints:         t.points,
			CompetitionsEntered: len(t.competitions),
			CompetitionsWon:     len(t.wins),
		})
	}
	if err := s.standingRepo.BatchUpsert(ctx, nil, standings); err != nil {
		return err
	}
	s.logger.Info("season standings rebuilt",
		slog.Int("season_id", seasonID), slog.Int("users", len(standings)))
	return nil
}

// archiveSettlement uploads a JSON audit report of the run. Best effort: an
// archive failure is logged, never fails a finished settlement.
func (s *SettlementService) archiveSettlement(ctx context.Context, competition *models.Competition, rules []*models.Rule, results []*models.Result, summary *models.SettlementSummary, evaluatedAt time.Time) {
	if s.archive == nil {
		return
	}

	report := map[string]interface{}{
		"competition":  competition,
		"rules":        rules,
		"results":      results,
		"summary":      summary,
		"evaluated_at": evaluatedAt,
	}
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		s.logger.Error("failed to encode settlement report", slog.Any("error", err))
		return
	}

	key := fmt.Sprintf("settlements/competition-%d-%s.json", competition.ID, evaluatedAt.Format("20060102T150405Z"))
	if _, err := s.archive.Upload(ctx, key, "application/json", bytes.NewReader(payload)); err != nil {
		s.logger.Error("failed to archive settlement report",
			slog.Int("competition_id", competition.ID), slog.Any("error", err))
		return
	}
	s.logger.Info("settlement report archived", slog.String("key", key))
}
