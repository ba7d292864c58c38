package services

import (
	"context"
	"testing"

	"github.com/Z5Jonathan-maker/Eden-2-sub001/models"
)

func newRuleServiceForTest() (*RuleService, *fakeParticipantRepo, *fakeNotificationRepo) {
	participants := &fakeParticipantRepo{}
	notifications := &fakeNotificationRepo{}
	return NewRuleService(participants, notifications, testLogger()), participants, notifications
}

func enrolledParticipant(repo *fakeParticipantRepo, competitionID, userID int, value float64) *models.Participant {
	p := &models.Participant{CompetitionID: competitionID, UserID: userID, CurrentValue: value}
	_ = repo.Create(context.Background(), p)
	return p
}

func TestThresholdQualifiesOnceOnCrossing(t *testing.T) {
	svc, repo, notifications := newRuleServiceForTest()
	rule := &models.Rule{
		ID: 7, CompetitionID: 1, Type: models.RuleThreshold,
		Config: models.RuleConfig{Threshold: &models.ThresholdConfig{ThresholdValue: 50}},
	}
	p := enrolledParticipant(repo, 1, 10, 55)

	if err := svc.EvaluateOnUpdate(context.Background(), rule, p, 40, 55); err != nil {
		t.Fatalf("EvaluateOnUpdate: %v", err)
	}
	if !p.HasQualified(rule.ID) {
		t.Fatal("expected participant to qualify after crossing 50")
	}
	if got := len(notifications.byType(models.NotificationThresholdReached)); got != 1 {
		t.Fatalf("threshold_reached notifications = %d, want 1", got)
	}

	// Already qualified: a later crossing-shaped update must be a no-op.
	if err := svc.EvaluateOnUpdate(context.Background(), rule, p, 40, 60); err != nil {
		t.Fatalf("EvaluateOnUpdate (repeat): %v", err)
	}
	if got := len(notifications.byType(models.NotificationThresholdReached)); got != 1 {
		t.Fatalf("threshold_reached notifications after repeat = %d, want 1", got)
	}
	if got := len(p.QualifiedRules); got != 1 {
		t.Fatalf("qualified rules = %d, want 1", got)
	}
}

func TestThresholdNoEventWithoutCrossing(t *testing.T) {
	svc, repo, notifications := newRuleServiceForTest()
	rule := &models.Rule{
		ID: 7, CompetitionID: 1, Type: models.RuleThreshold,
		Config: models.RuleConfig{Threshold: &models.ThresholdConfig{ThresholdValue: 50}},
	}

	tests := []struct {
		name     string
		old, new float64
	}{
		{"already above", 55, 60},
		{"still below approach mark", 10, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := enrolledParticipant(repo, 1, 100+int(tt.new), tt.new)
			if err := svc.EvaluateOnUpdate(context.Background(), rule, p, tt.old, tt.new); err != nil {
				t.Fatalf("EvaluateOnUpdate: %v", err)
			}
			if p.HasQualified(rule.ID) && tt.old < 50 {
				t.Fatal("unexpected qualification without crossing")
			}
		})
	}
	if got := len(notifications.notifications); got != 0 {
		t.Fatalf("notifications = %d, want 0", got)
	}
}

func TestThresholdApproachingNotification(t *testing.T) {
	svc, repo, notifications := newRuleServiceForTest()
	rule := &models.Rule{
		ID: 7, CompetitionID: 1, Type: models.RuleThreshold,
		Config: models.RuleConfig{Threshold: &models.ThresholdConfig{ThresholdValue: 50}},
	}
	p := enrolledParticipant(repo, 1, 10, 46)

	// 90% of 50 is 45; crossing it warns but does not qualify.
	if err := svc.EvaluateOnUpdate(context.Background(), rule, p, 40, 46); err != nil {
		t.Fatalf("EvaluateOnUpdate: %v", err)
	}
	if p.HasQualified(rule.ID) {
		t.Fatal("approaching must not qualify")
	}
	if got := len(notifications.byType(models.NotificationThresholdApproaching)); got != 1 {
		t.Fatalf("threshold_approaching notifications = %d, want 1", got)
	}
}

func TestMilestoneJumpFiresHighestTierOnce(t *testing.T) {
	svc, repo, notifications := newRuleServiceForTest()
	rule := &models.Rule{
		ID: 3, CompetitionID: 1, Type: models.RuleMilestone,
		Config: models.RuleConfig{Milestone: &models.MilestoneConfig{Milestones: []models.Milestone{
			{Tier: "bronze", Value: 25, PointsAward: 10},
			{Tier: "silver", Value: 50, PointsAward: 25},
			{Tier: "gold", Value: 100, PointsAward: 50},
		}}},
	}
	p := enrolledParticipant(repo, 1, 10, 60)

	// A jump from 10 to 60 passes bronze and silver; only the highest fires.
	if err := svc.EvaluateOnUpdate(context.Background(), rule, p, 10, 60); err != nil {
		t.Fatalf("EvaluateOnUpdate: %v", err)
	}
	if p.MilestoneReached == nil || *p.MilestoneReached != "silver" {
		t.Fatalf("milestone = %v, want silver", p.MilestoneReached)
	}
	if got := len(notifications.byType(models.NotificationMilestoneReached)); got != 1 {
		t.Fatalf("milestone notifications = %d, want 1", got)
	}

	// Value still in the silver band: no re-trigger.
	p.QualifiedRules = nil
	if err := svc.EvaluateOnUpdate(context.Background(), rule, p, 60, 70); err != nil {
		t.Fatalf("EvaluateOnUpdate (same band): %v", err)
	}
	if got := len(notifications.byType(models.NotificationMilestoneReached)); got != 1 {
		t.Fatalf("milestone notifications after same-band update = %d, want 1", got)
	}

	// Crossing into gold fires again.
	if err := svc.EvaluateOnUpdate(context.Background(), rule, p, 70, 110); err != nil {
		t.Fatalf("EvaluateOnUpdate (gold): %v", err)
	}
	if *p.MilestoneReached != "gold" {
		t.Fatalf("milestone = %q, want gold", *p.MilestoneReached)
	}
}

func TestImprovementRequiresBaseline(t *testing.T) {
	svc, repo, notifications := newRuleServiceForTest()
	rule := &models.Rule{
		ID: 5, CompetitionID: 1, Type: models.RuleImprovement,
		Config: models.RuleConfig{Improvement: &models.ImprovementConfig{ImprovementPercent: 20, BaselinePeriodDays: 30}},
	}
	p := enrolledParticipant(repo, 1, 10, 500)

	if err := svc.EvaluateOnUpdate(context.Background(), rule, p, 100, 500); err != nil {
		t.Fatalf("EvaluateOnUpdate: %v", err)
	}
	if p.HasQualified(rule.ID) {
		t.Fatal("improvement must be inert without a baseline")
	}
	if got := len(notifications.notifications); got != 0 {
		t.Fatalf("notifications = %d, want 0", got)
	}
}

func TestImprovementQualifiesOnPercentCrossing(t *testing.T) {
	svc, repo, notifications := newRuleServiceForTest()
	rule := &models.Rule{
		ID: 5, CompetitionID: 1, Type: models.RuleImprovement,
		Config: models.RuleConfig{Improvement: &models.ImprovementConfig{ImprovementPercent: 20, BaselinePeriodDays: 30}},
	}
	p := enrolledParticipant(repo, 1, 10, 125)
	p.BaselineValue = floatPtr(100)

	// 110 -> 125 over baseline 100 moves 10% -> 25%, crossing the 20% target.
	if err := svc.EvaluateOnUpdate(context.Background(), rule, p, 110, 125); err != nil {
		t.Fatalf("EvaluateOnUpdate: %v", err)
	}
	if !p.HasQualified(rule.ID) {
		t.Fatal("expected qualification at 25% improvement")
	}
	if p.ImprovementPercent == nil || *p.ImprovementPercent != 25 {
		t.Fatalf("improvement percent = %v, want 25", p.ImprovementPercent)
	}
	if got := len(notifications.byType(models.NotificationImprovementReached)); got != 1 {
		t.Fatalf("improvement_reached notifications = %d, want 1", got)
	}
}

func TestImprovementApproachingNotification(t *testing.T) {
	svc, repo, notifications := newRuleServiceForTest()
	rule := &models.Rule{
		ID: 5, CompetitionID: 1, Type: models.RuleImprovement,
		Config: models.RuleConfig{Improvement: &models.ImprovementConfig{ImprovementPercent: 20, BaselinePeriodDays: 30}},
	}
	p := enrolledParticipant(repo, 1, 10, 118)
	p.BaselineValue = floatPtr(100)

	// 80% of the 20% target is 16%; 8% -> 18% crosses it.
	if err := svc.EvaluateOnUpdate(context.Background(), rule, p, 108, 118); err != nil {
		t.Fatalf("EvaluateOnUpdate: %v", err)
	}
	if p.HasQualified(rule.ID) {
		t.Fatal("approaching must not qualify")
	}
	if got := len(notifications.byType(models.NotificationImprovementApproaching)); got != 1 {
		t.Fatalf("improvement_approaching notifications = %d, want 1", got)
	}
}

func TestLotteryCrossingJoinsPool(t *testing.T) {
	svc, repo, notifications := newRuleServiceForTest()
	rule := &models.Rule{
		ID: 9, CompetitionID: 1, Type: models.RuleLottery,
		Config: models.RuleConfig{Lottery: &models.LotteryConfig{QualifierThreshold: 30, WinnerCount: 2}},
	}
	p := enrolledParticipant(repo, 1, 10, 35)

	if err := svc.EvaluateOnUpdate(context.Background(), rule, p, 25, 35); err != nil {
		t.Fatalf("EvaluateOnUpdate: %v", err)
	}
	if !p.IsLotteryQualifier {
		t.Fatal("expected lottery pool membership after crossing 30")
	}
	if !p.HasQualified(rule.ID) {
		t.Fatal("expected lottery qualification to be recorded")
	}
	if got := len(notifications.byType(models.NotificationLotteryQualified)); got != 1 {
		t.Fatalf("lottery_qualified notifications = %d, want 1", got)
	}
}

func TestTopNIsFinalOnly(t *testing.T) {
	svc, repo, notifications := newRuleServiceForTest()
	rule := &models.Rule{
		ID: 2, CompetitionID: 1, Type: models.RuleTopN,
		Config: models.RuleConfig{TopN: &models.TopNConfig{TopN: 3}},
	}
	p := enrolledParticipant(repo, 1, 10, 999)

	if err := svc.EvaluateOnUpdate(context.Background(), rule, p, 0, 999); err != nil {
		t.Fatalf("EvaluateOnUpdate: %v", err)
	}
	if p.HasQualified(rule.ID) {
		t.Fatal("top_n must never qualify incrementally")
	}
	if got := len(notifications.notifications); got != 0 {
		t.Fatalf("notifications = %d, want 0", got)
	}
}
