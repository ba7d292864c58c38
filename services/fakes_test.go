package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Z5Jonathan-maker/Eden-2-sub001/models"
	"github.com/Z5Jonathan-maker/Eden-2-sub001/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

type fakeMetricRepo struct {
	metrics map[string]*models.Metric
}

func (r *fakeMetricRepo) GetBySlug(_ context.Context, slug string) (*models.Metric, error) {
	if m, ok := r.metrics[slug]; ok {
		return m, nil
	}
	return nil, repositories.ErrMetricNotFound
}

func (r *fakeMetricRepo) GetByID(_ context.Context, id int) (*models.Metric, error) {
	for _, m := range r.metrics {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, repositories.ErrMetricNotFound
}

func (r *fakeMetricRepo) GetAll(_ context.Context) ([]models.Metric, error) {
	out := make([]models.Metric, 0, len(r.metrics))
	for _, m := range r.metrics {
		out = append(out, *m)
	}
	return out, nil
}

type fakeCompetitionRepo struct {
	mu           sync.Mutex
	competitions map[int]*models.Competition
	nextID       int
}

func newFakeCompetitionRepo() *fakeCompetitionRepo {
	return &fakeCompetitionRepo{competitions: make(map[int]*models.Competition), nextID: 1}
}

func (r *fakeCompetitionRepo) add(c *models.Competition) *models.Competition {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == 0 {
		c.ID = r.nextID
		r.nextID++
	}
	r.competitions[c.ID] = c
	return c
}

func (r *fakeCompetitionRepo) Create(_ context.Context, c *models.Competition) error {
	r.add(c)
	return nil
}

func (r *fakeCompetitionRepo) GetByID(_ context.Context, id int) (*models.Competition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.competitions[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, repositories.ErrCompetitionNotFound
}

func (r *fakeCompetitionRepo) List(_ context.Context, filter repositories.ListCompetitionsFilter) ([]models.Competition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Competition, 0)
	for _, c := range r.competitions {
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if filter.MetricID != nil && c.MetricID != *filter.MetricID {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCompetitionRepo) ListActiveByMetric(_ context.Context, metricID int) ([]*models.Competition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Competition, 0)
	for _, c := range r.competitions {
		if c.MetricID == metricID && c.Status == models.StatusActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCompetitionRepo) ListExpiredActive(_ context.Context, now time.Time) ([]*models.Competition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Competition, 0)
	for _, c := range r.competitions {
		if c.Status == models.StatusActive && c.EndDate.Before(now) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCompetitionRepo) ListCompletedBySeason(_ context.Context, seasonID int) ([]*models.Competition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Competition, 0)
	for _, c := range r.competitions {
		if c.SeasonID != nil && *c.SeasonID == seasonID && c.Status == models.StatusCompleted {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCompetitionRepo) UpdateStatusIf(_ context.Context, _ repositories.SQLExecutor, id int, from, to models.CompetitionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.competitions[id]
	if !ok {
		return repositories.ErrCompetitionNotFound
	}
	if c.Status != from {
		return repositories.ErrCompetitionStatusStale
	}
	c.Status = to
	return nil
}

func (r *fakeCompetitionRepo) MarkCompleted(_ context.Context, _ repositories.SQLExecutor, id int, evaluatedAt time.Time, qualifiedCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.competitions[id]
	if !ok {
		return repositories.ErrCompetitionNotFound
	}
	if c.Status != models.StatusEvaluating {
		return repositories.ErrCompetitionStatusStale
	}
	c.Status = models.StatusCompleted
	c.EvaluatedAt = &evaluatedAt
	c.QualifiedCount = &qualifiedCount
	return nil
}

type fakeRuleRepo struct {
	mu    sync.Mutex
	rules []*models.Rule
}

func (r *fakeRuleRepo) Create(_ context.Context, rule *models.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rule.ID == 0 {
		rule.ID = len(r.rules) + 1
	}
	r.rules = append(r.rules, rule)
	return nil
}

func (r *fakeRuleRepo) GetByID(_ context.Context, id int) (*models.Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rule := range r.rules {
		if rule.ID == id {
			return rule, nil
		}
	}
	return nil, repositories.ErrRuleNotFound
}

func (r *fakeRuleRepo) ListByCompetition(_ context.Context, _ repositories.SQLExecutor, competitionID int) ([]*models.Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Rule, 0)
	for _, rule := range r.rules {
		if rule.CompetitionID == competitionID {
			out = append(out, rule)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeRuleRepo) FindByType(_ context.Context, competitionID int, ruleType models.RuleType) (*models.Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rule := range r.rules {
		if rule.CompetitionID == competitionID && rule.Type == ruleType {
			return rule, nil
		}
	}
	return nil, repositories.ErrRuleNotFound
}

func (r *fakeRuleRepo) UpdateLotterySeed(_ context.Context, _ repositories.SQLExecutor, ruleID int, seed string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rule := range r.rules {
		if rule.ID == ruleID {
			rule.LotterySeed = &seed
			return nil
		}
	}
	return repositories.ErrRuleNotFound
}

type fakeParticipantRepo struct {
	mu           sync.Mutex
	participants []*models.Participant
}

func (r *fakeParticipantRepo) Create(_ context.Context, p *models.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		p.ID = len(r.participants) + 1
	}
	r.participants = append(r.participants, p)
	return nil
}

func (r *fakeParticipantRepo) byID(id int) *models.Participant {
	for _, p := range r.participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *fakeParticipantRepo) GetByCompetitionAndUser(_ context.Context, competitionID, userID int) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.CompetitionID == competitionID && p.UserID == userID {
			return p, nil
		}
	}
	return nil, repositories.ErrParticipantNotFound
}

func (r *fakeParticipantRepo) ListByCompetition(_ context.Context, _ repositories.SQLExecutor, competitionID int, orderByValue bool) ([]*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Participant, 0)
	for _, p := range r.participants {
		if p.CompetitionID == competitionID {
			out = append(out, p)
		}
	}
	if orderByValue {
		sort.Slice(out, func(i, j int) bool {
			if out[i].CurrentValue != out[j].CurrentValue {
				return out[i].CurrentValue > out[j].CurrentValue
			}
			return out[i].UserID < out[j].UserID
		})
	}
	return out, nil
}

func (r *fakeParticipantRepo) ApplyDelta(_ context.Context, competitionID, userID int, delta float64) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.CompetitionID == competitionID && p.UserID == userID {
			p.PreviousValue = p.CurrentValue
			p.CurrentValue += delta
			if p.CurrentValue > p.PeakValue {
				p.PeakValue = p.CurrentValue
			}
			p.ActivityCount++
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeParticipantRepo) UpdateRank(_ context.Context, _ repositories.SQLExecutor, participant *models.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.byID(participant.ID); p != nil {
		p.Rank = participant.Rank
		p.PreviousRank = participant.PreviousRank
		p.Percentile = participant.Percentile
		return nil
	}
	return repositories.ErrParticipantNotFound
}

func (r *fakeParticipantRepo) AddQualifiedRule(_ context.Context, _ repositories.SQLExecutor, participantID, ruleID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.byID(participantID)
	if p == nil {
		return repositories.ErrParticipantNotFound
	}
	for _, id := range p.QualifiedRules {
		if int(id) == ruleID {
			return nil
		}
	}
	p.QualifiedRules = append(p.QualifiedRules, int64(ruleID))
	return nil
}

func (r *fakeParticipantRepo) SetMilestoneReached(_ context.Context, _ repositories.SQLExecutor, participantID int, tier string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.byID(participantID); p != nil {
		p.MilestoneReached = &tier
		return nil
	}
	return repositories.ErrParticipantNotFound
}

func (r *fakeParticipantRepo) SetImprovementPercent(_ context.Context, _ repositories.SQLExecutor, participantID int, percent float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.byID(participantID); p != nil {
		p.ImprovementPercent = &percent
		return nil
	}
	return repositories.ErrParticipantNotFound
}

func (r *fakeParticipantRepo) SetLotteryQualifier(_ context.Context, _ repositories.SQLExecutor, participantID int, qualifier bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.byID(participantID); p != nil {
		p.IsLotteryQualifier = qualifier
		return nil
	}
	return repositories.ErrParticipantNotFound
}

func (r *fakeParticipantRepo) SetBaselineValue(_ context.Context, _ repositories.SQLExecutor, participantID int, baseline float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.byID(participantID); p != nil {
		p.BaselineValue = &baseline
		return nil
	}
	return repositories.ErrParticipantNotFound
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []*models.MetricEvent
}

func (r *fakeEventRepo) Create(_ context.Context, event *models.MetricEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = len(r.events) + 1
	r.events = append(r.events, event)
	return nil
}

func (r *fakeEventRepo) ListByUserAndMetric(_ context.Context, userID, metricID int, from, to time.Time) ([]*models.MetricEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.MetricEvent, 0)
	for _, e := range r.events {
		if e.UserID == userID && e.MetricID == metricID && !e.CreatedAt.Before(from) && e.CreatedAt.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) SumByUserAndMetric(_ context.Context, userID, metricID int, from, to time.Time) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum float64
	for _, e := range r.events {
		if e.UserID == userID && e.MetricID == metricID && !e.CreatedAt.Before(from) && e.CreatedAt.Before(to) {
			sum += e.Value
		}
	}
	return sum, nil
}

type resultKey struct {
	competitionID, userID, ruleID int
}

type fakeResultRepo struct {
	mu      sync.Mutex
	results []*models.Result
	seen    map[resultKey]bool
	// seasonOf maps competition to season for ListBySeason.
	seasonOf map[int]int
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{seen: make(map[resultKey]bool), seasonOf: make(map[int]int)}
}

func (r *fakeResultRepo) BatchCreate(_ context.Context, _ repositories.SQLExecutor, results []*models.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range results {
		key := resultKey{res.CompetitionID, res.UserID, res.RuleID}
		if r.seen[key] {
			continue
		}
		r.seen[key] = true
		res.ID = len(r.results) + 1
		r.results = append(r.results, res)
	}
	return nil
}

func (r *fakeResultRepo) ListByCompetition(_ context.Context, _ repositories.SQLExecutor, competitionID int) ([]*models.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Result, 0)
	for _, res := range r.results {
		if res.CompetitionID == competitionID {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *fakeResultRepo) ListByUser(_ context.Context, userID int) ([]*models.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Result, 0)
	for _, res := range r.results {
		if res.UserID == userID {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *fakeResultRepo) ListBySeason(_ context.Context, seasonID int) ([]*models.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Result, 0)
	for _, res := range r.results {
		if r.seasonOf[res.CompetitionID] == seasonID {
			out = append(out, res)
		}
	}
	return out, nil
}

type fakeBadgeRepo struct {
	badges map[int]*models.Badge
}

func (r *fakeBadgeRepo) GetByID(_ context.Context, id int) (*models.Badge, error) {
	if b, ok := r.badges[id]; ok {
		return b, nil
	}
	return nil, repositories.ErrBadgeNotFound
}

type userBadgeKey struct {
	userID, badgeID int
}

type fakeUserBadgeRepo struct {
	mu    sync.Mutex
	owned map[userBadgeKey]bool
	list  []*models.UserBadge
}

func newFakeUserBadgeRepo() *fakeUserBadgeRepo {
	return &fakeUserBadgeRepo{owned: make(map[userBadgeKey]bool)}
}

func (r *fakeUserBadgeRepo) Exists(_ context.Context, _ repositories.SQLExecutor, userID, badgeID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.owned[userBadgeKey{userID, badgeID}], nil
}

func (r *fakeUserBadgeRepo) Create(_ context.Context, _ repositories.SQLExecutor, badge *models.UserBadge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owned[userBadgeKey{badge.UserID, badge.BadgeID}] = true
	r.list = append(r.list, badge)
	return nil
}

func (r *fakeUserBadgeRepo) ListByUser(_ context.Context, userID int) ([]*models.UserBadge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.UserBadge, 0)
	for _, b := range r.list {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []*models.Notification
}

func (r *fakeNotificationRepo) Create(_ context.Context, _ repositories.SQLExecutor, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = len(r.notifications) + 1
	r.notifications = append(r.notifications, n)
	return nil
}

func (r *fakeNotificationRepo) BatchCreate(_ context.Context, _ repositories.SQLExecutor, ns []*models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range ns {
		n.ID = len(r.notifications) + 1
		r.notifications = append(r.notifications, n)
	}
	return nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID int, unreadOnly bool, limit int) ([]*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Notification, 0)
	for _, n := range r.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) byType(notificationType string) []*models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Notification, 0)
	for _, n := range r.notifications {
		if n.Type == notificationType {
			out = append(out, n)
		}
	}
	return out
}

type fakePointsRepo struct {
	mu     sync.Mutex
	totals map[int]int
}

func newFakePointsRepo() *fakePointsRepo {
	return &fakePointsRepo{totals: make(map[int]int)}
}

func (r *fakePointsRepo) Increment(_ context.Context, _ repositories.SQLExecutor, userID, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.totals[userID] += amount
	return nil
}

func (r *fakePointsRepo) GetByUser(_ context.Context, userID int) (*models.UserPoints, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &models.UserPoints{UserID: userID, TotalPoints: r.totals[userID]}, nil
}

type standingKey struct {
	seasonID, userID int
}

type fakeStandingRepo struct {
	mu        sync.Mutex
	standings map[standingKey]*models.SeasonStanding
}

func newFakeStandingRepo() *fakeStandingRepo {
	return &fakeStandingRepo{standings: make(map[standingKey]*models.SeasonStanding)}
}

func (r *fakeStandingRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, s *models.SeasonStanding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.standings[standingKey{s.SeasonID, s.UserID}] = s
	return nil
}

func (r *fakeStandingRepo) BatchUpsert(_ context.Context, _ repositories.SQLExecutor, standings []*models.SeasonStanding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range standings {
		r.standings[standingKey{s.SeasonID, s.UserID}] = s
	}
	return nil
}

func (r *fakeStandingRepo) ListBySeason(_ context.Context, seasonID int) ([]*models.SeasonStanding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.SeasonStanding, 0)
	for _, s := range r.standings {
		if s.SeasonID == seasonID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

type broadcastRecord struct {
	Room string
	Type string
}

type fakeHub struct {
	mu       sync.Mutex
	messages []broadcastRecord
}

func (h *fakeHub) BroadcastToRoom(room string, messageType string, _ interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, broadcastRecord{Room: room, Type: messageType})
}
