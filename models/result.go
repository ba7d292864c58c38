package models

import "time"

// Result is the immutable record of a rule award, created only during
// settlement. Uniquely keyed by (competition_id, user_id, rule_id): at most
// one result per (user, rule) pair.
type Result struct {
	ID            int       `json:"id" db:"id"`
	CompetitionID int       `json:"competition_id" db:"competition_id"`
	UserID        int       `json:"user_id" db:"user_id"`
	RuleID        int       `json:"rule_id" db:"rule_id"`
	RuleType      RuleType  `json:"rule_type" db:"rule_type"`
	FinalRank     int       `json:"final_rank" db:"final_rank"`
	FinalValue    float64   `json:"final_value" db:"final_value"`
	PointsAwarded int       `json:"points_awarded" db:"points_awarded"`
	BadgeID       *int      `json:"badge_id,omitempty" db:"badge_id"`
	RewardID      *int      `json:"reward_id,omitempty" db:"reward_id"`
	Detail        *string   `json:"detail,omitempty" db:"detail"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// SettlementSummary is returned by a settlement run.
type SettlementSummary struct {
	CompetitionID     int `json:"competition_id"`
	ResultsCount      int `json:"results_count"`
	BadgesAwarded     int `json:"badges_awarded"`
	NotificationsSent int `json:"notifications_sent"`
}
