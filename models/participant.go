package models

import "time"

// Participant is a user's enrollment and live standing within one
// competition. One row per (competition_id, user_id), created at enrollment,
// mutated on every qualifying event, never deleted while the competition is
// active.
type Participant struct {
	ID                 int       `json:"id" db:"id"`
	CompetitionID      int       `json:"competition_id" db:"competition_id"`
	UserID             int       `json:"user_id" db:"user_id"`
	CurrentValue       float64   `json:"current_value" db:"current_value"`
	PreviousValue      float64   `json:"previous_value" db:"previous_value"`
	PeakValue          float64   `json:"peak_value" db:"peak_value"`
	Rank               int       `json:"rank" db:"rank"`
	PreviousRank       int       `json:"previous_rank" db:"previous_rank"`
	Percentile         float64   `json:"percentile" db:"percentile"`
	ActivityCount      int       `json:"activity_count" db:"activity_count"`
	QualifiedRules     []int64   `json:"qualified_rules" db:"qualified_rules"`
	MilestoneReached   *string   `json:"milestone_reached,omitempty" db:"milestone_reached"`
	ImprovementPercent *float64  `json:"improvement_percent,omitempty" db:"improvement_percent"`
	BaselineValue      *float64  `json:"baseline_value,omitempty" db:"baseline_value"`
	IsLotteryQualifier bool      `json:"is_lottery_qualifier" db:"is_lottery_qualifier"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// HasQualified reports whether the rule already fired for this participant.
func (p *Participant) HasQualified(ruleID int) bool {
	for _, id := range p.QualifiedRules {
		if int(id) == ruleID {
			return true
		}
	}
	return false
}
