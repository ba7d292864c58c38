package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// RuleType discriminates the reward-qualification policies a competition can carry.
type RuleType string

const (
	RuleThreshold   RuleType = "threshold"
	RuleTopN        RuleType = "top_n"
	RuleMilestone   RuleType = "milestone"
	RuleImprovement RuleType = "improvement"
	RuleLottery     RuleType = "lottery"
)

// ThresholdConfig qualifies every participant whose value reaches ThresholdValue.
// MaxWinners, when positive, caps threshold awards at settlement.
type ThresholdConfig struct {
	ThresholdValue float64 `json:"threshold_value"`
	MaxWinners     int     `json:"max_winners,omitempty"`
}

// RewardTier maps a final rank to its own points/badge override for top_n rules.
type RewardTier struct {
	Rank        int  `json:"rank"`
	PointsAward int  `json:"points_award"`
	BadgeID     *int `json:"badge_id,omitempty"`
}

type TopNConfig struct {
	TopN        int          `json:"top_n"`
	RewardTiers []RewardTier `json:"reward_tiers,omitempty"`
}

// Milestone is one tier of a milestone rule. Tiers carry their own award
// fields; the rule's flat points_award does not apply to milestones.
type Milestone struct {
	Tier        string  `json:"tier"`
	Value       float64 `json:"value"`
	PointsAward int     `json:"points_award"`
	BadgeID     *int    `json:"badge_id,omitempty"`
}

type MilestoneConfig struct {
	Milestones []Milestone `json:"milestones"`
}

type ImprovementConfig struct {
	ImprovementPercent float64 `json:"improvement_percent"`
	BaselinePeriodDays int     `json:"baseline_period_days"`
}

type LotteryConfig struct {
	QualifierThreshold float64 `json:"qualifier_threshold"`
	WinnerCount        int     `json:"winner_count"`
}

// RuleConfig is the decoded, type-specific configuration of a rule. Exactly
// one variant is non-nil, matching Rule.Type. Raw JSON from the store is
// decoded once at the repository boundary via Rule.DecodeConfig.
type RuleConfig struct {
	Threshold   *ThresholdConfig   `json:"threshold,omitempty"`
	TopN        *TopNConfig        `json:"top_n,omitempty"`
	Milestone   *MilestoneConfig   `json:"milestone,omitempty"`
	Improvement *ImprovementConfig `json:"improvement,omitempty"`
	Lottery     *LotteryConfig     `json:"lottery,omitempty"`
}

// Rule is a reward-qualification policy attached to exactly one competition.
// Rules are evaluated in ascending Priority.
type Rule struct {
	ID            int        `json:"id" db:"id"`
	CompetitionID int        `json:"competition_id" db:"competition_id"`
	Type          RuleType   `json:"type" db:"type"`
	Priority      int        `json:"priority" db:"priority"`
	PointsAward   int        `json:"points_award" db:"points_award"`
	BadgeID       *int       `json:"badge_id,omitempty" db:"badge_id"`
	RewardID      *int       `json:"reward_id,omitempty" db:"reward_id"`
	LotterySeed   *string    `json:"lottery_seed,omitempty" db:"lottery_seed"`
	RawConfig     []byte     `json:"-" db:"config"`
	Config        RuleConfig `json:"config" db:"-"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

// DecodeConfig unmarshals RawConfig into the variant matching the rule type.
func (r *Rule) DecodeConfig() error {
	if len(r.RawConfig) == 0 {
		return fmt.Errorf("rule %d (%s): empty config", r.ID, r.Type)
	}
	switch r.Type {
	case RuleThreshold:
		cfg := &ThresholdConfig{}
		if err := json.Unmarshal(r.RawConfig, cfg); err != nil {
			return fmt.Errorf("rule %d: decode threshold config: %w", r.ID, err)
		}
		r.Config = RuleConfig{Threshold: cfg}
	case RuleTopN:
		cfg := &TopNConfig{}
		if err := json.Unmarshal(r.RawConfig, cfg); err != nil {
			return fmt.Errorf("rule %d: decode top_n config: %w", r.ID, err)
		}
		r.Config = RuleConfig{TopN: cfg}
	case RuleMilestone:
		cfg := &MilestoneConfig{}
		if err := json.Unmarshal(r.RawConfig, cfg); err != nil {
			return fmt.Errorf("rule %d: decode milestone config: %w", r.ID, err)
		}
		r.Config = RuleConfig{Milestone: cfg}
	case RuleImprovement:
		cfg := &ImprovementConfig{}
		if err := json.Unmarshal(r.RawConfig, cfg); err != nil {
			return fmt.Errorf("rule %d: decode improvement config: %w", r.ID, err)
		}
		r.Config = RuleConfig{Improvement: cfg}
	case RuleLottery:
		cfg := &LotteryConfig{}
		if err := json.Unmarshal(r.RawConfig, cfg); err != nil {
			return fmt.Errorf("rule %d: decode lottery config: %w", r.ID, err)
		}
		r.Config = RuleConfig{Lottery: cfg}
	default:
		return fmt.Errorf("rule %d: unknown rule type %q", r.ID, r.Type)
	}
	return nil
}

// EncodeConfig marshals the typed variant back into RawConfig for storage.
func (r *Rule) EncodeConfig() error {
	var v interface{}
	switch r.Type {
	case RuleThreshold:
		v = r.Config.Threshold
	case RuleTopN:
		v = r.Config.TopN
	case RuleMilestone:
		v = r.Config.Milestone
	case RuleImprovement:
		v = r.Config.Improvement
	case RuleLottery:
		v = r.Config.Lottery
	default:
		return fmt.Errorf("rule %d: unknown rule type %q", r.ID, r.Type)
	}
	if v == nil {
		return fmt.Errorf("rule %d (%s): config variant not set", r.ID, r.Type)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("rule %d: encode config: %w", r.ID, err)
	}
	r.RawConfig = raw
	return nil
}
