package models

import "time"

// Badge is catalog reference data.
type Badge struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Icon string `json:"icon" db:"icon"`
	Tier string `json:"tier" db:"tier"`
}

// UserBadge records a badge earned by a user. At most one per
// (user_id, badge_id), checked before insert.
type UserBadge struct {
	ID            int       `json:"id" db:"id"`
	UserID        int       `json:"user_id" db:"user_id"`
	BadgeID       int       `json:"badge_id" db:"badge_id"`
	CompetitionID *int      `json:"competition_id,omitempty" db:"competition_id"`
	EarnedReason  string    `json:"earned_reason" db:"earned_reason"`
	EarnedAt      time.Time `json:"earned_at" db:"earned_at"`
}

// UserPoints is the cumulative points counter per user, incremented on every
// settlement award.
type UserPoints struct {
	UserID      int       `json:"user_id" db:"user_id"`
	TotalPoints int       `json:"total_points" db:"total_points"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
