package models

import (
	"encoding/json"
	"time"
)

// Notification types emitted by the engine.
const (
	NotificationThresholdApproaching   = "threshold_approaching"
	NotificationThresholdReached       = "threshold_reached"
	NotificationMilestoneReached       = "milestone_reached"
	NotificationImprovementApproaching = "improvement_approaching"
	NotificationImprovementReached     = "improvement_reached"
	NotificationLotteryQualified       = "lottery_qualified"
	NotificationBadgeEarned            = "badge_earned"
	NotificationCompetitionResult      = "competition_result"
	NotificationCompetitionEnded       = "competition_ended"
)

// Notification is an append-only record. Delivery (push/email) is handled by
// an external collaborator that consumes inserted rows asynchronously.
type Notification struct {
	ID        int             `json:"id" db:"id"`
	UserID    int             `json:"user_id" db:"user_id"`
	Type      string          `json:"type" db:"type"`
	Title     string          `json:"title" db:"title"`
	Body      string          `json:"body" db:"body"`
	Data      json.RawMessage `json:"data,omitempty" db:"data"`
	Read      bool            `json:"read" db:"read"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
