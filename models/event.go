package models

import "time"

// MetricEvent is an immutable, append-only log record of a single field
// activity. CompetitionIDs holds the competitions that were active for the
// metric at ingest time; the event itself is never mutated afterwards.
type MetricEvent struct {
	ID             int       `json:"id" db:"id"`
	UserID         int       `json:"user_id" db:"user_id"`
	MetricID       int       `json:"metric_id" db:"metric_id"`
	Value          float64   `json:"value" db:"value"`
	EventType      string    `json:"event_type" db:"event_type"`
	SourceRef      *string   `json:"source_ref,omitempty" db:"source_ref"`
	CompetitionIDs []int64   `json:"competition_ids" db:"competition_ids"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
