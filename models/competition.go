package models

import "time"

// CompetitionStatus represents competition lifecycle states, matching the ENUM in the DB.
type CompetitionStatus string

const (
	StatusDraft      CompetitionStatus = "draft"
	StatusActive     CompetitionStatus = "active"
	StatusEvaluating CompetitionStatus = "evaluating"
	StatusCompleted  CompetitionStatus = "completed"
)

// Competition is a time-boxed scoring contest over one metric.
// Status is the sole gate for event processing and settlement:
// only active competitions accept events, and only active
// competitions can be settled.
type Competition struct {
	ID             int               `json:"id" db:"id"`
	Name           string            `json:"name" db:"name"`
	Description    *string           `json:"description,omitempty" db:"description"`
	MetricID       int               `json:"metric_id" db:"metric_id"`
	SeasonID       *int              `json:"season_id,omitempty" db:"season_id"`
	Status         CompetitionStatus `json:"status" db:"status"`
	StartDate      time.Time         `json:"start_date" db:"start_date"`
	EndDate        time.Time         `json:"end_date" db:"end_date"`
	EvaluatedAt    *time.Time        `json:"evaluated_at,omitempty" db:"evaluated_at"`
	QualifiedCount *int              `json:"qualified_count,omitempty" db:"qualified_count"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`

	// Optional linked entities, populated by services, not mapped directly.
	Metric       *Metric       `json:"metric,omitempty" db:"-"`
	Rules        []Rule        `json:"rules,omitempty" db:"-"`
	Participants []Participant `json:"participants,omitempty" db:"-"`
}
