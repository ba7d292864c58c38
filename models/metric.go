package models

// Metric is immutable reference data describing a trackable activity.
type Metric struct {
	ID   int    `json:"id" db:"id"`
	Slug string `json:"slug" db:"slug"`
	Name string `json:"name" db:"name"`
	Unit string `json:"unit" db:"unit"`
}
