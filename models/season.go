package models

import "time"

// Season aggregates completed competitions for cumulative standings.
type Season struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	StartDate time.Time `json:"start_date" db:"start_date"`
	EndDate   time.Time `json:"end_date" db:"end_date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SeasonStanding is a derived projection, rebuilt fully each time a
// competition in the season completes. Overwrite-on-recompute.
type SeasonStanding struct {
	ID                  int       `json:"id" db:"id"`
	SeasonID            int       `json:"season_id" db:"season_id"`
	UserID              int       `json:"user_id" db:"user_id"`
	TotalPoints         int       `json:"total_points" db:"total_points"`
	CompetitionsEntered int       `json:"competitions_entered" db:"competitions_entered"`
	CompetitionsWon     int       `json:"competitions_won" db:"competitions_won"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}
