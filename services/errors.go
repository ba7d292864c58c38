package services

import "errors"

// Common errors shared across services and the HTTP error mapping.
var (
	// Generic not-found.
	ErrNotFound = errors.New("requested resource not found")

	// Entity-specific variants for more context.
	ErrMetricNotFound      = errors.New("metric not found")
	ErrCompetitionNotFound = errors.New("competition not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrRuleNotFound        = errors.New("rule not found")
	ErrSeasonNotFound      = errors.New("season not found")

	// State machine violations.
	ErrCompetitionNotActive = errors.New("competition is not active")

	// Rule lookups for typed read endpoints.
	ErrNoLotteryRule     = errors.New("competition has no lottery rule")
	ErrNoImprovementRule = errors.New("competition has no improvement rule")

	// Validation.
	ErrValidationFailed = errors.New("validation failed")
)
