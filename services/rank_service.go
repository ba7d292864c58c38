package services

import (
	"context"
	"fmt"

	"github.com/Z5Jonathan-maker/Eden-2-sub001/engine"
	"github.com/Z5Jonathan-maker/Eden-2-sub001/repositories"
)

// RecomputeResult reports the outcome of a full-competition rank pass.
type RecomputeResult struct {
	UpdatedCount  int `json:"updated_count"`
	FocusUserRank int `json:"focus_user_rank,omitempty"`
}

// RankService recomputes ranks for all participants of a competition after a
// value change. Must run after every ledger update that could change
// ordering and before rank-sensitive rules are evaluated.
type RankService struct {
	participantRepo repositories.ParticipantRepository
}

func NewRankService(participantRepo repositories.ParticipantRepository) *RankService {
	return &RankService{participantRepo: participantRepo}
}

// Recompute loads the competition's participants in standing order, assigns
// 1-based ranks and percentiles, and writes back only the rows whose rank
// changed. focusUserID, when non-zero, selects whose new rank to report.
func (s *RankService) Recompute(ctx context.Context, competitionID int, focusUserID int) (*RecomputeResult, error) {
	participants, err := s.participantRepo.ListByCompetition(ctx, nil, competitionID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for competition %d: %w", competitionID, err)
	}

	changed := engine.AssignRanks(participants)
	for _, p := range changed {
		if err := s.participantRepo.UpdateRank(ctx, nil, p); err != nil {
			return nil, fmt.Errorf("failed to update rank for participant %d: %w", p.ID, err)
		}
	}

	result := &RecomputeResult{UpdatedCount: len(changed)}
	if focusUserID != 0 {
		for _, p := range participants {
			if p.UserID == focusUserID {
				result.FocusUserRank = p.Rank
				break
			}
		}
	}
	return result, nil
}
