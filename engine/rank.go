package engine

import (
	"sort"

	"github.com/Z5Jonathan-maker/Eden-2-sub001/models"
)

// SortByStanding orders participants by current_value descending with
// user_id ascending as the deterministic tie-break. This is the authoritative
// ranking order for both live recomputes and the final settlement snapshot.
func SortByStanding(participants []*models.Participant) {
	sort.SliceStable(participants, func(i, j int) bool {
		if participants[i].CurrentValue != participants[j].CurrentValue {
			return participants[i].CurrentValue > participants[j].CurrentValue
		}
		return participants[i].UserID < participants[j].UserID
	})
}

// AssignRanks recomputes rank and percentile for every participant and
// returns the subset whose rank actually changed, so callers only write
// changed rows. Participants must already be in standing order; rank is the
// 1-based position in that order.
func AssignRanks(participants []*models.Participant) []*models.Participant {
	n := len(participants)
	changed := make([]*models.Participant, 0, n)
	for i, p := range participants {
		newRank := i + 1
		percentile := float64(n-newRank+1) / float64(n) * 100
		if p.Rank == newRank && p.Percentile == percentile {
			continue
		}
		p.PreviousRank = p.Rank
		p.Rank = newRank
		p.Percentile = percentile
		changed = append(changed, p)
	}
	return changed
}
