package engine

import (
	"sort"

	"github.com/Z5Jonathan-maker/Eden-2-sub001/models"
)

// Qualification math shared by the incremental evaluator and the settlement
// pass. All checks are edge-triggered: they compare the pre-update and
// post-update state so a transition fires exactly once. Values only ever
// increase, so a crossed boundary stays crossed.

// CrossedBoundary reports whether the update moved the value from below the
// boundary to at-or-above it.
func CrossedBoundary(oldValue, newValue, boundary float64) bool {
	return newValue >= boundary && oldValue < boundary
}

// ImprovementPercent returns the percentage gain of value over baseline.
// A non-positive baseline yields 0: improvement is undefined without one.
func ImprovementPercent(baseline, value float64) float64 {
	if baseline <= 0 {
		return 0
	}
	return (value - baseline) / baseline * 100
}

// HighestMilestone returns the index into milestones of the highest tier
// whose value the participant has reached, or -1 if none. Indexes are
// positions in the milestone list sorted ascending by value, so a higher
// index always means a higher tier.
func HighestMilestone(milestones []models.Milestone, value float64) int {
	sorted := sortedMilestones(milestones)
	highest := -1
	for i, m := range sorted {
		if value >= m.Value {
			highest = i
		}
	}
	return highest
}

// MilestoneIndex returns the position of the named tier in the ascending
// milestone order, or -1 when tier is nil or unknown. Nil is treated as
// "below the lowest tier" so any reached milestone compares higher.
func MilestoneIndex(milestones []models.Milestone, tier *string) int {
	if tier == nil {
		return -1
	}
	for i, m := range sortedMilestones(milestones) {
		if m.Tier == *tier {
			return i
		}
	}
	return -1
}

// MilestoneAt returns the milestone at the given ascending-order index.
func MilestoneAt(milestones []models.Milestone, index int) (models.Milestone, bool) {
	sorted := sortedMilestones(milestones)
	if index < 0 || index >= len(sorted) {
		return models.Milestone{}, false
	}
	return sorted[index], true
}

// MilestoneByTier finds a milestone by its tier name.
func MilestoneByTier(milestones []models.Milestone, tier string) (models.Milestone, bool) {
	for _, m := range milestones {
		if m.Tier == tier {
			return m, true
		}
	}
	return models.Milestone{}, false
}

func sortedMilestones(milestones []models.Milestone) []models.Milestone {
	sorted := make([]models.Milestone, len(milestones))
	copy(sorted, milestones)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value < sorted[j].Value
	})
	return sorted
}

// TierForRank looks up the reward tier for a final rank. Returns nil when the
// rule has no tier for that rank, in which case the rule's flat points award
// applies.
func TierForRank(tiers []models.RewardTier, rank int) *models.RewardTier {
	for i := range tiers {
		if tiers[i].Rank == rank {
			return &tiers[i]
		}
	}
	return nil
}
