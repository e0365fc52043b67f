package rewards

// CalculateReward converts a contribution into a point amount under the given
// policy. The three scores are averaged with truncating integer division; an
// average below the minimum threshold earns nothing, while an average exactly
// at the threshold still earns (the threshold is inclusive). The reward itself
// is average * rate / 100, again truncating toward zero.
func CalculateReward(m ContributionMetrics, policy RewardPolicy) uint64 {
	average := (uint64(m.DataQuality) + uint64(m.ModelImprovement) + uint64(m.ParticipationFrequency)) / 3
	if average < policy.MinContributionThreshold {
		return 0
	}
	return average * uint64(policy.RewardRate) / 100
}
