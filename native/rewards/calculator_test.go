package rewards

import "testing"

func TestCalculateRewardThresholdBoundary(t *testing.T) {
	policy := DefaultPolicy()

	// Average of 10 meets the default threshold (inclusive) but rounds down
	// to a zero reward at the 5% rate.
	m := ContributionMetrics{DataQuality: 10, ModelImprovement: 10, ParticipationFrequency: 10}
	if got := CalculateReward(m, policy); got != 0 {
		t.Fatalf("reward = %d, want 0", got)
	}

	// One point below the threshold is rejected outright.
	m = ContributionMetrics{DataQuality: 9, ModelImprovement: 9, ParticipationFrequency: 9}
	if got := CalculateReward(m, policy); got != 0 {
		t.Fatalf("below-threshold reward = %d, want 0", got)
	}
}

func TestCalculateRewardMaxScores(t *testing.T) {
	m := ContributionMetrics{DataQuality: 100, ModelImprovement: 100, ParticipationFrequency: 100}
	if got := CalculateReward(m, DefaultPolicy()); got != 5 {
		t.Fatalf("reward = %d, want 5", got)
	}
}

func TestCalculateRewardTruncatingAverage(t *testing.T) {
	// (100 + 100 + 99) / 3 truncates to 99; 99 * 5 / 100 truncates to 4.
	m := ContributionMetrics{DataQuality: 100, ModelImprovement: 100, ParticipationFrequency: 99}
	if got := CalculateReward(m, DefaultPolicy()); got != 4 {
		t.Fatalf("reward = %d, want 4", got)
	}
}

func TestCalculateRewardCustomRate(t *testing.T) {
	policy := RewardPolicy{MinContributionThreshold: 10, RewardRate: 50}
	m := ContributionMetrics{DataQuality: 80, ModelImprovement: 60, ParticipationFrequency: 70}
	// Average 70, 70 * 50 / 100 = 35.
	if got := CalculateReward(m, policy); got != 35 {
		t.Fatalf("reward = %d, want 35", got)
	}
}
