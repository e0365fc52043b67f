package rewards

// ContributionMetrics captures one structured contribution scored by the
// operator. Records are immutable once appended to an account's history.
type ContributionMetrics struct {
	DataQuality            uint8  `json:"dataQuality"`
	ModelImprovement       uint8  `json:"modelImprovement"`
	ParticipationFrequency uint8  `json:"participationFrequency"`
	Timestamp              uint64 `json:"timestamp"`
}

// Validate checks that every score sits inside the 0..100 band.
func (m ContributionMetrics) Validate() error {
	if m.DataQuality > MaxMetricScore ||
		m.ModelImprovement > MaxMetricScore ||
		m.ParticipationFrequency > MaxMetricScore {
		return ErrInvalidMetric
	}
	return nil
}

// RedemptionOption describes a benefit redeemable against a point balance.
// The ID is immutable once created; cost and availability may be changed by
// the owner.
type RedemptionOption struct {
	Name        string `json:"name"`
	Cost        uint64 `json:"cost"`
	Available   bool   `json:"available"`
	Description string `json:"description"`
}

// RewardPolicy governs how contribution metrics convert into minted points.
type RewardPolicy struct {
	MinContributionThreshold uint64 `json:"minContributionThreshold"`
	RewardRate               uint8  `json:"rewardRate"`
}
