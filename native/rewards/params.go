package rewards

const (
	// MaxMetricScore bounds each contribution metric score.
	MaxMetricScore = 100
	// MaxRewardRate bounds the reward rate percentage.
	MaxRewardRate = 100

	// DefaultMinContributionThreshold is the minimum average score a
	// contribution must reach to earn any reward.
	DefaultMinContributionThreshold = 10
	// DefaultRewardRate is the default reward rate percentage.
	DefaultRewardRate = 5
)

// Known benefit identifiers. Redemption dispatch only recognizes options whose
// name matches this set; anything else is treated as catalog corruption.
const (
	BenefitSupplierDiscount = "supplier_discount"
	BenefitAnalyticsAccess  = "analytics_access"
	BenefitGrantOpportunity = "grant_opportunity"
)

var benefitActions = map[string]string{
	BenefitSupplierDiscount: "apply_supplier_discount",
	BenefitAnalyticsAccess:  "grant_analytics_access",
	BenefitGrantOpportunity: "process_grant_application",
}

// BenefitAction resolves the remote action invoked for a benefit name. An
// unrecognized name returns ErrInvalidRedemptionOption.
func BenefitAction(name string) (string, error) {
	action, ok := benefitActions[name]
	if !ok {
		return "", ErrInvalidRedemptionOption
	}
	return action, nil
}

// DefaultPolicy returns the reward policy a fresh ledger starts with.
func DefaultPolicy() RewardPolicy {
	return RewardPolicy{
		MinContributionThreshold: DefaultMinContributionThreshold,
		RewardRate:               DefaultRewardRate,
	}
}

// DefaultOptions returns the catalog a fresh ledger starts with. Exactly these
// three options, each available.
func DefaultOptions() map[string]RedemptionOption {
	return map[string]RedemptionOption{
		BenefitSupplierDiscount: {
			Name:        BenefitSupplierDiscount,
			Cost:        100,
			Available:   true,
			Description: "10% discount on supplier purchases",
		},
		BenefitAnalyticsAccess: {
			Name:        BenefitAnalyticsAccess,
			Cost:        200,
			Available:   true,
			Description: "Access to advanced analytics dashboard",
		},
		BenefitGrantOpportunity: {
			Name:        BenefitGrantOpportunity,
			Cost:        500,
			Available:   true,
			Description: "Priority consideration for grant programs",
		},
	}
}
