package events

import "strconv"

const (
	TypeContributionRecorded = "rewards.contribution.recorded"
	TypePointsMinted         = "rewards.minted"
	TypePointsRedeemed       = "rewards.redeemed"
	TypeOptionAdded          = "rewards.catalog.option_added"
	TypeOptionUpdated        = "rewards.catalog.option_updated"
	TypePolicyUpdated        = "rewards.policy.updated"
)

// ContributionRecorded is emitted after a contribution has been appended to an
// account's history, regardless of whether it earned a reward.
type ContributionRecorded struct {
	Account                string
	DataQuality            uint8
	ModelImprovement       uint8
	ParticipationFrequency uint8
	Timestamp              uint64
	Reward                 uint64
}

func (ContributionRecorded) EventType() string { return TypeContributionRecorded }

func (e ContributionRecorded) Attributes() map[string]string {
	return map[string]string{
		"account":                 e.Account,
		"data_quality":            strconv.FormatUint(uint64(e.DataQuality), 10),
		"model_improvement":       strconv.FormatUint(uint64(e.ModelImprovement), 10),
		"participation_frequency": strconv.FormatUint(uint64(e.ParticipationFrequency), 10),
		"timestamp":               strconv.FormatUint(e.Timestamp, 10),
		"reward":                  strconv.FormatUint(e.Reward, 10),
	}
}

// PointsMinted is emitted when reward points are credited to an account.
type PointsMinted struct {
	Account   string
	Amount    uint64
	NewSupply uint64
}

func (PointsMinted) EventType() string { return TypePointsMinted }

func (e PointsMinted) Attributes() map[string]string {
	return map[string]string{
		"account":   e.Account,
		"amount":    strconv.FormatUint(e.Amount, 10),
		"newSupply": strconv.FormatUint(e.NewSupply, 10),
	}
}

// PointsRedeemed is emitted after a redemption debit has committed and the
// benefit fulfillment request has been handed off.
type PointsRedeemed struct {
	Account   string
	OptionID  string
	Amount    uint64
	Benefit   string
	NewSupply uint64
}

func (PointsRedeemed) EventType() string { return TypePointsRedeemed }

func (e PointsRedeemed) Attributes() map[string]string {
	return map[string]string{
		"account":   e.Account,
		"optionId":  e.OptionID,
		"amount":    strconv.FormatUint(e.Amount, 10),
		"benefit":   e.Benefit,
		"newSupply": strconv.FormatUint(e.NewSupply, 10),
	}
}

// OptionAdded is emitted when the owner adds (or overwrites) a redemption
// option in the catalog.
type OptionAdded struct {
	ID          string
	Cost        uint64
	Description string
}

func (OptionAdded) EventType() string { return TypeOptionAdded }

func (e OptionAdded) Attributes() map[string]string {
	return map[string]string{
		"id":          e.ID,
		"cost":        strconv.FormatUint(e.Cost, 10),
		"description": e.Description,
	}
}

// OptionUpdated is emitted when the owner changes an option's cost or
// availability.
type OptionUpdated struct {
	ID        string
	Cost      uint64
	Available bool
}

func (OptionUpdated) EventType() string { return TypeOptionUpdated }

func (e OptionUpdated) Attributes() map[string]string {
	return map[string]string{
		"id":        e.ID,
		"cost":      strconv.FormatUint(e.Cost, 10),
		"available": strconv.FormatBool(e.Available),
	}
}

// PolicyUpdated is emitted when the owner adjusts the reward policy.
type PolicyUpdated struct {
	MinContributionThreshold uint64
	RewardRate               uint8
}

func (PolicyUpdated) EventType() string { return TypePolicyUpdated }

func (e PolicyUpdated) Attributes() map[string]string {
	return map[string]string{
		"minContributionThreshold": strconv.FormatUint(e.MinContributionThreshold, 10),
		"rewardRate":               strconv.FormatUint(uint64(e.RewardRate), 10),
	}
}
