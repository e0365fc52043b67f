package rewards

// LoadPolicy returns the stored reward policy, falling back to the module
// defaults when none has been persisted yet.
func LoadPolicy(st State) (RewardPolicy, error) {
	var policy RewardPolicy
	ok, err := st.KVGet(keyPolicy, &policy)
	if err != nil {
		return RewardPolicy{}, err
	}
	if !ok {
		return DefaultPolicy(), nil
	}
	return policy, nil
}

// StorePolicy persists the reward policy.
func StorePolicy(st State, policy RewardPolicy) error {
	if policy.RewardRate > MaxRewardRate {
		return ErrInvalidRewardRate
	}
	return st.KVPut(keyPolicy, policy)
}
