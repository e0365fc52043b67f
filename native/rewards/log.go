package rewards

// ContributionLog owns the per-account append-only history of submitted
// metrics. History is independent of balances: a contribution that earns no
// reward is still recorded.
type ContributionLog struct {
	st State
}

// NewContributionLog creates a log backed by the provided state.
func NewContributionLog(st State) *ContributionLog {
	return &ContributionLog{st: st}
}

// Record validates the metric scores and appends the record to the account's
// history. Append order is submission order; entries are never reordered or
// deduplicated. No history bound is enforced here.
func (c *ContributionLog) Record(account string, m ContributionMetrics) error {
	if err := m.Validate(); err != nil {
		return err
	}
	history, err := c.Contributions(account)
	if err != nil {
		return err
	}
	history = append(history, m)
	return c.st.KVPut(historyKey(account), history)
}

// Contributions returns the ordered history for an account, empty for unknown
// accounts.
func (c *ContributionLog) Contributions(account string) ([]ContributionMetrics, error) {
	var history []ContributionMetrics
	if _, err := c.st.KVGet(historyKey(account), &history); err != nil {
		return nil, err
	}
	return history, nil
}
