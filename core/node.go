package core

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"contribledger/core/events"
	"contribledger/core/state"
	"contribledger/fulfillment"
	"contribledger/native/rewards"
	"contribledger/storage"
)

var keyNodeOwner = []byte("node/owner")

// Node is the ledger facade. It owns the reward engines and serializes every
// operation behind a single lock: one call runs to completion before the next
// begins, so multi-field updates (balance + supply, debit + benefit dispatch)
// are never observed half-applied.
type Node struct {
	mu sync.RWMutex

	st            *state.Manager
	ledger        *rewards.Ledger
	contributions *rewards.ContributionLog
	catalog       *rewards.Catalog

	owner     string
	emitter   events.Emitter
	fulfiller fulfillment.Fulfiller
	nowFn     func() time.Time
}

// NewNode opens (or initialises) a ledger node on top of the supplied
// database. On first start the owner is persisted, the default reward policy
// and redemption catalog are seeded, and any initial supply is credited to the
// owner's balance so supply conservation holds from genesis. The owner is
// immutable for the lifetime of the store.
func NewNode(db storage.Database, owner string, initialSupply uint64) (*Node, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, fmt.Errorf("core: owner account required")
	}

	st := state.NewManager(db)
	n := &Node{
		st:            st,
		ledger:        rewards.NewLedger(st),
		contributions: rewards.NewContributionLog(st),
		catalog:       rewards.NewCatalog(st),
		owner:         owner,
		emitter:       events.NoopEmitter{},
		fulfiller:     fulfillment.Noop{},
		nowFn:         time.Now,
	}

	var stored string
	ok, err := st.KVGet(keyNodeOwner, &stored)
	if err != nil {
		return nil, err
	}
	if ok {
		if stored != owner {
			return nil, fmt.Errorf("core: store already owned by %s", stored)
		}
		return n, nil
	}

	if err := st.KVPut(keyNodeOwner, owner); err != nil {
		return nil, err
	}
	if err := rewards.StorePolicy(st, rewards.DefaultPolicy()); err != nil {
		return nil, err
	}
	for _, id := range []string{
		rewards.BenefitSupplierDiscount,
		rewards.BenefitAnalyticsAccess,
		rewards.BenefitGrantOpportunity,
	} {
		option := rewards.DefaultOptions()[id]
		if err := n.catalog.AddOption(id, option.Cost, option.Description); err != nil {
			return nil, err
		}
	}
	if initialSupply > 0 {
		if err := n.ledger.Credit(owner, initialSupply); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// Owner returns the privileged operator account.
func (n *Node) Owner() string { return n.owner }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (n *Node) SetEmitter(emitter events.Emitter) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if emitter == nil {
		n.emitter = events.NoopEmitter{}
		return
	}
	n.emitter = emitter
}

// SetFulfiller configures the benefit fulfillment sink. Passing nil resets it
// to a no-op.
func (n *Node) SetFulfiller(f fulfillment.Fulfiller) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if f == nil {
		n.fulfiller = fulfillment.Noop{}
		return
	}
	n.fulfiller = f
}

// SetNowFunc overrides the node's time source. Primarily for tests.
func (n *Node) SetNowFunc(now func() time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if now == nil {
		n.nowFn = time.Now
		return
	}
	n.nowFn = now
}

// RecordContribution appends a scored contribution for an account and mints
// the earned reward. Owner-only. Ordering is fixed: validate, append to
// history, compute, credit — a validation failure leaves no trace.
func (n *Node) RecordContribution(caller, account string, m rewards.ContributionMetrics) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := rewards.RequireOwner(caller, n.owner); err != nil {
		return 0, err
	}
	if err := m.Validate(); err != nil {
		return 0, err
	}
	if m.Timestamp == 0 {
		m.Timestamp = uint64(n.nowFn().Unix())
	}
	if err := n.contributions.Record(account, m); err != nil {
		return 0, err
	}
	policy, err := rewards.LoadPolicy(n.st)
	if err != nil {
		return 0, err
	}
	reward := rewards.CalculateReward(m, policy)
	if reward > 0 {
		if err := n.ledger.Credit(account, reward); err != nil {
			return 0, err
		}
	}

	n.emitter.Emit(events.ContributionRecorded{
		Account:                account,
		DataQuality:            m.DataQuality,
		ModelImprovement:       m.ModelImprovement,
		ParticipationFrequency: m.ParticipationFrequency,
		Timestamp:              m.Timestamp,
		Reward:                 reward,
	})
	if reward > 0 {
		supply, err := n.ledger.Supply()
		if err != nil {
			return 0, err
		}
		n.emitter.Emit(events.PointsMinted{Account: account, Amount: reward, NewSupply: supply})
	}
	return reward, nil
}

// Redeem burns the requested amount from the caller's own balance against a
// catalog option and requests benefit fulfillment. The amount must cover at
// least the option's cost and the full amount is debited. The debit commits
// before the fulfillment request is dispatched and is not rolled back if
// delivery later fails downstream.
func (n *Node) Redeem(caller, optionID string, amount uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	option, err := n.catalog.Option(optionID)
	if err != nil {
		return err
	}
	if !option.Available {
		return rewards.ErrOptionUnavailable
	}
	if amount < option.Cost {
		return rewards.ErrInsufficientRedemptionAmount
	}
	balance, err := n.ledger.BalanceOf(caller)
	if err != nil {
		return err
	}
	if balance < amount {
		return rewards.ErrInsufficientBalance
	}
	// Resolve the benefit action before touching the balance: a catalog entry
	// outside the known benefit set is an integrity fault and must abort the
	// call without debiting.
	action, err := rewards.BenefitAction(option.Name)
	if err != nil {
		return err
	}
	if err := n.ledger.Debit(caller, amount); err != nil {
		return err
	}

	// Fire-and-forget: the core never observes the delivery outcome.
	_ = n.fulfiller.Dispatch(fulfillment.Request{
		Account: caller,
		Benefit: option.Name,
		Action:  action,
	})

	supply, err := n.ledger.Supply()
	if err != nil {
		return err
	}
	n.emitter.Emit(events.PointsRedeemed{
		Account:   caller,
		OptionID:  optionID,
		Amount:    amount,
		Benefit:   option.Name,
		NewSupply: supply,
	})
	return nil
}

// AddRedemptionOption creates or overwrites a catalog option. Owner-only.
func (n *Node) AddRedemptionOption(caller, id string, cost uint64, description string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := rewards.RequireOwner(caller, n.owner); err != nil {
		return err
	}
	if err := n.catalog.AddOption(id, cost, description); err != nil {
		return err
	}
	n.emitter.Emit(events.OptionAdded{ID: id, Cost: cost, Description: description})
	return nil
}

// UpdateRedemptionOption changes an option's cost and availability. Owner-only.
func (n *Node) UpdateRedemptionOption(caller, id string, cost uint64, available bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := rewards.RequireOwner(caller, n.owner); err != nil {
		return err
	}
	if err := n.catalog.UpdateOption(id, cost, available); err != nil {
		return err
	}
	n.emitter.Emit(events.OptionUpdated{ID: id, Cost: cost, Available: available})
	return nil
}

// SetRewardRate updates the reward rate percentage. Owner-only, capped at 100.
func (n *Node) SetRewardRate(caller string, rate uint8) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := rewards.RequireOwner(caller, n.owner); err != nil {
		return err
	}
	if rate > rewards.MaxRewardRate {
		return rewards.ErrInvalidRewardRate
	}
	policy, err := rewards.LoadPolicy(n.st)
	if err != nil {
		return err
	}
	policy.RewardRate = rate
	if err := rewards.StorePolicy(n.st, policy); err != nil {
		return err
	}
	n.emitter.Emit(events.PolicyUpdated{
		MinContributionThreshold: policy.MinContributionThreshold,
		RewardRate:               policy.RewardRate,
	})
	return nil
}

// SetMinContributionThreshold updates the minimum average score required to
// earn a reward. Owner-only.
func (n *Node) SetMinContributionThreshold(caller string, threshold uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := rewards.RequireOwner(caller, n.owner); err != nil {
		return err
	}
	policy, err := rewards.LoadPolicy(n.st)
	if err != nil {
		return err
	}
	policy.MinContributionThreshold = threshold
	if err := rewards.StorePolicy(n.st, policy); err != nil {
		return err
	}
	n.emitter.Emit(events.PolicyUpdated{
		MinContributionThreshold: policy.MinContributionThreshold,
		RewardRate:               policy.RewardRate,
	})
	return nil
}

// BalanceOf returns an account's point balance, zero for unknown accounts.
func (n *Node) BalanceOf(account string) (uint64, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.ledger.BalanceOf(account)
}

// Supply returns the total issued supply.
func (n *Node) Supply() (uint64, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.ledger.Supply()
}

// Contributions returns an account's contribution history in submission order.
func (n *Node) Contributions(account string) ([]rewards.ContributionMetrics, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.contributions.Contributions(account)
}

// RedemptionOptions returns a snapshot of the catalog keyed by option id.
func (n *Node) RedemptionOptions() (map[string]rewards.RedemptionOption, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.catalog.Options()
}

// Policy returns the active reward policy.
func (n *Node) Policy() (rewards.RewardPolicy, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return rewards.LoadPolicy(n.st)
}

// CheckSupply verifies the supply conservation invariant. Diagnostic.
func (n *Node) CheckSupply() error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.ledger.CheckSupply()
}
