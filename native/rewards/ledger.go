package rewards

import (
	"errors"
	"fmt"
	"math"
)

var errSupplyOverflow = errors.New("rewards: total supply overflow")

// Ledger owns account balances and the total issued supply. Balance and
// supply always change together inside one operation so the conservation
// invariant (supply == sum of balances) holds in every observable state.
type Ledger struct {
	st State
}

// NewLedger creates a ledger backed by the provided state.
func NewLedger(st State) *Ledger {
	return &Ledger{st: st}
}

// BalanceOf returns the stored balance, or zero for accounts without an entry.
func (l *Ledger) BalanceOf(account string) (uint64, error) {
	var balance uint64
	if _, err := l.st.KVGet(balanceKey(account), &balance); err != nil {
		return 0, err
	}
	return balance, nil
}

// Supply returns the total issued supply.
func (l *Ledger) Supply() (uint64, error) {
	var supply uint64
	if _, err := l.st.KVGet(keySupply, &supply); err != nil {
		return 0, err
	}
	return supply, nil
}

// Credit increases an account's balance and the total supply by amount.
// A zero amount is a harmless no-op; callers guard against it separately when
// a zero credit would be meaningless.
func (l *Ledger) Credit(account string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	balance, err := l.BalanceOf(account)
	if err != nil {
		return err
	}
	supply, err := l.Supply()
	if err != nil {
		return err
	}
	if supply > math.MaxUint64-amount {
		return errSupplyOverflow
	}
	if err := l.st.KVAppend(keyAccountsIdx, account); err != nil {
		return err
	}
	if err := l.st.KVPut(balanceKey(account), balance+amount); err != nil {
		return err
	}
	return l.st.KVPut(keySupply, supply+amount)
}

// Debit decreases an account's balance and the total supply by amount.
// Fails with ErrInsufficientBalance when amount exceeds the current balance,
// leaving the state untouched.
func (l *Ledger) Debit(account string, amount uint64) error {
	balance, err := l.BalanceOf(account)
	if err != nil {
		return err
	}
	if amount > balance {
		return ErrInsufficientBalance
	}
	supply, err := l.Supply()
	if err != nil {
		return err
	}
	if err := l.st.KVPut(balanceKey(account), balance-amount); err != nil {
		return err
	}
	return l.st.KVPut(keySupply, supply-amount)
}

// CheckSupply walks every tracked account and verifies the conservation
// invariant. Intended for tests and diagnostics.
func (l *Ledger) CheckSupply() error {
	var accounts []string
	if err := l.st.KVGetList(keyAccountsIdx, &accounts); err != nil {
		return err
	}
	var sum uint64
	for _, account := range accounts {
		balance, err := l.BalanceOf(account)
		if err != nil {
			return err
		}
		sum += balance
	}
	supply, err := l.Supply()
	if err != nil {
		return err
	}
	if sum != supply {
		return fmt.Errorf("rewards: supply %d does not match balance sum %d", supply, sum)
	}
	return nil
}
