package rewards_test

import (
	"errors"
	"testing"

	"contribledger/core/state"
	"contribledger/native/rewards"
	"contribledger/storage"
)

func newTestState(t *testing.T) *state.Manager {
	t.Helper()
	db := storage.NewMemDB()
	t.Cleanup(func() { _ = db.Close() })
	return state.NewManager(db)
}

func TestLedgerCreditAndDebit(t *testing.T) {
	ledger := rewards.NewLedger(newTestState(t))

	if err := ledger.Credit("fb-alpha", 100); err != nil {
		t.Fatalf("credit: %v", err)
	}
	balance, err := ledger.BalanceOf("fb-alpha")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 100 {
		t.Fatalf("balance = %d, want 100", balance)
	}
	supply, err := ledger.Supply()
	if err != nil {
		t.Fatalf("supply: %v", err)
	}
	if supply != 100 {
		t.Fatalf("supply = %d, want 100", supply)
	}

	if err := ledger.Debit("fb-alpha", 40); err != nil {
		t.Fatalf("debit: %v", err)
	}
	balance, _ = ledger.BalanceOf("fb-alpha")
	supply, _ = ledger.Supply()
	if balance != 60 || supply != 60 {
		t.Fatalf("balance = %d, supply = %d, want 60/60", balance, supply)
	}
	if err := ledger.CheckSupply(); err != nil {
		t.Fatalf("invariant: %v", err)
	}
}

func TestLedgerUnknownAccountHasZeroBalance(t *testing.T) {
	ledger := rewards.NewLedger(newTestState(t))
	balance, err := ledger.BalanceOf("never-seen")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 0 {
		t.Fatalf("balance = %d, want 0", balance)
	}
}

func TestLedgerZeroCreditIsNoop(t *testing.T) {
	ledger := rewards.NewLedger(newTestState(t))
	if err := ledger.Credit("fb-alpha", 0); err != nil {
		t.Fatalf("zero credit: %v", err)
	}
	supply, _ := ledger.Supply()
	if supply != 0 {
		t.Fatalf("supply = %d after zero credit", supply)
	}
}

func TestLedgerDebitInsufficientLeavesStateUntouched(t *testing.T) {
	ledger := rewards.NewLedger(newTestState(t))
	if err := ledger.Credit("fb-alpha", 10); err != nil {
		t.Fatalf("credit: %v", err)
	}
	err := ledger.Debit("fb-alpha", 11)
	if !errors.Is(err, rewards.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	balance, _ := ledger.BalanceOf("fb-alpha")
	supply, _ := ledger.Supply()
	if balance != 10 || supply != 10 {
		t.Fatalf("balance = %d, supply = %d after failed debit, want 10/10", balance, supply)
	}
	if err := ledger.CheckSupply(); err != nil {
		t.Fatalf("invariant: %v", err)
	}
}

func TestLedgerSupplyTracksManyAccounts(t *testing.T) {
	ledger := rewards.NewLedger(newTestState(t))
	credits := map[string]uint64{"a": 5, "b": 12, "c": 7}
	var total uint64
	for account, amount := range credits {
		if err := ledger.Credit(account, amount); err != nil {
			t.Fatalf("credit %s: %v", account, err)
		}
		total += amount
	}
	supply, _ := ledger.Supply()
	if supply != total {
		t.Fatalf("supply = %d, want %d", supply, total)
	}
	if err := ledger.CheckSupply(); err != nil {
		t.Fatalf("invariant: %v", err)
	}
}
