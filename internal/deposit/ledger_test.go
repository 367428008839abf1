package deposit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundvault/fundvault/internal/clock"
	"github.com/fundvault/fundvault/internal/identity"
)

// testEnv wires the full core against the in-memory store and a fixed clock.
type testEnv struct {
	store      Store
	clk        *clock.Fixed
	ledger     *Ledger
	approval   *Approval
	withdrawal *Withdrawal
	admin      identity.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := NewMemoryStore()
	clk := clock.NewFixed(t0)
	locks := NewLocks()
	terms := DefaultTerms()
	admin := identity.User{ID: uuid.NewString(), Username: "admin", Role: identity.RoleAdmin, IsActive: true}
	return &testEnv{
		store:      store,
		clk:        clk,
		ledger:     NewLedger(store, terms, clk, locks),
		approval:   NewApproval(store, terms, clk, locks, nil),
		withdrawal: NewWithdrawal(store, terms, clk, locks, nil),
		admin:      admin,
	}
}

func (e *testEnv) submit(t *testing.T, userID, amount string) Deposit {
	t.Helper()
	dep, err := e.ledger.Submit(context.Background(), SubmitInput{
		UserID:   userID,
		Amount:   decimal.RequireFromString(amount),
		ProofRef: "proof/receipt.pdf",
	})
	if err != nil {
		t.Fatalf("submit deposit: %v", err)
	}
	return dep
}

func (e *testEnv) approve(t *testing.T, depositID string) Deposit {
	t.Helper()
	dep, err := e.approval.Approve(context.Background(), depositID, e.admin)
	if err != nil {
		t.Fatalf("approve deposit: %v", err)
	}
	return dep
}

func TestSubmitThenCurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.NewString()

	dep := env.submit(t, userID, "500.00")
	if dep.Status != StatusPending {
		t.Fatalf("expected pending, got %s", dep.Status)
	}

	current, err := env.ledger.Current(ctx, userID)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current == nil {
		t.Fatal("expected a current deposit")
	}
	if current.Status != StatusPending {
		t.Fatalf("expected pending, got %s", current.Status)
	}
	if !current.Amount.Equal(decimal.RequireFromString("500.00")) {
		t.Fatalf("unexpected amount: %s", current.Amount)
	}
	if current.MaturityDate != nil {
		t.Fatal("pending deposit should not expose a maturity date")
	}
}

func TestSubmitRejectsNonPositiveAmount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, amount := range []string{"0", "-10.00"} {
		_, err := env.ledger.Submit(ctx, SubmitInput{UserID: uuid.NewString(), Amount: decimal.RequireFromString(amount)})
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %s: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestSubmitBlockedByActiveDeposit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.NewString()

	dep := env.submit(t, userID, "100.00")

	if _, err := env.ledger.Submit(ctx, SubmitInput{UserID: userID, Amount: decimal.NewFromInt(50)}); !errors.Is(err, ErrActiveDepositExists) {
		t.Fatalf("expected ErrActiveDepositExists while pending, got %v", err)
	}

	env.approve(t, dep.ID)

	if _, err := env.ledger.Submit(ctx, SubmitInput{UserID: userID, Amount: decimal.NewFromInt(50)}); !errors.Is(err, ErrActiveDepositExists) {
		t.Fatalf("expected ErrActiveDepositExists while approved, got %v", err)
	}
}

func TestSubmitAppendsDepositTransaction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.NewString()

	dep := env.submit(t, userID, "250.00")

	txns, err := env.ledger.Transactions(ctx, userID)
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("expected exactly one transaction, got %d", len(txns))
	}
	if txns[0].Type != TxDeposit {
		t.Fatalf("expected deposit transaction, got %s", txns[0].Type)
	}
	if txns[0].DepositID != dep.ID {
		t.Fatalf("transaction references wrong deposit: %s", txns[0].DepositID)
	}
	if !txns[0].Amount.Equal(decimal.RequireFromString("250.00")) {
		t.Fatalf("unexpected transaction amount: %s", txns[0].Amount)
	}
}

func TestBalanceNoneWithoutApprovedDeposit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.NewString()

	balance, err := env.ledger.Balance(ctx, userID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != nil {
		t.Fatal("expected no balance without a deposit")
	}

	env.submit(t, userID, "100.00")
	balance, err = env.ledger.Balance(ctx, userID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != nil {
		t.Fatal("expected no balance for a pending deposit")
	}
}

func TestBalanceImmediatelyAfterApproval(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.NewString()

	dep := env.submit(t, userID, "1000.00")
	env.approve(t, dep.ID)

	balance, err := env.ledger.Balance(ctx, userID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance == nil {
		t.Fatal("expected a balance")
	}
	if !balance.Principal.Equal(decimal.RequireFromString("1000.00")) {
		t.Fatalf("unexpected principal: %s", balance.Principal)
	}
	if !balance.AccruedInterest.IsZero() {
		t.Fatalf("expected zero interest immediately after approval, got %s", balance.AccruedInterest)
	}
	if !balance.Total.Equal(balance.Principal) {
		t.Fatalf("expected total to equal principal, got %s", balance.Total)
	}
}

func TestBalanceAfterThirtyDays(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.NewString()

	dep := env.submit(t, userID, "1000.00")
	env.approve(t, dep.ID)

	env.clk.Advance(30 * 24 * time.Hour)

	balance, err := env.ledger.Balance(ctx, userID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.AccruedInterest.StringFixed(2) != "40.00" {
		t.Fatalf("expected 40.00 accrued, got %s", balance.AccruedInterest.StringFixed(2))
	}
	if balance.Total.StringFixed(2) != "1040.00" {
		t.Fatalf("expected total 1040.00, got %s", balance.Total.StringFixed(2))
	}
}

func TestCurrentExposesMaturityFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.NewString()

	dep := env.submit(t, userID, "1000.00")
	env.approve(t, dep.ID)

	current, err := env.ledger.Current(ctx, userID)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.MaturityDate == nil || current.DaysRemaining == nil {
		t.Fatal("approved deposit missing computed fields")
	}
	if *current.DaysRemaining != 90 {
		t.Fatalf("expected 90 days remaining, got %d", *current.DaysRemaining)
	}
	if current.IsMature {
		t.Fatal("deposit mature immediately after approval")
	}

	env.clk.Advance(90 * 24 * time.Hour)
	current, err = env.ledger.Current(ctx, userID)
	if err != nil {
		t.Fatalf("current after maturity: %v", err)
	}
	if !current.IsMature {
		t.Fatal("deposit not mature after the lock period")
	}
	if *current.DaysRemaining != 0 {
		t.Fatalf("expected 0 days remaining, got %d", *current.DaysRemaining)
	}
}

func TestAtMostOneActiveDepositUnderConcurrentSubmits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.NewString()

	const attempts = 8
	errCh := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			_, err := env.ledger.Submit(ctx, SubmitInput{UserID: userID, Amount: decimal.NewFromInt(100)})
			errCh <- err
		}()
	}

	var succeeded int
	for i := 0; i < attempts; i++ {
		if err := <-errCh; err == nil {
			succeeded++
		} else if !errors.Is(err, ErrActiveDepositExists) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one successful submission, got %d", succeeded)
	}
}
