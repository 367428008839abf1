package deposit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundvault/fundvault/internal/clock"
)

// Ledger owns deposit submission and the derived balance and history
// reads. All writes for a user are serialized through the shared lock
// table.
type Ledger struct {
	store Store
	terms Terms
	clock clock.Clock
	locks *Locks
}

// NewLedger builds a deposit ledger.
func NewLedger(store Store, terms Terms, clk clock.Clock, locks *Locks) *Ledger {
	return &Ledger{store: store, terms: terms, clock: clk, locks: locks}
}

// Terms returns the policy the ledger accrues under.
func (l *Ledger) Terms() Terms { return l.terms }

// SubmitInput captures a deposit submission.
type SubmitInput struct {
	UserID   string
	Amount   decimal.Decimal
	ProofRef string
}

// Submit creates a pending deposit and records the deposit transaction.
// It fails with ErrInvalidAmount for non-positive amounts and with
// ErrActiveDepositExists when the user already holds a pending or
// approved deposit.
func (l *Ledger) Submit(ctx context.Context, input SubmitInput) (Deposit, error) {
	if !input.Amount.IsPositive() {
		return Deposit{}, ErrInvalidAmount
	}

	unlock := l.locks.Lock(input.UserID)
	defer unlock()

	now := l.clock.Now()
	dep := Deposit{
		ID:          uuid.NewString(),
		UserID:      input.UserID,
		Amount:      input.Amount,
		ProofRef:    input.ProofRef,
		Status:      StatusPending,
		SubmittedAt: now,
	}
	txn := Transaction{
		ID:          uuid.NewString(),
		UserID:      input.UserID,
		DepositID:   dep.ID,
		Type:        TxDeposit,
		Amount:      input.Amount,
		Description: fmt.Sprintf("Deposit submitted: %s", input.Amount.StringFixed(2)),
		Timestamp:   now,
	}

	if err := l.store.CreateWithTransaction(ctx, dep, txn); err != nil {
		return Deposit{}, err
	}
	return dep, nil
}

// Current returns the user's non-terminal deposit extended with computed
// maturity and accrual fields, or nil when the user has none.
func (l *Ledger) Current(ctx context.Context, userID string) (*View, error) {
	dep, err := l.store.ActiveByUser(ctx, userID)
	if err != nil {
		if err == ErrDepositNotFound {
			return nil, nil
		}
		return nil, err
	}
	view := l.terms.View(dep, l.clock.Now())
	return &view, nil
}

// Balance derives the user's balance from their approved deposit, or nil
// when no approved deposit exists.
func (l *Ledger) Balance(ctx context.Context, userID string) (*Balance, error) {
	dep, err := l.store.ApprovedByUser(ctx, userID)
	if err != nil {
		if err == ErrDepositNotFound {
			return nil, nil
		}
		return nil, err
	}

	now := l.clock.Now()
	accrued := l.terms.AccruedInterest(dep.Amount, *dep.ApprovedAt, now)
	return &Balance{
		DepositID:       dep.ID,
		Principal:       dep.Amount,
		AccruedInterest: accrued,
		Total:           dep.Amount.Add(accrued),
		AsOf:            now,
	}, nil
}

// Transactions returns the user's transaction history, timestamp
// ascending with insertion order on ties.
func (l *Ledger) Transactions(ctx context.Context, userID string) ([]Transaction, error) {
	return l.store.Transactions(ctx, userID)
}
