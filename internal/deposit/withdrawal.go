package deposit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundvault/fundvault/internal/clock"
	"github.com/fundvault/fundvault/internal/notification"
)

// Kind selects what a withdrawal pays out.
type Kind string

const (
	// KindInterest pays accrued interest and keeps the deposit open with a
	// fresh accrual baseline and lock period.
	KindInterest Kind = "interest"
	// KindFull pays principal plus accrued interest and closes the deposit.
	KindFull Kind = "full"
)

// Result reports a completed withdrawal.
type Result struct {
	Kind        Kind
	Amount      decimal.Decimal
	Message     string
	Description string
}

// Withdrawal validates maturity and state and executes interest-only or
// full withdrawals. The per-user lock makes the read-compute-write
// sequence atomic with respect to other transitions for the same user;
// the store's conditional updates keep the loser of a race from paying
// out twice.
type Withdrawal struct {
	store    Store
	terms    Terms
	clock    clock.Clock
	locks    *Locks
	notifier notification.Notifier
}

// NewWithdrawal builds a withdrawal processor.
func NewWithdrawal(store Store, terms Terms, clk clock.Clock, locks *Locks, notifier notification.Notifier) *Withdrawal {
	return &Withdrawal{store: store, terms: terms, clock: clk, locks: locks, notifier: notifier}
}

// Withdraw pays out against the user's approved deposit. Preconditions in
// order: an approved deposit exists (ErrDepositNotFound), it is mature
// (ErrNotMature). Payout amounts are rounded once, here.
func (w *Withdrawal) Withdraw(ctx context.Context, userID string, kind Kind) (Result, error) {
	if kind != KindInterest && kind != KindFull {
		return Result{}, ErrInvalidWithdrawalKind
	}

	unlock := w.locks.Lock(userID)
	defer unlock()

	dep, err := w.store.ApprovedByUser(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	now := w.clock.Now()
	if !w.terms.IsMature(*dep.ApprovedAt, now) {
		return Result{}, ErrNotMature
	}

	accrued := w.terms.AccruedInterest(dep.Amount, *dep.ApprovedAt, now)

	var (
		amount      decimal.Decimal
		description string
	)
	switch kind {
	case KindInterest:
		amount = RoundPayout(accrued)
		description = fmt.Sprintf("Interest withdrawal: %s", amount.StringFixed(2))
	case KindFull:
		amount = RoundPayout(dep.Amount.Add(accrued))
		description = fmt.Sprintf("Full withdrawal: principal %s + interest %s",
			dep.Amount.StringFixed(2), RoundPayout(accrued).StringFixed(2))
	}

	txn := Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		DepositID:   dep.ID,
		Amount:      amount,
		Description: description,
		Timestamp:   now,
	}

	switch kind {
	case KindInterest:
		txn.Type = TxInterestWithdrawal
		// The principal re-enters a fresh lock period from this instant.
		if _, err := w.store.RenewWithTransaction(ctx, dep.ID, now, txn); err != nil {
			return Result{}, err
		}
	case KindFull:
		txn.Type = TxWithdrawal
		if _, err := w.store.CloseWithTransaction(ctx, dep.ID, txn); err != nil {
			return Result{}, err
		}
	}

	w.notify(ctx, userID, description)

	return Result{
		Kind:        kind,
		Amount:      amount,
		Message:     "Withdrawal successful",
		Description: description,
	}, nil
}

func (w *Withdrawal) notify(ctx context.Context, userID, body string) {
	if w.notifier == nil {
		return
	}
	_ = w.notifier.Send(ctx, notification.Message{
		Kind:        notification.KindWithdrawal,
		Destination: userID,
		Body:        body,
	})
}
