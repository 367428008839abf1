package deposit

import (
	"context"
	"fmt"

	"github.com/fundvault/fundvault/internal/clock"
	"github.com/fundvault/fundvault/internal/identity"
	"github.com/fundvault/fundvault/internal/notification"
)

// Approval mediates admin decisions against pending deposits. Approving
// starts the interest clock; no transaction is appended here because the
// deposit transaction was already recorded at submission.
type Approval struct {
	store    Store
	terms    Terms
	clock    clock.Clock
	locks    *Locks
	notifier notification.Notifier
}

// NewApproval builds an approval workflow.
func NewApproval(store Store, terms Terms, clk clock.Clock, locks *Locks, notifier notification.Notifier) *Approval {
	return &Approval{store: store, terms: terms, clock: clk, locks: locks, notifier: notifier}
}

// ListPending returns deposits awaiting a decision, oldest first.
func (a *Approval) ListPending(ctx context.Context) ([]Deposit, error) {
	return a.store.ListPending(ctx)
}

// ListAll returns every deposit with computed accrual fields, newest
// submission first.
func (a *Approval) ListAll(ctx context.Context) ([]View, error) {
	deposits, err := a.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	now := a.clock.Now()
	views := make([]View, 0, len(deposits))
	for _, dep := range deposits {
		views = append(views, a.terms.View(dep, now))
	}
	return views, nil
}

// Approve moves a pending deposit to approved, stamping the accrual
// baseline with the decision time. A deposit that is missing or no longer
// pending yields ErrDepositNotFound.
func (a *Approval) Approve(ctx context.Context, depositID string, admin identity.User) (Deposit, error) {
	return a.decide(ctx, depositID, StatusApproved, admin)
}

// Reject moves a pending deposit to the terminal rejected state, freeing
// the user to submit a new deposit.
func (a *Approval) Reject(ctx context.Context, depositID string, admin identity.User) (Deposit, error) {
	return a.decide(ctx, depositID, StatusRejected, admin)
}

func (a *Approval) decide(ctx context.Context, depositID string, to Status, admin identity.User) (Deposit, error) {
	if !admin.IsAdmin() {
		return Deposit{}, identity.ErrNotAdmin
	}

	dep, err := a.store.ByID(ctx, depositID)
	if err != nil {
		return Deposit{}, err
	}

	unlock := a.locks.Lock(dep.UserID)
	defer unlock()

	updated, err := a.store.Decide(ctx, depositID, to, admin.ID, a.clock.Now())
	if err != nil {
		return Deposit{}, err
	}

	a.notify(ctx, updated)
	return updated, nil
}

func (a *Approval) notify(ctx context.Context, dep Deposit) {
	if a.notifier == nil {
		return
	}
	kind := notification.KindDepositApproved
	if dep.Status == StatusRejected {
		kind = notification.KindDepositRejected
	}
	// Delivery is best effort; the decision already committed.
	_ = a.notifier.Send(ctx, notification.Message{
		Kind:        kind,
		Destination: dep.UserID,
		Body:        fmt.Sprintf("Deposit %s is %s", dep.ID, dep.Status),
	})
}
