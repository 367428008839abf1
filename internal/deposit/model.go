// Package deposit implements the deposit ledger: the state machine for
// deposit records, simple-interest accrual, admin approval and withdrawal
// processing, and the append-only transaction log derived from them.
package deposit

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a deposit.
type Status string

const (
	// StatusPending awaits an admin decision.
	StatusPending Status = "pending"
	// StatusApproved accrues interest and counts toward the one-active-deposit limit.
	StatusApproved Status = "approved"
	// StatusRejected is terminal; the user may submit a new deposit.
	StatusRejected Status = "rejected"
	// StatusClosed is terminal; the deposit was withdrawn in full.
	StatusClosed Status = "closed"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusClosed
}

// Active reports whether the deposit blocks new submissions for its user.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusApproved
}

// Deposit is a single deposit attempt. A user holds at most one deposit
// with an active status at any time.
type Deposit struct {
	ID     string
	UserID string
	Amount decimal.Decimal
	// ProofRef is an opaque reference to the payment proof supplied by the
	// user. The ledger never interprets or fetches it.
	ProofRef    string
	Status      Status
	SubmittedAt time.Time
	DecidedAt   *time.Time
	// ApprovedAt starts the interest clock. An interest-only withdrawal
	// advances it, so it is the accrual baseline rather than a historical
	// record of the first approval.
	ApprovedAt *time.Time
	DecidedBy  string
}

// Approved transitions a pending deposit to approved, starting the
// interest clock at the decision time.
func (d Deposit) Approved(by string, at time.Time) (Deposit, error) {
	if d.Status != StatusPending {
		return Deposit{}, ErrDepositNotFound
	}
	at = at.UTC()
	d.Status = StatusApproved
	d.DecidedAt = &at
	d.ApprovedAt = &at
	d.DecidedBy = by
	return d, nil
}

// Rejected transitions a pending deposit to the terminal rejected state.
func (d Deposit) Rejected(by string, at time.Time) (Deposit, error) {
	if d.Status != StatusPending {
		return Deposit{}, ErrDepositNotFound
	}
	at = at.UTC()
	d.Status = StatusRejected
	d.DecidedAt = &at
	d.DecidedBy = by
	return d, nil
}

// Closed transitions an approved deposit to the terminal closed state.
func (d Deposit) Closed() (Deposit, error) {
	if d.Status != StatusApproved {
		return Deposit{}, ErrDepositNotFound
	}
	d.Status = StatusClosed
	return d, nil
}

// Renewed resets the accrual baseline of an approved deposit after an
// interest-only withdrawal. The deposit re-enters a fresh lock period.
func (d Deposit) Renewed(at time.Time) (Deposit, error) {
	if d.Status != StatusApproved {
		return Deposit{}, ErrDepositNotFound
	}
	at = at.UTC()
	d.ApprovedAt = &at
	return d, nil
}

// Balance is derived from an approved deposit; it is never stored.
type Balance struct {
	DepositID       string
	Principal       decimal.Decimal
	AccruedInterest decimal.Decimal
	Total           decimal.Decimal
	AsOf            time.Time
}

// View is a deposit snapshot extended with fields computed from the terms
// and the current instant.
type View struct {
	Deposit
	MaturityDate    *time.Time
	DaysRemaining   *int
	IsMature        bool
	AccruedInterest decimal.Decimal
	CurrentBalance  decimal.Decimal
}
