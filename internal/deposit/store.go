package deposit

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidAmount occurs when a submitted amount is not positive.
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrActiveDepositExists occurs when a user with a pending or approved
	// deposit submits another one.
	ErrActiveDepositExists = errors.New("an active deposit already exists")

	// ErrDepositNotFound covers both a missing deposit and a deposit that
	// is not in the state the operation expects (e.g. rejecting an
	// already-approved deposit, or the losing side of a withdrawal race).
	ErrDepositNotFound = errors.New("deposit not found")

	// ErrNotMature occurs when withdrawal is attempted before the lock
	// period ends.
	ErrNotMature = errors.New("deposit has not matured")

	// ErrInvalidWithdrawalKind occurs for a withdrawal kind other than
	// interest or full.
	ErrInvalidWithdrawalKind = errors.New("withdrawal kind must be interest or full")
)

// Store is the durable backend for deposits and the transaction log. Each
// mutating method is atomic: either the state change and its transaction
// append both happen, or neither does. Transition methods have at-most-once
// effect; a call that finds the deposit outside the expected source state
// returns ErrDepositNotFound without mutating anything.
type Store interface {
	// CreateWithTransaction inserts a pending deposit and its deposit
	// transaction, failing with ErrActiveDepositExists if the user already
	// holds a pending or approved deposit.
	CreateWithTransaction(ctx context.Context, dep Deposit, txn Transaction) error

	ByID(ctx context.Context, id string) (Deposit, error)

	// ActiveByUser returns the user's pending or approved deposit.
	ActiveByUser(ctx context.Context, userID string) (Deposit, error)

	// ApprovedByUser returns the user's approved deposit.
	ApprovedByUser(ctx context.Context, userID string) (Deposit, error)

	// ListPending returns pending deposits, oldest submission first.
	ListPending(ctx context.Context) ([]Deposit, error)

	// ListAll returns every deposit, newest submission first.
	ListAll(ctx context.Context) ([]Deposit, error)

	// Decide moves a pending deposit to approved or rejected. Approval
	// also stamps the accrual baseline with the decision time.
	Decide(ctx context.Context, id string, to Status, by string, at time.Time) (Deposit, error)

	// CloseWithTransaction closes an approved deposit and appends the
	// withdrawal transaction.
	CloseWithTransaction(ctx context.Context, id string, txn Transaction) (Deposit, error)

	// RenewWithTransaction resets the accrual baseline of an approved
	// deposit and appends the interest-withdrawal transaction.
	RenewWithTransaction(ctx context.Context, id string, approvedAt time.Time, txn Transaction) (Deposit, error)

	// Transactions returns the user's log entries ordered by timestamp
	// ascending, insertion sequence on ties.
	Transactions(ctx context.Context, userID string) ([]Transaction, error)
}
