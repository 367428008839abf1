package deposit

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a balance-affecting event.
type TransactionType string

const (
	// TxDeposit records a submitted deposit amount.
	TxDeposit TransactionType = "deposit"
	// TxWithdrawal records a full payout of principal plus interest.
	TxWithdrawal TransactionType = "withdrawal"
	// TxInterestWithdrawal records an interest-only payout.
	TxInterestWithdrawal TransactionType = "interest_withdrawal"
)

// Transaction is an immutable log entry. Entries are written only as a
// side effect of a successful ledger or withdrawal operation, never
// mutated or deleted afterwards.
type Transaction struct {
	ID          string
	UserID      string
	DepositID   string
	Type        TransactionType
	Amount      decimal.Decimal
	Description string
	Timestamp   time.Time
	// Seq is the insertion sequence assigned by the store; it breaks
	// ordering ties between entries sharing a timestamp.
	Seq int64
}
