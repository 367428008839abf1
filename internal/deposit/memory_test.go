package deposit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestMemoryStoreTransactionTieBreak(t *testing.T) {
	store := NewMemoryStore().(*memoryStore)
	ctx := context.Background()
	userID := uuid.NewString()

	// Two entries sharing a timestamp must come back in insertion order.
	dep := Deposit{ID: uuid.NewString(), UserID: userID, Amount: decimal.NewFromInt(10), Status: StatusPending, SubmittedAt: t0}
	if err := store.CreateWithTransaction(ctx, dep, Transaction{ID: uuid.NewString(), UserID: userID, DepositID: dep.ID, Type: TxDeposit, Amount: dep.Amount, Timestamp: t0}); err != nil {
		t.Fatalf("create: %v", err)
	}
	store.mu.Lock()
	store.appendTxn(Transaction{ID: uuid.NewString(), UserID: userID, DepositID: dep.ID, Type: TxWithdrawal, Amount: dep.Amount, Timestamp: t0})
	store.mu.Unlock()

	txns, err := store.Transactions(ctx, userID)
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txns))
	}
	if txns[0].Type != TxDeposit || txns[1].Type != TxWithdrawal {
		t.Fatalf("tie not broken by insertion order: %s then %s", txns[0].Type, txns[1].Type)
	}
	if txns[0].Seq >= txns[1].Seq {
		t.Fatalf("sequence numbers not increasing: %d then %d", txns[0].Seq, txns[1].Seq)
	}
}

func TestMemoryStoreDecideIsConditional(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	userID := uuid.NewString()

	dep := Deposit{ID: uuid.NewString(), UserID: userID, Amount: decimal.NewFromInt(10), Status: StatusPending, SubmittedAt: t0}
	if err := store.CreateWithTransaction(ctx, dep, Transaction{ID: uuid.NewString(), UserID: userID, DepositID: dep.ID, Type: TxDeposit, Amount: dep.Amount, Timestamp: t0}); err != nil {
		t.Fatalf("create: %v", err)
	}

	adminID := uuid.NewString()
	if _, err := store.Decide(ctx, dep.ID, StatusApproved, adminID, t0); err != nil {
		t.Fatalf("approve: %v", err)
	}
	// A second decision on the same deposit must miss.
	if _, err := store.Decide(ctx, dep.ID, StatusRejected, adminID, t0); !errors.Is(err, ErrDepositNotFound) {
		t.Fatalf("expected ErrDepositNotFound, got %v", err)
	}
	// Closed is not a decision target.
	if _, err := store.Decide(ctx, dep.ID, StatusClosed, adminID, t0); !errors.Is(err, ErrDepositNotFound) {
		t.Fatalf("expected ErrDepositNotFound for bad target, got %v", err)
	}
}

func TestDepositTransitionsRejectIllegalSources(t *testing.T) {
	adminID := uuid.NewString()
	pending := Deposit{ID: uuid.NewString(), Status: StatusPending}

	approved, err := pending.Approved(adminID, t0)
	if err != nil {
		t.Fatalf("approve pending: %v", err)
	}
	if _, err := approved.Approved(adminID, t0); !errors.Is(err, ErrDepositNotFound) {
		t.Fatalf("expected approve on approved to fail, got %v", err)
	}
	if _, err := approved.Rejected(adminID, t0); !errors.Is(err, ErrDepositNotFound) {
		t.Fatalf("expected reject on approved to fail, got %v", err)
	}

	closed, err := approved.Closed()
	if err != nil {
		t.Fatalf("close approved: %v", err)
	}
	if _, err := closed.Closed(); !errors.Is(err, ErrDepositNotFound) {
		t.Fatalf("expected close on closed to fail, got %v", err)
	}
	if _, err := closed.Renewed(t0); !errors.Is(err, ErrDepositNotFound) {
		t.Fatalf("expected renew on closed to fail, got %v", err)
	}
	if _, err := pending.Closed(); !errors.Is(err, ErrDepositNotFound) {
		t.Fatalf("expected close on pending to fail, got %v", err)
	}
}
