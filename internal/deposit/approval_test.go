package deposit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundvault/fundvault/internal/identity"
)

func TestApproveStartsInterestClock(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.NewString()

	dep := env.submit(t, userID, "1000.00")
	env.clk.Advance(2 * time.Hour)

	approved := env.approve(t, dep.ID)
	if approved.Status != StatusApproved {
		t.Fatalf("expected approved, got %s", approved.Status)
	}
	if approved.ApprovedAt == nil || !approved.ApprovedAt.Equal(env.clk.Now()) {
		t.Fatalf("approved_at not stamped with decision time: %v", approved.ApprovedAt)
	}
	if approved.DecidedAt == nil || !approved.DecidedAt.Equal(env.clk.Now()) {
		t.Fatalf("decided_at not stamped with decision time: %v", approved.DecidedAt)
	}
	if approved.DecidedBy != env.admin.ID {
		t.Fatalf("decided_by not recorded, got %q", approved.DecidedBy)
	}
}

func TestApproveAppendsNoTransaction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.NewString()

	dep := env.submit(t, userID, "1000.00")
	env.approve(t, dep.ID)

	txns, err := env.ledger.Transactions(ctx, userID)
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("approval must not append a transaction; have %d entries", len(txns))
	}
}

func TestApproveRequiresAdminRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	dep := env.submit(t, uuid.NewString(), "100.00")
	caller := identity.User{ID: uuid.NewString(), Username: "mallory", Role: identity.RoleUser}

	if _, err := env.approval.Approve(ctx, dep.ID, caller); !errors.Is(err, identity.ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
	if _, err := env.approval.Reject(ctx, dep.ID, caller); !errors.Is(err, identity.ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin on reject, got %v", err)
	}

	// The deposit is untouched.
	current, err := env.store.ByID(ctx, dep.ID)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if current.Status != StatusPending {
		t.Fatalf("deposit mutated by unauthorized caller: %s", current.Status)
	}
}

func TestRejectApprovedDepositFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	dep := env.submit(t, uuid.NewString(), "100.00")
	env.approve(t, dep.ID)

	if _, err := env.approval.Reject(ctx, dep.ID, env.admin); !errors.Is(err, ErrDepositNotFound) {
		t.Fatalf("expected ErrDepositNotFound for non-pending deposit, got %v", err)
	}

	current, err := env.store.ByID(ctx, dep.ID)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if current.Status != StatusApproved {
		t.Fatalf("reject altered an approved deposit: %s", current.Status)
	}
}

func TestApproveUnknownDeposit(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.approval.Approve(context.Background(), uuid.NewString(), env.admin); !errors.Is(err, ErrDepositNotFound) {
		t.Fatalf("expected ErrDepositNotFound, got %v", err)
	}
}

func TestRejectFreesUserToResubmit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.NewString()

	dep := env.submit(t, userID, "100.00")
	if _, err := env.approval.Reject(ctx, dep.ID, env.admin); err != nil {
		t.Fatalf("reject: %v", err)
	}

	if _, err := env.ledger.Submit(ctx, SubmitInput{UserID: userID, Amount: decimal.NewFromInt(200)}); err != nil {
		t.Fatalf("resubmission after rejection should succeed: %v", err)
	}
}

func TestListPendingOldestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.submit(t, uuid.NewString(), "100.00")
	env.clk.Advance(time.Minute)
	second := env.submit(t, uuid.NewString(), "200.00")
	env.clk.Advance(time.Minute)
	third := env.submit(t, uuid.NewString(), "300.00")

	env.approve(t, second.ID)

	pending, err := env.approval.ListPending(ctx)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending deposits, got %d", len(pending))
	}
	if pending[0].ID != first.ID || pending[1].ID != third.ID {
		t.Fatalf("pending deposits out of order: %s, %s", pending[0].ID, pending[1].ID)
	}
}

func TestListAllNewestFirstWithComputedFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	older := env.submit(t, uuid.NewString(), "1000.00")
	env.approve(t, older.ID)
	env.clk.Advance(30 * 24 * time.Hour)
	newer := env.submit(t, uuid.NewString(), "500.00")

	all, err := env.approval.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 deposits, got %d", len(all))
	}
	if all[0].ID != newer.ID {
		t.Fatalf("expected newest submission first, got %s", all[0].ID)
	}
	if all[1].AccruedInterest.StringFixed(2) != "40.00" {
		t.Fatalf("expected 40.00 accrued on the approved deposit, got %s", all[1].AccruedInterest.StringFixed(2))
	}
}
