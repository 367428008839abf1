// Package account exposes the single surface the API layer depends on: a
// façade over the deposit ledger, approval workflow, withdrawal processor
// and identity service, with role enforcement on admin operations.
package account

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fundvault/fundvault/internal/deposit"
	"github.com/fundvault/fundvault/internal/identity"
)

// Service is the façade. User operations require only a resolved user id;
// admin operations require the caller to hold the admin role.
type Service struct {
	users      *identity.Service
	ledger     *deposit.Ledger
	approval   *deposit.Approval
	withdrawal *deposit.Withdrawal
}

// NewService wires the façade.
func NewService(users *identity.Service, ledger *deposit.Ledger, approval *deposit.Approval, withdrawal *deposit.Withdrawal) *Service {
	return &Service{users: users, ledger: ledger, approval: approval, withdrawal: withdrawal}
}

// Profile returns the caller's own user record.
func (s *Service) Profile(ctx context.Context, userID string) (identity.User, error) {
	return s.users.FindByID(ctx, userID)
}

// SubmitDeposit creates a pending deposit for the caller.
func (s *Service) SubmitDeposit(ctx context.Context, userID string, amount decimal.Decimal, proofRef string) (deposit.Deposit, error) {
	return s.ledger.Submit(ctx, deposit.SubmitInput{UserID: userID, Amount: amount, ProofRef: proofRef})
}

// CurrentDeposit returns the caller's non-terminal deposit, or nil.
func (s *Service) CurrentDeposit(ctx context.Context, userID string) (*deposit.View, error) {
	return s.ledger.Current(ctx, userID)
}

// Balance returns the caller's derived balance, or nil without an
// approved deposit.
func (s *Service) Balance(ctx context.Context, userID string) (*deposit.Balance, error) {
	return s.ledger.Balance(ctx, userID)
}

// Transactions returns the caller's transaction history.
func (s *Service) Transactions(ctx context.Context, userID string) ([]deposit.Transaction, error) {
	return s.ledger.Transactions(ctx, userID)
}

// Withdraw executes an interest-only or full withdrawal for the caller.
func (s *Service) Withdraw(ctx context.Context, userID string, kind deposit.Kind) (deposit.Result, error) {
	return s.withdrawal.Withdraw(ctx, userID, kind)
}

// ListPending returns deposits awaiting a decision. Admin only.
func (s *Service) ListPending(ctx context.Context, caller identity.User) ([]deposit.Deposit, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.approval.ListPending(ctx)
}

// ListDeposits returns every deposit with computed accrual fields. Admin only.
func (s *Service) ListDeposits(ctx context.Context, caller identity.User) ([]deposit.View, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.approval.ListAll(ctx)
}

// Approve accepts a pending deposit, starting its interest clock. Admin only.
func (s *Service) Approve(ctx context.Context, caller identity.User, depositID string) (deposit.Deposit, error) {
	if err := requireAdmin(caller); err != nil {
		return deposit.Deposit{}, err
	}
	return s.approval.Approve(ctx, depositID, caller)
}

// Reject declines a pending deposit. Admin only.
func (s *Service) Reject(ctx context.Context, caller identity.User, depositID string) (deposit.Deposit, error) {
	if err := requireAdmin(caller); err != nil {
		return deposit.Deposit{}, err
	}
	return s.approval.Reject(ctx, depositID, caller)
}

// CreateUser registers a new account. Admin only.
func (s *Service) CreateUser(ctx context.Context, caller identity.User, input identity.CreateInput) (identity.User, error) {
	if err := requireAdmin(caller); err != nil {
		return identity.User{}, err
	}
	return s.users.Create(ctx, input)
}

// ListUsers returns regular users, oldest first. Admin only.
func (s *Service) ListUsers(ctx context.Context, caller identity.User) ([]identity.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.users.List(ctx, identity.RoleUser)
}

func requireAdmin(caller identity.User) error {
	if !caller.IsAdmin() {
		return identity.ErrNotAdmin
	}
	return nil
}
