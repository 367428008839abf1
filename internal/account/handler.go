package account

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/fundvault/fundvault/internal/deposit"
	"github.com/fundvault/fundvault/internal/identity"
)

const callerHeader = "X-User-ID"

// Handler exposes the façade over HTTP. The caller is resolved from the
// X-User-ID header set by the edge in front of this service; everything
// beyond "a caller is identified and has a role" is out of scope here.
type Handler struct {
	service *Service
	users   *identity.Service
}

// NewHandler builds the account HTTP handler.
func NewHandler(service *Service, users *identity.Service) *Handler {
	return &Handler{service: service, users: users}
}

func (h *Handler) caller(c *fiber.Ctx) (identity.User, error) {
	id := c.Get(callerHeader)
	if id == "" {
		return identity.User{}, fiber.NewError(http.StatusUnauthorized, "caller not identified")
	}
	user, err := h.users.FindByID(c.UserContext(), id)
	if err != nil {
		return identity.User{}, fiber.NewError(http.StatusUnauthorized, "unknown caller")
	}
	if !user.IsActive {
		return identity.User{}, fiber.NewError(http.StatusUnauthorized, "account deactivated")
	}
	return user, nil
}

// Profile returns the caller's own record.
func (h *Handler) Profile(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}
	return c.JSON(userResponseFrom(caller))
}

type submitDepositRequest struct {
	Amount   string `json:"amount"`
	ProofRef string `json:"proof_ref"`
}

// SubmitDeposit creates a pending deposit for the caller.
func (h *Handler) SubmitDeposit(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}
	var req submitDepositRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid amount")
	}
	dep, err := h.service.SubmitDeposit(c.UserContext(), caller.ID, amount, req.ProofRef)
	if err != nil {
		return domainError(err)
	}
	return c.Status(http.StatusCreated).JSON(depositResponseFrom(dep))
}

// CurrentDeposit returns the caller's active deposit, or null.
func (h *Handler) CurrentDeposit(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}
	view, err := h.service.CurrentDeposit(c.UserContext(), caller.ID)
	if err != nil {
		return domainError(err)
	}
	if view == nil {
		return c.JSON(nil)
	}
	return c.JSON(viewResponseFrom(*view))
}

// Balance returns the caller's derived balance.
func (h *Handler) Balance(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}
	balance, err := h.service.Balance(c.UserContext(), caller.ID)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(balanceResponseFrom(balance))
}

// Transactions returns the caller's transaction history.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}
	txns, err := h.service.Transactions(c.UserContext(), caller.ID)
	if err != nil {
		return domainError(err)
	}
	out := make([]transactionResponse, 0, len(txns))
	for _, txn := range txns {
		out = append(out, transactionResponseFrom(txn))
	}
	return c.JSON(out)
}

type withdrawRequest struct {
	Kind string `json:"kind"`
}

// Withdraw executes an interest-only or full withdrawal.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}
	var req withdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	res, err := h.service.Withdraw(c.UserContext(), caller.ID, deposit.Kind(req.Kind))
	if err != nil {
		return domainError(err)
	}
	return c.JSON(fiber.Map{
		"message":     res.Message,
		"amount":      res.Amount.StringFixed(2),
		"kind":        string(res.Kind),
		"description": res.Description,
	})
}

// ListPending returns deposits awaiting a decision.
func (h *Handler) ListPending(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}
	pending, err := h.service.ListPending(c.UserContext(), caller)
	if err != nil {
		return domainError(err)
	}
	out := make([]depositResponse, 0, len(pending))
	for _, dep := range pending {
		out = append(out, depositResponseFrom(dep))
	}
	return c.JSON(out)
}

// ListDeposits returns every deposit with computed accrual fields.
func (h *Handler) ListDeposits(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}
	views, err := h.service.ListDeposits(c.UserContext(), caller)
	if err != nil {
		return domainError(err)
	}
	out := make([]viewResponse, 0, len(views))
	for _, view := range views {
		out = append(out, viewResponseFrom(view))
	}
	return c.JSON(out)
}

// Approve accepts a pending deposit.
func (h *Handler) Approve(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}
	dep, err := h.service.Approve(c.UserContext(), caller, c.Params("depositId"))
	if err != nil {
		return domainError(err)
	}
	return c.JSON(depositResponseFrom(dep))
}

// Reject declines a pending deposit.
func (h *Handler) Reject(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}
	dep, err := h.service.Reject(c.UserContext(), caller, c.Params("depositId"))
	if err != nil {
		return domainError(err)
	}
	return c.JSON(depositResponseFrom(dep))
}

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateUser registers a new account.
func (h *Handler) CreateUser(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.service.CreateUser(c.UserContext(), caller, identity.CreateInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     identity.Role(req.Role),
	})
	if err != nil {
		return domainError(err)
	}
	return c.Status(http.StatusCreated).JSON(userResponseFrom(user))
}

// ListUsers returns regular users.
func (h *Handler) ListUsers(c *fiber.Ctx) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}
	users, err := h.service.ListUsers(c.UserContext(), caller)
	if err != nil {
		return domainError(err)
	}
	out := make([]userResponse, 0, len(users))
	for _, user := range users {
		out = append(out, userResponseFrom(user))
	}
	return c.JSON(out)
}

// domainError maps sentinel errors from the core onto HTTP statuses.
func domainError(err error) error {
	switch {
	case errors.Is(err, deposit.ErrInvalidAmount),
		errors.Is(err, deposit.ErrInvalidWithdrawalKind),
		errors.Is(err, deposit.ErrNotMature),
		errors.Is(err, identity.ErrInvalidUser):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, deposit.ErrActiveDepositExists),
		errors.Is(err, identity.ErrUsernameTaken),
		errors.Is(err, identity.ErrEmailTaken):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, deposit.ErrDepositNotFound),
		errors.Is(err, identity.ErrUserNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, identity.ErrNotAdmin):
		return fiber.NewError(http.StatusForbidden, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}

type depositResponse struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Amount      string     `json:"amount"`
	ProofRef    string     `json:"proof_ref"`
	Status      string     `json:"status"`
	SubmittedAt time.Time  `json:"submitted_at"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
}

func depositResponseFrom(dep deposit.Deposit) depositResponse {
	return depositResponse{
		ID:          dep.ID,
		UserID:      dep.UserID,
		Amount:      dep.Amount.StringFixed(2),
		ProofRef:    dep.ProofRef,
		Status:      string(dep.Status),
		SubmittedAt: dep.SubmittedAt,
		DecidedAt:   dep.DecidedAt,
		ApprovedAt:  dep.ApprovedAt,
	}
}

type viewResponse struct {
	depositResponse
	MaturityDate    *time.Time `json:"maturity_date,omitempty"`
	DaysRemaining   *int       `json:"days_remaining,omitempty"`
	IsMature        bool       `json:"is_mature"`
	AccruedInterest string     `json:"accrued_interest"`
	CurrentBalance  string     `json:"current_balance"`
}

func viewResponseFrom(view deposit.View) viewResponse {
	return viewResponse{
		depositResponse: depositResponseFrom(view.Deposit),
		MaturityDate:    view.MaturityDate,
		DaysRemaining:   view.DaysRemaining,
		IsMature:        view.IsMature,
		AccruedInterest: view.AccruedInterest.StringFixed(2),
		CurrentBalance:  view.CurrentBalance.StringFixed(2),
	}
}

type balanceResponse struct {
	Principal        string `json:"principal"`
	AccruedInterest  string `json:"accrued_interest"`
	TotalBalance     string `json:"total_balance"`
	HasActiveDeposit bool   `json:"has_active_deposit"`
}

func balanceResponseFrom(balance *deposit.Balance) balanceResponse {
	if balance == nil {
		zero := decimal.Zero.StringFixed(2)
		return balanceResponse{Principal: zero, AccruedInterest: zero, TotalBalance: zero}
	}
	return balanceResponse{
		Principal:        balance.Principal.StringFixed(2),
		AccruedInterest:  balance.AccruedInterest.StringFixed(2),
		TotalBalance:     balance.Total.StringFixed(2),
		HasActiveDeposit: true,
	}
}

type transactionResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	DepositID   string    `json:"deposit_id"`
	Type        string    `json:"type"`
	Amount      string    `json:"amount"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

func transactionResponseFrom(txn deposit.Transaction) transactionResponse {
	return transactionResponse{
		ID:          txn.ID,
		UserID:      txn.UserID,
		DepositID:   txn.DepositID,
		Type:        string(txn.Type),
		Amount:      txn.Amount.StringFixed(2),
		Description: txn.Description,
		Timestamp:   txn.Timestamp,
	}
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func userResponseFrom(user identity.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      string(user.Role),
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
}
