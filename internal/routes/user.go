package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fundvault/fundvault/internal/account"
)

// RegisterUserRoutes wires the endpoints a regular user calls against their
// own funds.
func RegisterUserRoutes(r fiber.Router, h *account.Handler) {
	user := r.Group("/user")
	user.Get("/profile", h.Profile)
	user.Post("/deposit", h.SubmitDeposit)
	user.Get("/deposit/current", h.CurrentDeposit)
	user.Get("/balance", h.Balance)
	user.Get("/transactions", h.Transactions)
	user.Post("/withdraw", h.Withdraw)
}
