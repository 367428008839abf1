package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fundvault/fundvault/internal/account"
)

// RegisterAdminRoutes wires the approval workflow and user administration.
// Role enforcement happens in the account service, not here.
func RegisterAdminRoutes(r fiber.Router, h *account.Handler) {
	admin := r.Group("/admin")
	admin.Get("/deposits/pending", h.ListPending)
	admin.Get("/deposits", h.ListDeposits)
	admin.Post("/deposits/:depositId/approve", h.Approve)
	admin.Post("/deposits/:depositId/reject", h.Reject)
	admin.Post("/users", h.CreateUser)
	admin.Get("/users", h.ListUsers)
}
