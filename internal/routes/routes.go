package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/fundvault/fundvault/internal/account"
	"github.com/fundvault/fundvault/internal/clock"
	"github.com/fundvault/fundvault/internal/config"
	"github.com/fundvault/fundvault/internal/deposit"
	"github.com/fundvault/fundvault/internal/identity"
	"github.com/fundvault/fundvault/internal/middleware"
	"github.com/fundvault/fundvault/internal/notification"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. When DB or Cache
// are nil in a dev environment, in-memory fallbacks are used instead.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	var store deposit.Store
	if d.DB != nil {
		store = deposit.NewPostgresStore(d.DB)
	} else {
		store = deposit.NewMemoryStore()
	}

	var identityRepo identity.Repository
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
	}
	users := identity.NewService(identityRepo)

	if d.Cfg.DefaultAdminPassword != "" {
		admin, created, err := users.EnsureAdmin(context.Background(),
			d.Cfg.DefaultAdminUsername, d.Cfg.DefaultAdminPassword, d.Cfg.DefaultAdminEmail)
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		if created {
			d.Logger.Info("default admin created", "username", admin.Username)
		}
	}

	terms := deposit.Terms{MonthlyRate: d.Cfg.MonthlyRate, LockPeriod: d.Cfg.LockPeriod()}
	clk := clock.System{}
	locks := deposit.NewLocks()
	notifier := notification.NewLoggerNotifier(d.Logger)

	svc := account.NewService(
		users,
		deposit.NewLedger(store, terms, clk, locks),
		deposit.NewApproval(store, terms, clk, locks, notifier),
		deposit.NewWithdrawal(store, terms, clk, locks, notifier),
	)
	handler := account.NewHandler(svc, users)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterUserRoutes(api, handler)
	RegisterAdminRoutes(api, handler)

	return nil
}
