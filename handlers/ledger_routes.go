// handlers/ledger_routes.go
package handlers

import (
	"errors"
	"log"
	"strconv"
	"time"

	"earnings-bot/middleware"
	"earnings-bot/models"
	"earnings-bot/monitoring"
	"earnings-bot/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type LedgerServices struct {
	Ledger     *services.LedgerStore
	Catalog    *services.Catalog
	Earning    *services.EarningEngine
	Referrals  *services.ReferralEngine
	Withdrawal *services.WithdrawalGate
	Now        func() time.Time
}

func SetupLedgerRoutes(app *fiber.App, svc LedgerServices, serviceToken string) {
	if svc.Now == nil {
		svc.Now = time.Now
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "accounts": svc.Ledger.Len()})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// 🔐 admin: service token only
	admin := app.Group("/admin", middleware.GatewayAuthMiddleware(serviceToken))

	admin.Get("/actions", func(c *fiber.Ctx) error {
		return c.JSON(svc.Catalog.ListActions())
	})

	admin.Get("/accounts/:id", func(c *fiber.Ctx) error {
		acc, err := svc.Ledger.Get(c.Params("id"))
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(acc)
	})

	admin.Get("/withdrawals", func(c *fiber.Ctx) error {
		since, err := strconv.ParseInt(c.Query("since", "0"), 10, 64)
		if err != nil || since < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid since parameter"})
		}
		reqs := svc.Withdrawal.Log().Since(since)
		if reqs == nil {
			reqs = []models.WithdrawalRequest{}
		}
		return c.JSON(reqs)
	})

	// 👤 user routes: identity forwarded in X-User-ID
	user := app.Group("/s", middleware.UserContextMiddleware())

	user.Post("/start", func(c *fiber.Ctx) error {
		var req struct {
			ReferralCode string `json:"referral_code"`
		}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
			}
		}
		fc, err := svc.Referrals.OnFirstContact(middleware.UserID(c), req.ReferralCode)
		if err != nil {
			return writeDomainError(c, err)
		}
		monitoring.RecordFirstContact(fc)
		status := fiber.StatusOK
		if fc.Created {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(fiber.Map{
			"account":  fc.Account,
			"created":  fc.Created,
			"referred": fc.Referred,
		})
	})

	user.Get("/actions", func(c *fiber.Ctx) error {
		return c.JSON(svc.Catalog.ListActions())
	})

	user.Post("/earn", func(c *fiber.Ctx) error {
		var req struct {
			ActionID string `json:"action_id"`
		}
		if err := c.BodyParser(&req); err != nil || req.ActionID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "action_id is required"})
		}
		out, err := svc.Earning.Perform(middleware.UserID(c), req.ActionID, svc.Now())
		monitoring.RecordEarn(req.ActionID, out, err)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(out)
	})

	user.Get("/balance", func(c *fiber.Ctx) error {
		fc, err := svc.Referrals.OnFirstContact(middleware.UserID(c), "")
		if err != nil {
			return writeDomainError(c, err)
		}
		monitoring.RecordFirstContact(fc)
		acc := fc.Account
		return c.JSON(fiber.Map{
			"points":         acc.Points,
			"referral_count": acc.ReferralCount,
			"referral_code":  acc.ReferralCode,
			"eligibility":    svc.Withdrawal.CheckEligibility(acc.UserID),
		})
	})

	user.Post("/withdraw", func(c *fiber.Ctx) error {
		var req struct {
			Method string `json:"method"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		receipt, err := svc.Withdrawal.RequestWithdrawal(middleware.UserID(c), req.Method, svc.Now())
		monitoring.RecordWithdrawal(req.Method, err)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(receipt)
	})
}

// writeDomainError maps ledger errors onto HTTP responses.
func writeDomainError(c *fiber.Ctx, err error) error {
	var cooldown *services.CooldownError
	var insufficient *services.InsufficientError
	switch {
	case errors.As(err, &cooldown):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":             "on_cooldown",
			"action_id":         cooldown.ActionID,
			"remaining_seconds": cooldown.RemainingSeconds(),
		})
	case errors.As(err, &insufficient):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":    "insufficient_points",
			"required": insufficient.Required,
			"have":     insufficient.Have,
		})
	case errors.Is(err, services.ErrUnknownAction):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown_action"})
	case errors.Is(err, services.ErrUnknownMethod):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown_method"})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "account_not_found"})
	}
	log.Printf("❌ [API] unexpected error on %s: %v", c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}
