// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
)

// UserContextMiddleware extracts the chat user identity forwarded by the gateway or mini app.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// c.Get aliases the request buffer; the id outlives the request as a ledger key
		userID := fiberutils.CopyString(strings.TrimSpace(c.Get("X-User-ID")))
		if userID == "" {
			log.Printf("❌ [USER_CTX] X-User-ID missing on %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID: request must carry the chat user identity",
			})
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}

// UserID returns the identity stored by UserContextMiddleware.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
