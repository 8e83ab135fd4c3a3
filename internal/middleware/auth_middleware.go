package middleware

import (
	"log"
	"strings"

	"github.com/fadilmartias/hireprep/internal/util"
	"github.com/gofiber/fiber/v2"
)

const AdminLocalKey = "admin_subject"

type TokenVerifier interface {
	VerifyToken(token string) (subject string, err error)
}

// AdminAuth requires "Authorization: Bearer <token>" signed by the admin issuer.
func AdminAuth(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return util.HandleError(c, util.NewUnauthorizedError("missing bearer token"))
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		subject, err := verifier.VerifyToken(token)
		if err != nil {
			log.Printf("admin auth rejected on %s: %v", c.Path(), err)
			return util.HandleError(c, util.NewUnauthorizedError("invalid or expired token"))
		}
		c.Locals(AdminLocalKey, subject)
		return c.Next()
	}
}
