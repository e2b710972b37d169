package auth

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// OptionalAuthMiddleware attaches the principal when credentials are valid and
// otherwise lets the request continue as anonymous.
func (a *Authenticator) OptionalAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := a.resolve(c)
		if err != nil {
			if !errors.Is(err, errNoCredentials) {
				log.Printf("[INFO] OptionalAuth %s: continuing as anonymous (%v)", c.Path(), err)
			}
			return c.Next()
		}
		storePrincipal(c, p)
		return c.Next()
	}
}
