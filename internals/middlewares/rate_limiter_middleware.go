package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
)

func newIPLimiter(max int, window time.Duration, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return helper.JsonError(c, fiber.StatusTooManyRequests, message)
		},
	})
}

// Global limiter for every /api route
func GlobalRateLimiter() fiber.Handler {
	return newIPLimiter(100, time.Minute, "too many requests, please try again later")
}

func LoginRateLimiter() fiber.Handler {
	return newIPLimiter(5, time.Minute, "too many login attempts, please wait a moment")
}

func RegisterRateLimiter() fiber.Handler {
	return newIPLimiter(3, 5*time.Minute, "too many sign-up attempts, please wait a few minutes")
}

func ForgotPasswordRateLimiter() fiber.Handler {
	return newIPLimiter(2, 10*time.Minute, "too many password reset requests, try again in 10 minutes")
}

// Public write endpoints (registrations, consultations)
func SubmissionRateLimiter() fiber.Handler {
	return newIPLimiter(10, time.Minute, "too many submissions, please slow down")
}
