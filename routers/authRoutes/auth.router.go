package authRoutes

import (
	authController "biblio/controllers/auth"
	"biblio/middleware"
	authValidator "biblio/validators/auth"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// SetupAuthRoutes sets up registration, login and token verification routes
func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/api/auth")

	// Brute-force protection: per-IP limits on the credential endpoints
	registerLimiter := limiter.New(limiter.Config{
		Max:        3,
		Expiration: time.Hour,
		LimitReached: func(c *fiber.Ctx) error {
			return middleware.JsonResponse(c, fiber.StatusTooManyRequests, false, "Too many registration attempts. Try again later.", nil)
		},
	})
	loginLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 15 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return middleware.JsonResponse(c, fiber.StatusTooManyRequests, false, "Too many login attempts. Try again in 15 minutes.", nil)
		},
	})

	authGroup.Post("/register", registerLimiter, authValidator.Register(), authController.Register)
	authGroup.Post("/login", loginLimiter, authValidator.Login(), authController.Login)
	authGroup.Get("/verify", middleware.JWTMiddleware, authController.Verify)
}
