package main

import (
	"biblio/config"
	"biblio/database"
	"biblio/middleware"
	authRoutes "biblio/routers/authRoutes"
	bookRoutes "biblio/routers/bookRoutes"
	"biblio/utils"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	app := fiber.New(fiber.Config{
		// Leave headroom above the configured per-file limit for the
		// multipart framing and the optional cover image
		BodyLimit: int(config.AppConfig.MaxFileSize)*2 + 1024*1024,
	})

	app.Use(helmet.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Serve the frontend and uploaded files
	app.Static("/", "./public")
	app.Static("/uploads", "./uploads")

	authRoutes.SetupAuthRoutes(app)
	bookRoutes.SetupBookRoutes(app)

	// JSON 404 for unknown routes
	app.Use(func(c *fiber.Ctx) error {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Route not found!", nil)
	})

	// Nightly rating projection reconciliation
	scheduler := utils.InitializeSchedulers()
	defer scheduler.Stop()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
