package bookRoutes

import (
	bookController "biblio/controllers/book"
	"biblio/middleware"
	bookValidator "biblio/validators/book"

	"github.com/gofiber/fiber/v2"
)

// SetupBookRoutes sets up catalog, upload and comment routes
func SetupBookRoutes(app *fiber.App) {
	bookGroup := app.Group("/api/books")

	// Public catalog (specific routes MUST come before /:id)
	bookGroup.Get("/", bookValidator.ListBooks(), bookController.ListBooks)
	bookGroup.Get("/genres", bookController.GetGenres)

	// Upload (authenticated)
	bookGroup.Post("/upload", middleware.JWTMiddleware, bookValidator.Upload(), bookController.UploadBook)

	// Own books (authenticated)
	bookGroup.Get("/user/my-books", middleware.JWTMiddleware, bookController.GetMyBooks)

	// Comments
	bookGroup.Post("/:id/comments", middleware.JWTMiddleware, bookValidator.AddComment(), bookController.AddComment)
	bookGroup.Get("/:id/comments", bookValidator.ListComments(), bookController.GetBookComments)
	bookGroup.Delete("/comments/:commentId", middleware.JWTMiddleware, bookController.DeleteComment)

	// Get book by ID (MUST be last - catches all /:id patterns)
	bookGroup.Get("/:id", bookController.GetBookDetails)
}
