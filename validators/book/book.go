package bookValidator

import (
	"biblio/middleware"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type UploadRequest struct {
	Title       string
	Author      string
	Genre       string
	Description string
}

type ListBooksRequest struct {
	Search string
	Genre  string
	Sort   string
	Page   int
	Limit  int
}

type AddCommentRequest struct {
	Comment string `json:"comment"`
	Rating  *int   `json:"rating"`
}

type ListCommentsRequest struct {
	Page  int
	Limit int
}

// Upload validates the multipart book upload form fields. The files
// themselves are checked in the controller after the metadata passes.
func Upload() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := &UploadRequest{
			Title:       strings.TrimSpace(c.FormValue("title")),
			Author:      strings.TrimSpace(c.FormValue("author")),
			Genre:       strings.TrimSpace(c.FormValue("genre")),
			Description: strings.TrimSpace(c.FormValue("description")),
		}

		errors := make(map[string]string)

		if len(reqData.Title) < 1 || len(reqData.Title) > 500 {
			errors["title"] = "Title is required (max 500 characters)!"
		}
		if len(reqData.Author) > 255 {
			errors["author"] = "Author must be at most 255 characters!"
		}
		if len(reqData.Genre) > 100 {
			errors["genre"] = "Genre must be at most 100 characters!"
		}
		if len(reqData.Description) > 5000 {
			errors["description"] = "Description must be at most 5000 characters!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedUpload", reqData)
		return c.Next()
	}
}

// ListBooks validates catalog listing query parameters and applies defaults
func ListBooks() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := &ListBooksRequest{
			Search: strings.TrimSpace(c.Query("search")),
			Genre:  strings.TrimSpace(c.Query("genre")),
			Sort:   c.Query("sort", "recent"),
			Page:   c.QueryInt("page", 1),
			Limit:  c.QueryInt("limit", 12),
		}

		errors := make(map[string]string)

		if reqData.Sort != "recent" && reqData.Sort != "rating" && reqData.Sort != "title" {
			errors["sort"] = "Sort must be one of: recent, rating, title!"
		}
		if reqData.Page < 1 {
			errors["page"] = "Page must be greater than 0!"
		}
		if reqData.Limit < 1 || reqData.Limit > 50 {
			errors["limit"] = "Limit must be between 1 and 50!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedListBooks", reqData)
		return c.Next()
	}
}

// AddComment validates a comment submission body
func AddComment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AddCommentRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Comment = strings.TrimSpace(reqData.Comment)
		if len(reqData.Comment) < 1 || len(reqData.Comment) > 2000 {
			errors["comment"] = "Comment must be between 1 and 2000 characters!"
		}
		if reqData.Rating == nil || *reqData.Rating < 1 || *reqData.Rating > 5 {
			errors["rating"] = "Rating must be between 1 and 5 stars!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAddComment", reqData)
		return c.Next()
	}
}

// ListComments validates comment listing query parameters and applies defaults
func ListComments() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := &ListCommentsRequest{
			Page:  c.QueryInt("page", 1),
			Limit: c.QueryInt("limit", 20),
		}

		errors := make(map[string]string)

		if reqData.Page < 1 {
			errors["page"] = "Page must be greater than 0!"
		}
		if reqData.Limit < 1 || reqData.Limit > 50 {
			errors["limit"] = "Limit must be between 1 and 50!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedListComments", reqData)
		return c.Next()
	}
}
