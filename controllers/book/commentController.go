package bookController

import (
	"biblio/database"
	"biblio/middleware"
	"biblio/models"
	"biblio/utils"
	bookValidator "biblio/validators/book"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// bookStats mirrors the denormalized rating projection on books
type bookStats struct {
	AverageRating *float64 `json:"averageRating"`
	TotalRatings  int      `json:"totalRatings"`
}

type commentResponse struct {
	models.Comment
	UserName string `json:"userName"`
}

// AddComment submits a comment-plus-rating for a book and updates the book's
// rating projection in the same transaction
func AddComment(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	userName, _ := c.Locals("userName").(string)
	bookId := c.Params("id")
	reqData := c.Locals("validatedAddComment").(*bookValidator.AddCommentRequest)

	db := database.Database.Db

	// Check if book exists
	var book models.Book
	if err := db.Where("id = ?", bookId).First(&book).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Book not found!", nil)
	}

	// One comment per user per book
	var existing models.Comment
	if err := db.Where("book_id = ? AND user_id = ? AND deleted_at IS NULL", book.ID, userId).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "You have already commented on this book. Edit your previous comment.", nil)
	}

	comment := models.Comment{
		BookID:  book.ID,
		UserID:  userId,
		Comment: reqData.Comment,
		Rating:  *reqData.Rating,
	}

	// The comment insert and the projection recompute commit or roll back
	// together: a comment can never exist alongside a stale aggregate
	var stats bookStats
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		if err := utils.RecalculateBookRating(tx, book.ID); err != nil {
			return err
		}
		return tx.Model(&models.Book{}).
			Select("average_rating, total_ratings").
			Where("id = ?", book.ID).
			Scan(&stats).Error
	})
	if err != nil {
		log.Printf("Error adding comment: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add comment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Comment added successfully!", fiber.Map{
		"comment":   commentResponse{Comment: comment, UserName: userName},
		"bookStats": stats,
	})
}

// GetBookComments returns a book's comments, newest first, paginated
func GetBookComments(c *fiber.Ctx) error {
	bookId := c.Params("id")
	reqData := c.Locals("validatedListComments").(*bookValidator.ListCommentsRequest)
	offset := (reqData.Page - 1) * reqData.Limit

	db := database.Database.Db

	var totalComments int64
	db.Model(&models.Comment{}).Where("book_id = ?", bookId).Count(&totalComments)

	var comments []models.Comment
	if err := db.Where("book_id = ?", bookId).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, name") // Only fetch name
		}).
		Order("created_at DESC").
		Offset(offset).
		Limit(reqData.Limit).
		Find(&comments).Error; err != nil {
		log.Printf("Error fetching comments: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch comments!", nil)
	}

	response := make([]commentResponse, 0, len(comments))
	for _, cm := range comments {
		response = append(response, commentResponse{Comment: cm, UserName: cm.User.Name})
	}

	totalPages := (totalComments + int64(reqData.Limit) - 1) / int64(reqData.Limit)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Comments fetched!", fiber.Map{
		"comments": response,
		"pagination": fiber.Map{
			"currentPage":     reqData.Page,
			"totalPages":      totalPages,
			"totalComments":   totalComments,
			"commentsPerPage": reqData.Limit,
		},
	})
}

// DeleteComment removes the requester's own comment and updates the book's
// rating projection in the same transaction
func DeleteComment(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	commentId := c.Params("commentId")

	db := database.Database.Db

	// Absent and not-owned are reported identically so comment existence is
	// not leaked to other users
	var comment models.Comment
	if err := db.Where("id = ? AND user_id = ?", commentId, userId).First(&comment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Comment not found or you don't have permission to delete it!", nil)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&comment).Error; err != nil {
			return err
		}
		return utils.RecalculateBookRating(tx, comment.BookID)
	})
	if err != nil {
		log.Printf("Error deleting comment: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete comment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Comment deleted successfully!", nil)
}
