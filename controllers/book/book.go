package bookController

import (
	"biblio/config"
	"biblio/database"
	"biblio/middleware"
	"biblio/models"
	"biblio/utils"
	bookValidator "biblio/validators/book"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// bookWithMeta is a catalog row: the book plus its uploader's name and a live
// comment count. The count is computed fresh per query and is independent of
// the cached total_ratings column.
type bookWithMeta struct {
	models.Book
	UploaderName string `json:"uploaderName"`
	CommentCount int64  `json:"commentCount"`
}

type bookWithCount struct {
	models.Book
	CommentCount int64 `json:"commentCount"`
}

// escapeLikePattern escapes LIKE wildcards in user input
func escapeLikePattern(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// applyCatalogFilters adds the search and genre predicates shared by the page
// query and the total count query
func applyCatalogFilters(query *gorm.DB, search, genre string) *gorm.DB {
	if search != "" {
		// One escaped pattern reused for all three columns, so they always
		// match the identical term
		pattern := "%" + strings.ToLower(escapeLikePattern(search)) + "%"
		query = query.Where(
			`LOWER(books.title) LIKE ? ESCAPE '\' OR LOWER(books.author) LIKE ? ESCAPE '\' OR LOWER(books.description) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern)
	}
	if genre != "" {
		query = query.Where("books.genre = ?", genre)
	}
	return query
}

// UploadBook stores an uploaded PDF (plus optional cover image) and creates
// the catalog entry
func UploadBook(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	reqData := c.Locals("validatedUpload").(*bookValidator.UploadRequest)

	pdfFile, err := c.FormFile("pdf")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "A PDF file is required!", nil)
	}
	if pdfFile.Size > config.AppConfig.MaxFileSize {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "File too large. Maximum size: 50MB", nil)
	}
	if !utils.IsPDF(pdfFile) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Only PDF files are allowed for books!", nil)
	}

	var coverPath string
	if coverFile, err := c.FormFile("cover"); err == nil {
		if coverFile.Size > config.AppConfig.MaxFileSize {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Cover too large. Maximum size: 50MB", nil)
		}
		if !utils.IsAllowedCoverImage(coverFile) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Only JPEG, PNG or WEBP images are allowed for covers!", nil)
		}
		coverPath, err = utils.SaveUploadedFile(coverFile, filepath.Join(config.AppConfig.UploadDir, "covers"))
		if err != nil {
			log.Printf("Error storing cover image: %v", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store uploaded file!", nil)
		}
	}

	filePath, err := utils.SaveUploadedFile(pdfFile, filepath.Join(config.AppConfig.UploadDir, "books"))
	if err != nil {
		log.Printf("Error storing book file: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store uploaded file!", nil)
	}

	book := models.Book{
		UserID:      userId,
		Title:       reqData.Title,
		Author:      reqData.Author,
		Genre:       reqData.Genre,
		Description: reqData.Description,
		FilePath:    filePath,
		FileSize:    pdfFile.Size,
		CoverImage:  coverPath,
	}

	if err := database.Database.Db.Create(&book).Error; err != nil {
		log.Printf("Error saving book to database: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to publish book!", nil)
	}

	if book.Description == "" {
		go utils.EnrichBookDescription(book.ID, book.Title, book.Author)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Book published successfully!", book)
}

// ListBooks returns the filtered, sorted, paginated catalog page
func ListBooks(c *fiber.Ctx) error {
	reqData := c.Locals("validatedListBooks").(*bookValidator.ListBooksRequest)
	offset := (reqData.Page - 1) * reqData.Limit

	db := database.Database.Db

	query := db.Model(&models.Book{}).
		Select("books.*, users.name AS uploader_name, COUNT(comments.id) AS comment_count").
		Joins("JOIN users ON users.id = books.user_id").
		Joins("LEFT JOIN comments ON comments.book_id = books.id AND comments.deleted_at IS NULL").
		Group("books.id, users.name")
	query = applyCatalogFilters(query, reqData.Search, reqData.Genre)

	switch reqData.Sort {
	case "rating":
		query = query.Order("books.average_rating DESC NULLS LAST").
			Order("books.total_ratings DESC").
			Order("books.upload_date DESC")
	case "title":
		query = query.Order("books.title ASC")
	default: // recent
		query = query.Order("books.upload_date DESC")
	}

	books := make([]bookWithMeta, 0, reqData.Limit)
	if err := query.Offset(offset).Limit(reqData.Limit).Scan(&books).Error; err != nil {
		log.Printf("Error listing books: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch books!", nil)
	}

	// Total count reflects the same filters but not the sort or page window
	var totalBooks int64
	countQuery := applyCatalogFilters(db.Model(&models.Book{}), reqData.Search, reqData.Genre)
	if err := countQuery.Count(&totalBooks).Error; err != nil {
		log.Printf("Error counting books: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch books!", nil)
	}

	totalPages := (totalBooks + int64(reqData.Limit) - 1) / int64(reqData.Limit)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Books fetched!", fiber.Map{
		"books": books,
		"pagination": fiber.Map{
			"currentPage":  reqData.Page,
			"totalPages":   totalPages,
			"totalBooks":   totalBooks,
			"booksPerPage": reqData.Limit,
		},
	})
}

// GetGenres returns the distinct non-empty genres with per-genre book counts
func GetGenres(c *fiber.Ctx) error {
	type genreCount struct {
		Genre string `json:"genre"`
		Count int64  `json:"count"`
	}

	genres := make([]genreCount, 0)
	if err := database.Database.Db.Model(&models.Book{}).
		Select("genre, COUNT(*) AS count").
		Where("genre IS NOT NULL AND genre != ''").
		Group("genre").
		Order("count DESC").
		Order("genre ASC").
		Scan(&genres).Error; err != nil {
		log.Printf("Error fetching genres: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch genres!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Genres fetched!", fiber.Map{
		"genres": genres,
	})
}

// GetBookDetails returns one book with uploader info and live comment count
func GetBookDetails(c *fiber.Ctx) error {
	bookId := c.Params("id")

	type bookDetails struct {
		models.Book
		UploaderName   string    `json:"uploaderName"`
		UploaderEmail  string    `json:"uploaderEmail"`
		UploaderJoined time.Time `json:"uploaderJoined"`
		CommentCount   int64     `json:"commentCount"`
	}

	var book bookDetails
	result := database.Database.Db.Model(&models.Book{}).
		Select("books.*, users.name AS uploader_name, users.email AS uploader_email, users.created_at AS uploader_joined, COUNT(comments.id) AS comment_count").
		Joins("JOIN users ON users.id = books.user_id").
		Joins("LEFT JOIN comments ON comments.book_id = books.id AND comments.deleted_at IS NULL").
		Where("books.id = ?", bookId).
		Group("books.id, users.name, users.email, users.created_at").
		Scan(&book)
	if result.Error != nil {
		log.Printf("Error fetching book details: %v", result.Error)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch book details!", nil)
	}
	if result.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Book not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Book fetched!", fiber.Map{
		"book": book,
	})
}

// GetMyBooks returns all books uploaded by the authenticated user, newest
// first, unpaginated
func GetMyBooks(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	books := make([]bookWithCount, 0)
	if err := database.Database.Db.Model(&models.Book{}).
		Select("books.*, COUNT(comments.id) AS comment_count").
		Joins("LEFT JOIN comments ON comments.book_id = books.id AND comments.deleted_at IS NULL").
		Where("books.user_id = ?", userId).
		Group("books.id").
		Order("books.upload_date DESC").
		Scan(&books).Error; err != nil {
		log.Printf("Error fetching user books: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch your books!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Books fetched!", fiber.Map{
		"books": books,
	})
}
