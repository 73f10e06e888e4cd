package bookController_test

import (
	"biblio/config"
	"biblio/database"
	"biblio/middleware"
	"biblio/models"
	bookRoutes "biblio/routers/bookRoutes"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type statsPayload struct {
	BookStats struct {
		AverageRating *float64 `json:"averageRating"`
		TotalRatings  int      `json:"totalRatings"`
	} `json:"bookStats"`
}

func setupTest(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // one shared in-memory connection

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Book{}, &models.Comment{}))
	database.Database = database.DbInstance{Db: db}

	config.AppConfig = &config.Config{
		Port:           "3000",
		JWTKey:         "test-secret",
		SaltRound:      4,
		UploadDir:      t.TempDir(),
		MaxFileSize:    52428800,
		OpenLibraryURL: "", // disable enrichment in tests
	}

	app := fiber.New()
	bookRoutes.SetupBookRoutes(app)
	return app
}

func createUser(t *testing.T, name, email string) models.User {
	t.Helper()
	user := models.User{Name: name, Email: email, Password: "irrelevant"}
	require.NoError(t, database.Database.Db.Create(&user).Error)
	return user
}

func createBook(t *testing.T, userID uint, title string) models.Book {
	t.Helper()
	book := models.Book{UserID: userID, Title: title, FilePath: "uploads/books/" + title + ".pdf"}
	require.NoError(t, database.Database.Db.Create(&book).Error)
	return book
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Email)
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, app *fiber.App, method, url, token string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func bookAggregate(t *testing.T, bookID uint) (*float64, int) {
	t.Helper()
	var book models.Book
	require.NoError(t, database.Database.Db.First(&book, bookID).Error)
	return book.AverageRating, book.TotalRatings
}

func addComment(t *testing.T, app *fiber.App, bookID uint, token string, text string, rating int) (*http.Response, envelope) {
	t.Helper()
	return doJSON(t, app, "POST", fmt.Sprintf("/api/books/%d/comments", bookID),
		token, map[string]interface{}{"comment": text, "rating": rating})
}

func TestAddCommentRecalculatesRating(t *testing.T) {
	app := setupTest(t)

	owner := createUser(t, "Alice", "alice@example.com")
	book := createBook(t, owner.ID, "Dune")
	userB := createUser(t, "Bob", "bob@example.com")
	userC := createUser(t, "Carol", "carol@example.com")

	// B rates 5 -> 5.0 / 1
	resp, env := addComment(t, app, book.ID, tokenFor(t, userB), "Loved it", 5)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, env.Status)

	var payload statsPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	require.NotNil(t, payload.BookStats.AverageRating)
	assert.Equal(t, 5.0, *payload.BookStats.AverageRating)
	assert.Equal(t, 1, payload.BookStats.TotalRatings)

	// C rates 3 -> 4.0 / 2
	resp, env = addComment(t, app, book.ID, tokenFor(t, userC), "It was fine", 3)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	require.NotNil(t, payload.BookStats.AverageRating)
	assert.Equal(t, 4.0, *payload.BookStats.AverageRating)
	assert.Equal(t, 2, payload.BookStats.TotalRatings)

	// B deletes their comment -> 3.0 / 1
	var bComment models.Comment
	require.NoError(t, database.Database.Db.
		Where("book_id = ? AND user_id = ?", book.ID, userB.ID).
		First(&bComment).Error)

	resp, env = doJSON(t, app, "DELETE", fmt.Sprintf("/api/books/comments/%d", bComment.ID), tokenFor(t, userB), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.Status)

	avg, total := bookAggregate(t, book.ID)
	require.NotNil(t, avg)
	assert.Equal(t, 3.0, *avg)
	assert.Equal(t, 1, total)
}

func TestAddCommentDuplicateLeavesAggregateUnchanged(t *testing.T) {
	app := setupTest(t)

	owner := createUser(t, "Alice", "alice@example.com")
	book := createBook(t, owner.ID, "Dune")
	user := createUser(t, "Bob", "bob@example.com")
	token := tokenFor(t, user)

	resp, _ := addComment(t, app, book.ID, token, "First impressions", 4)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, env := addComment(t, app, book.ID, token, "Changed my mind", 1)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.False(t, env.Status)

	avg, total := bookAggregate(t, book.ID)
	require.NotNil(t, avg)
	assert.Equal(t, 4.0, *avg)
	assert.Equal(t, 1, total)

	var count int64
	database.Database.Db.Model(&models.Comment{}).Where("book_id = ?", book.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestAddCommentBookNotFound(t *testing.T) {
	app := setupTest(t)
	user := createUser(t, "Bob", "bob@example.com")

	resp, env := addComment(t, app, 9999, tokenFor(t, user), "Ghost book", 5)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, env.Status)
}

func TestAddCommentValidationCollectsAllViolations(t *testing.T) {
	app := setupTest(t)

	owner := createUser(t, "Alice", "alice@example.com")
	book := createBook(t, owner.ID, "Dune")
	user := createUser(t, "Bob", "bob@example.com")

	resp, env := doJSON(t, app, "POST", fmt.Sprintf("/api/books/%d/comments", book.ID),
		tokenFor(t, user), map[string]interface{}{"comment": "", "rating": 6})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var fieldErrors map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &fieldErrors))
	assert.Contains(t, fieldErrors, "comment")
	assert.Contains(t, fieldErrors, "rating")

	avg, total := bookAggregate(t, book.ID)
	assert.Nil(t, avg)
	assert.Equal(t, 0, total)
}

func TestAddCommentRequiresAuth(t *testing.T) {
	app := setupTest(t)

	owner := createUser(t, "Alice", "alice@example.com")
	book := createBook(t, owner.ID, "Dune")

	resp, _ := doJSON(t, app, "POST", fmt.Sprintf("/api/books/%d/comments", book.ID),
		"", map[string]interface{}{"comment": "Hello", "rating": 5})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDeleteCommentNotOwnedReportsNotFound(t *testing.T) {
	app := setupTest(t)

	owner := createUser(t, "Alice", "alice@example.com")
	book := createBook(t, owner.ID, "Dune")
	author := createUser(t, "Bob", "bob@example.com")
	other := createUser(t, "Carol", "carol@example.com")

	resp, _ := addComment(t, app, book.ID, tokenFor(t, author), "Mine", 5)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var comment models.Comment
	require.NoError(t, database.Database.Db.
		Where("book_id = ? AND user_id = ?", book.ID, author.ID).
		First(&comment).Error)

	// Someone else's comment and a missing comment produce the same answer
	resp, env := doJSON(t, app, "DELETE", fmt.Sprintf("/api/books/comments/%d", comment.ID), tokenFor(t, other), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, env.Status)

	resp, _ = doJSON(t, app, "DELETE", "/api/books/comments/424242", tokenFor(t, other), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	avg, total := bookAggregate(t, book.ID)
	require.NotNil(t, avg)
	assert.Equal(t, 5.0, *avg)
	assert.Equal(t, 1, total)
}

func TestDeleteLastCommentResetsAggregate(t *testing.T) {
	app := setupTest(t)

	owner := createUser(t, "Alice", "alice@example.com")
	book := createBook(t, owner.ID, "Dune")
	user := createUser(t, "Bob", "bob@example.com")
	token := tokenFor(t, user)

	resp, _ := addComment(t, app, book.ID, token, "Only one", 4)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var comment models.Comment
	require.NoError(t, database.Database.Db.
		Where("book_id = ? AND user_id = ?", book.ID, user.ID).
		First(&comment).Error)

	resp, _ = doJSON(t, app, "DELETE", fmt.Sprintf("/api/books/comments/%d", comment.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	avg, total := bookAggregate(t, book.ID)
	require.NotNil(t, avg)
	assert.Equal(t, 0.0, *avg)
	assert.Equal(t, 0, total)

	// The author may comment again after deleting
	resp, _ = addComment(t, app, book.ID, token, "Round two", 2)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestListCommentsNewestFirstPaginated(t *testing.T) {
	app := setupTest(t)

	owner := createUser(t, "Alice", "alice@example.com")
	book := createBook(t, owner.ID, "Dune")

	for i := 0; i < 5; i++ {
		user := createUser(t, fmt.Sprintf("Reader %d", i), fmt.Sprintf("reader%d@example.com", i))
		resp, _ := addComment(t, app, book.ID, tokenFor(t, user), fmt.Sprintf("comment %d", i), 3)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	// Spread creation times so newest-first ordering is unambiguous
	var all []models.Comment
	require.NoError(t, database.Database.Db.Where("book_id = ?", book.ID).Order("id ASC").Find(&all).Error)
	base := time.Now().Add(-time.Hour)
	for i, cm := range all {
		require.NoError(t, database.Database.Db.Model(&models.Comment{}).
			Where("id = ?", cm.ID).
			Update("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}

	resp, env := doJSON(t, app, "GET", fmt.Sprintf("/api/books/%d/comments?page=1&limit=2", book.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Comments []struct {
			ID       uint   `json:"ID"`
			Comment  string `json:"comment"`
			UserName string `json:"userName"`
		} `json:"comments"`
		Pagination struct {
			CurrentPage     int   `json:"currentPage"`
			TotalPages      int   `json:"totalPages"`
			TotalComments   int64 `json:"totalComments"`
			CommentsPerPage int   `json:"commentsPerPage"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))

	require.Len(t, payload.Comments, 2)
	// Newest first: IDs descend because inserts are sequential
	assert.Greater(t, payload.Comments[0].ID, payload.Comments[1].ID)
	assert.NotEmpty(t, payload.Comments[0].UserName)

	assert.Equal(t, 1, payload.Pagination.CurrentPage)
	assert.Equal(t, 3, payload.Pagination.TotalPages)
	assert.EqualValues(t, 5, payload.Pagination.TotalComments)
	assert.Equal(t, 2, payload.Pagination.CommentsPerPage)
}
