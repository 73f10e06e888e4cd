package bookValidator

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run sends a request through the validator and captures what it stashed
// in Locals for the controller
func run(t *testing.T, handler fiber.Handler, localsKey, method, url string) (*http.Response, interface{}) {
	t.Helper()

	var captured interface{}
	app := fiber.New()
	app.Add(method, "/books", handler, func(c *fiber.Ctx) error {
		captured = c.Locals(localsKey)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(method, url, nil), -1)
	require.NoError(t, err)
	return resp, captured
}

func fieldErrors(t *testing.T, resp *http.Response) map[string]string {
	t.Helper()

	var env struct {
		Data map[string]string `json:"data"`
	}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &env))
	return env.Data
}

func TestListBooksDefaults(t *testing.T) {
	resp, captured := run(t, ListBooks(), "validatedListBooks", "GET", "/books")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reqData := captured.(*ListBooksRequest)
	assert.Equal(t, "recent", reqData.Sort)
	assert.Equal(t, 1, reqData.Page)
	assert.Equal(t, 12, reqData.Limit)
	assert.Empty(t, reqData.Search)
	assert.Empty(t, reqData.Genre)
}

func TestListBooksTrimsSearch(t *testing.T) {
	resp, captured := run(t, ListBooks(), "validatedListBooks", "GET", "/books?search=+dune+&genre=+Sci-Fi+")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reqData := captured.(*ListBooksRequest)
	assert.Equal(t, "dune", reqData.Search)
	assert.Equal(t, "Sci-Fi", reqData.Genre)
}

func TestListBooksCollectsAllViolations(t *testing.T) {
	resp, captured := run(t, ListBooks(), "validatedListBooks", "GET", "/books?sort=stars&page=-1&limit=200")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Nil(t, captured)

	errs := fieldErrors(t, resp)
	assert.Contains(t, errs, "sort")
	assert.Contains(t, errs, "page")
	assert.Contains(t, errs, "limit")
}

func TestListCommentsDefaults(t *testing.T) {
	resp, captured := run(t, ListComments(), "validatedListComments", "GET", "/books")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reqData := captured.(*ListCommentsRequest)
	assert.Equal(t, 1, reqData.Page)
	assert.Equal(t, 20, reqData.Limit)
}

func TestListCommentsLimitCapped(t *testing.T) {
	resp, _ := run(t, ListComments(), "validatedListComments", "GET", "/books?limit=51")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	errs := fieldErrors(t, resp)
	assert.Contains(t, errs, "limit")
}
