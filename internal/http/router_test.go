package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mferrier/booktracker/internal/entities"
	"github.com/mferrier/booktracker/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*gin.Engine, *storage.BookStore, *storage.GoalStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	client, err := storage.NewJSONFileStore(t.TempDir())
	require.NoError(t, err)
	books := storage.NewBookStore(client)
	goals := storage.NewGoalStore(client)

	return NewRouter(Deps{Books: books, Goals: goals}), books, goals
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router, _, _ := setupRouter(t)
	w := doJSON(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateAndListBooks(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(router, http.MethodPost, "/api/books", `{"title":"Dune","author":"Frank Herbert"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created entities.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.DateAdded)

	w = doJSON(router, http.MethodGet, "/api/books", "")
	require.Equal(t, http.StatusOK, w.Code)
	var listed []entities.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Dune", listed[0].Title)
}

func TestCreateRejectsMissingAuthor(t *testing.T) {
	router, _, _ := setupRouter(t)
	w := doJSON(router, http.MethodPost, "/api/books", `{"title":"Dune"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateDuplicateConflict(t *testing.T) {
	router, books, _ := setupRouter(t)
	_, err := books.AddBook(entities.Book{Title: "Dune", Author: "Frank Herbert", EndDate: "2023-05-01"})
	require.NoError(t, err)

	// Same title/author, no date on the candidate: unknown year matches.
	w := doJSON(router, http.MethodPost, "/api/books", `{"title":"dune","author":"FRANK HERBERT"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(router, http.MethodPost, "/api/books?force=true", `{"title":"dune","author":"FRANK HERBERT"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	all, err := books.Books()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateAndDeleteBook(t *testing.T) {
	router, books, _ := setupRouter(t)
	added, err := books.AddBook(entities.Book{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)

	w := doJSON(router, http.MethodPut, "/api/books/"+added.ID, `{"title":"Dune Messiah","author":"Frank Herbert"}`)
	require.Equal(t, http.StatusOK, w.Code)

	got, err := books.GetBookByID(added.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Dune Messiah", got.Title)

	w = doJSON(router, http.MethodDelete, "/api/books/"+added.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	got, err = books.GetBookByID(added.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

const importCSV = "Title,Author,End Date\n" +
	"Dune,Frank Herbert,2023-05-01\n" +
	"Hyperion,Dan Simmons,2023-06-01\n"

func TestImportPreviewAndImport(t *testing.T) {
	router, books, _ := setupRouter(t)
	_, err := books.AddBook(entities.Book{Title: "Dune", Author: "Frank Herbert", EndDate: "2023-05-01"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/import/preview", strings.NewReader(importCSV))
	req.Header.Set("Content-Type", "text/csv")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var preview struct {
		Unique     []previewCandidate `json:"unique"`
		Duplicates []previewCandidate `json:"duplicates"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &preview))
	require.Len(t, preview.Unique, 1)
	require.Len(t, preview.Duplicates, 1)
	assert.Equal(t, "Hyperion", preview.Unique[0].Title)
	assert.Equal(t, "Dune", preview.Duplicates[0].Title)

	req = httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader(importCSV))
	req.Header.Set("Content-Type", "text/csv")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp importResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Added)
	assert.Equal(t, 1, resp.Skipped)
	assert.Contains(t, resp.ResultsCSV, "Result")

	all, err := books.Books()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestImportJSON(t *testing.T) {
	router, books, _ := setupRouter(t)
	_, err := books.AddBook(entities.Book{Title: "Dune", Author: "Frank Herbert", EndDate: "2023-05-01"})
	require.NoError(t, err)

	body := `[{"title":"Dune","author":"Frank Herbert","endDate":"2023-05-01"},
	          {"title":"Hyperion","author":"Dan Simmons"}]`
	w := doJSON(router, http.MethodPost, "/api/import.json", body)
	require.Equal(t, http.StatusOK, w.Code)

	var summary struct {
		Added   int `json:"added"`
		Skipped int `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.Added)
	assert.Equal(t, 1, summary.Skipped)
}

func TestImportEmptyBody(t *testing.T) {
	router, _, _ := setupRouter(t)
	w := doJSON(router, http.MethodPost, "/api/import", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportCSV(t *testing.T) {
	router, books, _ := setupRouter(t)
	_, err := books.AddBook(entities.Book{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)

	w := doJSON(router, http.MethodGet, "/api/export.csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "book-tracker-")
	assert.Contains(t, w.Body.String(), "Dune")
}

func TestGoalsRoundTrip(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(router, http.MethodGet, "/api/goals/2023", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodPut, "/api/goals/2023", `{"target":52}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/goals/2023", "")
	require.Equal(t, http.StatusOK, w.Code)
	var goal entities.ReadingGoal
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &goal))
	assert.Equal(t, 52, goal.Target)
}

func TestGoalsRejectNonPositiveTarget(t *testing.T) {
	router, _, _ := setupRouter(t)
	w := doJSON(router, http.MethodPut, "/api/goals/2023", `{"target":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestYearStats(t *testing.T) {
	router, books, goals := setupRouter(t)
	require.NoError(t, books.SaveBooks([]entities.Book{
		{ID: "1", Title: "Dune", Author: "Frank Herbert", EndDate: "2023-03-15", Pages: 412, Rating: 5, Genre: "Sci-Fi"},
		{ID: "2", Title: "Hyperion", Author: "Dan Simmons", EndDate: "2023-07-02", Pages: 482, Rating: 4, Genre: "Sci-Fi"},
		{ID: "3", Title: "Old One", Author: "Someone", EndDate: "2020-01-01"},
	}))
	require.NoError(t, goals.SetYearlyGoal(2023, 10))

	w := doJSON(router, http.MethodGet, "/api/stats/2023", "")
	require.Equal(t, http.StatusOK, w.Code)

	var stats yearStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Totals.Count)
	assert.Equal(t, 894, stats.Totals.Pages)
	require.Len(t, stats.ByMonth, 12)
	assert.Equal(t, 1, stats.ByMonth[2].Count) // March
	require.NotNil(t, stats.Goal)
	assert.Equal(t, 20, stats.Goal.Percent)
	assert.Equal(t, []int{2023, 2020}, stats.AvailableYears)
}

func TestStatsInvalidYear(t *testing.T) {
	router, _, _ := setupRouter(t)
	w := doJSON(router, http.MethodGet, "/api/stats/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLookupUnconfigured(t *testing.T) {
	router, _, _ := setupRouter(t)
	w := doJSON(router, http.MethodGet, "/api/lookup?q=dune", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
