package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mferrier/booktracker/internal/importer"
	"github.com/mferrier/booktracker/internal/metadata"
	"github.com/mferrier/booktracker/internal/storage"
)

// Deps are the collaborators the API needs. Lookup may be nil when no
// Google Books access is configured; the lookup and cover-fetch features
// degrade gracefully.
type Deps struct {
	Books      *storage.BookStore
	Goals      *storage.GoalStore
	Lookup     *metadata.GoogleBooksClient
	CoverDelay time.Duration
}

// NewRouter wires all controllers onto a gin engine.
func NewRouter(deps Deps) *gin.Engine {
	router := gin.Default()

	health := NewHealthController()
	books := NewBooksController(deps.Books)

	var covers importer.CoverFetcher
	if deps.Lookup != nil {
		covers = deps.Lookup
	}
	imports := NewImportController(deps.Books, covers, deps.CoverDelay)
	exports := NewExportController(deps.Books)
	stats := NewStatsController(deps.Books, deps.Goals)
	goals := NewGoalsController(deps.Goals)
	lookup := NewLookupController(deps.Lookup)

	router.GET("/health", health.Status)

	api := router.Group("/api")
	{
		api.GET("/books", books.List)
		api.POST("/books", books.Create)
		api.GET("/books/:id", books.Get)
		api.PUT("/books/:id", books.Update)
		api.DELETE("/books/:id", books.Delete)

		api.POST("/import/preview", imports.Preview)
		api.POST("/import", imports.Import)
		api.POST("/import.json", imports.ImportJSON)
		api.GET("/export.csv", exports.CSV)
		api.GET("/export.json", exports.JSON)

		api.GET("/stats/years", stats.Years)
		api.GET("/stats/:year", stats.Year)
		api.GET("/goals/:year", goals.Get)
		api.PUT("/goals/:year", goals.Put)

		api.GET("/lookup", lookup.Search)
	}

	return router
}
