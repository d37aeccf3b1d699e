package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mferrier/booktracker/internal/analytics"
	"github.com/mferrier/booktracker/internal/entities"
	"github.com/mferrier/booktracker/internal/storage"
)

type StatsController struct {
	books *storage.BookStore
	goals *storage.GoalStore
}

func NewStatsController(books *storage.BookStore, goals *storage.GoalStore) *StatsController {
	return &StatsController{books: books, goals: goals}
}

type yearStats struct {
	Year            int                       `json:"year"`
	Totals          analytics.Totals          `json:"totals"`
	TopAuthors      []analytics.AuthorCount   `json:"top_authors"`
	TopGenres       []analytics.GenreCount    `json:"top_genres"`
	ByMonth         []analytics.MonthCount    `json:"by_month"`
	HighestRated    []entities.Book           `json:"highest_rated"`
	ReadingPace     float64                   `json:"reading_pace_days"`
	TrendingAuthors []analytics.Trend         `json:"trending_authors"`
	TrendingGenres  []analytics.Trend         `json:"trending_genres"`
	DNF             analytics.DNFStats        `json:"dnf"`
	Publishing      analytics.PublishingStats `json:"publishing"`
	ByFormat        map[entities.Format]int   `json:"by_format"`
	BySource        map[string]int            `json:"by_source"`
	Goal            *analytics.GoalProgress   `json:"goal,omitempty"`
	AvailableYears  []int                     `json:"available_years"`
}

// Year computes the whole analytics payload for one reporting year.
func (c *StatsController) Year(ctx *gin.Context) {
	year, err := strconv.Atoi(ctx.Param("year"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return
	}

	all, err := c.books.Books()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	books := analytics.FilterByYear(all, year)

	stats := yearStats{
		Year:            year,
		Totals:          analytics.ComputeTotals(books),
		TopAuthors:      analytics.TopAuthors(books, 5),
		TopGenres:       analytics.TopGenres(books, 5),
		ByMonth:         analytics.ByMonth(books),
		HighestRated:    analytics.HighestRated(books, 5),
		ReadingPace:     analytics.ReadingPace(books),
		TrendingAuthors: analytics.TrendingAuthors(books),
		TrendingGenres:  analytics.TrendingGenres(books),
		DNF:             analytics.ComputeDNFStats(books),
		Publishing:      analytics.ComputePublishingStats(books),
		ByFormat:        analytics.CountByFormat(books),
		BySource:        analytics.CountBySource(books),
		AvailableYears:  analytics.AvailableYears(all),
	}

	// Goal progress counts finished books only.
	completed := 0
	for _, b := range books {
		if !b.DidNotFinish {
			completed++
		}
	}
	goal, err := c.goals.GetYearlyGoal(year)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	stats.Goal = analytics.ComputeGoalProgress(goal, completed)

	ctx.JSON(http.StatusOK, stats)
}

// Years reports which reporting years the collection spans.
func (c *StatsController) Years(ctx *gin.Context) {
	all, err := c.books.Books()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"years": analytics.AvailableYears(all)})
}
