package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mferrier/booktracker/internal/csvcodec"
	"github.com/mferrier/booktracker/internal/entities"
	"github.com/mferrier/booktracker/internal/importer"
	"github.com/mferrier/booktracker/internal/storage"
)

type ImportController struct {
	books      *storage.BookStore
	covers     importer.CoverFetcher
	coverDelay time.Duration
}

func NewImportController(books *storage.BookStore, covers importer.CoverFetcher, coverDelay time.Duration) *ImportController {
	return &ImportController{books: books, covers: covers, coverDelay: coverDelay}
}

type previewCandidate struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	Author string `json:"author"`
}

// Preview decodes an uploaded CSV and reports the unique/duplicate split so
// the caller can review before committing.
func (c *ImportController) Preview(ctx *gin.Context) {
	text, ok := readCSVUpload(ctx)
	if !ok {
		return
	}

	pipeline := importer.NewPipeline(c.books)
	if err := pipeline.Upload(text); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, importer.ErrNoBooks) {
			status = http.StatusUnprocessableEntity
		}
		ctx.JSON(status, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"unique":     toPreview(pipeline.Unique()),
		"duplicates": toPreview(pipeline.Duplicates()),
	})
}

type importRequest struct {
	FetchCovers       bool  `form:"fetch_covers"`
	IncludeDuplicates []int `form:"include_duplicates"`
}

type importResponse struct {
	importer.Summary
	ResultsCSV string `json:"results_csv,omitempty"`
}

// Import runs the whole pipeline in one request: upload, duplicate
// selection from the include_duplicates parameter, optional cover fetch,
// merge and persist. The response carries the summary plus the annotated
// results CSV.
func (c *ImportController) Import(ctx *gin.Context) {
	var req importRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	text, ok := readCSVUpload(ctx)
	if !ok {
		return
	}

	opts := []importer.Option{importer.WithCoverDelay(c.coverDelay)}
	if c.covers != nil {
		opts = append(opts, importer.WithCoverFetcher(c.covers))
	}
	pipeline := importer.NewPipeline(c.books, opts...)

	if err := pipeline.Upload(text); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, importer.ErrNoBooks) {
			status = http.StatusUnprocessableEntity
		}
		ctx.JSON(status, gin.H{"error": err.Error()})
		return
	}
	if err := pipeline.SelectDuplicates(req.IncludeDuplicates); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := pipeline.Import(ctx.Request.Context(), req.FetchCovers && c.covers != nil)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := importResponse{Summary: summary}
	if results, err := pipeline.ResultsCSV(); err == nil {
		resp.ResultsCSV = results
	}
	ctx.JSON(http.StatusOK, resp)
}

// ImportJSON merges a JSON array of books through the same pipeline the
// CSV import uses, so duplicate detection and finalization apply equally.
func (c *ImportController) ImportJSON(ctx *gin.Context) {
	var req importRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var candidates []entities.Book
	if err := ctx.ShouldBindJSON(&candidates); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid book list: " + err.Error()})
		return
	}

	pipeline := importer.NewPipeline(c.books)
	if err := pipeline.UploadCandidates(candidates); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, importer.ErrNoBooks) {
			status = http.StatusUnprocessableEntity
		}
		ctx.JSON(status, gin.H{"error": err.Error()})
		return
	}
	if err := pipeline.SelectDuplicates(req.IncludeDuplicates); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := pipeline.Import(ctx.Request.Context(), false)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, summary)
}

// readCSVUpload accepts either a multipart "csv_file" field or a raw
// text/csv request body.
func readCSVUpload(ctx *gin.Context) (string, bool) {
	if file, _, err := ctx.Request.FormFile("csv_file"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "read upload: " + err.Error()})
			return "", false
		}
		return string(data), true
	}

	data, err := io.ReadAll(ctx.Request.Body)
	if err != nil || len(data) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "no CSV provided"})
		return "", false
	}
	return string(data), true
}

func toPreview(rows []csvcodec.Row) []previewCandidate {
	out := make([]previewCandidate, len(rows))
	for i, r := range rows {
		out[i] = previewCandidate{Index: r.Index, Title: r.Book.Title, Author: r.Book.Author}
	}
	return out
}

type ExportController struct {
	books *storage.BookStore
}

func NewExportController(books *storage.BookStore) *ExportController {
	return &ExportController{books: books}
}

// CSV streams the whole library as a CSV download.
func (c *ExportController) CSV(ctx *gin.Context) {
	books, err := c.books.Books()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	name := fmt.Sprintf("book-tracker-%s.csv", time.Now().Format("2006-01-02"))
	ctx.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csvcodec.Encode(books)))
}

// JSON streams the library as a JSON document, matching the original app's
// JSON export.
func (c *ExportController) JSON(ctx *gin.Context) {
	books, err := c.books.Books()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	name := fmt.Sprintf("book-tracker-%s.json", time.Now().Format("2006-01-02"))
	ctx.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	ctx.JSON(http.StatusOK, books)
}
