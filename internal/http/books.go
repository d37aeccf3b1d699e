// Package http exposes the tracker core over a small JSON API. This is the
// surface the UI layer talks to; no domain logic lives here.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mferrier/booktracker/internal/dates"
	"github.com/mferrier/booktracker/internal/dedup"
	"github.com/mferrier/booktracker/internal/entities"
	"github.com/mferrier/booktracker/internal/storage"
)

type BooksController struct {
	books *storage.BookStore
}

func NewBooksController(books *storage.BookStore) *BooksController {
	return &BooksController{books: books}
}

func (c *BooksController) List(ctx *gin.Context) {
	books, err := c.books.Books()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, books)
}

func (c *BooksController) Get(ctx *gin.Context) {
	book, err := c.books.GetBookByID(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if book == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}
	ctx.JSON(http.StatusOK, book)
}

// Create adds a single book. Unless force=true, a title/author/year
// collision with an existing entry is rejected with 409 and the colliding
// record, so the caller can warn and re-submit with the override.
func (c *BooksController) Create(ctx *gin.Context) {
	var book entities.Book
	if err := ctx.ShouldBindJSON(&book); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid book payload: " + err.Error()})
		return
	}

	if ctx.Query("force") != "true" {
		existing, err := c.books.Books()
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if match := dedup.Check(book.Title, book.Author, dates.BookYear(book), existing); match != nil {
			ctx.JSON(http.StatusConflict, gin.H{
				"error":     "possible duplicate",
				"duplicate": match,
			})
			return
		}
	}

	added, err := c.books.AddBook(book)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, added)
}

func (c *BooksController) Update(ctx *gin.Context) {
	var book entities.Book
	if err := ctx.ShouldBindJSON(&book); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid book payload: " + err.Error()})
		return
	}
	book.ID = ctx.Param("id")

	if err := c.books.UpdateBook(book); err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, book)
}

func (c *BooksController) Delete(ctx *gin.Context) {
	if err := c.books.DeleteBook(ctx.Param("id")); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.Status(http.StatusNoContent)
}
