package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mferrier/booktracker/internal/metadata"
)

type LookupController struct {
	client *metadata.GoogleBooksClient
}

func NewLookupController(client *metadata.GoogleBooksClient) *LookupController {
	return &LookupController{client: client}
}

// Search looks up book metadata by ISBN or free text. ISBN takes precedence
// when both are supplied.
func (c *LookupController) Search(ctx *gin.Context) {
	if c.client == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "book lookup is not configured"})
		return
	}

	if isbn := ctx.Query("isbn"); isbn != "" {
		meta, err := c.client.SearchByISBN(ctx.Request.Context(), isbn)
		if err != nil {
			ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		if meta == nil {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "no match for ISBN"})
			return
		}
		ctx.JSON(http.StatusOK, meta)
		return
	}

	q := ctx.Query("q")
	if q == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "isbn or q parameter required"})
		return
	}
	results, err := c.client.Search(ctx.Request.Context(), q)
	if err != nil {
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"results": results})
}
