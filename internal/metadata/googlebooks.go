// Package metadata looks up book information from the Google Books API.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/mferrier/booktracker/internal/entities"
)

const defaultBaseURL = "https://www.googleapis.com/books/v1/volumes"

// GoogleBooksClient fetches book metadata from the Google Books volumes API.
// All calls go through a shared rate limiter; the API is unauthenticated
// unless an API key is configured.
type GoogleBooksClient struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// NewGoogleBooksClient creates a client with a 10s request timeout and a
// minimum inter-request interval of 100ms.
func NewGoogleBooksClient(apiKey string) *GoogleBooksClient {
	return &GoogleBooksClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     defaultBaseURL,
		apiKey:      apiKey,
		rateLimiter: newRateLimiter(100 * time.Millisecond),
	}
}

// WithBaseURL points the client at a different endpoint. Used in tests.
func (c *GoogleBooksClient) WithBaseURL(baseURL string) *GoogleBooksClient {
	c.baseURL = baseURL
	return c
}

var nonISBNChars = regexp.MustCompile(`[^0-9Xx]`)

// SearchByISBN looks up a single volume by ISBN. Returns (nil, nil) when
// the ISBN is unknown to the API.
func (c *GoogleBooksClient) SearchByISBN(ctx context.Context, isbn string) (*entities.BookMetadata, error) {
	cleaned := nonISBNChars.ReplaceAllString(isbn, "")
	if cleaned == "" {
		return nil, fmt.Errorf("isbn is required")
	}

	result, err := c.query(ctx, "isbn:"+cleaned, 1)
	if err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, nil
	}
	meta := volumeToMetadata(result.Items[0])
	return &meta, nil
}

// Search runs a free-text query and returns up to ten matches.
func (c *GoogleBooksClient) Search(ctx context.Context, text string) ([]entities.BookMetadata, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("query is required")
	}

	result, err := c.query(ctx, text, 10)
	if err != nil {
		return nil, err
	}
	metas := make([]entities.BookMetadata, 0, len(result.Items))
	for _, item := range result.Items {
		metas = append(metas, volumeToMetadata(item))
	}
	return metas, nil
}

// FetchCoverURL finds a cover image for a title/author pair. Returns
// ("", nil) when no result carries an image; the caller treats any error
// the same way.
func (c *GoogleBooksClient) FetchCoverURL(ctx context.Context, title, author string) (string, error) {
	if title == "" {
		return "", fmt.Errorf("title is required")
	}

	q := "intitle:" + title
	if author != "" {
		q += "+inauthor:" + author
	}
	result, err := c.query(ctx, q, 3)
	if err != nil {
		return "", err
	}
	for _, item := range result.Items {
		if cover := bestCover(item.VolumeInfo.ImageLinks); cover != "" {
			return cover, nil
		}
	}
	return "", nil
}

func (c *GoogleBooksClient) query(ctx context.Context, q string, maxResults int) (*volumesResult, error) {
	c.rateLimiter.wait()

	params := url.Values{}
	params.Set("q", q)
	params.Set("maxResults", fmt.Sprintf("%d", maxResults))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "BookTracker/1.0 (https://github.com/mferrier/booktracker)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query volumes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result volumesResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

func volumeToMetadata(item volume) entities.BookMetadata {
	info := item.VolumeInfo

	meta := entities.BookMetadata{
		Title:         info.Title,
		Pages:         info.PageCount,
		Publisher:     info.Publisher,
		PublishedDate: info.PublishedDate,
		Description:   info.Description,
		Currency:      entities.DefaultCurrency,
		ExternalID:    item.ID,
		CoverURL:      bestCover(info.ImageLinks),
	}
	if meta.Title == "" {
		meta.Title = "Unknown Title"
	}

	if len(info.Authors) > 0 {
		meta.Author = strings.Join(info.Authors, ", ")
	} else {
		meta.Author = "Unknown Author"
	}

	if len(info.Categories) > 0 {
		meta.Genre = info.Categories[0]
	}

	// Prefer ISBN-13 over ISBN-10.
	var isbn10 string
	for _, id := range info.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_13":
			meta.ISBN = id.Identifier
		case "ISBN_10":
			isbn10 = id.Identifier
		}
	}
	if meta.ISBN == "" {
		meta.ISBN = isbn10
	}

	// Sale info is often absent; list price wins over retail price.
	if item.SaleInfo.ListPrice != nil {
		meta.Price = item.SaleInfo.ListPrice.Amount
		meta.Currency = item.SaleInfo.ListPrice.CurrencyCode
	} else if item.SaleInfo.RetailPrice != nil {
		meta.Price = item.SaleInfo.RetailPrice.Amount
		meta.Currency = item.SaleInfo.RetailPrice.CurrencyCode
	}

	return meta
}

// bestCover picks the highest-resolution image available and forces HTTPS.
func bestCover(links *imageLinks) string {
	if links == nil {
		return ""
	}
	for _, candidate := range []string{
		links.ExtraLarge, links.Large, links.Medium, links.Thumbnail, links.SmallThumbnail,
	} {
		if candidate != "" {
			return strings.Replace(candidate, "http:", "https:", 1)
		}
	}
	return ""
}

// Google Books API response types (internal)

type volumesResult struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
	SaleInfo   saleInfo   `json:"saleInfo"`
}

type volumeInfo struct {
	Title               string               `json:"title"`
	Authors             []string             `json:"authors"`
	Publisher           string               `json:"publisher"`
	PublishedDate       string               `json:"publishedDate"`
	Description         string               `json:"description"`
	PageCount           int                  `json:"pageCount"`
	Categories          []string             `json:"categories"`
	IndustryIdentifiers []industryIdentifier `json:"industryIdentifiers"`
	ImageLinks          *imageLinks          `json:"imageLinks"`
}

type industryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type imageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
	Medium         string `json:"medium"`
	Large          string `json:"large"`
	ExtraLarge     string `json:"extraLarge"`
}

type saleInfo struct {
	ListPrice   *priceInfo `json:"listPrice"`
	RetailPrice *priceInfo `json:"retailPrice"`
}

type priceInfo struct {
	Amount       float64 `json:"amount"`
	CurrencyCode string  `json:"currencyCode"`
}
