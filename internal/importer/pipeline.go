// Package importer runs the CSV import pipeline: decode, duplicate review,
// optional cover enrichment, merge, persist.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mferrier/booktracker/internal/csvcodec"
	"github.com/mferrier/booktracker/internal/dates"
	"github.com/mferrier/booktracker/internal/dedup"
	"github.com/mferrier/booktracker/internal/entities"
	"github.com/mferrier/booktracker/internal/storage"
)

// State of a single import operation. Transitions:
// Upload -> Review -> (FetchingCovers) -> Importing -> Complete, with a
// persistence failure dropping back to Review.
type State string

const (
	StateUpload         State = "upload"
	StateReview         State = "review"
	StateFetchingCovers State = "fetching_covers"
	StateImporting      State = "importing"
	StateComplete       State = "complete"
)

var (
	// ErrNoBooks means the document decoded fine but contained no usable
	// candidate rows.
	ErrNoBooks = errors.New("no valid books found in CSV")
	// ErrPersist wraps a storage write failure. The batch was not applied.
	ErrPersist = errors.New("saving imported books failed")
)

// CoverFetcher is the slice of the book-lookup collaborator the pipeline
// needs.
type CoverFetcher interface {
	FetchCoverURL(ctx context.Context, title, author string) (string, error)
}

// RowError records a candidate that was excluded from the merge, keyed by
// the data-row index it came from.
type RowError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// Summary is reported once an import completes.
type Summary struct {
	Added       int        `json:"added"`
	Skipped     int        `json:"skipped"`
	Errors      int        `json:"errors"`
	CoversFound int        `json:"covers_found"`
	RowErrors   []RowError `json:"row_errors,omitempty"`
}

// ProgressFunc receives (current, total) after each cover-fetch attempt.
type ProgressFunc func(current, total int)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCoverFetcher enables the optional cover-enrichment step.
func WithCoverFetcher(f CoverFetcher) Option {
	return func(p *Pipeline) { p.covers = f }
}

// WithCoverDelay overrides the inter-request delay of the cover fetch step.
func WithCoverDelay(d time.Duration) Option {
	return func(p *Pipeline) { p.coverDelay = d }
}

// WithProgress registers a cover-fetch progress callback.
func WithProgress(f ProgressFunc) Option {
	return func(p *Pipeline) { p.progress = f }
}

// Pipeline is a single import operation. It is not safe for concurrent use;
// every import gets its own Pipeline.
type Pipeline struct {
	books      *storage.BookStore
	covers     CoverFetcher
	coverDelay time.Duration
	progress   ProgressFunc
	now        func() time.Time

	state        State
	originalCSV  string
	duplicates   []csvcodec.Row
	unique       []csvcodec.Row
	selectedDups map[int]bool
	summary      Summary
	rowResults   map[int]string
}

func NewPipeline(books *storage.BookStore, opts ...Option) *Pipeline {
	p := &Pipeline{
		books:        books,
		coverDelay:   100 * time.Millisecond,
		now:          time.Now,
		state:        StateUpload,
		selectedDups: map[int]bool{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) State() State { return p.state }

// Upload decodes raw CSV text and partitions the candidates against the
// existing library. Decode failures are fatal format errors and leave the
// pipeline in Upload.
func (p *Pipeline) Upload(csvText string) error {
	if p.state != StateUpload {
		return fmt.Errorf("upload not allowed in state %s", p.state)
	}

	rows, err := csvcodec.DecodeRows(csvText)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNoBooks
	}

	existing, err := p.books.Books()
	if err != nil {
		return fmt.Errorf("load existing books: %w", err)
	}

	p.originalCSV = csvText
	p.partition(rows, existing)
	p.state = StateReview
	return nil
}

// UploadCandidates feeds already-decoded candidates into the pipeline,
// indexed by position. Used by the JSON import path and by callers that
// build candidates programmatically.
func (p *Pipeline) UploadCandidates(candidates []entities.Book) error {
	if p.state != StateUpload {
		return fmt.Errorf("upload not allowed in state %s", p.state)
	}
	if len(candidates) == 0 {
		return ErrNoBooks
	}

	rows := make([]csvcodec.Row, len(candidates))
	for i, b := range candidates {
		rows[i] = csvcodec.Row{Book: b, Index: i}
	}

	existing, err := p.books.Books()
	if err != nil {
		return fmt.Errorf("load existing books: %w", err)
	}
	p.partition(rows, existing)
	p.state = StateReview
	return nil
}

func (p *Pipeline) partition(rows []csvcodec.Row, existing []entities.Book) {
	p.duplicates = nil
	p.unique = nil
	for _, r := range rows {
		if dedup.Check(r.Book.Title, r.Book.Author, dates.BookYear(r.Book), existing) != nil {
			p.duplicates = append(p.duplicates, r)
		} else {
			p.unique = append(p.unique, r)
		}
	}
}

// Unique and Duplicates expose the review sets.
func (p *Pipeline) Unique() []csvcodec.Row     { return p.unique }
func (p *Pipeline) Duplicates() []csvcodec.Row { return p.duplicates }

// SelectDuplicates chooses which flagged duplicates (by position in
// Duplicates) are imported anyway. Unique candidates are always imported.
func (p *Pipeline) SelectDuplicates(indexes []int) error {
	if p.state != StateReview {
		return fmt.Errorf("duplicate selection not allowed in state %s", p.state)
	}
	p.selectedDups = make(map[int]bool, len(indexes))
	for _, i := range indexes {
		if i >= 0 && i < len(p.duplicates) {
			p.selectedDups[i] = true
		}
	}
	return nil
}

// Abort discards the reviewed batch and returns to Upload.
func (p *Pipeline) Abort() {
	p.originalCSV = ""
	p.duplicates = nil
	p.unique = nil
	p.selectedDups = map[int]bool{}
	p.summary = Summary{}
	p.rowResults = nil
	p.state = StateUpload
}

// Import merges the accepted candidates into the library and persists the
// whole collection. Row-level validation failures exclude the row and are
// recorded; a storage failure aborts the batch entirely and returns the
// pipeline to Review.
func (p *Pipeline) Import(ctx context.Context, fetchCovers bool) (Summary, error) {
	if p.state != StateReview {
		return Summary{}, fmt.Errorf("import not allowed in state %s", p.state)
	}

	summary := Summary{}
	var accepted []csvcodec.Row
	accepted = append(accepted, p.unique...)
	for i, d := range p.duplicates {
		if p.selectedDups[i] {
			accepted = append(accepted, d)
		}
	}
	summary.Skipped = len(p.duplicates) - len(p.selectedDups)

	var toAdd []entities.Book
	var addedRows []int
	for _, row := range accepted {
		if strings.TrimSpace(row.Book.Title) == "" {
			summary.RowErrors = append(summary.RowErrors, RowError{Index: row.Index, Message: "missing title"})
			continue
		}
		if strings.TrimSpace(row.Book.Author) == "" {
			summary.RowErrors = append(summary.RowErrors, RowError{Index: row.Index, Message: "missing author"})
			continue
		}
		toAdd = append(toAdd, p.finalize(row.Book))
		addedRows = append(addedRows, row.Index)
	}
	summary.Errors = len(summary.RowErrors)

	if fetchCovers && p.covers != nil {
		p.state = StateFetchingCovers
		summary.CoversFound = p.fetchMissingCovers(ctx, toAdd)
	}

	p.state = StateImporting
	existing, err := p.books.Books()
	if err == nil {
		err = p.books.SaveBooks(append(existing, toAdd...))
	}
	if err != nil {
		// Fatal but retryable: nothing was committed.
		p.state = StateReview
		return Summary{}, fmt.Errorf("%w: %v", ErrPersist, err)
	}

	summary.Added = len(toAdd)
	p.summary = summary

	p.rowResults = make(map[int]string, len(addedRows)+len(summary.RowErrors))
	for _, idx := range addedRows {
		p.rowResults[idx] = resultSuccess
	}
	for _, re := range summary.RowErrors {
		p.rowResults[re.Index] = "Error: " + re.Message
	}
	p.state = StateComplete
	return p.summary, nil
}

// finalize stamps identity and fills missing dates the way the original app
// did on import: both reading dates default to each other, then to today.
func (p *Pipeline) finalize(book entities.Book) entities.Book {
	now := p.now()
	today := now.Format("2006-01-02")

	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	if book.DateAdded == "" {
		book.DateAdded = now.Format(time.RFC3339)
	}
	endDate, startDate := book.EndDate, book.StartDate
	if endDate == "" {
		endDate = firstNonEmpty(startDate, today)
	}
	if startDate == "" {
		startDate = firstNonEmpty(book.EndDate, today)
	}
	book.EndDate = endDate
	book.StartDate = startDate
	return book
}

// fetchMissingCovers queries the lookup collaborator for every accepted
// candidate without a cover, strictly sequentially with a fixed delay
// between calls. Lookup failures are swallowed; the book just stays
// coverless. Returns the number of covers found.
func (p *Pipeline) fetchMissingCovers(ctx context.Context, books []entities.Book) int {
	var pending []int
	for i := range books {
		if books[i].CoverURL == "" && books[i].Title != "" {
			pending = append(pending, i)
		}
	}

	found := 0
	for n, i := range pending {
		if n > 0 {
			time.Sleep(p.coverDelay)
		}
		cover, err := p.covers.FetchCoverURL(ctx, books[i].Title, books[i].Author)
		if err == nil && cover != "" {
			books[i].CoverURL = cover
			found++
		}
		if p.progress != nil {
			p.progress(n+1, len(pending))
		}
	}
	return found
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
