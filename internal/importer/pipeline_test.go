package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mferrier/booktracker/internal/entities"
	"github.com/mferrier/booktracker/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memClient struct {
	data    map[string][]byte
	failing bool
}

func newMemClient() *memClient {
	return &memClient{data: map[string][]byte{}}
}

func (c *memClient) Load(key string) ([]byte, error) {
	return c.data[key], nil
}

func (c *memClient) Save(key string, value []byte) error {
	if c.failing {
		return errors.New("disk full")
	}
	c.data[key] = value
	return nil
}

type stubCovers struct {
	urls  map[string]string
	err   error
	calls []string
}

func (s *stubCovers) FetchCoverURL(_ context.Context, title, _ string) (string, error) {
	s.calls = append(s.calls, title)
	if s.err != nil {
		return "", s.err
	}
	return s.urls[title], nil
}

func setup(t *testing.T, existing []entities.Book, opts ...Option) (*Pipeline, *storage.BookStore, *memClient) {
	t.Helper()
	client := newMemClient()
	books := storage.NewBookStore(client)
	if len(existing) > 0 {
		require.NoError(t, books.SaveBooks(existing))
	}
	opts = append(opts, WithCoverDelay(0))
	return NewPipeline(books, opts...), books, client
}

const sampleCSV = "Title,Author,End Date\n" +
	"Dune,Frank Herbert,2023-05-01\n" +
	"Hyperion,Dan Simmons,2023-06-01\n"

func TestUpload(t *testing.T) {
	t.Run("moves to review with partitioned candidates", func(t *testing.T) {
		existing := []entities.Book{{Title: "Dune", Author: "Frank Herbert", EndDate: "2023-01-01"}}
		p, _, _ := setup(t, existing)

		require.NoError(t, p.Upload(sampleCSV))
		assert.Equal(t, StateReview, p.State())
		assert.Len(t, p.Duplicates(), 1)
		assert.Len(t, p.Unique(), 1)
		assert.Equal(t, "Hyperion", p.Unique()[0].Book.Title)
	})

	t.Run("malformed csv is a fatal format error", func(t *testing.T) {
		p, _, _ := setup(t, nil)
		err := p.Upload("Title,Author\n\"unterminated,x\n")
		require.Error(t, err)
		assert.Equal(t, StateUpload, p.State())
	})

	t.Run("no usable rows", func(t *testing.T) {
		p, _, _ := setup(t, nil)
		err := p.Upload("Title,Author\n")
		assert.ErrorIs(t, err, ErrNoBooks)
		assert.Equal(t, StateUpload, p.State())
	})
}

func TestImport(t *testing.T) {
	t.Run("unique candidates are persisted", func(t *testing.T) {
		p, books, _ := setup(t, nil)
		require.NoError(t, p.Upload(sampleCSV))

		summary, err := p.Import(context.Background(), false)
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Added)
		assert.Equal(t, 0, summary.Skipped)
		assert.Equal(t, 0, summary.Errors)
		assert.Equal(t, StateComplete, p.State())

		stored, err := books.Books()
		require.NoError(t, err)
		require.Len(t, stored, 2)
		assert.NotEmpty(t, stored[0].ID)
		assert.NotEmpty(t, stored[0].DateAdded)
	})

	t.Run("unselected duplicates are skipped, selected ones imported", func(t *testing.T) {
		existing := []entities.Book{
			{ID: "1", Title: "Dune", Author: "Frank Herbert", EndDate: "2023-01-01"},
		}
		p, books, _ := setup(t, existing)
		require.NoError(t, p.Upload(sampleCSV))
		require.Len(t, p.Duplicates(), 1)

		summary, err := p.Import(context.Background(), false)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Added)
		assert.Equal(t, 1, summary.Skipped)

		stored, _ := books.Books()
		assert.Len(t, stored, 2) // 1 existing + Hyperion

		// Run again, this time keeping the duplicate.
		p2 := NewPipeline(books, WithCoverDelay(0))
		require.NoError(t, p2.Upload(sampleCSV))
		require.NoError(t, p2.SelectDuplicates([]int{0, 1})) // second must appear now too
		summary, err = p2.Import(context.Background(), false)
		require.NoError(t, err)
		assert.Equal(t, 0, summary.Skipped)
	})

	t.Run("row validation errors are recovered locally", func(t *testing.T) {
		p, books, _ := setup(t, nil)
		candidates := []entities.Book{
			{Title: "Dune", Author: "Frank Herbert"},
			{Title: "Ghostwritten", Author: "   "},
			{Title: "Hyperion", Author: "Dan Simmons"},
		}
		require.NoError(t, p.UploadCandidates(candidates))

		summary, err := p.Import(context.Background(), false)
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Added)
		assert.Equal(t, 1, summary.Errors)
		require.Len(t, summary.RowErrors, 1)
		assert.Equal(t, 1, summary.RowErrors[0].Index)
		assert.Equal(t, "missing author", summary.RowErrors[0].Message)

		stored, _ := books.Books()
		require.Len(t, stored, 2)
		assert.Equal(t, "Dune", stored[0].Title)
		assert.Equal(t, "Hyperion", stored[1].Title)
	})

	t.Run("persistence failure returns to review with nothing applied", func(t *testing.T) {
		p, _, client := setup(t, nil)
		require.NoError(t, p.Upload(sampleCSV))

		client.failing = true
		_, err := p.Import(context.Background(), false)
		assert.ErrorIs(t, err, ErrPersist)
		assert.Equal(t, StateReview, p.State())

		// Retry after the storage recovers.
		client.failing = false
		summary, err := p.Import(context.Background(), false)
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Added)
	})

	t.Run("import requires review state", func(t *testing.T) {
		p, _, _ := setup(t, nil)
		_, err := p.Import(context.Background(), false)
		assert.Error(t, err)
	})
}

func TestImportDateBackfill(t *testing.T) {
	p, books, _ := setup(t, nil)
	candidates := []entities.Book{
		{Title: "A", Author: "X", EndDate: "2023-05-01"},
		{Title: "B", Author: "X", StartDate: "2023-04-01"},
		{Title: "C", Author: "X"},
	}
	require.NoError(t, p.UploadCandidates(candidates))
	_, err := p.Import(context.Background(), false)
	require.NoError(t, err)

	stored, _ := books.Books()
	require.Len(t, stored, 3)
	assert.Equal(t, "2023-05-01", stored[0].StartDate, "start backfilled from end")
	assert.Equal(t, "2023-04-01", stored[1].EndDate, "end backfilled from start")
	assert.NotEmpty(t, stored[2].StartDate, "both default to today")
	assert.Equal(t, stored[2].StartDate, stored[2].EndDate)
}

func TestImportCoverFetch(t *testing.T) {
	t.Run("fills missing covers sequentially and reports progress", func(t *testing.T) {
		covers := &stubCovers{urls: map[string]string{
			"Dune":     "https://example.com/dune.jpg",
			"Hyperion": "",
		}}
		var progress [][2]int
		p, books, _ := setup(t, nil,
			WithCoverFetcher(covers),
			WithProgress(func(cur, total int) { progress = append(progress, [2]int{cur, total}) }),
		)
		require.NoError(t, p.Upload(sampleCSV))

		summary, err := p.Import(context.Background(), true)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.CoversFound)
		assert.Equal(t, []string{"Dune", "Hyperion"}, covers.calls)
		assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, progress)

		stored, _ := books.Books()
		assert.Equal(t, "https://example.com/dune.jpg", stored[0].CoverURL)
		assert.Empty(t, stored[1].CoverURL)
	})

	t.Run("lookup failures are swallowed", func(t *testing.T) {
		covers := &stubCovers{err: errors.New("api down")}
		p, books, _ := setup(t, nil, WithCoverFetcher(covers))
		require.NoError(t, p.Upload(sampleCSV))

		summary, err := p.Import(context.Background(), true)
		require.NoError(t, err)
		assert.Equal(t, 0, summary.CoversFound)
		assert.Equal(t, 2, summary.Added)

		stored, _ := books.Books()
		assert.Len(t, stored, 2)
	})

	t.Run("books with covers are not looked up", func(t *testing.T) {
		covers := &stubCovers{}
		p, _, _ := setup(t, nil, WithCoverFetcher(covers))
		csv := "Title,Author,Cover URL\nDune,Frank Herbert,https://example.com/d.jpg\n"
		require.NoError(t, p.Upload(csv))

		_, err := p.Import(context.Background(), true)
		require.NoError(t, err)
		assert.Empty(t, covers.calls)
	})
}

func TestResultsCSV(t *testing.T) {
	t.Run("annotates every original row", func(t *testing.T) {
		p, _, _ := setup(t, nil)
		require.NoError(t, p.Upload(sampleCSV))
		_, err := p.Import(context.Background(), false)
		require.NoError(t, err)

		out, err := p.ResultsCSV()
		require.NoError(t, err)
		lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "Result,Title,Author,End Date", lines[0])
		assert.True(t, strings.HasPrefix(lines[1], "Success,"))
		assert.True(t, strings.HasPrefix(lines[2], "Success,"))
	})

	t.Run("not available before completion", func(t *testing.T) {
		p, _, _ := setup(t, nil)
		require.NoError(t, p.Upload(sampleCSV))
		_, err := p.ResultsCSV()
		assert.Error(t, err)
	})
}

func TestAbort(t *testing.T) {
	p, _, _ := setup(t, nil)
	require.NoError(t, p.Upload(sampleCSV))
	p.Abort()
	assert.Equal(t, StateUpload, p.State())
	assert.Empty(t, p.Unique())

	// Uploading again works after an abort.
	require.NoError(t, p.Upload(sampleCSV))
	assert.Equal(t, StateReview, p.State())
}
