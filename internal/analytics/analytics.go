// Package analytics derives aggregate reading statistics from a book
// collection. Every function is a pure transformation: no mutation, no I/O.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/mferrier/booktracker/internal/dates"
	"github.com/mferrier/booktracker/internal/entities"
)

// MonthNames label the fixed 12-bucket histogram produced by ByMonth.
var MonthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// FilterByYear keeps books whose resolved date falls within the given
// calendar year. Books with no resolvable date belong to no year.
func FilterByYear(books []entities.Book, year int) []entities.Book {
	var out []entities.Book
	for _, b := range books {
		if d, ok := dates.ResolveBookDate(b); ok && d.Year() == year {
			out = append(out, b)
		}
	}
	return out
}

// Totals summarizes a collection.
type Totals struct {
	Count        int     `json:"count"`
	Pages        int     `json:"pages"`
	Value        float64 `json:"value"`
	AveragePages int     `json:"average_pages"`
}

func ComputeTotals(books []entities.Book) Totals {
	t := Totals{Count: len(books)}
	for _, b := range books {
		t.Pages += b.Pages
		t.Value += b.Price
	}
	if t.Count > 0 {
		t.AveragePages = int(math.Round(float64(t.Pages) / float64(t.Count)))
	}
	return t
}

// AuthorCount is one row of the top-authors ranking.
type AuthorCount struct {
	Author string `json:"author"`
	Count  int    `json:"count"`
}

// TopAuthors ranks authors by book count, descending, ties broken by first
// appearance. Missing authors group under "Unknown".
func TopAuthors(books []entities.Book, n int) []AuthorCount {
	keys, counts := countBy(books, authorKey)
	out := make([]AuthorCount, len(keys))
	for i, k := range keys {
		out[i] = AuthorCount{Author: k, Count: counts[k]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return truncate(out, n)
}

// GenreCount is one row of the top-genres ranking. Percentage is the
// group's share of the whole collection, rounded to the nearest integer.
type GenreCount struct {
	Genre      string `json:"genre"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// TopGenres ranks genres the same way TopAuthors ranks authors. Missing
// genres group under "Uncategorized".
func TopGenres(books []entities.Book, n int) []GenreCount {
	keys, counts := countBy(books, genreKey)
	total := len(books)
	out := make([]GenreCount, len(keys))
	for i, k := range keys {
		c := counts[k]
		pct := 0
		if total > 0 {
			pct = int(math.Round(float64(c) / float64(total) * 100))
		}
		out[i] = GenreCount{Genre: k, Count: c, Percentage: pct}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return truncate(out, n)
}

// MonthCount is one bucket of the monthly histogram.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// ByMonth buckets books by the month of their resolved date. Always returns
// twelve buckets, January through December; undateable books count nowhere.
func ByMonth(books []entities.Book) []MonthCount {
	counts := make([]int, 12)
	for _, b := range books {
		if d, ok := dates.ResolveBookDate(b); ok {
			counts[int(d.Month())-1]++
		}
	}
	out := make([]MonthCount, 12)
	for i, name := range MonthNames {
		out[i] = MonthCount{Month: name, Count: counts[i]}
	}
	return out
}

// HighestRated returns the top-rated finished books, descending by rating,
// ties in collection order. Unrated and abandoned books are excluded.
func HighestRated(books []entities.Book, n int) []entities.Book {
	var rated []entities.Book
	for _, b := range books {
		if b.Rating > 0 && !b.DidNotFinish {
			rated = append(rated, b)
		}
	}
	sort.SliceStable(rated, func(i, j int) bool { return rated[i].Rating > rated[j].Rating })
	return truncate(rated, n)
}

// ReadingPace is books per active month (months with at least one book),
// rounded to one decimal. Zero for an empty collection.
func ReadingPace(books []entities.Book) float64 {
	if len(books) == 0 {
		return 0
	}
	active := 0
	for _, m := range ByMonth(books) {
		if m.Count > 0 {
			active++
		}
	}
	if active == 0 {
		return 0
	}
	return math.Round(float64(len(books))/float64(active)*10) / 10
}

// AvailableYears lists the distinct resolved years, newest first. A library
// with no dateable books reports just the current year so the UI always has
// something to select.
func AvailableYears(books []entities.Book) []int {
	seen := map[int]bool{}
	for _, b := range books {
		if d, ok := dates.ResolveBookDate(b); ok {
			seen[d.Year()] = true
		}
	}
	if len(seen) == 0 {
		return []int{time.Now().Year()}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// Trend is a key whose second-half count exceeds its first-half count.
type Trend struct {
	Key   string `json:"key"`
	Trend int    `json:"trend"`
	Total int    `json:"total"`
}

// TrendingAuthors reports up to three authors read more in the second half
// of the (caller-ordered) collection than the first. Fewer than six books
// is not enough signal and yields nothing.
func TrendingAuthors(books []entities.Book) []Trend {
	return trending(books, authorKey)
}

// TrendingGenres is TrendingAuthors over genres.
func TrendingGenres(books []entities.Book) []Trend {
	return trending(books, genreKey)
}

func trending(books []entities.Book, key func(entities.Book) string) []Trend {
	if len(books) < 6 {
		return []Trend{}
	}

	mid := len(books) / 2
	_, first := countBy(books[:mid], key)
	secondKeys, second := countBy(books[mid:], key)

	var out []Trend
	for _, k := range secondKeys {
		if second[k] > first[k] {
			out = append(out, Trend{Key: k, Trend: second[k] - first[k], Total: second[k]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Trend > out[j].Trend })
	return truncate(out, 3)
}

func authorKey(b entities.Book) string {
	if b.Author == "" {
		return "Unknown"
	}
	return b.Author
}

func genreKey(b entities.Book) string {
	if b.Genre == "" {
		return "Uncategorized"
	}
	return b.Genre
}

// countBy tallies books per key, preserving first-encountered key order so
// later stable sorts keep insertion order on ties.
func countBy(books []entities.Book, key func(entities.Book) string) ([]string, map[string]int) {
	var keys []string
	counts := map[string]int{}
	for _, b := range books {
		k := key(b)
		if _, seen := counts[k]; !seen {
			keys = append(keys, k)
		}
		counts[k]++
	}
	return keys, counts
}

func truncate[T any](s []T, n int) []T {
	if n >= 0 && len(s) > n {
		return s[:n]
	}
	return s
}
