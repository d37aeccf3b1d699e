// Package normalizer maps untrusted CSV column headers and cell values onto
// the canonical Book schema.
package normalizer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mferrier/booktracker/internal/dates"
	"github.com/mferrier/booktracker/internal/entities"
)

type fieldSetter func(b *entities.Book, value string)

// fieldSetters is the static alias table: normalized header → setter.
// Aliases are many-to-one; headers absent from the table are ignored.
var fieldSetters = map[string]fieldSetter{
	"title":    func(b *entities.Book, v string) { b.Title = v },
	"author":   func(b *entities.Book, v string) { b.Author = v },
	"isbn":     func(b *entities.Book, v string) { b.ISBN = v },
	"genre":    func(b *entities.Book, v string) { b.Genre = v },
	"narrator": func(b *entities.Book, v string) { b.Narrator = v },
	"source":   func(b *entities.Book, v string) { b.Source = v },
	"review":   func(b *entities.Book, v string) { b.Review = v },

	"pages":  func(b *entities.Book, v string) { b.Pages = parseIntDefault(v) },
	"rating": func(b *entities.Book, v string) { b.Rating = parseIntDefault(v) },
	"price":  func(b *entities.Book, v string) { b.Price = parseFloatDefault(v) },

	"format": func(b *entities.Book, v string) {
		b.Format = entities.Format(strings.ToLower(v))
		if b.Format == "" {
			b.Format = entities.DefaultFormat
		}
	},
	"currency": func(b *entities.Book, v string) {
		b.Currency = v
		if b.Currency == "" {
			b.Currency = entities.DefaultCurrency
		}
	},

	"start date": setStartDate,
	"startdate":  setStartDate,
	"end date":   setEndDate,
	"enddate":    setEndDate,
	"date read":  setEndDate,
	"dateread":   setEndDate,
	"date added": setDateAdded,
	"dateadded":  setDateAdded,

	"did not finish": setDNF,
	"didnotfinish":   setDNF,
	"dnf":            setDNF,
	"dnf reason":     func(b *entities.Book, v string) { b.DNFReason = v },
	"dnfreason":      func(b *entities.Book, v string) { b.DNFReason = v },

	"author instagram": func(b *entities.Book, v string) { b.AuthorInstagram = v },
	"authorinstagram":  func(b *entities.Book, v string) { b.AuthorInstagram = v },
	"cover url":        func(b *entities.Book, v string) { b.CoverURL = v },
	"coverurl":         func(b *entities.Book, v string) { b.CoverURL = v },

	"review drafted":   func(b *entities.Book, v string) { b.ReviewDrafted = ParseBool(v) },
	"reviewdrafted":    func(b *entities.Book, v string) { b.ReviewDrafted = ParseBool(v) },
	"posted goodreads": setGoodreads,
	"postedgoodreads":  setGoodreads,
	"goodreads":        setGoodreads,
	"posted instagram": setInstagram,
	"postedinstagram":  setInstagram,
	"instagram":        setInstagram,
	"posted ig bbr":    setIgBbr,
	"posted igbbr":     setIgBbr,
	"igbbr":            setIgBbr,
	"posted blog":      setBlog,
	"postedblog":       setBlog,
	"blog":             setBlog,
	"posted amazon":    setAmazon,
	"postedamazon":     setAmazon,
	"amazon":           setAmazon,
	"amazon approved":  func(b *entities.Book, v string) { b.AmazonApproved = ParseBool(v) },
	"amazonapproved":   func(b *entities.Book, v string) { b.AmazonApproved = ParseBool(v) },
}

func setStartDate(b *entities.Book, v string) { b.StartDate = dates.NormalizeToISO(v) }
func setEndDate(b *entities.Book, v string)   { b.EndDate = dates.NormalizeToISO(v) }
func setDateAdded(b *entities.Book, v string) { b.DateAdded = dates.NormalizeToISO(v) }
func setDNF(b *entities.Book, v string)       { b.DidNotFinish = ParseBool(v) }
func setGoodreads(b *entities.Book, v string) { b.PostedGoodreads = ParseBool(v) }
func setInstagram(b *entities.Book, v string) { b.PostedInstagram = ParseBool(v) }
func setIgBbr(b *entities.Book, v string)     { b.PostedIgBbr = ParseBool(v) }
func setBlog(b *entities.Book, v string)      { b.PostedBlog = ParseBool(v) }
func setAmazon(b *entities.Book, v string)    { b.PostedAmazon = ParseBool(v) }

var (
	specialChars = regexp.MustCompile(`[^\w\s]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// NormalizeHeader lowercases a column header, strips punctuation and
// collapses runs of whitespace, so "Cover URL", "Cover  Url" and
// "Cover URL?" all resolve to the same key.
func NormalizeHeader(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	h = specialChars.ReplaceAllString(h, "")
	return whitespace.ReplaceAllString(h, " ")
}

// Apply sets the book field addressed by a raw column header. Unknown
// headers are not an error; Apply reports whether the header was recognized.
func Apply(book *entities.Book, header, value string) bool {
	setter, ok := fieldSetters[NormalizeHeader(header)]
	if !ok {
		return false
	}
	setter(book, strings.TrimSpace(value))
	return true
}

// ParseBool accepts the spellings spreadsheet exports actually use.
func ParseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true", "1":
		return true
	}
	return false
}

func parseIntDefault(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseFloatDefault(value string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
