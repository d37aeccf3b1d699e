// Package dates parses the loosely formatted date strings found in book
// records and user-supplied CSV files.
package dates

import (
	"regexp"
	"time"

	"github.com/mferrier/booktracker/internal/entities"
)

// Each candidate layout is tried in order and the first valid calendar date
// wins. The ordering is a policy, not an accident: "3/4/2024" is always read
// as the US March 4th, and the European day/month layout only applies to
// strings the US layout rejects (e.g. "13/4/2024").
var layouts = []string{
	"2006-01-02", // ISO
	"1/2/2006",   // US month/day
	"1-2-2006",   // US month/day, dash-separated
	"2/1/2006",   // European day/month
}

var (
	isoPrefixRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
	slashRe     = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	dashRe      = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)

	leadingYearRe  = regexp.MustCompile(`^(\d{4})-`)
	trailingSlashY = regexp.MustCompile(`/(\d{4})$`)
	trailingDashY  = regexp.MustCompile(`-(\d{4})$`)
)

// Parse converts a date string to a calendar date. The boolean is false for
// empty input, unrecognized layouts, and impossible dates (month 13, Feb 30).
func Parse(text string) (time.Time, bool) {
	if text == "" {
		return time.Time{}, false
	}
	// Full ISO timestamps only contribute their date part.
	if isoPrefixRe.MatchString(text) && len(text) > 10 {
		text = text[:10]
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeToISO rewrites a recognized date string as zero-padded
// YYYY-MM-DD. Unlike Parse this is purely textual: it does not validate the
// calendar, and strings matching no known pattern pass through unchanged.
// Empty input stays empty.
func NormalizeToISO(text string) string {
	if text == "" {
		return ""
	}
	if isoPrefixRe.MatchString(text) {
		return text[:10]
	}
	if m := slashRe.FindStringSubmatch(text); m != nil {
		return m[3] + "-" + pad2(m[1]) + "-" + pad2(m[2])
	}
	if m := dashRe.FindStringSubmatch(text); m != nil {
		return m[3] + "-" + pad2(m[1]) + "-" + pad2(m[2])
	}
	return text
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// ResolveBookDate returns the first parseable date among a book's
// date-bearing fields, preferring the finish date.
func ResolveBookDate(book entities.Book) (time.Time, bool) {
	for _, field := range []string{book.EndDate, book.DateRead, book.StartDate, book.DateAdded} {
		if t, ok := Parse(field); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// YearFromString extracts a four-digit year by pattern match alone: a
// leading "YYYY-", a trailing "/YYYY", or a trailing "-YYYY". Returns 0 when
// no year is found. Deliberately looser than Parse; duplicate detection only
// needs the year component.
func YearFromString(text string) int {
	for _, re := range []*regexp.Regexp{leadingYearRe, trailingSlashY, trailingDashY} {
		if m := re.FindStringSubmatch(text); m != nil {
			return atoi4(m[1])
		}
	}
	return 0
}

// BookYear is the year a book was read, taken from the first date field
// yielding one. Returns 0 if no field carries a year.
func BookYear(book entities.Book) int {
	for _, field := range []string{book.EndDate, book.DateRead, book.StartDate, book.DateAdded} {
		if y := YearFromString(field); y != 0 {
			return y
		}
	}
	return 0
}

func atoi4(s string) int {
	y := 0
	for _, c := range s {
		y = y*10 + int(c-'0')
	}
	return y
}
