// Package dedup detects title/author/year collisions between incoming
// candidates and the existing library.
package dedup

import (
	"strings"

	"github.com/mferrier/booktracker/internal/dates"
	"github.com/mferrier/booktracker/internal/entities"
)

// Result splits an incoming batch into candidates that collide with the
// existing collection and those that do not.
type Result struct {
	Duplicates []entities.Book
	Unique     []entities.Book
}

type yearMatch int

const (
	yearEqual yearMatch = iota
	yearDifferent
	// yearUnknown means at least one side has no extractable year. It is
	// treated as a match: flagging a possible duplicate is preferred over
	// silently importing one.
	yearUnknown
)

func compareYears(a, b int) yearMatch {
	switch {
	case a == 0 || b == 0:
		return yearUnknown
	case a == b:
		return yearEqual
	default:
		return yearDifferent
	}
}

func sameKey(title, author string, b entities.Book) bool {
	return strings.EqualFold(strings.TrimSpace(b.Title), strings.TrimSpace(title)) &&
		strings.EqualFold(strings.TrimSpace(b.Author), strings.TrimSpace(author))
}

// isDuplicate reports whether a candidate identified by title/author/year
// collides with an existing book. A re-read logged in a different year is a
// distinct entry, not a duplicate.
func isDuplicate(title, author string, year int, existing entities.Book) bool {
	if !sameKey(title, author, existing) {
		return false
	}
	return compareYears(year, dates.BookYear(existing)) != yearDifferent
}

// Partition checks every candidate against the existing collection.
// Candidate order is preserved in both halves of the result.
func Partition(candidates, existing []entities.Book) Result {
	var res Result
	for _, c := range candidates {
		year := dates.BookYear(c)
		dup := false
		for _, e := range existing {
			if isDuplicate(c.Title, c.Author, year, e) {
				dup = true
				break
			}
		}
		if dup {
			res.Duplicates = append(res.Duplicates, c)
		} else {
			res.Unique = append(res.Unique, c)
		}
	}
	return res
}

// Check is the point-of-add variant: it returns the first existing book the
// given title/author/year collides with, or nil. Callers surface it as a
// warning the user may override.
func Check(title, author string, year int, existing []entities.Book) *entities.Book {
	for i := range existing {
		if isDuplicate(title, author, year, existing[i]) {
			return &existing[i]
		}
	}
	return nil
}
