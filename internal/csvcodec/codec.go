// Package csvcodec converts between Book records and the CSV document
// format used for library import and export.
package csvcodec

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/mferrier/booktracker/internal/entities"
	"github.com/mferrier/booktracker/internal/normalizer"
)

// Header is the fixed export column set. Decoding accepts arbitrary headers
// through the normalizer alias table; encoding always emits exactly these.
var Header = []string{
	"Title", "Author", "ISBN", "Genre", "Pages", "Format", "Narrator", "Source",
	"Price", "Currency", "Start Date", "End Date", "Rating", "Did Not Finish",
	"DNF Reason", "Review", "Author Instagram", "Cover URL",
	"Review Drafted", "Posted Goodreads", "Posted Instagram", "Posted IG BBR",
	"Posted Blog", "Posted Amazon", "Amazon Approved", "Date Added",
}

// Row is a decoded candidate book together with the index of the data row
// it came from (0-based, header excluded), kept for error reporting.
type Row struct {
	Book  entities.Book
	Index int
}

// DecodeRows parses CSV text into candidate books. The first row defines
// the column mapping; rows left without a title or an author after
// normalization carry no usable identity and are dropped. Blank lines are
// skipped, and a document with no data rows decodes to an empty result.
// An error means the document itself is malformed (bad quoting etc.).
func DecodeRows(text string) ([]Row, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	header := records[0]
	var rows []Row
	for i, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		var book entities.Book
		for col, value := range record {
			if col >= len(header) {
				break
			}
			normalizer.Apply(&book, header[col], value)
		}
		if book.Title == "" || book.Author == "" {
			continue
		}
		rows = append(rows, Row{Book: book, Index: i})
	}
	return rows, nil
}

// Decode is DecodeRows without the row bookkeeping.
func Decode(text string) ([]entities.Book, error) {
	rows, err := DecodeRows(text)
	if err != nil {
		return nil, err
	}
	books := make([]entities.Book, len(rows))
	for i, r := range rows {
		books[i] = r.Book
	}
	return books, nil
}

// Encode renders books as a CSV document with the fixed Header, one row per
// book in collection order. Booleans render as Yes/No, zero counts and
// prices as empty cells. Output is LF-separated; quoting follows RFC 4180.
func Encode(books []entities.Book) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	w.Write(Header)
	for _, b := range books {
		w.Write(encodeBook(b))
	}
	w.Flush()
	return sb.String()
}

func encodeBook(b entities.Book) []string {
	format := b.Format
	if format == "" {
		format = entities.DefaultFormat
	}
	currency := b.Currency
	if currency == "" {
		currency = entities.DefaultCurrency
	}
	endDate := b.EndDate
	if endDate == "" {
		endDate = b.DateRead
	}

	return []string{
		b.Title,
		b.Author,
		b.ISBN,
		b.Genre,
		intCell(b.Pages),
		string(format),
		b.Narrator,
		b.Source,
		floatCell(b.Price),
		currency,
		b.StartDate,
		endDate,
		intCell(b.Rating),
		yesNo(b.DidNotFinish),
		b.DNFReason,
		b.Review,
		b.AuthorInstagram,
		b.CoverURL,
		yesNo(b.ReviewDrafted),
		yesNo(b.PostedGoodreads),
		yesNo(b.PostedInstagram),
		yesNo(b.PostedIgBbr),
		yesNo(b.PostedBlog),
		yesNo(b.PostedAmazon),
		yesNo(b.AmazonApproved),
		b.DateAdded,
	}
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func intCell(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func floatCell(f float64) string {
	if f == 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
