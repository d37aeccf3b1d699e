package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mferrier/booktracker/internal/entities"
)

// BookStore owns (de)serialization of the book collection. Reads return a
// fresh slice; writes replace the whole collection. Insertion order is
// preserved.
type BookStore struct {
	client Client
}

func NewBookStore(client Client) *BookStore {
	return &BookStore{client: client}
}

// Books loads the full collection. A missing key is an empty library.
func (s *BookStore) Books() ([]entities.Book, error) {
	data, err := s.client.Load(KeyBooks)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []entities.Book{}, nil
	}
	var books []entities.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("decode book data: %w", err)
	}
	return books, nil
}

// SaveBooks replaces the stored collection.
func (s *BookStore) SaveBooks(books []entities.Book) error {
	data, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("encode book data: %w", err)
	}
	return s.client.Save(KeyBooks, data)
}

// AddBook validates, assigns identity, and appends a single book.
func (s *BookStore) AddBook(book entities.Book) (entities.Book, error) {
	if strings.TrimSpace(book.Title) == "" {
		return entities.Book{}, fmt.Errorf("book is missing a title")
	}
	if strings.TrimSpace(book.Author) == "" {
		return entities.Book{}, fmt.Errorf("book is missing an author")
	}
	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	if book.DateAdded == "" {
		book.DateAdded = time.Now().Format(time.RFC3339)
	}

	books, err := s.Books()
	if err != nil {
		return entities.Book{}, err
	}
	books = append(books, book)
	if err := s.SaveBooks(books); err != nil {
		return entities.Book{}, err
	}
	return book, nil
}

// UpdateBook replaces the book with the same ID.
func (s *BookStore) UpdateBook(book entities.Book) error {
	books, err := s.Books()
	if err != nil {
		return err
	}
	for i := range books {
		if books[i].ID == book.ID {
			books[i] = book
			return s.SaveBooks(books)
		}
	}
	return fmt.Errorf("book %s not found", book.ID)
}

// DeleteBook removes the book with the given ID; deleting a missing book is
// not an error.
func (s *BookStore) DeleteBook(id string) error {
	books, err := s.Books()
	if err != nil {
		return err
	}
	kept := books[:0]
	for _, b := range books {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	return s.SaveBooks(kept)
}

// GetBookByID returns nil when no book has the given ID.
func (s *BookStore) GetBookByID(id string) (*entities.Book, error) {
	books, err := s.Books()
	if err != nil {
		return nil, err
	}
	for i := range books {
		if books[i].ID == id {
			return &books[i], nil
		}
	}
	return nil, nil
}
