package repositories

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"tokobuku/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockBookRepository is an in-memory implementation of BookRepository.
type MockBookRepository struct {
	books map[string]models.Book
	mu    sync.RWMutex
}

// NewMockBookRepository creates a new instance of MockBookRepository.
func NewMockBookRepository() *MockBookRepository {
	return &MockBookRepository{
		books: make(map[string]models.Book),
	}
}

// GetAll returns all books.
func (r *MockBookRepository) GetAll(ctx context.Context) ([]models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bookList := make([]models.Book, 0, len(r.books))
	for _, b := range r.books {
		bookList = append(bookList, b)
	}
	return bookList, nil
}

// GetByID returns a book by its ID. A malformed identifier is an error
// distinct from not-found, matching the Mongo implementation.
func (r *MockBookRepository) GetByID(ctx context.Context, id string) (*models.Book, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("invalid book ID %s: %w", id, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	book, ok := r.books[id]
	if !ok {
		return nil, ErrBookNotFound
	}
	return &book, nil
}

// SearchByTitle returns books whose title contains the given text,
// case-insensitively.
func (r *MockBookRepository) SearchByTitle(ctx context.Context, title string) ([]models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(title)
	matches := []models.Book{}
	for _, b := range r.books {
		if strings.Contains(strings.ToLower(b.Title), needle) {
			matches = append(matches, b)
		}
	}
	return matches, nil
}

// Create adds a new book, assigning an ID if absent.
func (r *MockBookRepository) Create(ctx context.Context, book *models.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if book.ID.IsZero() {
		book.ID = primitive.NewObjectID()
	}
	r.books[book.ID.Hex()] = *book
	return nil
}

// Update applies the non-nil fields of updates to an existing book.
func (r *MockBookRepository) Update(ctx context.Context, id string, updates *models.UpdateBookRequest) (*models.Book, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("invalid book ID %s: %w", id, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	book, ok := r.books[id]
	if !ok {
		return nil, ErrBookNotFound
	}

	if updates.Title != nil {
		book.Title = *updates.Title
	}
	if updates.Author != nil {
		book.Author = *updates.Author
	}
	if updates.Genre != nil {
		book.Genre = *updates.Genre
	}
	if updates.Description != nil {
		book.Description = *updates.Description
	}
	if updates.Availability != nil {
		book.Availability = *updates.Availability
	}
	if updates.Stock != nil {
		book.Stock = *updates.Stock
	}
	if updates.Image != nil {
		book.Image = *updates.Image
	}

	r.books[id] = book
	return &book, nil
}

// Delete removes a book by its ID.
func (r *MockBookRepository) Delete(ctx context.Context, id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return fmt.Errorf("invalid book ID %s: %w", id, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.books[id]
	if !ok {
		return ErrBookNotFound
	}
	delete(r.books, id)
	return nil
}
