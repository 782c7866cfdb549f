package services

import (
	"context"

	"tokobuku/internal/models"
	"tokobuku/internal/repositories"
)

// BookService handles business logic related to books.
type BookService struct {
	repo repositories.BookRepository
}

// NewBookService creates a new BookService.
func NewBookService(repo repositories.BookRepository) *BookService {
	return &BookService{
		repo: repo,
	}
}

// GetAllBooks retrieves all books.
func (s *BookService) GetAllBooks(ctx context.Context) ([]models.Book, error) {
	return s.repo.GetAll(ctx)
}

// GetBookByID retrieves a single book by its ID.
func (s *BookService) GetBookByID(ctx context.Context, id string) (*models.Book, error) {
	return s.repo.GetByID(ctx, id)
}

// SearchBooksByTitle retrieves books matching the title substring,
// case-insensitively. An empty result is reported as not-found, never as an
// empty success list.
func (s *BookService) SearchBooksByTitle(ctx context.Context, title string) ([]models.Book, error) {
	books, err := s.repo.SearchByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, repositories.ErrBookNotFound
	}
	return books, nil
}

// CreateBook creates a new book. Availability defaults to true when the
// payload omits it.
func (s *BookService) CreateBook(ctx context.Context, req *models.CreateBookRequest) (*models.Book, error) {
	availability := true
	if req.Availability != nil {
		availability = *req.Availability
	}

	book := &models.Book{
		Title:        req.Title,
		Author:       req.Author,
		Genre:        req.Genre,
		Description:  req.Description,
		Availability: availability,
		Stock:        req.Stock,
		Image:        req.Image,
	}
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// UpdateBook applies a partial update to an existing book.
func (s *BookService) UpdateBook(ctx context.Context, id string, updates *models.UpdateBookRequest) (*models.Book, error) {
	return s.repo.Update(ctx, id, updates)
}

// DeleteBook deletes a book by its ID.
func (s *BookService) DeleteBook(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
