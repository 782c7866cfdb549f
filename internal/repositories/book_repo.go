package repositories

import (
	"context"

	"tokobuku/internal/models"
)

// BookRepository defines the interface for book data access.
type BookRepository interface {
	GetAll(ctx context.Context) ([]models.Book, error)
	GetByID(ctx context.Context, id string) (*models.Book, error)
	SearchByTitle(ctx context.Context, title string) ([]models.Book, error)
	Create(ctx context.Context, book *models.Book) error
	Update(ctx context.Context, id string, updates *models.UpdateBookRequest) (*models.Book, error)
	Delete(ctx context.Context, id string) error
}
