package repositories

import (
	"context"

	"tokobuku/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// CreateMany inserts the products as one ordered batch and returns them
	// with their store-assigned identifiers.
	CreateMany(ctx context.Context, products []models.Product) ([]models.Product, error)
	Update(ctx context.Context, id string, updates *models.UpdateProductRequest) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}
