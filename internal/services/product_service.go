package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"tokobuku/internal/models"
	"tokobuku/internal/repositories"
	"tokobuku/pkg/rabbitmq"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// bulkRequiredFields are the CSV columns every row must fill, checked in
// this order so error messages are stable.
var bulkRequiredFields = []string{"name", "description", "price", "sellPrice", "stock", "category"}

// ProductService handles business logic related to products, including the
// bulk CSV ingestion pipeline.
type ProductService struct {
	repo     repositories.ProductRepository
	validate *validator.Validate
	mqClient *rabbitmq.Client // may be nil; events are then skipped
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, mqClient *rabbitmq.Client) *ProductService {
	return &ProductService{
		repo:     repo,
		validate: validator.New(),
		mqClient: mqClient,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID. A syntactically
// invalid identifier is rejected before any store query.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, ErrInvalidProductID
	}
	return s.repo.GetByID(ctx, id)
}

// CreateProduct creates a new product attributed to the given actor.
func (s *ProductService) CreateProduct(ctx context.Context, req *models.CreateProductRequest, actorID string) (*models.Product, error) {
	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		SellPrice:   req.SellPrice,
		Stock:       req.Stock,
		Category:    req.Category,
		CreatedBy:   actorID,
	}
	if err := s.validate.Struct(product); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.publishEvent("product.created", map[string]interface{}{
		"productID": product.ID.Hex(),
		"name":      product.Name,
		"createdBy": product.CreatedBy,
	})
	return product, nil
}

// UpdateProduct applies a partial update to an existing product. The change
// is validated against the merged document before it is written, so an
// update that would leave sellPrice above price is rejected. CreatedBy is
// not updatable.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, updates *models.UpdateProductRequest) (*models.Product, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, ErrInvalidProductID
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := *current
	if updates.Name != nil {
		merged.Name = *updates.Name
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}
	if updates.Price != nil {
		merged.Price = *updates.Price
	}
	if updates.SellPrice != nil {
		merged.SellPrice = *updates.SellPrice
	}
	if updates.Stock != nil {
		merged.Stock = *updates.Stock
	}
	if updates.Category != nil {
		merged.Category = *updates.Category
	}
	if err := s.validate.Struct(&merged); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, id, updates)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return ErrInvalidProductID
	}
	return s.repo.Delete(ctx, id)
}

// BulkUpload ingests a CSV file of products attributed to the given actor.
// The first row is the header. Validation is all-or-nothing: the first
// invalid row aborts the entire batch before anything is written. The file
// at filePath is removed exactly once on every path, including errors.
func (s *ProductService) BulkUpload(ctx context.Context, filePath string, actorID string) ([]models.Product, error) {
	defer func() {
		if err := os.Remove(filePath); err != nil {
			log.Printf("Failed to remove uploaded file %s: %v", filePath, err)
		}
	}()

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	columns, rows, err := readCSV(file)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyBatch
	}

	products := make([]models.Product, 0, len(rows))
	for i, row := range rows {
		// Header is line 1, so data rows start at line 2.
		product, err := parseProductRow(columns, row, i+2)
		if err != nil {
			return nil, err
		}
		product.CreatedBy = actorID
		products = append(products, *product)
	}

	// Single ordered batch insert. If the store rejects a row partway
	// through, rows written before it stay written; this pipeline adds no
	// transaction boundary of its own.
	inserted, err := s.repo.CreateMany(ctx, products)
	if err != nil {
		return nil, err
	}

	s.publishEvent("product.bulk_imported", map[string]interface{}{
		"count":     len(inserted),
		"createdBy": actorID,
	})
	return inserted, nil
}

// readCSV decodes the stream into a header column index and the data rows.
func readCSV(r io.Reader) (map[string]int, [][]string, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, ErrEmptyBatch
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	// Files exported from spreadsheets often carry a UTF-8 BOM, which would
	// otherwise glue itself onto the first column name.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
		}
		rows = append(rows, record)
	}
	return columns, rows, nil
}

// parseProductRow validates and coerces one CSV row into a product.
func parseProductRow(columns map[string]int, row []string, line int) (*models.Product, error) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	for _, name := range bulkRequiredFields {
		if field(name) == "" {
			return nil, fmt.Errorf("line %d: %w: %s", line, ErrMissingField, name)
		}
	}

	// ParseFloat accepts "NaN" and "Inf" without error, so finiteness and
	// positivity are checked explicitly.
	price, err := strconv.ParseFloat(field("price"), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return nil, fmt.Errorf("line %d: %w", line, ErrInvalidNumeric)
	}
	sellPrice, err := strconv.ParseFloat(field("sellPrice"), 64)
	if err != nil || math.IsNaN(sellPrice) || math.IsInf(sellPrice, 0) || sellPrice <= 0 {
		return nil, fmt.Errorf("line %d: %w", line, ErrInvalidNumeric)
	}
	stock, err := strconv.Atoi(field("stock"))
	if err != nil || stock < 0 {
		return nil, fmt.Errorf("line %d: %w", line, ErrInvalidNumeric)
	}

	if sellPrice > price {
		return nil, fmt.Errorf("line %d: %w", line, ErrPriceInversion)
	}

	return &models.Product{
		Name:        field("name"),
		Description: field("description"),
		Price:       price,
		SellPrice:   sellPrice,
		Stock:       stock,
		Category:    field("category"),
	}, nil
}

// publishEvent publishes a product event on a best-effort basis.
func (s *ProductService) publishEvent(event string, payload map[string]interface{}) {
	if s.mqClient == nil {
		log.Println("RabbitMQ client is not initialized. Skipping message publication.")
		return
	}
	if err := s.mqClient.PublishProductEvent(event, payload); err != nil {
		log.Printf("Warning: Failed to publish %s event: %v", event, err)
	}
}
