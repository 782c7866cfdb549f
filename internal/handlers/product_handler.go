package handlers

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"tokobuku/internal/models"
	"tokobuku/internal/repositories"
	"tokobuku/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ProductHandler handles HTTP requests for products, including the bulk
// CSV upload endpoint.
type ProductHandler struct {
	service   *services.ProductService
	validate  *validator.Validate
	uploadDir string
}

// NewProductHandler creates a new ProductHandler. uploadDir is the scratch
// directory uploaded CSV files are staged in.
func NewProductHandler(service *services.ProductService, uploadDir string) *ProductHandler {
	return &ProductHandler{
		service:   service,
		validate:  validator.New(),
		uploadDir: uploadDir,
	}
}

// RegisterRoutes registers the product routes with the Fiber app. Reads are
// public; mutating routes require an authenticated actor.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Post("/", authRequired, h.HandleCreateProduct)
	productRoutes.Post("/bulk", authRequired, h.HandleBulkUpload)
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Put("/:id", authRequired, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", authRequired, h.HandleDeleteProduct)
}

// HandleCreateProduct creates a new product attributed to the caller.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req models.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	actorID, _ := c.Locals("user_id").(string)
	product, err := h.service.CreateProduct(c.Context(), &req, actorID)
	if err != nil {
		log.Printf("Error creating product: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product created successfully!",
		"data":    product,
	})
}

// HandleBulkUpload ingests a CSV file of products. The file is staged under
// a generated name in the scratch directory; the ingestion service removes
// it whatever the outcome.
func (h *ProductHandler) HandleBulkUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Please upload a CSV file.",
		})
	}

	actorID, _ := c.Locals("user_id").(string)

	filePath := filepath.Join(h.uploadDir, uuid.New().String()+".csv")
	if err := c.SaveFile(fileHeader, filePath); err != nil {
		log.Printf("Error saving uploaded file: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not save uploaded file",
		})
	}

	products, err := h.service.BulkUpload(c.Context(), filePath, actorID)
	if err != nil {
		log.Printf("Bulk upload failed: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Products uploaded successfully!",
		"data":    products,
	})
}

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.Context())
	if err != nil {
		log.Printf("Error getting all products: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Products fetched successfully!",
		"data":    products,
	})
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id := c.Params("id")
	product, err := h.service.GetProductByID(c.Context(), id)
	if err != nil {
		return h.productError(c, id, err)
	}
	return c.JSON(fiber.Map{
		"message": "Product fetched successfully!",
		"data":    product,
	})
}

// HandleUpdateProduct applies a partial update to a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id := c.Params("id")

	var updates models.UpdateProductRequest
	if err := c.BodyParser(&updates); err != nil {
		log.Printf("Error parsing update product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := h.validate.Struct(updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	product, err := h.service.UpdateProduct(c.Context(), id, &updates)
	if err != nil {
		return h.productError(c, id, err)
	}

	return c.JSON(fiber.Map{
		"message": "Product updated successfully!",
		"data":    product,
	})
}

// HandleDeleteProduct deletes a product by its ID. Only a confirmation is
// returned, not the deleted record.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteProduct(c.Context(), id); err != nil {
		return h.productError(c, id, err)
	}
	return c.JSON(fiber.Map{
		"message": "Product deleted successfully!",
	})
}

// productError maps product service failures onto the error envelope.
func (h *ProductHandler) productError(c *fiber.Ctx, id string, err error) error {
	if errors.Is(err, services.ErrInvalidProductID) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid product ID",
		})
	}
	if errors.Is(err, repositories.ErrProductNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Product not found",
		})
	}
	log.Printf("Product operation failed for ID %s: %v", id, err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": err.Error(),
	})
}
