package handlers

import (
	"errors"
	"fmt"
	"log"

	"tokobuku/internal/models"
	"tokobuku/internal/repositories"
	"tokobuku/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// BookHandler handles HTTP requests for books.
type BookHandler struct {
	service  *services.BookService
	validate *validator.Validate
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(service *services.BookService) *BookHandler {
	return &BookHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the book routes with the Fiber app. Book routes
// are public. The search route is registered before the id route so that
// "search" is not captured as an id.
func (h *BookHandler) RegisterRoutes(router fiber.Router) {
	bookRoutes := router.Group("/books")
	bookRoutes.Post("/", h.HandleCreateBook)
	bookRoutes.Get("/", h.HandleGetBooks)
	bookRoutes.Get("/search/:title", h.HandleSearchBooksByTitle)
	bookRoutes.Get("/:id", h.HandleGetBookByID)
	bookRoutes.Put("/:id", h.HandleUpdateBook)
	bookRoutes.Delete("/:id", h.HandleDeleteBook)
}

// HandleCreateBook creates a new book.
func (h *BookHandler) HandleCreateBook(c *fiber.Ctx) error {
	var req models.CreateBookRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create book request body: %v", err)
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

	book, err := h.service.CreateBook(c.Context(), &req)
	if err != nil {
		log.Printf("Error creating book: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Book created successfully!",
		"data":    book,
	})
}

// HandleGetBooks retrieves all books.
func (h *BookHandler) HandleGetBooks(c *fiber.Ctx) error {
	books, err := h.service.GetAllBooks(c.Context())
	if err != nil {
		log.Printf("Error getting all books: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Books fetched successfully!",
		"data":    books,
	})
}

// HandleGetBookByID retrieves a single book by its ID.
func (h *BookHandler) HandleGetBookByID(c *fiber.Ctx) error {
	id := c.Params("id")
	book, err := h.service.GetBookByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrBookNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Book not found",
			})
		}
		log.Printf("Error getting book by ID %s: %v", id, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Book fetched successfully!",
		"data":    book,
	})
}

// HandleSearchBooksByTitle retrieves books whose title contains the given
// text. No match is a 404, not an empty list.
func (h *BookHandler) HandleSearchBooksByTitle(c *fiber.Ctx) error {
	title := c.Params("title")
	books, err := h.service.SearchBooksByTitle(c.Context(), title)
	if err != nil {
		if errors.Is(err, repositories.ErrBookNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "No books found with that title",
			})
		}
		log.Printf("Error searching books by title %q: %v", title, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Books fetched successfully!",
		"data":    books,
	})
}

// HandleUpdateBook applies a partial update to a book.
func (h *BookHandler) HandleUpdateBook(c *fiber.Ctx) error {
	id := c.Params("id")

	var updates models.UpdateBookRequest
	if err := c.BodyParser(&updates); err != nil {
		log.Printf("Error parsing update book request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := h.validate.Struct(updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	book, err := h.service.UpdateBook(c.Context(), id, &updates)
	if err != nil {
		if errors.Is(err, repositories.ErrBookNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Book not found",
			})
		}
		log.Printf("Error updating book %s: %v", id, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Book updated successfully!",
		"data":    book,
	})
}

// HandleDeleteBook deletes a book by its ID. Only a confirmation is
// returned, not the deleted record.
func (h *BookHandler) HandleDeleteBook(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteBook(c.Context(), id); err != nil {
		if errors.Is(err, repositories.ErrBookNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Book not found",
			})
		}
		log.Printf("Error deleting book %s: %v", id, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Book deleted successfully",
	})
}
