package handlers_test

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"tokobuku/internal/handlers"
	"tokobuku/internal/middleware"
	"tokobuku/internal/models"
	"tokobuku/internal/repositories"
	"tokobuku/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupApp sets up a Fiber app for testing with in-memory repositories and
// all handlers/services. uploadDir is the scratch directory for bulk uploads.
func setupApp(t *testing.T) (*fiber.App, *services.AuthService, string) {
	t.Helper()

	// Configure Viper for testing
	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	uploadDir := t.TempDir()

	// Initialize Repositories (in-memory, no live database)
	bookRepo := repositories.NewMockBookRepository()
	productRepo := repositories.NewMockProductRepository()
	userRepo := repositories.NewMockUserRepository()

	// Initialize Services (nil RabbitMQ client: events are skipped)
	bookService := services.NewBookService(bookRepo)
	productService := services.NewProductService(productRepo, nil)
	authService := services.NewAuthService(userRepo, jwtSecret)

	// Initialize Handlers
	bookHandler := handlers.NewBookHandler(bookService)
	productHandler := handlers.NewProductHandler(productService, uploadDir)
	authHandler := handlers.NewAuthHandler(authService)

	app := fiber.New()

	// API Routes
	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)
	bookHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1, middleware.AuthRequired(authService))

	return app, authService, uploadDir
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(ioutil.Discard)
	code := m.Run()
	os.Exit(code)
}

// envelope mirrors the {message, data} response shape.
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, app *fiber.App, method, url string, payload interface{}, token string) (*http.Response, envelope) {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(jsonBody)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	resp.Body.Close()
	return resp, env
}

// registerAndLogin creates a user and returns a valid token plus the user id.
func registerAndLogin(t *testing.T, app *fiber.App, authService *services.AuthService, username string) (string, string) {
	t.Helper()

	userToRegister := map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	}
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", userToRegister, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	loginCredentials := map[string]string{
		"username": username,
		"password": "password123",
	}
	jsonBody, _ := json.Marshal(loginCredentials)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var loginResp map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&loginResp))
	resp.Body.Close()
	token := loginResp["token"]
	require.NotEmpty(t, token)

	claims, err := authService.ValidateToken(token)
	require.NoError(t, err)
	userID, _ := claims["user_id"].(string)
	require.NotEmpty(t, userID)

	return token, userID
}

// newBulkUploadRequest builds a multipart POST with the CSV under field "file".
func newBulkUploadRequest(t *testing.T, csvContent, token string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "products.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csvContent))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/bulk", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func assertScratchEmpty(t *testing.T, uploadDir string) {
	t.Helper()
	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "scratch upload dir should be empty after ingestion")
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app, authService, _ := setupApp(t)

	// Registration + login via the helper
	token, userID := registerAndLogin(t, app, authService, "testuser")
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, userID)

	// Duplicate registration is a conflict
	userToRegister := map[string]string{
		"username": "testuser",
		"email":    "testuser@example.com",
		"password": "password123",
	}
	jsonBody, _ := json.Marshal(userToRegister)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestBookEndpoints(t *testing.T) {
	app, _, _ := setupApp(t)

	// --- Create (public, no token) ---
	newBook := map[string]interface{}{
		"title":  "The Lord of the Rings",
		"author": "J.R.R. Tolkien",
		"genre":  "Fantasy",
		"stock":  3,
	}
	resp, env := doJSON(t, app, http.MethodPost, "/api/v1/books", newBook, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Book created successfully!", env.Message)

	var created models.Book
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.False(t, created.ID.IsZero())
	assert.True(t, created.Availability) // defaults to true
	bookID := created.ID.Hex()

	// --- Create with missing required fields ---
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/books", map[string]interface{}{"title": "No Author"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// --- Get all ---
	resp, env = doJSON(t, app, http.MethodGet, "/api/v1/books", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var books []models.Book
	require.NoError(t, json.Unmarshal(env.Data, &books))
	assert.Len(t, books, 1)

	// --- Get by id: create then fetch returns the same record ---
	resp, env = doJSON(t, app, http.MethodGet, "/api/v1/books/"+bookID, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.Book
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Equal(t, created, fetched)

	// --- Search is case-insensitive and matches substrings ---
	resp, env = doJSON(t, app, http.MethodGet, "/api/v1/books/search/lord", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(env.Data, &books))
	assert.Len(t, books, 1)
	assert.Equal(t, "The Lord of the Rings", books[0].Title)

	// --- Search with no matches is a 404, not an empty list ---
	resp, env = doJSON(t, app, http.MethodGet, "/api/v1/books/search/zzzz", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "No books found with that title", env.Message)

	// --- Partial update ---
	resp, env = doJSON(t, app, http.MethodPut, "/api/v1/books/"+bookID, map[string]interface{}{"stock": 7}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Book
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, 7, updated.Stock)
	assert.Equal(t, created.Title, updated.Title)

	// --- Malformed id is a 400 (store-level error), not a 404 ---
	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/books/not-a-valid-id", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// --- Delete returns only a confirmation ---
	resp, env = doJSON(t, app, http.MethodDelete, "/api/v1/books/"+bookID, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Book deleted successfully", env.Message)
	assert.Nil(t, env.Data)

	// --- Deleting again is a 404, not a server error ---
	resp, env = doJSON(t, app, http.MethodDelete, "/api/v1/books/"+bookID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Book not found", env.Message)
}

func TestProductEndpoints(t *testing.T) {
	app, authService, _ := setupApp(t)
	token, userID := registerAndLogin(t, app, authService, "produser")

	// --- Create (auth required) ---
	newProduct := map[string]interface{}{
		"name":        "Smartphone",
		"description": "Latest model smartphone",
		"price":       799.99,
		"sellPrice":   749.99,
		"stock":       50,
		"category":    "electronics",
	}
	resp, env := doJSON(t, app, http.MethodPost, "/api/v1/products", newProduct, token)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Product
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.False(t, created.ID.IsZero())
	assert.Equal(t, userID, created.CreatedBy)
	productID := created.ID.Hex()

	// --- Creating with sellPrice above price is rejected ---
	bad := map[string]interface{}{
		"name":        "Bad Deal",
		"description": "Sells above list",
		"price":       10.0,
		"sellPrice":   12.0,
		"stock":       1,
		"category":    "misc",
	}
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/products", bad, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// --- Reads are public ---
	resp, env = doJSON(t, app, http.MethodGet, "/api/v1/products", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var products []models.Product
	require.NoError(t, json.Unmarshal(env.Data, &products))
	assert.Len(t, products, 1)

	resp, env = doJSON(t, app, http.MethodGet, "/api/v1/products/"+productID, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// --- Malformed id is rejected before any store query ---
	resp, env = doJSON(t, app, http.MethodGet, "/api/v1/products/not-a-valid-id", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid product ID", env.Message)

	// --- Unknown but well-formed id is a 404 ---
	resp, env = doJSON(t, app, http.MethodGet, "/api/v1/products/64a0f0f0f0f0f0f0f0f0f0f0", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Product not found", env.Message)

	// --- Partial update re-validates the merged record ---
	resp, env = doJSON(t, app, http.MethodPut, "/api/v1/products/"+productID, map[string]interface{}{"sellPrice": 899.99}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env = doJSON(t, app, http.MethodPut, "/api/v1/products/"+productID, map[string]interface{}{"stock": 45}, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Product
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, 45, updated.Stock)
	assert.Equal(t, userID, updated.CreatedBy) // createdBy is immutable

	// --- An update with no fields is a no-op, not an error ---
	resp, env = doJSON(t, app, http.MethodPut, "/api/v1/products/"+productID, map[string]interface{}{}, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var unchanged models.Product
	require.NoError(t, json.Unmarshal(env.Data, &unchanged))
	assert.Equal(t, updated, unchanged)

	// --- Delete returns only a confirmation, then a 404 on repeat ---
	resp, env = doJSON(t, app, http.MethodDelete, "/api/v1/products/"+productID, nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Product deleted successfully!", env.Message)

	resp, env = doJSON(t, app, http.MethodDelete, "/api/v1/products/"+productID, nil, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProductEndpointsWithoutAuth(t *testing.T) {
	app, _, _ := setupApp(t)

	// Mutations without a token are unauthorized.
	newProduct := map[string]interface{}{
		"name":        "Unauthorized Product",
		"description": "Should not be created",
		"price":       100.0,
		"sellPrice":   90.0,
		"stock":       10,
		"category":    "misc",
	}
	jsonBody, _ := json.Marshal(newProduct)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	req = newBulkUploadRequest(t, "name,description,price,sellPrice,stock,category\n", "")
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Reads stay public.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestBulkUpload(t *testing.T) {
	app, authService, uploadDir := setupApp(t)
	token, userID := registerAndLogin(t, app, authService, "bulkuser")

	countProducts := func() int {
		resp, env := doJSON(t, app, http.MethodGet, "/api/v1/products", nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var products []models.Product
		require.NoError(t, json.Unmarshal(env.Data, &products))
		return len(products)
	}

	// --- 3 valid rows are all inserted, attributed to the actor ---
	csvContent := "name,description,price,sellPrice,stock,category\n" +
		"Laptop,High performance laptop,1200.00,999.99,10,electronics\n" +
		"Keyboard,Mechanical keyboard,75.00,60.00,25,electronics\n" +
		"Mouse,Ergonomic wireless mouse,25.00,20.00,50,electronics\n"
	req := newBulkUploadRequest(t, csvContent, token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	resp.Body.Close()
	assert.Equal(t, "Products uploaded successfully!", env.Message)

	var inserted []models.Product
	require.NoError(t, json.Unmarshal(env.Data, &inserted))
	assert.Len(t, inserted, 3)
	for _, p := range inserted {
		assert.Equal(t, userID, p.CreatedBy)
		assert.False(t, p.ID.IsZero())
	}
	assert.Equal(t, 3, countProducts())
	assertScratchEmpty(t, uploadDir)

	// --- Row 2 of 3 selling above list price fails the whole batch ---
	csvContent = "name,description,price,sellPrice,stock,category\n" +
		"Monitor,4K monitor,400.00,350.00,5,electronics\n" +
		"Webcam,HD webcam,50.00,60.00,15,electronics\n" +
		"Headset,Noise cancelling headset,120.00,100.00,8,electronics\n"
	req = newBulkUploadRequest(t, csvContent, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	resp.Body.Close()
	assert.Contains(t, env.Message, "price must be greater than or equal to sellPrice")
	assert.Equal(t, 3, countProducts(), "no row of a failed batch may be inserted")
	assertScratchEmpty(t, uploadDir)

	// --- Header only (no data rows) is an empty batch ---
	req = newBulkUploadRequest(t, "name,description,price,sellPrice,stock,category\n", token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	resp.Body.Close()
	assert.Equal(t, "CSV file is empty", env.Message)
	assert.Equal(t, 3, countProducts())
	assertScratchEmpty(t, uploadDir)

	// --- Missing multipart file field ---
	req = httptest.NewRequest(http.MethodPost, "/api/v1/products/bulk", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	resp.Body.Close()
	assert.Equal(t, "Please upload a CSV file.", env.Message)
}
