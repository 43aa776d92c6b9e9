package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrineshop/catalog_api/internal/bus"
	"github.com/vitrineshop/catalog_api/internal/directory"
	"github.com/vitrineshop/catalog_api/internal/handler"
	"github.com/vitrineshop/catalog_api/internal/models"
)

func newTestRouter(t *testing.T) (*gin.Engine, *bus.Bus) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := bus.New()
	engine := directory.NewEngine(b, 0)
	engine.Seed(directory.SeedCatalog())

	products := handler.NewProductHandler(engine)
	health := handler.NewHealthHandler("memory", b)

	router := gin.New()
	router.GET("/health", health.GetHealth)
	router.GET("/products", products.ListProducts)
	router.GET("/products/:id", products.GetProduct)
	router.POST("/products", products.CreateProduct)
	router.PUT("/products/:id", products.UpdateProduct)
	router.DELETE("/products/:id", products.DeleteProduct)
	return router, b
}

func perform(t *testing.T, router *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) models.PaginatedResult {
	t.Helper()
	var result models.PaginatedResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return result
}

func decodeProduct(t *testing.T, w *httptest.ResponseRecorder) models.Product {
	t.Helper()
	var p models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	return p
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ApiError {
	t.Helper()
	var apiErr models.ApiError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	return apiErr
}

func TestListProducts(t *testing.T) {
	router, _ := newTestRouter(t)

	w := perform(t, router, http.MethodGet, "/products", nil)
	require.Equal(t, http.StatusOK, w.Code)

	result := decodeResult(t, w)
	assert.Equal(t, 8, result.TotalItems)
	assert.Equal(t, 1, result.CurrentPage)
	assert.Equal(t, 10, result.PageSize)
	assert.Len(t, result.Data, 8)
}

func TestListProductsWithFilters(t *testing.T) {
	router, _ := newTestRouter(t)

	w := perform(t, router, http.MethodGet, "/products?category=ELETRONICOS&active=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	result := decodeResult(t, w)
	assert.Equal(t, 3, result.TotalItems)

	w = perform(t, router, http.MethodGet, "/products?minPrice=100&maxPrice=400", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, decodeResult(t, w).TotalItems)

	w = perform(t, router, http.MethodGet, "/products?search=notebook", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decodeResult(t, w).TotalItems)
}

func TestListProductsPagination(t *testing.T) {
	router, _ := newTestRouter(t)

	w := perform(t, router, http.MethodGet, "/products?page=2&pageSize=3", nil)
	require.Equal(t, http.StatusOK, w.Code)

	result := decodeResult(t, w)
	assert.Equal(t, 2, result.CurrentPage)
	assert.Equal(t, 3, result.TotalPages)
	assert.Len(t, result.Data, 3)
	assert.True(t, result.HasNext)
	assert.True(t, result.HasPrevious)
}

func TestListProductsRejectsBadParameters(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, target := range []string{
		"/products?page=-1",
		"/products?page=abc",
		"/products?pageSize=xyz",
		"/products?minPrice=cheap",
		"/products?maxPrice=1,99",
	} {
		w := perform(t, router, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.Equal(t, models.KindInvalidArgument, decodeError(t, w).Kind, target)
	}
}

func TestGetProduct(t *testing.T) {
	router, _ := newTestRouter(t)

	w := perform(t, router, http.MethodGet, "/products/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	p := decodeProduct(t, w)
	assert.Equal(t, 1, p.ID)
	assert.Equal(t, models.CategoryEletronicos, p.Category)
}

func TestGetProductNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	w := perform(t, router, http.MethodGet, "/products/999", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	apiErr := decodeError(t, w)
	assert.Equal(t, models.KindNotFound, apiErr.Kind)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "/products/999", apiErr.Path)
	assert.False(t, apiErr.Timestamp.IsZero())
}

func TestGetProductBadID(t *testing.T) {
	router, _ := newTestRouter(t)

	w := perform(t, router, http.MethodGet, "/products/abc", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.KindInvalidArgument, decodeError(t, w).Kind)
}

func TestCreateProduct(t *testing.T) {
	router, b := newTestRouter(t)

	w := perform(t, router, http.MethodPost, "/products", gin.H{
		"name":        "Teclado Mecanico",
		"price":       "299.90",
		"category":    "ELETRONICOS",
		"description": "Switches azuis",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	p := decodeProduct(t, w)
	assert.Equal(t, 9, p.ID)
	assert.Equal(t, "Teclado Mecanico", p.Name)
	assert.True(t, p.Active)
	assert.Len(t, b.Current().Products, 9)
}

func TestCreateProductValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	w := perform(t, router, http.MethodPost, "/products", gin.H{
		"name":     "ab",
		"price":    "-1",
		"category": "INVALID",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	apiErr := decodeError(t, w)
	assert.Equal(t, models.KindValidationFailed, apiErr.Kind)
	assert.Contains(t, apiErr.Message, "name must be between 3 and 200 characters")
	assert.Contains(t, apiErr.Message, "price must not be negative")
	assert.Contains(t, apiErr.Message, "category")
	assert.Equal(t, "/products", apiErr.Path)
}

func TestCreateProductBadBody(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.KindInvalidArgument, decodeError(t, w).Kind)
}

func TestUpdateProduct(t *testing.T) {
	router, _ := newTestRouter(t)

	w := perform(t, router, http.MethodPut, "/products/1", gin.H{"price": "5299.90"})
	require.Equal(t, http.StatusOK, w.Code)

	p := decodeProduct(t, w)
	assert.Equal(t, 1, p.ID)
	assert.Equal(t, "5299.9", p.Price.String())
	assert.Equal(t, "Notebook Gamer 15\"", p.Name, "unspecified fields unchanged")
}

func TestUpdateProductNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	w := perform(t, router, http.MethodPut, "/products/999", gin.H{"name": "Novo Nome"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, models.KindNotFound, decodeError(t, w).Kind)
}

func TestDeleteProduct(t *testing.T) {
	router, _ := newTestRouter(t)

	w := perform(t, router, http.MethodDelete, "/products/5", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())

	w = perform(t, router, http.MethodGet, "/products/5", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(t, router, http.MethodDelete, "/products/5", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router, b := newTestRouter(t)
	b.Publish(directory.SeedCatalog())

	w := perform(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "memory", body["mode"])
	assert.Equal(t, float64(8), body["cachedProducts"])
	assert.Equal(t, false, body["loading"])
}
