package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/vitrineshop/catalog_api/internal/directory"
	"github.com/vitrineshop/catalog_api/internal/models"
)

// ProductHandler exposes the product directory over the HTTP wire contract.
// It is wired to exactly one Directory adapter at startup.
type ProductHandler struct {
	dir directory.Directory
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(dir directory.Directory) *ProductHandler {
	return &ProductHandler{dir: dir}
}

// ListProducts handles GET /products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	filter := models.Filter{
		Search:   c.Query("search"),
		Category: models.Category(c.Query("category")),
	}
	if v := c.Query("minPrice"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			writeError(c, models.ErrInvalidArgument("minPrice must be a decimal number"))
			return
		}
		filter.MinPrice = &d
	}
	if v := c.Query("maxPrice"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			writeError(c, models.ErrInvalidArgument("maxPrice must be a decimal number"))
			return
		}
		filter.MaxPrice = &d
	}
	if v := c.Query("active"); v != "" {
		active := v == "true"
		filter.Active = &active
	}

	page := models.Pagination{}
	if v := c.Query("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			writeError(c, models.ErrInvalidArgument("page must be an integer"))
			return
		}
		page.Page = p
	}
	if v := c.Query("pageSize"); v != "" {
		s, err := strconv.Atoi(v)
		if err != nil {
			writeError(c, models.ErrInvalidArgument("pageSize must be an integer"))
			return
		}
		page.PageSize = s
	}

	result, err := h.dir.List(c.Request.Context(), filter, page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, result)
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	product, err := h.dir.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, product)
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input models.CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		writeError(c, models.ErrInvalidArgument("invalid request body"))
		return
	}
	product, err := h.dir.Create(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(201, product)
}

// UpdateProduct handles PUT /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input models.UpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		writeError(c, models.ErrInvalidArgument("invalid request body"))
		return
	}
	product, err := h.dir.Update(c.Request.Context(), id, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, product)
}

// DeleteProduct handles DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.dir.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(204)
}

func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		writeError(c, models.ErrInvalidArgument("id must be an integer"))
		return 0, false
	}
	return id, true
}

// writeError serializes the error in the shared ApiError shape, stamping
// the originating path.
func writeError(c *gin.Context, err error) {
	apiErr := models.AsApiError(err)
	apiErr.Path = c.Request.URL.Path
	c.JSON(apiErr.StatusCode, apiErr)
}
