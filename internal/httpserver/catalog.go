package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/util"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id must be a positive integer")
	}
	return uint(id), nil
}

// ListProducts godoc
// @Summary List active products
// @Tags products
// @Produce json
// @Param category query int false "Category id"
// @Param minPrice query number false "Minimum effective price"
// @Param maxPrice query number false "Maximum effective price"
// @Param sortBy query string false "id, name, mrp, quantity or price"
// @Param order query string false "asc or desc"
// @Param page query int false "Page, enables pagination"
// @Param size query int false "Page size, at most 100"
// @Success 200 {array} models.ProductView
// @Failure 400 {object} transport.ErrorResponse
// @Router /products [get]
func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list_products")

	items, err := h.Svc.ListProducts(ctx, c.QueryParams())
	if err != nil {
		code, _ := statusFor(err)
		l.Warn("list_products_error", "status", code, "error", err)
		return httpError(err)
	}

	l.Debug("list_products_success", "count", len(items))
	return c.JSON(http.StatusOK, items)
}

// GetProduct godoc
// @Summary Get an active product
// @Tags products
// @Produce json
// @Param id path int true "Product id"
// @Success 200 {object} models.ProductView
// @Failure 404 {object} transport.ErrorResponse
// @Router /products/{id} [get]
func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return err
	}

	p, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		logging.FromContext(ctx).With("handler", "product.get_product").
			Warn("get_product_error", "product_id", id, "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

// ListCategories godoc
// @Summary List active categories
// @Tags products
// @Produce json
// @Success 200 {array} models.Category
// @Router /products/categories [get]
func (h *CatalogHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()

	cats, err := h.Svc.ListCategories(ctx)
	if err != nil {
		logging.FromContext(ctx).With("handler", "product.list_categories").
			Error("list_categories_error", "status", 500, "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cats)
}

// Search godoc
// @Summary Full-text product search
// @Tags products
// @Produce json
// @Param q query string true "Query"
// @Param page query int false "Page"
// @Param size query int false "Page size"
// @Success 200 {object} service.SearchResult
// @Failure 503 {object} transport.ErrorResponse
// @Router /products/search [get]
func (h *CatalogHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	res, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		code, _ := statusFor(err)
		l.Warn("search_error", "status", code, "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}
