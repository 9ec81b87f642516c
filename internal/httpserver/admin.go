package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

const imageField = "image"

type AdminHTTP struct {
	Svc *service.CatalogService
}

// bindProduct reads the product fields and, for multipart requests, the
// optional image. The returned closer must be called once the upload has
// been consumed.
func bindProduct(c echo.Context) (transport.ProductRequest, *service.Upload, func(), error) {
	noop := func() {}

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return req, nil, noop, echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return req, nil, noop, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return req, nil, noop, nil
	}

	fh, err := c.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil, noop, nil
	}
	if err != nil {
		return req, nil, noop, echo.NewHTTPError(http.StatusBadRequest, "invalid image upload")
	}

	f, err := fh.Open()
	if err != nil {
		return req, nil, noop, echo.NewHTTPError(http.StatusBadRequest, "invalid image upload")
	}
	return req, &service.Upload{Filename: fh.Filename, Body: f}, func() { _ = f.Close() }, nil
}

// CreateProduct godoc
// @Summary Create a product
// @Tags admin
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param sku formData string true "SKU"
// @Param name formData string true "Name"
// @Param category_id formData int true "Category id"
// @Param mrp formData number true "List price"
// @Param discount formData number false "Discount percentage"
// @Param quantity formData int false "Stock"
// @Param image formData file false "Product image"
// @Success 201 {object} models.Product
// @Failure 400 {object} transport.ErrorResponse
// @Failure 401 {object} transport.ErrorResponse
// @Failure 403 {object} transport.ErrorResponse
// @Router /admin/products [post]
func (h *AdminHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_product")

	req, img, done, err := bindProduct(c)
	defer done()
	if err != nil {
		l.Warn("create_product_error", "status", 400, "reason", "invalid request", "error", err)
		return err
	}

	prod, err := h.Svc.CreateProduct(ctx, req.Input(), img)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, prod)
}

// UpdateProduct godoc
// @Summary Replace a product
// @Tags admin
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product id"
// @Param image formData file false "Product image"
// @Success 200 {object} models.Product
// @Failure 400 {object} transport.ErrorResponse
// @Failure 404 {object} transport.ErrorResponse
// @Router /admin/products/{id} [put]
func (h *AdminHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_product")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	req, img, done, err := bindProduct(c)
	defer done()
	if err != nil {
		l.Warn("update_product_error", "status", 400, "reason", "invalid request", "error", err)
		return err
	}

	prod, err := h.Svc.UpdateProduct(ctx, id, req.Input(), img)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, prod)
}

// DeleteProduct godoc
// @Summary Deactivate a product
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product id"
// @Success 200 {object} transport.MessageResponse
// @Failure 404 {object} transport.ErrorResponse
// @Router /admin/products/{id} [delete]
func (h *AdminHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Product deleted"})
}

func bindCategory(c echo.Context) (transport.CategoryRequest, error) {
	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return req, nil
}

// CreateCategory godoc
// @Summary Create a category
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body transport.CategoryRequest true "Category"
// @Success 201 {object} models.Category
// @Failure 400 {object} transport.ErrorResponse
// @Router /admin/categories [post]
func (h *AdminHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := bindCategory(c)
	if err != nil {
		logging.FromContext(ctx).With("handler", "admin.create_category").
			Warn("create_category_error", "status", 400, "error", err)
		return err
	}

	cat, err := h.Svc.CreateCategory(ctx, req.Input())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, cat)
}

// UpdateCategory godoc
// @Summary Replace a category
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category id"
// @Param request body transport.CategoryRequest true "Category"
// @Success 200 {object} models.Category
// @Failure 404 {object} transport.ErrorResponse
// @Router /admin/categories/{id} [put]
func (h *AdminHTTP) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return err
	}
	req, err := bindCategory(c)
	if err != nil {
		logging.FromContext(ctx).With("handler", "admin.update_category").
			Warn("update_category_error", "status", 400, "error", err)
		return err
	}

	cat, err := h.Svc.UpdateCategory(ctx, id, req.Input())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cat)
}

// DeleteCategory godoc
// @Summary Deactivate a category
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category id"
// @Success 200 {object} transport.MessageResponse
// @Failure 404 {object} transport.ErrorResponse
// @Router /admin/categories/{id} [delete]
func (h *AdminHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteCategory(ctx, id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Category deleted"})
}
