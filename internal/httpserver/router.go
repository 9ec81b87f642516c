package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
)

type Deps struct {
	Auth    *AuthHTTP
	Catalog *CatalogHTTP
	Admin   *AdminHTTP
	Guard   *authmw.Guard

	// Ready reports whether the backing store is reachable.
	Ready func(ctx context.Context) error

	UploadPrefix string
	UploadDir    string
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready").SetInternal(err)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	if d.UploadDir != "" {
		e.Static(d.UploadPrefix, d.UploadDir)
	}

	api := e.Group("/api")

	api.POST("/auth/register", d.Auth.Register)
	api.POST("/auth/login", d.Auth.Login)
	api.GET("/auth/me", d.Auth.Me, d.Guard.RequireAuth)

	products := api.Group("/products")
	products.GET("", d.Catalog.ListProducts)
	products.GET("/categories", d.Catalog.ListCategories)
	products.GET("/search", d.Catalog.Search)
	products.GET("/:id", d.Catalog.GetProduct)

	admin := api.Group("/admin", d.Guard.RequireAdmin)
	admin.POST("/products", d.Admin.CreateProduct)
	admin.PUT("/products/:id", d.Admin.UpdateProduct)
	admin.DELETE("/products/:id", d.Admin.DeleteProduct)
	admin.POST("/categories", d.Admin.CreateCategory)
	admin.PUT("/categories/:id", d.Admin.UpdateCategory)
	admin.DELETE("/categories/:id", d.Admin.DeleteCategory)
}
