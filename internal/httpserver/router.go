package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/fashion_store/pkg/middleware/auth"
	"github.com/Skotchmaster/fashion_store/pkg/middleware/metrics"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	CartHandler    *CartHTTP
	ContactHandler *ContactHTTP
	BearerAuth     *authmw.BearerAuth
	Metrics        *metrics.HTTPMetrics
	Ready          func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
			}
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", d.Metrics.Handler())
	}

	docs := e.Group("/api-docs")
	docs.GET("/openapi.yaml", serveOpenAPIYAML)
	docs.GET("/openapi.json", serveOpenAPIJSON)

	api := e.Group("/api")

	api.POST("/signup", d.AuthHandler.Signup)
	api.POST("/login", d.AuthHandler.Login)
	api.POST("/contact", d.ContactHandler.Contact)
	api.POST("/newsletter", d.ContactHandler.Newsletter)

	products := api.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)

	cart := api.Group("/cart", d.BearerAuth.RequireAuth)
	cart.POST("", d.CartHandler.AddToCart)
	cart.GET("", d.CartHandler.ViewCart)
	cart.PUT("/:item_id", d.CartHandler.SetQuantity)
	cart.DELETE("/:item_id", d.CartHandler.RemoveFromCart)

	admin := api.Group("/admin", d.BearerAuth.RequireAdmin)
	admin.GET("/products", d.CatalogHandler.GetProducts)
	admin.POST("/products", d.CatalogHandler.CreateProduct)
	admin.PUT("/products/:id", d.CatalogHandler.UpdateProduct)
	admin.DELETE("/products/:id", d.CatalogHandler.DeleteProduct)
}
