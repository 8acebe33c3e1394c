package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/fashion_store/internal/models"
	"github.com/Skotchmaster/fashion_store/internal/service"
	"github.com/Skotchmaster/fashion_store/internal/transport"
	"github.com/Skotchmaster/fashion_store/internal/util"
	"github.com/Skotchmaster/fashion_store/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_products")

	page := util.ParseIntDefault(c.QueryParam("page"), 0)
	size := util.ParseIntDefault(c.QueryParam("size"), 0)

	items, err := h.Svc.ListProducts(ctx, c.QueryParam("category"), page, size)
	if err != nil {
		return internalError(l, "get_products_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	res, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("search_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
		}
		return internalError(l, "search_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	id, ok := parseID(c.Param("id"))
	if !ok {
		l.Warn("get_product_error", "status", 400, "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_product_error", "status", 404, "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		return internalError(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Price == nil || req.Stock == nil {
		l.Warn("create_product_error", "status", 400, "reason", "price and stock are required")
		return echo.NewHTTPError(http.StatusBadRequest, "All fields are required")
	}

	product := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		ImageURL:    req.ImageURL,
		Stock:       *req.Stock,
		Category:    req.Category,
	}
	if err := h.Svc.CreateProduct(ctx, &product); err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("create_product_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "All fields are required")
		}
		return internalError(l, "create_product_error", err)
	}

	l.Info("create_product_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, transport.ProductResponse{Message: "Product created", Product: product})
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_product")

	id, ok := parseID(c.Param("id"))
	if !ok {
		l.Warn("update_product_error", "status", 400, "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var patch models.ProductPatch
	if err := c.Bind(&patch); err != nil {
		l.Warn("update_product_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Svc.UpdateProduct(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			l.Warn("update_product_error", "status", 404, "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		case errors.Is(err, service.ErrValidation):
			l.Warn("update_product_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "invalid product fields")
		default:
			return internalError(l, "update_product_error", err)
		}
	}

	l.Info("update_product_success", "product_id", id)
	return c.JSON(http.StatusOK, transport.ProductResponse{Message: "Product updated", Product: *product})
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_product")

	id, ok := parseID(c.Param("id"))
	if !ok {
		l.Warn("delete_product_error", "status", 400, "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("delete_product_error", "status", 404, "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		return internalError(l, "delete_product_error", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Product deleted"})
}
