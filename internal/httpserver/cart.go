package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/fashion_store/internal/service"
	"github.com/Skotchmaster/fashion_store/internal/transport"
	authmw "github.com/Skotchmaster/fashion_store/pkg/middleware/auth"
	"github.com/Skotchmaster/fashion_store/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	id, ok := authmw.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	item, err := h.Svc.AddToCart(ctx, id.UserID, req.ProductID, quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("add_to_cart_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "product_id and a quantity of at least 1 are required")
		case errors.Is(err, service.ErrNotFound):
			l.Warn("add_to_cart_error", "status", 404, "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		case errors.Is(err, service.ErrInsufficientStock):
			l.Warn("add_to_cart_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Product not available or insufficient stock")
		default:
			return internalError(l, "add_to_cart_error", err)
		}
	}

	return c.JSON(http.StatusCreated, transport.CartItemResponse{Message: "Added to cart", Item: *item})
}

func (h *CartHTTP) ViewCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.view")

	id, ok := authmw.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	lines, err := h.Svc.ViewCart(ctx, id.UserID)
	if err != nil {
		return internalError(l, "view_cart_error", err)
	}
	return c.JSON(http.StatusOK, lines)
}

func (h *CartHTTP) SetQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.set_quantity")

	id, ok := authmw.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	itemID, ok := parseID(c.Param("item_id"))
	if !ok {
		l.Warn("set_quantity_error", "status", 400, "item_id", c.Param("item_id"))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	var req transport.SetQuantityRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("set_quantity_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Quantity == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity is required")
	}

	item, err := h.Svc.SetQuantity(ctx, id.UserID, itemID, *req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("set_quantity_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "quantity must be at least 1")
		case errors.Is(err, service.ErrNotFound):
			l.Warn("set_quantity_error", "status", 404, "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "Item not found in cart")
		case errors.Is(err, service.ErrInsufficientStock):
			l.Warn("set_quantity_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Insufficient stock")
		default:
			return internalError(l, "set_quantity_error", err)
		}
	}

	return c.JSON(http.StatusOK, transport.CartItemResponse{Message: "Cart updated", Item: *item})
}

func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	id, ok := authmw.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	itemID, ok := parseID(c.Param("item_id"))
	if !ok {
		l.Warn("remove_from_cart_error", "status", 404, "item_id", c.Param("item_id"))
		return echo.NewHTTPError(http.StatusNotFound, "Item not found in cart")
	}

	if err := h.Svc.RemoveFromCart(ctx, id.UserID, itemID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("remove_from_cart_error", "status", 404, "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "Item not found in cart")
		}
		return internalError(l, "remove_from_cart_error", err)
	}

	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Item removed from cart"})
}
