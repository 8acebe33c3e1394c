package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/fashion_store/internal/models"
	"github.com/Skotchmaster/fashion_store/internal/repo"
	"github.com/Skotchmaster/fashion_store/pkg/events"
	"github.com/Skotchmaster/fashion_store/pkg/logging"
)

// StockPolicy decides how much of a product's stock one cart line may claim.
type StockPolicy string

const (
	// PolicyLine caps each line at the product stock; carts of other users
	// are not considered.
	PolicyLine StockPolicy = "line"
	// PolicyReserved caps the line at the stock left after every other
	// user's carted quantity of the same product.
	PolicyReserved StockPolicy = "reserved"
)

type CartStore interface {
	WithProductLock(ctx context.Context, productID uint, fn func(repo.CartTx) error) error
	GetCartItem(ctx context.Context, userID, itemID uint) (*models.CartItem, error)
	ListCart(ctx context.Context, userID uint) ([]models.CartLine, error)
	DeleteCartItem(ctx context.Context, userID, itemID uint) error
}

type CartService struct {
	Repo    CartStore
	Policy  StockPolicy
	Events  events.Publisher
	Metrics *CartMetrics
}

type InsufficientStockError struct {
	ProductID uint
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("product %d: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

func isInsufficientStock(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}

// available is the quantity the user's line for the locked product may hold.
func (s *CartService) available(tx repo.CartTx, userID uint) (int, error) {
	stock := tx.Product().Stock
	if s.Policy != PolicyReserved {
		return stock, nil
	}
	others, err := tx.ReservedByOthers(userID)
	if err != nil {
		return 0, err
	}
	return max(stock-others, 0), nil
}

func (s *CartService) AddToCart(ctx context.Context, userID, productID uint, quantity int) (item *models.CartItem, err error) {
	defer func() { s.Metrics.observe("add", err) }()

	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", ErrValidation)
	}
	if productID == 0 {
		return nil, fmt.Errorf("product_id is required: %w", ErrValidation)
	}

	var result models.CartItem
	err = s.Repo.WithProductLock(ctx, productID, func(tx repo.CartTx) error {
		line, err := tx.FindItem(userID)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			line = &models.CartItem{UserID: userID, ProductID: productID}
		case err != nil:
			return err
		}

		avail, err := s.available(tx, userID)
		if err != nil {
			return err
		}
		if quantity > avail-line.Quantity {
			return &InsufficientStockError{ProductID: productID, Requested: line.Quantity + quantity, Available: avail}
		}

		line.Quantity += quantity
		if err := tx.SaveItem(line); err != nil {
			return err
		}
		result = *line
		return nil
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return nil, err
	}

	logging.FromContext(ctx).Debug("cart_item_added", "user_id", userID, "product_id", productID, "quantity", result.Quantity)
	publish(ctx, s.Events, events.TopicCart, userID, map[string]any{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": productID,
		"itemID":    result.ID,
		"added":     quantity,
		"quantity":  result.Quantity,
	})
	return &result, nil
}

func (s *CartService) ViewCart(ctx context.Context, userID uint) ([]models.CartLine, error) {
	return s.Repo.ListCart(ctx, userID)
}

func (s *CartService) SetQuantity(ctx context.Context, userID, itemID uint, quantity int) (item *models.CartItem, err error) {
	defer func() { s.Metrics.observe("set", err) }()

	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", ErrValidation)
	}

	current, err := s.Repo.GetCartItem(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("cart item %d: %w", itemID, ErrNotFound)
		}
		return nil, err
	}

	var result models.CartItem
	err = s.Repo.WithProductLock(ctx, current.ProductID, func(tx repo.CartTx) error {
		// Re-read under the lock; the line may have been removed meanwhile.
		line, err := tx.FindItemByID(userID, itemID)
		if err != nil {
			return err
		}

		avail, err := s.available(tx, userID)
		if err != nil {
			return err
		}
		if quantity > avail {
			return &InsufficientStockError{ProductID: line.ProductID, Requested: quantity, Available: avail}
		}

		line.Quantity = quantity
		if err := tx.SaveItem(line); err != nil {
			return err
		}
		result = *line
		return nil
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("cart item %d: %w", itemID, ErrNotFound)
		}
		return nil, err
	}

	publish(ctx, s.Events, events.TopicCart, userID, map[string]any{
		"type":      "cart_item_updated",
		"userID":    userID,
		"productID": result.ProductID,
		"itemID":    result.ID,
		"quantity":  result.Quantity,
	})
	return &result, nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, userID, itemID uint) (err error) {
	defer func() { s.Metrics.observe("remove", err) }()

	if err := s.Repo.DeleteCartItem(ctx, userID, itemID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("cart item %d: %w", itemID, ErrNotFound)
		}
		return err
	}

	publish(ctx, s.Events, events.TopicCart, userID, map[string]any{
		"type":   "cart_item_removed",
		"userID": userID,
		"itemID": itemID,
	})
	return nil
}
