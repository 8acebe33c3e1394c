package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Skotchmaster/fashion_store/internal/models"
	"github.com/Skotchmaster/fashion_store/internal/repo"
	"github.com/Skotchmaster/fashion_store/internal/util"
	"github.com/Skotchmaster/fashion_store/pkg/events"
	"github.com/Skotchmaster/fashion_store/pkg/logging"
)

type CatalogStore interface {
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	ListProducts(ctx context.Context, category string, offset, limit int) (int64, []models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, id uint, patch models.ProductPatch) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error)
}

// ProductIndex is the full-text search backend. Optional.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	Search(ctx context.Context, q string, from, size int) (int64, []models.Product, error)
}

type CatalogService struct {
	Repo   CatalogStore
	Index  ProductIndex
	Events events.Publisher
}

type ProductPage struct {
	Total    int64            `json:"total"`
	Products []models.Product `json:"products"`
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

// ListProducts returns every matching product when neither page nor size
// is given, one page otherwise.
func (s *CatalogService) ListProducts(ctx context.Context, category string, page, size int) ([]models.Product, error) {
	offset, limit := 0, 0
	if page > 0 || size > 0 {
		offset, limit = util.Calculate(page, size)
	}
	_, items, err := s.Repo.ListProducts(ctx, strings.TrimSpace(category), offset, limit)
	return items, err
}

func (s *CatalogService) SearchProducts(ctx context.Context, q string, page, size int) (*ProductPage, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("query must not be empty: %w", ErrValidation)
	}
	from, limit := util.Calculate(page, size)

	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, q, from, limit)
		if err == nil {
			return &ProductPage{Total: total, Products: items}, nil
		}
		logging.FromContext(ctx).Warn("search_index_error", "error", err)
	}

	total, items, err := s.Repo.SearchProducts(ctx, q, from, limit)
	if err != nil {
		return nil, err
	}
	return &ProductPage{Total: total, Products: items}, nil
}

func validateProduct(p *models.Product) error {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Description) == "" ||
		strings.TrimSpace(p.ImageURL) == "" || strings.TrimSpace(p.Category) == "" {
		return fmt.Errorf("all fields are required: %w", ErrValidation)
	}
	if p.Price < 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
		return fmt.Errorf("price must be a non-negative number: %w", ErrValidation)
	}
	if p.Stock < 0 {
		return fmt.Errorf("stock must be non-negative: %w", ErrValidation)
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, p *models.Product) error {
	p.ID = 0
	if err := validateProduct(p); err != nil {
		return err
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return err
	}

	s.index(ctx, *p)
	publish(ctx, s.Events, events.TopicProduct, p.ID, map[string]any{
		"type":      "product_created",
		"productID": p.ID,
		"name":      p.Name,
		"price":     p.Price,
		"stock":     p.Stock,
	})
	return nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, patch models.ProductPatch) (*models.Product, error) {
	for _, f := range []*string{patch.Name, patch.Description, patch.ImageURL, patch.Category} {
		if f != nil && strings.TrimSpace(*f) == "" {
			return nil, fmt.Errorf("fields must not be empty: %w", ErrValidation)
		}
	}
	if patch.Price != nil && (*patch.Price < 0 || math.IsNaN(*patch.Price) || math.IsInf(*patch.Price, 0)) {
		return nil, fmt.Errorf("price must be a non-negative number: %w", ErrValidation)
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		return nil, fmt.Errorf("stock must be non-negative: %w", ErrValidation)
	}

	p, err := s.Repo.UpdateProduct(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, err
	}

	s.index(ctx, *p)
	publish(ctx, s.Events, events.TopicProduct, p.ID, map[string]any{
		"type":      "product_updated",
		"productID": p.ID,
		"name":      p.Name,
		"price":     p.Price,
		"stock":     p.Stock,
	})
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return err
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_index_error", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicProduct, id, map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	return nil
}

func (s *CatalogService) index(ctx context.Context, p models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_error", "product_id", p.ID, "error", err)
	}
}
