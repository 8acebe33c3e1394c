package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/fashion_store/internal/models"
)

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// ListProducts returns products ordered by id. An empty category matches
// every product and a non-positive limit disables paging.
func (r *GormRepo) ListProducts(ctx context.Context, category string, offset, limit int) (int64, []models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0)
	q = q.Order("id ASC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return translate(r.DB.WithContext(ctx).Create(prod).Error)
}

func (r *GormRepo) UpdateProduct(ctx context.Context, id uint, patch models.ProductPatch) (*models.Product, error) {
	var prod models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&prod, id).Error; err != nil {
			return err
		}
		patch.Apply(&prod)
		return tx.Save(&prod).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &prod, nil
}

// DeleteProduct removes the product together with every cart item that
// references it.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	return translate(r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prod models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&prod, id).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&prod).Error
	}))
}

func (r *GormRepo) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(q))) + "%"
	where := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\'", pattern, pattern)

	var total int64
	if err := where.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := where.Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
