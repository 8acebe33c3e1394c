package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/fashion_store/internal/models"
)

// CartTx is the store as seen from inside WithProductLock. Every method
// works on the transaction that holds the product row lock.
type CartTx interface {
	Product() models.Product
	FindItem(userID uint) (*models.CartItem, error)
	FindItemByID(userID, itemID uint) (*models.CartItem, error)
	ReservedByOthers(userID uint) (int, error)
	SaveItem(item *models.CartItem) error
}

type gormCartTx struct {
	tx      *gorm.DB
	product models.Product
}

// WithProductLock runs fn in a transaction after taking a row lock on the
// product. Concurrent cart mutations on the same product are serialized.
func (r *GormRepo) WithProductLock(ctx context.Context, productID uint, fn func(CartTx) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, productID).Error; err != nil {
			return translate(err)
		}
		return fn(&gormCartTx{tx: tx, product: product})
	})
}

func (t *gormCartTx) Product() models.Product { return t.product }

func (t *gormCartTx) FindItem(userID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := t.tx.Where("user_id = ? AND product_id = ?", userID, t.product.ID).First(&item).Error
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (t *gormCartTx) FindItemByID(userID, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := t.tx.Where("id = ? AND user_id = ? AND product_id = ?", itemID, userID, t.product.ID).First(&item).Error
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (t *gormCartTx) ReservedByOthers(userID uint) (int, error) {
	var total int64
	err := t.tx.Model(&models.CartItem{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("product_id = ? AND user_id <> ?", t.product.ID, userID).
		Scan(&total).Error
	return int(total), err
}

func (t *gormCartTx) SaveItem(item *models.CartItem) error {
	return translate(t.tx.Save(item).Error)
}

func (r *GormRepo) GetCartItem(ctx context.Context, userID, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *GormRepo) ListCart(ctx context.Context, userID uint) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.DB.WithContext(ctx).
		Table("cart_items AS ci").
		Select("ci.id, ci.product_id, p.name, p.price, ci.quantity, p.image_url, p.category, p.stock").
		Joins("JOIN products AS p ON p.id = ci.product_id").
		Where("ci.user_id = ?", userID).
		Order("ci.id ASC").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []models.CartLine{}
	}
	return lines, nil
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, userID, itemID uint) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
