package models

import "time"

type User struct {
	ID           uint    `gorm:"primaryKey;autoIncrement"        json:"id"`
	Username     *string `gorm:"size:80"                         json:"username,omitempty"`
	Email        string  `gorm:"size:120;uniqueIndex;not null"   json:"email"`
	PasswordHash string  `gorm:"size:255;not null"               json:"-"`
	IsAdmin      bool    `gorm:"not null;default:false"          json:"is_admin"`
}

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"          json:"id"`
	Name        string  `gorm:"size:100;not null"                 json:"name"`
	Description string  `gorm:"type:text;not null"                json:"description"`
	Price       float64 `gorm:"not null;check:price >= 0"         json:"price"`
	ImageURL    string  `gorm:"size:255;not null"                 json:"image_url"`
	Stock       int     `gorm:"not null;check:stock >= 0"         json:"stock"`
	Category    string  `gorm:"size:50;not null;index"            json:"category"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey;autoIncrement"                   json:"id"`
	UserID    uint `gorm:"uniqueIndex:idx_user_product;not null"      json:"user_id"`
	ProductID uint `gorm:"uniqueIndex:idx_user_product;index;not null" json:"product_id"`
	Quantity  int  `gorm:"not null;check:quantity > 0"                json:"quantity"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// CartLine is a cart item joined with the display fields of its product.
type CartLine struct {
	ID        uint    `json:"id"`
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"image_url"`
	Category  string  `json:"category"`
	Stock     int     `json:"stock"`
}

type Contact struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:100;not null"        json:"name"`
	Email     string    `gorm:"size:120;not null"        json:"email"`
	Message   string    `gorm:"type:text;not null"       json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (Contact) TableName() string {
	return "contact"
}

type NewsletterSubscription struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	Email     string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (NewsletterSubscription) TableName() string {
	return "newsletter"
}

func All() []any {
	return []any{&User{}, &Product{}, &CartItem{}, &Contact{}, &NewsletterSubscription{}}
}

// ProductPatch carries the fields of a partial product update; nil fields
// keep their stored value.
type ProductPatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	ImageURL    *string  `json:"image_url"`
	Stock       *int     `json:"stock"`
	Category    *string  `json:"category"`
}

func (p ProductPatch) Apply(prod *Product) {
	if p.Name != nil {
		prod.Name = *p.Name
	}
	if p.Description != nil {
		prod.Description = *p.Description
	}
	if p.Price != nil {
		prod.Price = *p.Price
	}
	if p.ImageURL != nil {
		prod.ImageURL = *p.ImageURL
	}
	if p.Stock != nil {
		prod.Stock = *p.Stock
	}
	if p.Category != nil {
		prod.Category = *p.Category
	}
}

func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil &&
		p.ImageURL == nil && p.Stock == nil && p.Category == nil
}
