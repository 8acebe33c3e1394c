package transport

import "github.com/Skotchmaster/fashion_store/internal/models"

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	IsAdmin     bool   `json:"is_admin"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// AddToCartRequest adds one unit when quantity is omitted.
type AddToCartRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  *int `json:"quantity"`
}

type SetQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

type CartItemResponse struct {
	Message string          `json:"message"`
	Item    models.CartItem `json:"item"`
}

type CreateProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	ImageURL    string   `json:"image_url"`
	Stock       *int     `json:"stock"`
	Category    string   `json:"category"`
}

type ProductResponse struct {
	Message string         `json:"message"`
	Product models.Product `json:"product"`
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type NewsletterRequest struct {
	Email string `json:"email"`
}
