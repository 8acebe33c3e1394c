// Package storeclient is a typed HTTP client for the store API.
package storeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("store api: status %d: %s", e.Status, e.Message)
}

type Product struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
}

type CartItem struct {
	ID        uint `json:"id"`
	UserID    uint `json:"user_id"`
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

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

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	IsAdmin     bool   `json:"is_admin"`
}

// SetToken sets the bearer token sent with cart requests. Login sets it too.
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) Signup(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/api/signup", body, nil)
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var res LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/login", body, &res); err != nil {
		return nil, err
	}
	c.token = res.AccessToken
	return &res, nil
}

func (c *Client) Products(ctx context.Context, category string) ([]Product, error) {
	path := "/api/products"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	var res []Product
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) AddToCart(ctx context.Context, productID uint, quantity int) (*CartItem, error) {
	body := map[string]any{"product_id": productID, "quantity": quantity}
	var res struct {
		Item CartItem `json:"item"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/cart", body, &res); err != nil {
		return nil, err
	}
	return &res.Item, nil
}

func (c *Client) ViewCart(ctx context.Context) ([]CartLine, error) {
	var res []CartLine
	if err := c.do(ctx, http.MethodGet, "/api/cart", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) SetQuantity(ctx context.Context, itemID uint, quantity int) (*CartItem, error) {
	body := map[string]int{"quantity": quantity}
	var res struct {
		Item CartItem `json:"item"`
	}
	if err := c.do(ctx, http.MethodPut, cartItemPath(itemID), body, &res); err != nil {
		return nil, err
	}
	return &res.Item, nil
}

func (c *Client) RemoveFromCart(ctx context.Context, itemID uint) error {
	return c.do(ctx, http.MethodDelete, cartItemPath(itemID), nil, nil)
}

func cartItemPath(itemID uint) string {
	return "/api/cart/" + strconv.FormatUint(uint64(itemID), 10)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&msg)
		return &APIError{Status: resp.StatusCode, Message: msg.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
