package product

import (
	"errors"
	"time"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrCodeRequired    = errors.New("product code is required")
	ErrNameRequired    = errors.New("product name is required")
	ErrNegativePrice   = errors.New("product price must not be negative")
)

// Product is a purchasable tourism package from the catalog.
// Inactive products stay in the table but are hidden from the storefront.
type Product struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image_url"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks the fields an admin must supply when creating or
// updating a product.
func (p Product) Validate() error {
	if p.Code == "" {
		return ErrCodeRequired
	}
	if p.Name == "" {
		return ErrNameRequired
	}
	if p.Price < 0 {
		return ErrNegativePrice
	}
	return nil
}
