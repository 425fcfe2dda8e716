package models

import "time"

// Category as reported by the storefront backend.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Product is the canonical product shape used everywhere inside the
// service. Backend payloads are converted into this type once, at the
// edge (see NormalizeProduct); no other package branches on the
// backend's field-name variants.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	Stock       int      `json:"stock"`
	Category    Category `json:"category"`
	Image       string   `json:"image,omitempty"`
}

// CartLine pairs a product snapshot with a quantity. The snapshot is
// taken when the line is first added; price and stock ceiling are read
// from it, not re-fetched.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal returns price times quantity for this line.
func (l CartLine) Subtotal() float64 {
	return l.Product.Price * float64(l.Quantity)
}

// Credential identifies an authenticated session against the backend.
type Credential struct {
	AccessToken string `json:"token"`
	UserID      string `json:"userId"`
}

// Purchase is the backend's record of a completed checkout.
type Purchase struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Total     float64        `json:"total"`
	Shipping  float64        `json:"shipping"`
	Status    string         `json:"status,omitempty"`
	Items     []PurchaseItem `json:"items"`
	CreatedAt time.Time      `json:"createdAt,omitempty"`
}

// PurchaseItem is one product-quantity pairing within a purchase.
type PurchaseItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Favorite links a user to a product they marked.
type Favorite struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
}
