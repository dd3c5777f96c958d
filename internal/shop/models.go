package shop

import (
	"errors"
	"time"

	"homiepro-storefront/internal/catalog"
)

// View is the top-level screen a session is showing.
type View string

const (
	ViewShop     View = "shop"
	ViewWishlist View = "wishlist"
	ViewCheckout View = "checkout"
	ViewSuccess  View = "success"
)

var (
	// ErrInvalidTransition rejects a navigation the current view does not allow.
	ErrInvalidTransition = errors.New("invalid view transition")
	// ErrEmptyCart rejects checkout with nothing in the cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrSessionNotFound is returned for unknown or expired sessions.
	ErrSessionNotFound = errors.New("session not found")
)

// CartItem is a product in the cart with its quantity (always >= 1).
type CartItem struct {
	catalog.Product
	Quantity int `json:"quantity"`
}

// LineTotal is price times quantity.
func (i CartItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Effects describes what the presentation layer should do after an
// operation, along with the view it left the session in.
type Effects struct {
	View        View `json:"view"`
	ScrollTop   bool `json:"scroll_top,omitempty"`
	OpenDrawer  bool `json:"open_drawer,omitempty"`
	CloseDrawer bool `json:"close_drawer,omitempty"`
	CartCleared bool `json:"cart_cleared,omitempty"`
}

// ShippingDetails is the optional address entered on the checkout form.
type ShippingDetails struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Address   string `json:"address"`
}

// CheckoutSummary is the order summary shown during checkout.
type CheckoutSummary struct {
	Items      []CartItem `json:"items"`
	TotalItems int        `json:"total_items"`
	Subtotal   float64    `json:"subtotal"`
	Shipping   float64    `json:"shipping"`
	Total      float64    `json:"total"`
}

// Order is the mock receipt produced when checkout completes. Nothing is
// charged or fulfilled.
type Order struct {
	ID string `json:"id"`
	CheckoutSummary
	ShippingDetails *ShippingDetails `json:"shipping_details,omitempty"`
	PlacedAt        time.Time        `json:"placed_at"`
}
