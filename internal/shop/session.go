// Package shop holds the per-session storefront state: cart, wishlist, the
// active view and its filter, plus the session's chat. All mutations go
// through Session methods, which serialise them.
package shop

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"homiepro-storefront/internal/catalog"
	"homiepro-storefront/internal/chat"
)

// Session is the state of one browser session.
type Session struct {
	ID   string
	Chat *chat.Session

	catalog  *catalog.Store
	now      func() time.Time
	lastSeen atomic.Int64

	mu           sync.Mutex
	view         View
	checkoutFrom View
	category     catalog.Category
	query        string
	drawerOpen   bool
	cart         Cart
	wishlist     Wishlist
	lastOrder    *Order
}

// NewSession returns a session showing the shop with every category and an
// empty cart.
func NewSession(id string, store *catalog.Store, gw chat.Gateway, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	s := &Session{
		ID:       id,
		Chat:     chat.NewSession(gw),
		catalog:  store,
		now:      now,
		view:     ViewShop,
		category: catalog.CategoryAll,
	}
	s.touch()
	return s
}

func (s *Session) touch() {
	s.lastSeen.Store(s.now().UnixNano())
}

// LastSeen is the time of the last lookup through the registry.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) effects() Effects {
	return Effects{View: s.view}
}

// View returns the active view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// reopenDrawer opens the cart drawer. The drawer belongs to the browsing
// views, so opening it during checkout returns to the view checkout was
// started from. Callers hold s.mu.
func (s *Session) reopenDrawer() Effects {
	if s.view == ViewCheckout {
		s.view = s.checkoutFrom
	}
	s.drawerOpen = true
	eff := s.effects()
	eff.OpenDrawer = true
	return eff
}

// leaveCheckout applies to cart edits, which are only possible from the
// drawer. Callers hold s.mu.
func (s *Session) leaveCheckout() Effects {
	if s.view == ViewCheckout {
		return s.reopenDrawer()
	}
	return s.effects()
}

// SelectCategory filters the shop by category and shows it.
func (s *Session) SelectCategory(c catalog.Category) (Effects, error) {
	if !c.ValidFilter() {
		return Effects{}, catalog.ErrUnknownCategory
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.category = c
	s.view = ViewShop
	eff := s.effects()
	eff.ScrollTop = true
	return eff, nil
}

// SetQuery changes the search text. The view is left alone.
func (s *Session) SetQuery(q string) Effects {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
	return s.effects()
}

// ShowShop is the logo click: back to the shop, scrolled to the top.
func (s *Session) ShowShop() Effects {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = ViewShop
	eff := s.effects()
	eff.ScrollTop = true
	return eff
}

// ShowWishlist switches to the wishlist. After an order has been placed the
// success view only leads back to the shop.
func (s *Session) ShowWishlist() (Effects, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view == ViewSuccess {
		return s.effects(), ErrInvalidTransition
	}
	s.view = ViewWishlist
	eff := s.effects()
	eff.ScrollTop = true
	return eff, nil
}

// Back is "back to shop" / "continue shopping".
func (s *Session) Back() Effects {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = ViewShop
	return s.effects()
}

// OpenCart opens the cart drawer.
func (s *Session) OpenCart() Effects {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reopenDrawer()
}

// CloseCart closes the cart drawer.
func (s *Session) CloseCart() Effects {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawerOpen = false
	eff := s.effects()
	eff.CloseDrawer = true
	return eff
}

// AddToCart adds one of the product and opens the drawer.
func (s *Session) AddToCart(productID string) (Effects, error) {
	p, err := s.catalog.GetProduct(productID)
	if err != nil {
		return Effects{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Add(p)
	return s.reopenDrawer(), nil
}

// UpdateQuantity moves a cart line by delta, clamped at 1. Products not in
// the cart leave the session untouched.
func (s *Session) UpdateQuantity(productID string, delta int) Effects {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cart.UpdateQuantity(productID, delta) {
		return s.effects()
	}
	return s.leaveCheckout()
}

// RemoveFromCart drops a cart line.
func (s *Session) RemoveFromCart(productID string) Effects {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cart.Remove(productID) {
		return s.effects()
	}
	return s.leaveCheckout()
}

// ToggleWishlist flips the product's wishlist membership and reports
// whether it is now saved.
func (s *Session) ToggleWishlist(productID string) (bool, Effects, error) {
	p, err := s.catalog.GetProduct(productID)
	if err != nil {
		return false, Effects{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wishlist.Toggle(p), s.effects(), nil
}

// BeginCheckout moves from a browsing view to checkout and closes the
// drawer. The cart must not be empty.
func (s *Session) BeginCheckout() (Effects, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view != ViewShop && s.view != ViewWishlist {
		return s.effects(), ErrInvalidTransition
	}
	if s.cart.Len() == 0 {
		return s.effects(), ErrEmptyCart
	}
	s.checkoutFrom = s.view
	s.view = ViewCheckout
	s.drawerOpen = false
	eff := s.effects()
	eff.CloseDrawer = true
	eff.ScrollTop = true
	return eff, nil
}

// CheckoutSummary returns the order summary for the current cart.
func (s *Session) CheckoutSummary() CheckoutSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary()
}

func (s *Session) summary() CheckoutSummary {
	subtotal := s.cart.Subtotal()
	return CheckoutSummary{
		Items:      s.cart.Items(),
		TotalItems: s.cart.TotalItems(),
		Subtotal:   subtotal,
		Shipping:   0,
		Total:      subtotal,
	}
}

// CompleteOrder places the mock order, empties the cart and shows the
// success view. It is only valid during checkout.
func (s *Session) CompleteOrder(details *ShippingDetails) (Order, Effects, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view != ViewCheckout {
		return Order{}, s.effects(), ErrInvalidTransition
	}
	order := Order{
		ID:              uuid.NewString(),
		CheckoutSummary: s.summary(),
		ShippingDetails: details,
		PlacedAt:        s.now().UTC(),
	}
	s.cart.Clear()
	s.lastOrder = &order
	s.view = ViewSuccess
	eff := s.effects()
	eff.CartCleared = true
	eff.ScrollTop = true
	return order, eff, nil
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	ID            string            `json:"id"`
	View          View              `json:"view"`
	Category      catalog.Category  `json:"category"`
	Query         string            `json:"query"`
	DrawerOpen    bool              `json:"drawer_open"`
	Cart          CartSnapshot      `json:"cart"`
	Wishlist      []catalog.Product `json:"wishlist"`
	WishlistCount int               `json:"wishlist_count"`
	Products      []catalog.Product `json:"products"`
	LastOrder     *Order            `json:"last_order,omitempty"`
	Chat          chat.State        `json:"chat_state"`
}

// CartSnapshot is the cart with its aggregates.
type CartSnapshot struct {
	Items           []CartItem `json:"items"`
	TotalItems      int        `json:"total_items"`
	Subtotal        float64    `json:"subtotal"`
	SubtotalDisplay string     `json:"subtotal_display"`
}

// Snapshot returns the session state with the visible products derived from
// the current category and query.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	subtotal := s.cart.Subtotal()
	return Snapshot{
		ID:         s.ID,
		View:       s.view,
		Category:   s.category,
		Query:      s.query,
		DrawerOpen: s.drawerOpen,
		Cart: CartSnapshot{
			Items:           s.cart.Items(),
			TotalItems:      s.cart.TotalItems(),
			Subtotal:        subtotal,
			SubtotalDisplay: FormatMoney(subtotal),
		},
		Wishlist:      s.wishlist.Items(),
		WishlistCount: s.wishlist.Len(),
		Products:      s.catalog.Search(s.category, s.query),
		LastOrder:     s.lastOrder,
		Chat:          s.Chat.State(),
	}
}

// VisibleProducts is the shop grid for the current category and query.
func (s *Session) VisibleProducts() []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Search(s.category, s.query)
}

// InWishlist reports wishlist membership for a product id.
func (s *Session) InWishlist(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wishlist.Contains(productID)
}
