package shop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homiepro-storefront/internal/catalog"
	"homiepro-storefront/internal/chat"
)

func seedStore(t *testing.T) *catalog.Store {
	t.Helper()
	products, err := catalog.LoadSeed()
	require.NoError(t, err)
	s, err := catalog.NewStore(products)
	require.NoError(t, err)
	return s
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	return NewSession("test", seedStore(t), chat.Unavailable, nil)
}

func TestNewSessionDefaults(t *testing.T) {
	s := newTestSession(t)
	snap := s.Snapshot()
	assert.Equal(t, ViewShop, snap.View)
	assert.Equal(t, catalog.CategoryAll, snap.Category)
	assert.False(t, snap.DrawerOpen)
	assert.Len(t, snap.Products, 8)
	assert.Empty(t, snap.Cart.Items)
	assert.Equal(t, "0.00", snap.Cart.SubtotalDisplay)
	assert.Equal(t, chat.StateIdle, snap.Chat)
}

func TestSessionEndToEndCart(t *testing.T) {
	s := newTestSession(t)

	eff, err := s.AddToCart("f1")
	require.NoError(t, err)
	assert.True(t, eff.OpenDrawer)
	_, err = s.AddToCart("f1")
	require.NoError(t, err)

	snap := s.Snapshot()
	require.Len(t, snap.Cart.Items, 1)
	assert.Equal(t, 2, snap.Cart.Items[0].Quantity)
	assert.Equal(t, 1198.0, snap.Cart.Subtotal)
	assert.Equal(t, "1198.00", snap.Cart.SubtotalDisplay)
	assert.True(t, snap.DrawerOpen)

	s.UpdateQuantity("f1", -10)
	snap = s.Snapshot()
	assert.Equal(t, 1, snap.Cart.Items[0].Quantity)
	assert.Equal(t, 599.0, snap.Cart.Subtotal)
}

func TestAddUnknownProduct(t *testing.T) {
	s := newTestSession(t)
	_, err := s.AddToCart("nope")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	assert.False(t, s.Snapshot().DrawerOpen)

	_, _, err = s.ToggleWishlist("nope")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestCategoryAndQueryDriveVisibleProducts(t *testing.T) {
	s := newTestSession(t)
	_, err := s.ShowWishlist()
	require.NoError(t, err)

	eff, err := s.SelectCategory(catalog.CategoryLamps)
	require.NoError(t, err)
	assert.Equal(t, Effects{View: ViewShop, ScrollTop: true}, eff)
	assert.Len(t, s.VisibleProducts(), 3)

	_, err = s.SelectCategory("rugs")
	assert.ErrorIs(t, err, catalog.ErrUnknownCategory)

	_, err = s.ShowWishlist()
	require.NoError(t, err)
	eff = s.SetQuery("floor")
	assert.Equal(t, ViewWishlist, eff.View, "search does not change view")
	assert.False(t, eff.ScrollTop)

	var got []string
	for _, p := range s.VisibleProducts() {
		got = append(got, p.ID)
	}
	assert.Equal(t, []string{"l3"}, got)
}

func TestViewTransitions(t *testing.T) {
	s := newTestSession(t)

	eff, err := s.ShowWishlist()
	require.NoError(t, err)
	assert.Equal(t, Effects{View: ViewWishlist, ScrollTop: true}, eff)

	assert.Equal(t, Effects{View: ViewShop}, s.Back())
	assert.Equal(t, Effects{View: ViewShop}, s.Back(), "back from shop stays")

	_, err = s.ShowWishlist()
	require.NoError(t, err)
	assert.Equal(t, Effects{View: ViewShop, ScrollTop: true}, s.ShowShop())
}

func TestCheckoutFlow(t *testing.T) {
	s := newTestSession(t)

	_, err := s.BeginCheckout()
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, ViewShop, s.View())

	_, err = s.AddToCart("f1")
	require.NoError(t, err)
	_, err = s.AddToCart("s1")
	require.NoError(t, err)

	_, _, err = s.CompleteOrder(nil)
	assert.ErrorIs(t, err, ErrInvalidTransition, "complete only from checkout")

	eff, err := s.BeginCheckout()
	require.NoError(t, err)
	assert.Equal(t, Effects{View: ViewCheckout, CloseDrawer: true, ScrollTop: true}, eff)
	assert.False(t, s.Snapshot().DrawerOpen)

	_, err = s.BeginCheckout()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	sum := s.CheckoutSummary()
	assert.Equal(t, 2, sum.TotalItems)
	assert.Equal(t, 688.0, sum.Subtotal)
	assert.Equal(t, 688.0, sum.Total)
	assert.Zero(t, sum.Shipping)

	details := &ShippingDetails{FirstName: "Ada", Email: "ada@example.com"}
	order, eff, err := s.CompleteOrder(details)
	require.NoError(t, err)
	assert.Equal(t, Effects{View: ViewSuccess, CartCleared: true, ScrollTop: true}, eff)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, 688.0, order.Total)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, details, order.ShippingDetails)

	snap := s.Snapshot()
	assert.Equal(t, ViewSuccess, snap.View)
	assert.Zero(t, snap.Cart.TotalItems)
	assert.Empty(t, snap.Cart.Items)
	require.NotNil(t, snap.LastOrder)
	assert.Equal(t, order.ID, snap.LastOrder.ID)
}

func TestSuccessOnlyLeadsToShop(t *testing.T) {
	s := toSuccess(t)

	_, err := s.ShowWishlist()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = s.BeginCheckout()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, _, err = s.CompleteOrder(nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, ViewSuccess, s.View())

	assert.Equal(t, ViewShop, s.Back().View)

	s = toSuccess(t)
	assert.Equal(t, ViewShop, s.ShowShop().View)

	s = toSuccess(t)
	eff, err := s.SelectCategory(catalog.CategoryFurniture)
	require.NoError(t, err)
	assert.Equal(t, ViewShop, eff.View)
}

func toSuccess(t *testing.T) *Session {
	t.Helper()
	s := newTestSession(t)
	_, err := s.AddToCart("l1")
	require.NoError(t, err)
	_, err = s.BeginCheckout()
	require.NoError(t, err)
	_, _, err = s.CompleteOrder(nil)
	require.NoError(t, err)
	return s
}

func TestCheckoutFromWishlistReturnsThere(t *testing.T) {
	s := newTestSession(t)
	_, err := s.AddToCart("l1")
	require.NoError(t, err)
	_, err = s.ShowWishlist()
	require.NoError(t, err)
	_, err = s.BeginCheckout()
	require.NoError(t, err)

	eff := s.OpenCart()
	assert.Equal(t, Effects{View: ViewWishlist, OpenDrawer: true}, eff)
}

func TestCartEditDuringCheckoutReopensDrawer(t *testing.T) {
	s := newTestSession(t)
	_, err := s.AddToCart("l1")
	require.NoError(t, err)
	_, err = s.BeginCheckout()
	require.NoError(t, err)

	eff := s.UpdateQuantity("l1", 1)
	assert.Equal(t, Effects{View: ViewShop, OpenDrawer: true}, eff)
	assert.True(t, s.Snapshot().DrawerOpen)
	assert.Equal(t, 2, s.CheckoutSummary().TotalItems)
}

func TestCartEditOfAbsentItemKeepsCheckout(t *testing.T) {
	s := newTestSession(t)
	_, err := s.AddToCart("l1")
	require.NoError(t, err)
	_, err = s.BeginCheckout()
	require.NoError(t, err)

	eff := s.UpdateQuantity("no-such-id", 1)
	assert.Equal(t, Effects{View: ViewCheckout}, eff)
	eff = s.RemoveFromCart("no-such-id")
	assert.Equal(t, Effects{View: ViewCheckout}, eff)

	assert.Equal(t, ViewCheckout, s.View())
	assert.False(t, s.Snapshot().DrawerOpen)
	assert.Equal(t, 1, s.CheckoutSummary().TotalItems)
}

func TestCloseCart(t *testing.T) {
	s := newTestSession(t)
	s.OpenCart()
	eff := s.CloseCart()
	assert.True(t, eff.CloseDrawer)
	assert.False(t, s.Snapshot().DrawerOpen)
}

func TestWishlistThroughSession(t *testing.T) {
	s := newTestSession(t)
	in, _, err := s.ToggleWishlist("s2")
	require.NoError(t, err)
	assert.True(t, in)
	assert.True(t, s.InWishlist("s2"))
	assert.Equal(t, 1, s.Snapshot().WishlistCount)

	in, _, err = s.ToggleWishlist("s2")
	require.NoError(t, err)
	assert.False(t, in)
	assert.Zero(t, s.Snapshot().WishlistCount)
}

func TestLastSeenUsesClock(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := NewSession("x", seedStore(t), chat.Unavailable, func() time.Time { return at })
	assert.True(t, at.Equal(s.LastSeen()))
}
