package shop

import "homiepro-storefront/internal/catalog"

// Cart holds at most one item per product id, in the order products were
// first added. No operation fails; requests that make no sense for the
// current contents are no-ops or clamped. Cart is not safe for concurrent
// use on its own; Session serialises access.
type Cart struct {
	items []CartItem
}

func (c *Cart) index(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Add puts one more of p in the cart and returns its new quantity.
func (c *Cart) Add(p catalog.Product) int {
	if i := c.index(p.ID); i >= 0 {
		c.items[i].Quantity++
		return c.items[i].Quantity
	}
	c.items = append(c.items, CartItem{Product: p, Quantity: 1})
	return 1
}

// UpdateQuantity moves the quantity of id by delta, never below 1. It does
// nothing and returns false when id is not in the cart.
func (c *Cart) UpdateQuantity(id string, delta int) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.items[i].Quantity = max(1, c.items[i].Quantity+delta)
	return true
}

// Remove drops id from the cart and reports whether it was there.
func (c *Cart) Remove(id string) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}

// Quantity returns the quantity of id, 0 when absent.
func (c *Cart) Quantity(id string) int {
	if i := c.index(id); i >= 0 {
		return c.items[i].Quantity
	}
	return 0
}

// Len is the number of distinct products.
func (c *Cart) Len() int {
	return len(c.items)
}

// TotalItems is the sum of all quantities.
func (c *Cart) TotalItems() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// Subtotal is the sum of price times quantity. Prices are not rounded.
func (c *Cart) Subtotal() float64 {
	var sum float64
	for _, it := range c.items {
		sum += it.LineTotal()
	}
	return sum
}

// Items returns a copy of the cart contents.
func (c *Cart) Items() []CartItem {
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}
