package shop

import "homiepro-storefront/internal/catalog"

// Wishlist is a set of products keyed by id, kept in insertion order.
type Wishlist struct {
	items []catalog.Product
}

// Toggle adds p when absent and removes it when present. It reports
// whether p is in the wishlist afterwards.
func (w *Wishlist) Toggle(p catalog.Product) bool {
	for i := range w.items {
		if w.items[i].ID == p.ID {
			w.items = append(w.items[:i], w.items[i+1:]...)
			return false
		}
	}
	w.items = append(w.items, p)
	return true
}

// Contains reports whether id is saved.
func (w *Wishlist) Contains(id string) bool {
	for _, p := range w.items {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Len is the number of saved products.
func (w *Wishlist) Len() int {
	return len(w.items)
}

// Items returns a copy of the wishlist.
func (w *Wishlist) Items() []catalog.Product {
	out := make([]catalog.Product, len(w.items))
	copy(out, w.items)
	return out
}
