package catalog

import "errors"

// Category groups products in the storefront navigation.
type Category string

const (
	CategoryAll       Category = "all"
	CategoryLamps     Category = "lamps"
	CategoryBedsheets Category = "bedsheets"
	CategoryFurniture Category = "furniture"
)

// Categories lists the concrete product categories in navigation order.
var Categories = []Category{CategoryLamps, CategoryBedsheets, CategoryFurniture}

// Valid reports whether c names a concrete product category.
func (c Category) Valid() bool {
	switch c {
	case CategoryLamps, CategoryBedsheets, CategoryFurniture:
		return true
	}
	return false
}

// ValidFilter reports whether c may be used to filter, which additionally
// allows the "all" wildcard.
func (c Category) ValidFilter() bool {
	return c == CategoryAll || c.Valid()
}

// ParseCategory maps a filter value to a Category. An empty value means all.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return CategoryAll, nil
	}
	c := Category(s)
	if !c.ValidFilter() {
		return "", ErrUnknownCategory
	}
	return c, nil
}

var (
	// ErrProductNotFound is returned when no product has the requested id.
	ErrProductNotFound = errors.New("product not found")
	// ErrUnknownCategory is returned for category values outside the catalog.
	ErrUnknownCategory = errors.New("unknown category")
)

// Product represents a product in the catalog. Products are immutable once
// loaded.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Rating      float64  `json:"rating"`
	Featured    bool     `json:"featured,omitempty"`
}

// ProductListResponse wraps a list of products with its size.
type ProductListResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}
