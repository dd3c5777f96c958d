package catalog

import "strings"

// Filter returns, in order, the products that belong to category (any
// category when it is CategoryAll) and whose name or description contains
// query, ignoring case. An empty query matches every product.
func Filter(products []Product, category Category, query string) []Product {
	q := strings.ToLower(query)
	out := []Product{}
	for _, p := range products {
		if category != CategoryAll && p.Category != category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		out = append(out, p)
	}
	return out
}
