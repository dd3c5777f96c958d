package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"
)

//go:embed seed.json
var seedJSON []byte

// Store is the read-only product catalog. It is safe for concurrent use
// because nothing mutates it after NewStore returns.
type Store struct {
	products []Product
	byID     map[string]int
}

// NewStore validates products and freezes them in the given order.
func NewStore(products []Product) (*Store, error) {
	s := &Store{
		products: make([]Product, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	copy(s.products, products)

	for i, p := range s.products {
		if err := validate(p); err != nil {
			return nil, fmt.Errorf("NewStore product %d: %w", i, err)
		}
		if _, dup := s.byID[p.ID]; dup {
			return nil, fmt.Errorf("NewStore: duplicate product id %q", p.ID)
		}
		s.byID[p.ID] = i
	}
	return s, nil
}

func validate(p Product) error {
	switch {
	case p.ID == "":
		return fmt.Errorf("missing id")
	case p.Name == "":
		return fmt.Errorf("product %q: missing name", p.ID)
	case !p.Category.Valid():
		return fmt.Errorf("product %q: %w %q", p.ID, ErrUnknownCategory, p.Category)
	case p.Price < 0:
		return fmt.Errorf("product %q: negative price", p.ID)
	case p.Rating < 0 || p.Rating > 5:
		return fmt.Errorf("product %q: rating %v out of range", p.ID, p.Rating)
	}
	return nil
}

// LoadSeed returns the built-in catalog.
func LoadSeed() ([]Product, error) {
	var products []Product
	if err := json.Unmarshal(seedJSON, &products); err != nil {
		return nil, errors.Wrap(err, "decode seed catalog")
	}
	return products, nil
}

// LoadFromDB reads the catalog from a PostgreSQL table such as
// "catalog.products". Rows come back in position order.
func LoadFromDB(ctx context.Context, db *sql.DB, table string) ([]Product, error) {
	ident, err := quoteTable(table)
	if err != nil {
		return nil, err
	}
	query := `
		SELECT id, name, category, price, COALESCE(description, ''),
		       COALESCE(image_url, ''), rating, COALESCE(featured, false)
		FROM ` + ident + `
		ORDER BY position, id
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("LoadFromDB query: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		var p Product
		var category string
		var rating sql.NullFloat64
		if err := rows.Scan(&p.ID, &p.Name, &category, &p.Price, &p.Description,
			&p.Image, &rating, &p.Featured); err != nil {
			return nil, fmt.Errorf("LoadFromDB scan: %w", err)
		}
		p.Category = Category(category)
		if rating.Valid {
			p.Rating = rating.Float64
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("LoadFromDB rows: %w", err)
	}
	return products, nil
}

// quoteTable quotes an optionally schema-qualified table name.
func quoteTable(table string) (string, error) {
	parts := strings.Split(table, ".")
	if len(parts) > 2 {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	for i, part := range parts {
		if part == "" {
			return "", fmt.Errorf("invalid table name %q", table)
		}
		parts[i] = pq.QuoteIdentifier(part)
	}
	return strings.Join(parts, "."), nil
}

// Products returns every product in catalog order.
func (s *Store) Products() []Product {
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

// Len returns the number of products.
func (s *Store) Len() int {
	return len(s.products)
}

// GetProduct retrieves a single product by ID.
func (s *Store) GetProduct(id string) (Product, error) {
	i, ok := s.byID[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return s.products[i], nil
}

// Featured returns the featured products in catalog order.
func (s *Store) Featured() []Product {
	out := []Product{}
	for _, p := range s.products {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// Search applies Filter to the whole catalog.
func (s *Store) Search(category Category, query string) []Product {
	return Filter(s.products, category, query)
}
