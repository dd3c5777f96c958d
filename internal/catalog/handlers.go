package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"homiepro-storefront/internal/logger"
)

// Handler handles HTTP requests for catalog operations
type Handler struct {
	store *Store
}

// NewHandler creates a new catalog handler
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// ListProducts handles GET /api/products?category=&q=
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	category, err := ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		http.Error(w, "unknown category", http.StatusBadRequest)
		return
	}
	products := h.store.Search(category, r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, ProductListResponse{Products: products, Total: len(products)})
}

// FeaturedProducts handles GET /api/products/featured
func (h *Handler) FeaturedProducts(w http.ResponseWriter, r *http.Request) {
	products := h.store.Featured()
	writeJSON(w, http.StatusOK, ProductListResponse{Products: products, Total: len(products)})
}

// GetProduct handles GET /api/products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	product, err := h.store.GetProduct(id)
	if errors.Is(err, ErrProductNotFound) {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Errorf("GetProduct: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
