package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	s, err := NewStore(seedProducts(t))
	require.NoError(t, err)
	h := NewHandler(s)
	r := mux.NewRouter()
	r.HandleFunc("/api/products", h.ListProducts).Methods(http.MethodGet)
	r.HandleFunc("/api/products/featured", h.FeaturedProducts).Methods(http.MethodGet)
	r.HandleFunc("/api/products/{id}", h.GetProduct).Methods(http.MethodGet)
	return r
}

func TestListProductsHandler(t *testing.T) {
	r := setupRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/products?category=lamps&q=modern", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp ProductListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, []string{"l1", "l3"}, ids(resp.Products))

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/products?category=rugs", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestFeaturedProductsHandler(t *testing.T) {
	r := setupRouter(t)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/products/featured", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp ProductListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []string{"l1", "s1", "f1"}, ids(resp.Products))
}

func TestGetProductHandler(t *testing.T) {
	r := setupRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/products/s2", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var p Product
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	assert.Equal(t, "Linen Breeze Set", p.Name)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/products/zz", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
