package shop

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"homiepro-storefront/internal/auth"
	"homiepro-storefront/internal/catalog"
	"homiepro-storefront/internal/chat"
	"homiepro-storefront/internal/logger"
)

// Handler handles HTTP requests for session-scoped storefront operations
type Handler struct {
	registry *Registry
	signer   *auth.Signer

	// assistantEnabled gates the chat endpoints; nil means always on.
	assistantEnabled func() bool
}

// NewHandler creates a new storefront handler
func NewHandler(registry *Registry, signer *auth.Signer, assistantEnabled func() bool) *Handler {
	return &Handler{registry: registry, signer: signer, assistantEnabled: assistantEnabled}
}

// SessionHandlerFunc is an HTTP handler bound to the caller's session.
type SessionHandlerFunc func(w http.ResponseWriter, r *http.Request, s *Session)

// RequireSession resolves the bearer token to a live session.
func (h *Handler) RequireSession(next SessionHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenStr := auth.GetBearerToken(r)
		if tokenStr == "" {
			logger.Debugf("RequireSession: no bearer token provided")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		claims, err := h.signer.ParseToken(tokenStr)
		if err != nil {
			logger.Debugf("RequireSession: JWT parse error: %v", err)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		s, err := h.registry.Get(claims.SessionID)
		if err != nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		next(w, r, s)
	}
}

// Routes registers the session endpoints on r.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/api/sessions", h.CreateSession).Methods(http.MethodPost)

	r.HandleFunc("/api/session", h.RequireSession(h.GetSession)).Methods(http.MethodGet)
	r.HandleFunc("/api/session/category", h.RequireSession(h.SelectCategory)).Methods(http.MethodPut)
	r.HandleFunc("/api/session/query", h.RequireSession(h.SetQuery)).Methods(http.MethodPut)
	r.HandleFunc("/api/session/products", h.RequireSession(h.VisibleProducts)).Methods(http.MethodGet)

	r.HandleFunc("/api/session/view/shop", h.RequireSession(h.ShowShop)).Methods(http.MethodPost)
	r.HandleFunc("/api/session/view/wishlist", h.RequireSession(h.ShowWishlist)).Methods(http.MethodPost)
	r.HandleFunc("/api/session/view/back", h.RequireSession(h.Back)).Methods(http.MethodPost)

	r.HandleFunc("/api/session/cart/items", h.RequireSession(h.AddToCart)).Methods(http.MethodPost)
	r.HandleFunc("/api/session/cart/items/{id}", h.RequireSession(h.UpdateQuantity)).Methods(http.MethodPatch)
	r.HandleFunc("/api/session/cart/items/{id}", h.RequireSession(h.RemoveFromCart)).Methods(http.MethodDelete)
	r.HandleFunc("/api/session/cart/open", h.RequireSession(h.OpenCart)).Methods(http.MethodPost)
	r.HandleFunc("/api/session/cart/close", h.RequireSession(h.CloseCart)).Methods(http.MethodPost)

	r.HandleFunc("/api/session/wishlist/{id}", h.RequireSession(h.ToggleWishlist)).Methods(http.MethodPost)

	r.HandleFunc("/api/session/checkout", h.RequireSession(h.GetCheckout)).Methods(http.MethodGet)
	r.HandleFunc("/api/session/checkout", h.RequireSession(h.BeginCheckout)).Methods(http.MethodPost)
	r.HandleFunc("/api/session/checkout/complete", h.RequireSession(h.CompleteOrder)).Methods(http.MethodPost)

	r.HandleFunc("/api/session/chat", h.RequireSession(h.GetChat)).Methods(http.MethodGet)
	r.HandleFunc("/api/session/chat", h.RequireSession(h.SendChat)).Methods(http.MethodPost)
}

// CreateSessionResponse is returned by POST /api/sessions.
type CreateSessionResponse struct {
	Token   string   `json:"token"`
	Session Snapshot `json:"session"`
}

// MutationResponse is returned by every state-changing session endpoint.
type MutationResponse struct {
	Session Snapshot `json:"session"`
	Effects Effects  `json:"effects"`
}

// CreateSession handles POST /api/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.registry.Create()
	token, err := h.signer.Issue(s.ID)
	if err != nil {
		logger.Errorf("CreateSession: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	logger.Debugf("session %s created", s.ID)
	writeJSON(w, http.StatusCreated, CreateSessionResponse{Token: token, Session: s.Snapshot()})
}

// GetSession handles GET /api/session
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request, s *Session) {
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func writeMutation(w http.ResponseWriter, s *Session, eff Effects) {
	writeJSON(w, http.StatusOK, MutationResponse{Session: s.Snapshot(), Effects: eff})
}

type categoryRequest struct {
	Category string `json:"category"`
}

// SelectCategory handles PUT /api/session/category
func (h *Handler) SelectCategory(w http.ResponseWriter, r *http.Request, s *Session) {
	var req categoryRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := catalog.ParseCategory(req.Category)
	if err != nil {
		http.Error(w, "unknown category", http.StatusBadRequest)
		return
	}
	eff, err := s.SelectCategory(c)
	if err != nil {
		http.Error(w, "unknown category", http.StatusBadRequest)
		return
	}
	writeMutation(w, s, eff)
}

type queryRequest struct {
	Query string `json:"query"`
}

// SetQuery handles PUT /api/session/query
func (h *Handler) SetQuery(w http.ResponseWriter, r *http.Request, s *Session) {
	var req queryRequest
	if !decode(w, r, &req) {
		return
	}
	writeMutation(w, s, s.SetQuery(req.Query))
}

// VisibleProducts handles GET /api/session/products
func (h *Handler) VisibleProducts(w http.ResponseWriter, r *http.Request, s *Session) {
	products := s.VisibleProducts()
	writeJSON(w, http.StatusOK, catalog.ProductListResponse{Products: products, Total: len(products)})
}

// ShowShop handles POST /api/session/view/shop
func (h *Handler) ShowShop(w http.ResponseWriter, r *http.Request, s *Session) {
	writeMutation(w, s, s.ShowShop())
}

// ShowWishlist handles POST /api/session/view/wishlist
func (h *Handler) ShowWishlist(w http.ResponseWriter, r *http.Request, s *Session) {
	eff, err := s.ShowWishlist()
	if err != nil {
		writeStateError(w, err)
		return
	}
	writeMutation(w, s, eff)
}

// Back handles POST /api/session/view/back
func (h *Handler) Back(w http.ResponseWriter, r *http.Request, s *Session) {
	writeMutation(w, s, s.Back())
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
}

// AddToCart handles POST /api/session/cart/items
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request, s *Session) {
	var req addItemRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		http.Error(w, "product_id is required", http.StatusBadRequest)
		return
	}
	eff, err := s.AddToCart(req.ProductID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Errorf("AddToCart: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeMutation(w, s, eff)
}

type quantityRequest struct {
	Delta int `json:"delta"`
}

// UpdateQuantity handles PATCH /api/session/cart/items/{id}
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request, s *Session) {
	var req quantityRequest
	if !decode(w, r, &req) {
		return
	}
	writeMutation(w, s, s.UpdateQuantity(mux.Vars(r)["id"], req.Delta))
}

// RemoveFromCart handles DELETE /api/session/cart/items/{id}
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request, s *Session) {
	writeMutation(w, s, s.RemoveFromCart(mux.Vars(r)["id"]))
}

// OpenCart handles POST /api/session/cart/open
func (h *Handler) OpenCart(w http.ResponseWriter, r *http.Request, s *Session) {
	writeMutation(w, s, s.OpenCart())
}

// CloseCart handles POST /api/session/cart/close
func (h *Handler) CloseCart(w http.ResponseWriter, r *http.Request, s *Session) {
	writeMutation(w, s, s.CloseCart())
}

// ToggleWishlistResponse reports the product's membership after a toggle.
type ToggleWishlistResponse struct {
	MutationResponse
	InWishlist bool `json:"in_wishlist"`
}

// ToggleWishlist handles POST /api/session/wishlist/{id}
func (h *Handler) ToggleWishlist(w http.ResponseWriter, r *http.Request, s *Session) {
	in, eff, err := s.ToggleWishlist(mux.Vars(r)["id"])
	if errors.Is(err, catalog.ErrProductNotFound) {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Errorf("ToggleWishlist: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ToggleWishlistResponse{
		MutationResponse: MutationResponse{Session: s.Snapshot(), Effects: eff},
		InWishlist:       in,
	})
}

// CheckoutResponse is the checkout summary with display strings.
type CheckoutResponse struct {
	CheckoutSummary
	SubtotalDisplay string `json:"subtotal_display"`
	TotalDisplay    string `json:"total_display"`
}

func checkoutResponse(sum CheckoutSummary) CheckoutResponse {
	return CheckoutResponse{
		CheckoutSummary: sum,
		SubtotalDisplay: FormatMoney(sum.Subtotal),
		TotalDisplay:    FormatMoney(sum.Total),
	}
}

// GetCheckout handles GET /api/session/checkout
func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request, s *Session) {
	writeJSON(w, http.StatusOK, checkoutResponse(s.CheckoutSummary()))
}

// BeginCheckout handles POST /api/session/checkout
func (h *Handler) BeginCheckout(w http.ResponseWriter, r *http.Request, s *Session) {
	eff, err := s.BeginCheckout()
	if err != nil {
		writeStateError(w, err)
		return
	}
	writeMutation(w, s, eff)
}

type completeOrderRequest struct {
	Shipping *ShippingDetails `json:"shipping,omitempty"`
}

// CompleteOrderResponse carries the placed order.
type CompleteOrderResponse struct {
	MutationResponse
	Order        Order  `json:"order"`
	TotalDisplay string `json:"total_display"`
}

// CompleteOrder handles POST /api/session/checkout/complete
func (h *Handler) CompleteOrder(w http.ResponseWriter, r *http.Request, s *Session) {
	var req completeOrderRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}
	order, eff, err := s.CompleteOrder(req.Shipping)
	if err != nil {
		writeStateError(w, err)
		return
	}
	logger.Infof("order %s placed: %d items, total %s", order.ID, order.TotalItems, FormatMoney(order.Total))
	writeJSON(w, http.StatusOK, CompleteOrderResponse{
		MutationResponse: MutationResponse{Session: s.Snapshot(), Effects: eff},
		Order:            order,
		TotalDisplay:     FormatMoney(order.Total),
	})
}

// ChatResponse is the transcript and request state.
type ChatResponse struct {
	State    chat.State     `json:"state"`
	Messages []chat.Message `json:"messages"`
}

func (h *Handler) chatEnabled(w http.ResponseWriter) bool {
	if h.assistantEnabled != nil && !h.assistantEnabled() {
		http.Error(w, "assistant unavailable", http.StatusServiceUnavailable)
		return false
	}
	return true
}

// GetChat handles GET /api/session/chat
func (h *Handler) GetChat(w http.ResponseWriter, r *http.Request, s *Session) {
	if !h.chatEnabled(w) {
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{State: s.Chat.State(), Messages: s.Chat.Transcript()})
}

type chatRequest struct {
	Text string `json:"text"`
}

// SendChat handles POST /api/session/chat
func (h *Handler) SendChat(w http.ResponseWriter, r *http.Request, s *Session) {
	if !h.chatEnabled(w) {
		return
	}
	var req chatRequest
	if !decode(w, r, &req) {
		return
	}
	// a client hanging up does not abort the reply; the gateway's own
	// timeout bounds it
	_, err := s.Chat.Submit(context.WithoutCancel(r.Context()), req.Text)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		http.Error(w, "message is empty", http.StatusBadRequest)
		return
	case errors.Is(err, chat.ErrReplyPending):
		http.Error(w, "reply pending", http.StatusConflict)
		return
	case err != nil:
		logger.Errorf("SendChat: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{State: s.Chat.State(), Messages: s.Chat.Transcript()})
}

func writeStateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyCart):
		http.Error(w, "cart is empty", http.StatusConflict)
	case errors.Is(err, ErrInvalidTransition):
		http.Error(w, "invalid view transition", http.StatusConflict)
	default:
		logger.Errorf("session state: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	ct := r.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		http.Error(w, "expected application/json", http.StatusUnsupportedMediaType)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
