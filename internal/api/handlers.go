package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/example/turismo-portal/internal/api/middleware"
	"github.com/example/turismo-portal/internal/catalog"
	"github.com/example/turismo-portal/internal/checkout"
	"github.com/example/turismo-portal/internal/domain/cart"
	"github.com/example/turismo-portal/internal/domain/order"
	"github.com/example/turismo-portal/internal/domain/product"
	"github.com/example/turismo-portal/internal/notification"
)

// OrderDirectory is the slice of the order store the handlers need.
type OrderDirectory interface {
	Get(ctx context.Context, id string) (*order.Order, error)
	ListByUser(ctx context.Context, userID string) ([]order.Order, error)
	ListAll(ctx context.Context) ([]order.WithBuyer, error)
	ItemsByOrder(ctx context.Context, orderID string) ([]order.Item, error)
	UpdateStatus(ctx context.Context, id string, target order.Status) error
}

// SettingDirectory is the slice of the email-settings store the handlers need.
type SettingDirectory interface {
	List(ctx context.Context) ([]notification.EmailSetting, error)
	Create(ctx context.Context, setting *notification.EmailSetting) error
	Update(ctx context.Context, setting *notification.EmailSetting) error
	Delete(ctx context.Context, id string) error
}

type Handlers struct {
	catalog  *catalog.Service
	carts    *cart.Engine
	checkout *checkout.Service
	orders   OrderDirectory
	settings SettingDirectory
	users    UserDirectory
}

func NewHandlers(cat *catalog.Service, carts *cart.Engine, co *checkout.Service, orders OrderDirectory, settings SettingDirectory, users UserDirectory) *Handlers {
	return &Handlers{
		catalog:  cat,
		carts:    carts,
		checkout: co,
		orders:   orders,
		settings: settings,
		users:    users,
	}
}

// Product Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListActive(r.Context())
	if err != nil {
		respondJSONError(w, "Could not load products", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	p, err := h.catalog.Get(r.Context(), id)
	if err != nil || !p.Active {
		respondJSONError(w, "Product not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Cart Handlers

// CartResponse mirrors what the storefront renders in the cart drawer.
type CartResponse struct {
	Items      []cart.Line `json:"items"`
	TotalItems int         `json:"total_items"`
	TotalPrice float64     `json:"total_price"`
}

func (h *Handlers) cartResponse(sessionID string) CartResponse {
	lines := h.carts.Snapshot(sessionID)
	return CartResponse{
		Items:      lines,
		TotalItems: cart.Count(lines),
		TotalPrice: cart.Total(lines),
	}
}

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())
	respondJSON(w, http.StatusOK, h.cartResponse(sessionID))
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.catalog.Get(r.Context(), req.ProductID)
	if err != nil || !p.Active {
		respondJSONError(w, "Product not found", http.StatusNotFound)
		return
	}

	merged := h.carts.Add(sessionID, *p, req.Quantity)

	respondJSON(w, http.StatusOK, struct {
		Merged bool `json:"merged"`
		CartResponse
	}{
		Merged:       merged,
		CartResponse: h.cartResponse(sessionID),
	})
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())
	productID := extractPathParam(r.URL.Path, "/cart/items/")

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.carts.UpdateQuantity(sessionID, productID, req.Quantity)
	respondJSON(w, http.StatusOK, h.cartResponse(sessionID))
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())
	productID := extractPathParam(r.URL.Path, "/cart/items/")

	h.carts.Remove(sessionID, productID)
	respondJSON(w, http.StatusOK, h.cartResponse(sessionID))
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())
	h.carts.Clear(sessionID)
	respondJSON(w, http.StatusOK, h.cartResponse(sessionID))
}

// Order Handlers

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	buyer, err := h.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		respondJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sessionID := middleware.GetSessionID(r.Context())
	o, err := h.checkout.Submit(r.Context(), buyer, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrNotAuthenticated):
			respondJSONError(w, "Unauthorized", http.StatusUnauthorized)
		case errors.Is(err, checkout.ErrEmptyCart):
			respondJSONError(w, "Cart is empty", http.StatusBadRequest)
		case errors.Is(err, checkout.ErrCheckoutInFlight):
			respondJSONError(w, "Checkout already in progress", http.StatusConflict)
		default:
			respondJSONError(w, "Order could not be processed", http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, http.StatusCreated, o)
}

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	orders, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		respondJSONError(w, "Could not load orders", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// ownedOrder loads an order and enforces that the caller owns it or is staff.
func (h *Handlers) ownedOrder(w http.ResponseWriter, r *http.Request, id string) (*order.Order, bool) {
	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		respondJSONError(w, "Order not found", http.StatusNotFound)
		return nil, false
	}

	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	if o.UserID != claims.UserID && !claims.Role.CanManageOrders() {
		respondJSONError(w, "Forbidden", http.StatusForbidden)
		return nil, false
	}
	return o, true
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/orders/")
	o, ok := h.ownedOrder(w, r, id)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) GetOrderItems(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/orders/"), "/items")
	if _, ok := h.ownedOrder(w, r, id); !ok {
		return
	}

	items, err := h.orders.ItemsByOrder(r.Context(), id)
	if err != nil {
		respondJSONError(w, "Could not load order items", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// CancelOrder lets a buyer cancel their own pending order. Staff cancel
// through the admin status endpoint instead.
func (h *Handlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/orders/"), "/cancel")
	o, ok := h.ownedOrder(w, r, id)
	if !ok {
		return
	}

	claims, _ := middleware.GetUserFromContext(r.Context())
	if o.UserID == claims.UserID && !claims.Role.CanManageOrders() && !o.CancellableByCustomer() {
		respondJSONError(w, "Only pending orders can be cancelled", http.StatusConflict)
		return
	}

	if err := h.orders.UpdateStatus(r.Context(), id, order.StatusCancelled); err != nil {
		if errors.Is(err, order.ErrInvalidTransition) || errors.Is(err, order.ErrOrderFinal) {
			respondJSONError(w, "Order can no longer be cancelled", http.StatusConflict)
			return
		}
		respondJSONError(w, "Could not cancel order", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Order cancelled"})
}

// Admin Handlers

func (h *Handlers) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		respondJSONError(w, "Could not load orders", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/admin/orders/"), "/status")

	var req struct {
		Status order.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !req.Status.Valid() {
		respondJSONError(w, "Unknown status", http.StatusBadRequest)
		return
	}

	if err := h.orders.UpdateStatus(r.Context(), id, req.Status); err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			respondJSONError(w, "Order not found", http.StatusNotFound)
		case errors.Is(err, order.ErrInvalidTransition), errors.Is(err, order.ErrOrderFinal):
			respondJSONError(w, err.Error(), http.StatusConflict)
		default:
			respondJSONError(w, "Could not update order", http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Order updated"})
}

func (h *Handlers) GetAllProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		respondJSONError(w, "Could not load products", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var p product.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.catalog.Create(r.Context(), &p); err != nil {
		respondProductError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/admin/products/")

	var p product.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	p.ID = id

	if err := h.catalog.Update(r.Context(), &p); err != nil {
		respondProductError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/admin/products/")

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			respondJSONError(w, "Product not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, "Could not delete product", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}

func respondProductError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, product.ErrProductNotFound):
		respondJSONError(w, "Product not found", http.StatusNotFound)
	case errors.Is(err, product.ErrCodeRequired),
		errors.Is(err, product.ErrNameRequired),
		errors.Is(err, product.ErrNegativePrice):
		respondJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		respondJSONError(w, "Could not save product", http.StatusInternalServerError)
	}
}

// Email Setting Handlers

func (h *Handlers) GetEmailSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.List(r.Context())
	if err != nil {
		respondJSONError(w, "Could not load email settings", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

func (h *Handlers) CreateEmailSetting(w http.ResponseWriter, r *http.Request) {
	var setting notification.EmailSetting
	if err := json.NewDecoder(r.Body).Decode(&setting); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := setting.Validate(); err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if setting.ID == "" {
		setting.ID = uuid.New().String()
	}

	if err := h.settings.Create(r.Context(), &setting); err != nil {
		respondJSONError(w, "Could not save email setting", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, setting)
}

func (h *Handlers) UpdateEmailSetting(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/admin/email-settings/")

	var setting notification.EmailSetting
	if err := json.NewDecoder(r.Body).Decode(&setting); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	setting.ID = id
	if err := setting.Validate(); err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.settings.Update(r.Context(), &setting); err != nil {
		if errors.Is(err, notification.ErrSettingNotFound) {
			respondJSONError(w, "Email setting not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, "Could not update email setting", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, setting)
}

func (h *Handlers) DeleteEmailSetting(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/admin/email-settings/")

	if err := h.settings.Delete(r.Context(), id); err != nil {
		if errors.Is(err, notification.ErrSettingNotFound) {
			respondJSONError(w, "Email setting not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, "Could not delete email setting", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Email setting deleted"})
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}
