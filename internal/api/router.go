package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/example/turismo-portal/internal/api/middleware"
	"github.com/example/turismo-portal/internal/auth"
	"github.com/example/turismo-portal/internal/domain/user"
)

func NewRouter(handlers *Handlers, authHandlers *AuthHandlers, tokens *auth.TokenService) http.Handler {
	mux := http.NewServeMux()

	requireAuth := middleware.Auth(tokens)
	requireStaff := chain(requireAuth, middleware.RequireRole(user.RoleAdmin, user.RoleSales))
	requireAdmin := chain(requireAuth, middleware.RequireRole(user.RoleAdmin))

	// Auth
	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			authHandlers.Register(w, r)
		default:
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			authHandlers.Login(w, r)
		default:
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			authHandlers.Logout(w, r)
		default:
			methodNotAllowed(w)
		}
	})

	mux.Handle("/auth/me", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			authHandlers.Me(w, r)
		default:
			methodNotAllowed(w)
		}
	})))

	mux.Handle("/auth/password", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			authHandlers.ChangePassword(w, r)
		default:
			methodNotAllowed(w)
		}
	})))

	// Products (public storefront)
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetProducts(w, r)
		default:
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/products/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetProduct(w, r)
		default:
			methodNotAllowed(w)
		}
	})

	// Cart (session-scoped, sign-in not required)
	mux.Handle("/cart", middleware.CartSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetCart(w, r)
		case http.MethodDelete:
			handlers.ClearCart(w, r)
		default:
			methodNotAllowed(w)
		}
	})))

	mux.Handle("/cart/items", middleware.CartSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handlers.AddToCart(w, r)
		default:
			methodNotAllowed(w)
		}
	})))

	mux.Handle("/cart/items/", middleware.CartSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			handlers.UpdateCartItem(w, r)
		case http.MethodDelete:
			handlers.RemoveFromCart(w, r)
		default:
			methodNotAllowed(w)
		}
	})))

	// Orders (buyer-facing)
	mux.Handle("/orders", requireAuth(middleware.CartSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetOrders(w, r)
		case http.MethodPost:
			handlers.PlaceOrder(w, r)
		default:
			methodNotAllowed(w)
		}
	}))))

	mux.Handle("/orders/", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/cancel") && r.Method == http.MethodPost:
			handlers.CancelOrder(w, r)
		case strings.HasSuffix(path, "/items") && r.Method == http.MethodGet:
			handlers.GetOrderItems(w, r)
		case r.Method == http.MethodGet:
			handlers.GetOrder(w, r)
		default:
			methodNotAllowed(w)
		}
	})))

	// Admin: order management (admin and sales)
	mux.Handle("/admin/orders", requireStaff(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetAllOrders(w, r)
		default:
			methodNotAllowed(w)
		}
	})))

	mux.Handle("/admin/orders/", requireStaff(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/status") && r.Method == http.MethodPut:
			handlers.UpdateOrderStatus(w, r)
		default:
			methodNotAllowed(w)
		}
	})))

	// Admin: catalog management (admin only)
	mux.Handle("/admin/products", requireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetAllProducts(w, r)
		case http.MethodPost:
			handlers.CreateProduct(w, r)
		default:
			methodNotAllowed(w)
		}
	})))

	mux.Handle("/admin/products/", requireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			handlers.UpdateProduct(w, r)
		case http.MethodDelete:
			handlers.DeleteProduct(w, r)
		default:
			methodNotAllowed(w)
		}
	})))

	// Admin: notification recipients (admin only)
	mux.Handle("/admin/email-settings", requireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetEmailSettings(w, r)
		case http.MethodPost:
			handlers.CreateEmailSetting(w, r)
		default:
			methodNotAllowed(w)
		}
	})))

	mux.Handle("/admin/email-settings/", requireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			handlers.UpdateEmailSetting(w, r)
		case http.MethodDelete:
			handlers.DeleteEmailSetting(w, r)
		default:
			methodNotAllowed(w)
		}
	})))

	return withLogging(mux)
}

func chain(outer, inner func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return outer(inner(next))
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	respondJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[API] %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
