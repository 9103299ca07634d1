package server

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mkadima/gestfact/internal/auth"
	"github.com/mkadima/gestfact/internal/gate"
	"github.com/mkadima/gestfact/internal/gateway"
	"github.com/mkadima/gestfact/internal/handlers"
	"github.com/mkadima/gestfact/internal/httpx"
	"github.com/mkadima/gestfact/internal/models"
	"github.com/mkadima/gestfact/internal/services"

	"gorm.io/gorm"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, gw gateway.Client) http.Handler {
	mux := http.NewServeMux()

	// RequireAuth checks the session user still exists; the role is also what
	// the gate policies consume.
	auth.SetRoleResolver(func(_ context.Context, uid uint) (string, bool) {
		var user models.User
		if err := db.Preload("Role").First(&user, uid).Error; err != nil {
			return "", false
		}
		return strings.ToLower(user.Role.Name), true
	})

	g := gate.New()
	g.Register("quote", gate.ReadWrite())
	g.Register("invoice", gate.ReadWrite())
	g.Register("rate", gate.AdminOnly())
	g.Register("tool", gate.ReadWrite())

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth endpoints
	authHandler := handlers.NewAuthHandler(db)
	authHandler.Register(mux)

	rates := services.NewRateService(db)
	quotes := services.NewQuoteService(db, rates)
	invoices := services.NewInvoiceService(db, rates)
	inventory := services.NewInventoryService(db)

	secured := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAuth(h))
	}
	listCreate := func(list, create http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				list(w, r)
			case http.MethodPost:
				create(w, r)
			default:
				w.Header().Set("Allow", "GET,POST")
				httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
			}
		}
	}

	// Exchange rates
	rh := handlers.NewRateHandler(db, rates, g)
	mux.Handle("/rates", secured(listCreate(rh.Active, rh.Set)))

	// Clients
	ch := handlers.NewClientHandler(db)
	mux.Handle("/clients", secured(listCreate(ch.List, ch.Create)))
	mux.Handle("/clients/update", secured(ch.Update))
	mux.Handle("/clients/delete", secured(ch.Delete))

	// Products
	ph := handlers.NewProductHandler(db)
	mux.Handle("/products", secured(listCreate(ph.List, ph.Create)))
	mux.Handle("/products/update", secured(ph.Update))
	mux.Handle("/products/delete", secured(ph.Delete))

	// Quotes
	qh := handlers.NewQuoteHandler(db, quotes, g)
	mux.Handle("/quotes", secured(listCreate(qh.List, qh.Create)))
	mux.Handle("/quotes/status", secured(qh.UpdateStatus))
	mux.Handle("/quotes/convert", secured(qh.Convert))
	mux.Handle("/quotes/delete", secured(qh.Delete))

	// Invoices
	ih := handlers.NewInvoiceHandler(db, invoices, g)
	mux.Handle("/invoices", secured(listCreate(ih.List, ih.Create)))
	mux.Handle("/invoices/status", secured(ih.UpdateStatus))
	mux.Handle("/invoices/pay", secured(ih.MarkPaid))
	mux.Handle("/invoices/payments", secured(ih.Payments))
	mux.Handle("/invoices/delete", secured(ih.Delete))

	// Payments / gateway
	payh := handlers.NewPaymentHandler(db, invoices, gw)
	mux.Handle("/payments/checkout", secured(payh.Checkout))
	mux.Handle("/payments/poll", secured(payh.Poll))
	// The confirm path is called by the provider, not a logged-in user.
	mux.Handle("/payments/confirm", http.HandlerFunc(payh.Confirm))

	// Tools / inventory
	th := handlers.NewToolHandler(db, inventory)
	mux.Handle("/tools", secured(listCreate(th.List, th.Create)))
	mux.Handle("/tools/move", secured(th.Move))
	mux.Handle("/tools/movements", secured(th.Movements))

	return withRecover(withLogging(mux))
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
