// Package web hosts the storefront HTTP server: product browsing, the
// shopping cart, authentication, checkout, and the locale and theme toggles.
package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/urbanhaven/storefront/internal/auth"
	"github.com/urbanhaven/storefront/internal/cart"
	"github.com/urbanhaven/storefront/internal/checkout"
	"github.com/urbanhaven/storefront/internal/platform/httpx"
	"github.com/urbanhaven/storefront/internal/platform/i18n"
	"github.com/urbanhaven/storefront/internal/storage"
)

// shutdownTimeout caps the graceful drain on context cancellation.
const shutdownTimeout = 5 * time.Second

// Config defines the inputs for the web server.
type Config struct {
	HTTPAddr string
}

// Deps are the collaborating services the web server fronts.
type Deps struct {
	Catalog  catalogReader
	Cart     *cart.Service
	Auth     *auth.Service
	Checkout *checkout.Service
	Issuer   *auth.TokenIssuer
	Store    storage.KV
	Bundle   *i18n.Bundle
}

// Server hosts the storefront HTTP server.
type Server struct {
	httpServer *http.Server
}

// NewServer builds a configured web server. The cart is hydrated from
// storage here, before any request can mutate it.
func NewServer(ctx context.Context, config Config, deps Deps) (*Server, error) {
	addr := strings.TrimSpace(config.HTTPAddr)
	if addr == "" {
		return nil, errors.New("http address is required")
	}
	if deps.Catalog == nil || deps.Cart == nil || deps.Auth == nil || deps.Checkout == nil || deps.Issuer == nil || deps.Store == nil {
		return nil, errors.New("all web server dependencies are required")
	}
	if deps.Bundle == nil {
		deps.Bundle = i18n.Default()
	}

	if err := deps.Cart.Hydrate(ctx); err != nil {
		return nil, fmt.Errorf("hydrate cart: %w", err)
	}

	v, err := newViews(deps.Bundle)
	if err != nil {
		return nil, err
	}

	h := handlers{
		catalog:  deps.Catalog,
		cart:     deps.Cart,
		auth:     deps.Auth,
		checkout: deps.Checkout,
		issuer:   deps.Issuer,
		store:    deps.Store,
		views:    v,
	}

	return &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: routes(h),
		},
	}, nil
}

// Handler returns the fully-wired HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe serves HTTP until the context is canceled, then drains.
func (s *Server) ListenAndServe(ctx context.Context) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()
	log.Printf("storefront listening at %s", s.httpServer.Addr)

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func routes(h handlers) http.Handler {
	mux := http.NewServeMux()

	get := func(path string, handler http.HandlerFunc) {
		mux.Handle(path, httpx.Chain(handler, httpx.RequireMethod(http.MethodGet)))
	}
	post := func(path string, handler http.HandlerFunc) {
		mux.Handle(path, httpx.Chain(handler, httpx.RequireMethod(http.MethodPost)))
	}

	get("/", h.handleHome)
	get("/shop", h.handleShop)
	get("/product/", h.handleProduct)
	get("/cart", h.handleCart)
	post("/cart/add", h.handleCartAdd)
	post("/cart/remove", h.handleCartRemove)
	post("/cart/quantity", h.handleCartQuantity)

	mux.Handle("/login", methodSplit(h.handleLoginGet, h.handleLoginPost))
	mux.Handle("/signup", methodSplit(h.handleSignupGet, h.handleSignupPost))
	post("/logout", h.handleLogout)
	mux.Handle("/checkout", methodSplit(h.handleCheckoutGet, h.handleCheckoutPost))

	post("/locale", h.handleLocale)
	post("/theme", h.handleTheme)
	get("/healthz", h.handleHealthz)

	return httpx.Chain(mux, httpx.RecoverPanic(), httpx.RequestID(), httpx.LogRequests())
}

func methodSplit(get, post http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			get(w, r)
		case http.MethodPost:
			post(w, r)
		default:
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodPost)
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}
