package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/gitshopapp/storefront/internal/config"
	"github.com/gitshopapp/storefront/internal/handlers"
	uiassets "github.com/gitshopapp/storefront/ui/assets"
	"github.com/gitshopapp/storefront/ui/views"
)

type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	handlers   *handlers.Handlers
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger, h *handlers.Handlers) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if h == nil {
		return nil, fmt.Errorf("handlers are required")
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		handlers: h,
	}

	router := s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

func (s *Server) Run() error {
	s.logger.Info("server starting", "port", s.cfg.Port)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Close(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}

	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) buildRouter() *mux.Router {
	h := s.handlers

	r := mux.NewRouter()
	r.Use(h.RequestLogger)
	r.Use(h.SecurityHeaders)
	r.HandleFunc("/health", h.Health).Methods("GET").Name("health")
	r.Handle("/metrics", http.HandlerFunc(h.Metrics)).Methods("GET").Name("metrics")

	// Webhooks are authenticated by signature, not by session or origin.
	r.HandleFunc("/payment/stripe/webhook", h.StripeWebhook).Methods("POST").Name("payment.stripe.webhook")
	r.HandleFunc("/payment/heleket/webhook", h.HeleketWebhook).Methods("POST").Name("payment.heleket.webhook")

	// 404 handler - must be last
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		if err := views.NotFoundPage().Render(r.Context(), w); err != nil {
			http.Error(w, "Not Found", http.StatusNotFound)
		}
	})

	r.PathPrefix("/assets/").Handler(http.StripPrefix("/assets/", http.FileServer(http.FS(uiassets.FS)))).Name("assets")

	shop := r.NewRoute().Subrouter()
	shop.Use(h.SessionMiddleware)
	shop.Use(h.IdentityMiddleware)
	shop.Use(h.MetricsContext)
	shop.Use(h.RequireSameOrigin)
	shop.HandleFunc("/", h.Home).Methods("GET").Name("home")
	shop.HandleFunc("/cart", h.Cart).Methods("GET").Name("cart")
	shop.HandleFunc("/cart/add", h.CartAdd).Methods("POST").Name("cart.add")
	shop.HandleFunc("/cart/remove", h.CartRemove).Methods("POST").Name("cart.remove")
	shop.HandleFunc("/orders/checkout", h.CheckoutPage).Methods("GET").Name("checkout")
	shop.HandleFunc("/orders/checkout", h.CheckoutSubmit).Methods("POST").Name("checkout.submit")
	shop.HandleFunc("/payment/stripe/success", h.StripeSuccess).Methods("GET").Name("payment.stripe.success")
	shop.HandleFunc("/payment/stripe/cancel", h.StripeCancel).Methods("GET").Name("payment.stripe.cancel")
	shop.HandleFunc("/payment/heleket/success", h.HeleketSuccess).Methods("GET").Name("payment.heleket.success")

	return r
}
