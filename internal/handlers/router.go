package handlers

import (
	"net/http"

	"barbershop/internal/config"
	"barbershop/internal/db"
	"barbershop/internal/middleware"
	"barbershop/internal/models"
	"barbershop/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	cfg      config.Config
	txRunner db.TxRunner
	users    UserStore
	wallets  WalletStore
	catalog  CatalogStore
	bookings BookingReader
	resolver AvailabilityResolver
	booking  BookingService
	wallet   WalletService
	hub      *websocket.Hub
}

func New(cfg config.Config, txRunner db.TxRunner, users UserStore, wallets WalletStore, catalog CatalogStore, bookings BookingReader, resolver AvailabilityResolver, booking BookingService, wallet WalletService, hub *websocket.Hub) *Handler {
	return &Handler{
		cfg:      cfg,
		txRunner: txRunner,
		users:    users,
		wallets:  wallets,
		catalog:  catalog,
		bookings: bookings,
		resolver: resolver,
		booking:  booking,
		wallet:   wallet,
		hub:      hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})

	router.Get("/services", h.ListServices)
	router.Get("/availability/slots", h.AvailableSlots)
	router.Get("/availability/dates", h.AvailableDates)

	router.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Post("/bookings", h.CreateBooking)
		r.Get("/bookings", h.ListActiveBookings)
		r.Get("/bookings/history", h.ListBookingHistory)
		r.With(middleware.RequireRole(models.RoleStaff, models.RoleAdmin)).Post("/bookings/{id}/complete", h.CompleteBooking)
		r.Post("/bookings/{id}/cancel", h.CancelBooking)
		r.With(middleware.RequireRole(models.RoleStaff, models.RoleAdmin)).Get("/staff/bookings", h.StaffDayBookings)
		r.Get("/wallet", h.WalletBalance)
		r.Post("/wallet/topup", h.WalletTopUp)
		r.Get("/wallet/transactions", h.WalletTransactions)
	})

	router.Get("/ws/balances", h.WSBalances)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
