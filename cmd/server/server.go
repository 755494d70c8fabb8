// cmd/server/server.go
package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Padelicious/internal/api"
	"github.com/codr1/Padelicious/internal/api/admin"
	"github.com/codr1/Padelicious/internal/api/authz"
	"github.com/codr1/Padelicious/internal/api/bookings"
	"github.com/codr1/Padelicious/internal/api/notifications"
	"github.com/codr1/Padelicious/internal/api/payments"
	"github.com/codr1/Padelicious/internal/booking"
	"github.com/codr1/Padelicious/internal/config"
	"github.com/codr1/Padelicious/internal/notify"
	"github.com/codr1/Padelicious/internal/ratelimit"
)

type serverDeps struct {
	service  *booking.Service
	store    *notify.Store
	limiter  ratelimit.Checker
	verifier *authz.Verifier
}

func newVerifier(cfg *config.Config) *authz.Verifier {
	if cfg.Auth.JWTSecret == "" {
		log.Warn().Msg("ADMIN_JWT_SECRET not set; admin endpoints will reject every request")
	}
	return authz.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
}

func newServer(cfg *config.Config, deps serverDeps) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	bookings.InitHandlers(deps.service, deps.limiter, cfg.App.TrustProxy)
	payments.InitHandlers(deps.service, cfg.Payment.ServerKey)
	admin.InitHandlers(deps.service)
	notifications.InitHandlers(deps.store)

	// Register routes
	registerRoutes(router, api.WithAdminAuth(deps.verifier))

	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, adminAuth api.Middleware) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Customer booking routes
	mux.HandleFunc("GET /api/v1/slots", bookings.HandleListSlots)
	mux.HandleFunc("POST /api/v1/bookings", bookings.HandleCreateBooking)
	mux.HandleFunc("GET /api/v1/bookings/{code}", bookings.HandleGetBooking)
	mux.HandleFunc("POST /api/v1/bookings/{code}/cancel", bookings.HandleCancelBooking)

	// Payment gateway routes
	mux.HandleFunc("POST /api/v1/payments/notifications", payments.HandleNotification)
	mux.HandleFunc("GET /api/v1/payments/finish", payments.HandleFinish)

	// Admin routes
	adminRoutes := map[string]http.HandlerFunc{
		"GET /api/v1/admin/bookings":                     admin.HandleListBookings,
		"POST /api/v1/admin/bookings/{id}/check-in":      admin.HandleCheckIn,
		"POST /api/v1/admin/bookings/{id}/check-out":     admin.HandleCheckOut,
		"POST /api/v1/admin/bookings/{id}/cancel":        admin.HandleCancel,
		"POST /api/v1/admin/bookings/{id}/refund":        admin.HandleRefund,
		"POST /api/v1/admin/bookings/{id}/venue-payment": admin.HandleVenuePayment,
		"POST /api/v1/admin/sessions/sweep":              admin.HandleSweep,
		"GET /api/v1/admin/notifications":                notifications.HandleNotificationsList,
		"POST /api/v1/admin/notifications/{id}/read":     notifications.HandleNotificationRead,
	}
	for pattern, h := range adminRoutes {
		mux.Handle(pattern, adminAuth(h))
	}
}
